package session

import "encoding/json"

const (
	fieldUserID   = "userId"
	fieldUserName = "userName"
)

// Session is the identity record stored under a session token.
//
// Extra carries arbitrary payload fields opaque to the core; they round-trip
// through serialization untouched. Sessions are never mutated in place: expiry
// extension is the only allowed state change, and callers receive copies.
type Session struct {
	UserID   string
	UserName string
	Extra    map[string]json.RawMessage
}

// IdentityKey returns the stable composite used to group connections that
// belong to the same logical user.
func (s Session) IdentityKey() string {
	return s.UserID + "-" + s.UserName
}

// MarshalJSON folds the identity fields and the opaque payload into one flat
// JSON object.
func (s Session) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.Extra)+2)
	for k, v := range s.Extra {
		out[k] = v
	}

	uid, err := json.Marshal(s.UserID)
	if err != nil {
		return nil, err
	}
	uname, err := json.Marshal(s.UserName)
	if err != nil {
		return nil, err
	}
	out[fieldUserID] = uid
	out[fieldUserName] = uname

	return json.Marshal(out)
}

// UnmarshalJSON extracts the identity fields and keeps every other field as
// opaque payload.
func (s *Session) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw[fieldUserID]; ok {
		if err := json.Unmarshal(v, &s.UserID); err != nil {
			return err
		}
		delete(raw, fieldUserID)
	}
	if v, ok := raw[fieldUserName]; ok {
		if err := json.Unmarshal(v, &s.UserName); err != nil {
			return err
		}
		delete(raw, fieldUserName)
	}

	if len(raw) > 0 {
		s.Extra = raw
	} else {
		s.Extra = nil
	}
	return nil
}
