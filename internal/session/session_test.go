package session

import (
	"encoding/json"
	"testing"
)

func TestIdentityKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sess Session
		want string
	}{
		{"plain", Session{UserID: "42", UserName: "vahe"}, "42-vahe"},
		{"hyphen in name", Session{UserID: "1", UserName: "a-b"}, "1-a-b"},
		{"whitespace preserved", Session{UserID: " 1", UserName: "x "}, " 1-x "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.sess.IdentityKey(); got != tt.want {
				t.Fatalf("IdentityKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionJSONFoldsExtraFields(t *testing.T) {
	t.Parallel()

	in := []byte(`{"userId":"7","userName":"ani","role":"admin","tags":["a","b"]}`)

	var sess Session
	if err := json.Unmarshal(in, &sess); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sess.UserID != "7" || sess.UserName != "ani" {
		t.Fatalf("identity mismatch: %+v", sess)
	}
	if len(sess.Extra) != 2 {
		t.Fatalf("expected 2 extra fields, got %v", sess.Extra)
	}
	if string(sess.Extra["role"]) != `"admin"` {
		t.Fatalf("role = %s", sess.Extra["role"])
	}

	out, err := json.Marshal(sess)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if got["userId"] != "7" || got["userName"] != "ani" || got["role"] != "admin" {
		t.Fatalf("flat object mismatch: %v", got)
	}
}

func TestSessionJSONWithoutExtras(t *testing.T) {
	t.Parallel()

	var sess Session
	if err := json.Unmarshal([]byte(`{"userId":"1","userName":"n"}`), &sess); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sess.Extra != nil {
		t.Fatalf("expected nil Extra, got %v", sess.Extra)
	}
}

func TestSessionJSONMissingIdentityFields(t *testing.T) {
	t.Parallel()

	var sess Session
	if err := json.Unmarshal([]byte(`{"foo":1}`), &sess); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sess.UserID != "" || sess.UserName != "" {
		t.Fatalf("expected empty identity, got %+v", sess)
	}
	if string(sess.Extra["foo"]) != "1" {
		t.Fatalf("extra foo = %s", sess.Extra["foo"])
	}
}
