package realtime

import (
	"hash/fnv"
	"sync"
)

const registryShards = 32

// Registry is the in-memory concurrent multi-map from identity key to the set
// of live connection ids for that identity.
//
// Concurrency guarantees:
//   - Add/Remove/Connections are safe under concurrent connection-lifecycle
//     callers; locking is per shard so unrelated identities do not serialize.
//   - Connections returns a snapshot; caller iteration is safe while
//     concurrent Add/Remove calls are in flight.
//
// Invariants:
//   - set semantics: duplicate Add is idempotent.
//   - no dangling empty sets: the identity key is dropped when its last
//     connection id is removed.
//
// Scope: a single process instance; lifecycle = process lifetime.
type Registry struct {
	shards [registryShards]registryShard
}

type registryShard struct {
	mu    sync.RWMutex
	conns map[string]map[string]struct{}
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].conns = make(map[string]map[string]struct{})
	}
	return r
}

func (r *Registry) shard(identityKey string) *registryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identityKey))
	return &r.shards[h.Sum32()%registryShards]
}

// Add inserts connectionID into the set for identityKey, creating the set if
// absent. Idempotent under duplicate insertion.
func (r *Registry) Add(identityKey, connectionID string) {
	if identityKey == "" || connectionID == "" {
		return
	}

	s := r.shard(identityKey)
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.conns[identityKey]
	if !ok {
		set = make(map[string]struct{}, 1)
		s.conns[identityKey] = set
	}
	set[connectionID] = struct{}{}
}

// Remove deletes connectionID from the set for identityKey; the identity key
// itself is removed when the set becomes empty. No-op if absent.
func (r *Registry) Remove(identityKey, connectionID string) {
	if identityKey == "" || connectionID == "" {
		return
	}

	s := r.shard(identityKey)
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.conns[identityKey]
	if !ok {
		return
	}
	delete(set, connectionID)
	if len(set) == 0 {
		delete(s.conns, identityKey)
	}
}

// Connections returns a snapshot of the current connection ids for
// identityKey; an empty slice if the key is absent.
func (r *Registry) Connections(identityKey string) []string {
	s := r.shard(identityKey)
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.conns[identityKey]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// Len returns the total number of registered connection ids.
func (r *Registry) Len() int {
	total := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		for _, set := range s.conns {
			total += len(set)
		}
		s.mu.RUnlock()
	}
	return total
}
