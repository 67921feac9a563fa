package serverstate

import "sync/atomic"

// Status values reported by the server.
const (
	StatusNotReady = "not_ready"
	StatusReady    = "ready"
	StatusDraining = "draining"
	StatusUnknown  = "unknown"
)

// State holds the server status and draining flag. Both fields are updated
// together so callers always observe a consistent snapshot.
type State struct {
	Status   string `json:"status"`
	Draining bool   `json:"draining"`
}

// Store defines how the server state is persisted.
type Store interface {
	Load() State
	Store(State)
}

// active is the currently configured Store.
var active atomic.Pointer[storeHolder]

type storeHolder struct{ s Store }

func init() {
	UseStore(NewMemoryStore())
}

// UseStore replaces the active Store. Nil is ignored.
func UseStore(s Store) {
	if s != nil {
		active.Store(&storeHolder{s: s})
	}
}

func current() Store {
	return active.Load().s
}

// memoryStore implements Store using an atomic.Value.
type memoryStore struct {
	v atomic.Value
}

// NewMemoryStore returns a memory-backed Store initialized to not_ready.
func NewMemoryStore() *memoryStore {
	ms := &memoryStore{}
	ms.v.Store(State{Status: StatusNotReady})
	return ms
}

func (m *memoryStore) Load() State {
	if st, ok := m.v.Load().(State); ok {
		return st
	}
	return State{Status: StatusUnknown}
}

func (m *memoryStore) Store(s State) {
	m.v.Store(s)
}

// Snapshot returns the current state.
func Snapshot() State {
	return current().Load()
}

// SetState updates the server status string. Moving to ready clears any
// earlier draining flag.
func SetState(status string) {
	s := current()
	st := s.Load()
	st.Status = status
	if status == StatusReady {
		st.Draining = false
	}
	s.Store(st)
}

// GetState returns the current server status.
func GetState() string {
	return Snapshot().Status
}

// StartDrain marks the server as draining.
func StartDrain() {
	s := current()
	st := s.Load()
	st.Draining = true
	st.Status = StatusDraining
	s.Store(st)
}

// IsDraining reports whether the server is draining.
func IsDraining() bool {
	return Snapshot().Draining
}

// IsReady reports whether the server accepts traffic.
func IsReady() bool {
	st := Snapshot()
	return st.Status == StatusReady && !st.Draining
}
