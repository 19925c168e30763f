package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersCreated  uint64
	UsersUpdated  uint64
	UsersDeleted  uint64
	DBPingSuccess uint64
	DBPingFailure uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersCreated  uint64
	usersUpdated  uint64
	usersDeleted  uint64
	dbPingSuccess uint64
	dbPingFailure uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersCreated:  atomic.LoadUint64(&m.usersCreated),
		UsersUpdated:  atomic.LoadUint64(&m.usersUpdated),
		UsersDeleted:  atomic.LoadUint64(&m.usersDeleted),
		DBPingSuccess: atomic.LoadUint64(&m.dbPingSuccess),
		DBPingFailure: atomic.LoadUint64(&m.dbPingFailure),
	}
}

// IncUserCreated increments the user created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	atomic.AddUint64(&m.usersCreated, 1)
}

// IncUserUpdated increments the user updated counter.
func (m *InMemoryRecorder) IncUserUpdated() {
	atomic.AddUint64(&m.usersUpdated, 1)
}

// IncUserDeleted increments the user deleted counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// IncDBPing increments the db ping counter for the given outcome.
func (m *InMemoryRecorder) IncDBPing(ok bool) {
	if ok {
		atomic.AddUint64(&m.dbPingSuccess, 1)
	} else {
		atomic.AddUint64(&m.dbPingFailure, 1)
	}
}
