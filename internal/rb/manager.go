// Package rb provides a lock-free single producer/single consumer
// ring buffer access manager and a generic ring buffer built on top of it.
package rb

import "errors"

var (
	// ErrInvalidCapacity is returned when a manager is created with zero slots.
	ErrInvalidCapacity = errors.New("ring buffer: capacity must be at least 1")
	// ErrFull is returned when the producer has no free slot to reserve.
	ErrFull = errors.New("ring buffer: buffer is full")
	// ErrEmpty is returned when the consumer has no published slot to read.
	ErrEmpty = errors.New("ring buffer: buffer is empty")
)

// Stats is a snapshot of the manager cursors and of its diagnostic counters.
type Stats struct {
	// Dim is the total number of slots.
	Dim uint32
	// Read is the consumer cursor.
	Read uint32
	// Write is the published producer cursor.
	Write uint32
	// Next is the slot the producer will reserve next.
	Next uint32

	// Used and Free are refreshed by both sides after they move a cursor.
	// They can be stale and must not be used to take decisions.
	Used uint32
	Free uint32
}

// Manager is a ring buffer access manager. It coordinates the read and write
// indexes of a circular slot space of a fixed dimension, while the payload
// is stored by the caller in an array of (at least) Dim elements.
//
// A manager is meant to be shared between exactly one producer and one consumer
// goroutine. The producer calls Write, Reserve, Commit and Rollback,
// the consumer calls Read and Drain. The state queries can be called by both sides,
// but their result is a snapshot that may be stale.
//
// One slot is always kept free to tell a full buffer from an empty one,
// so at most Dim-1 slots can be ready at the same time.
type Manager struct {
	dim uint32

	cur cursors
}

// NewManager returns a new manager for a buffer of dim slots.
func NewManager(dim uint32) (*Manager, error) {
	if dim == 0 {
		return nil, ErrInvalidCapacity
	}

	m := &Manager{
		dim: dim,
	}
	m.Reset()

	return m, nil
}

// Reset sets the manager back to its initial empty state.
// It must not be called while the producer or the consumer are running.
func (m *Manager) Reset() {
	m.cur.rd.Store(0)
	m.cur.wr.Store(0)
	m.cur.next.Store(0)

	m.cur.used.Store(0)
	m.cur.free.Store(m.dim)
}

// Dim returns the total number of slots.
func (m *Manager) Dim() uint32 {
	return m.dim
}

// Capacity returns the number of slots that can be ready at the same time.
func (m *Manager) Capacity() uint32 {
	return m.dim - 1
}

// Advance returns the index following the given one, wrapping around.
func (m *Manager) Advance(index uint32) uint32 {
	return uint32((uint64(index) + 1) % uint64(m.dim))
}

// Retreat returns the index preceding the given one, wrapping around.
func (m *Manager) Retreat(index uint32) uint32 {
	return uint32((uint64(index) + uint64(m.dim) - 1) % uint64(m.dim))
}

// IsFull states whether the producer cannot publish another slot.
func (m *Manager) IsFull() bool {
	return m.Advance(m.cur.wr.Load()) == m.cur.rd.Load()
}

// IsEmpty states whether there is no published slot left to read.
func (m *Manager) IsEmpty() bool {
	return m.cur.rd.Load() == m.cur.wr.Load()
}

// Len returns the number of published slots not read yet.
func (m *Manager) Len() uint32 {
	rd := m.cur.rd.Load()
	wr := m.cur.wr.Load()
	return distance(rd, wr, m.dim)
}

// Write reserves the next slot and publishes it right away.
// It returns the index of the reserved slot, or ErrFull.
//
// The slot is visible to the consumer before the caller stores the payload
// into it, so the caller has to order the two on its own.
// Use Reserve and Commit to publish the slot after the payload store.
func (m *Manager) Write() (uint32, error) {
	slot, err := m.Reserve()
	if err != nil {
		return 0, err
	}

	m.Commit()

	return slot, nil
}

// Reserve claims the next slot for the producer without publishing it.
// It returns the index of the slot, or ErrFull.
// More slots can be reserved before calling Commit.
func (m *Manager) Reserve() (uint32, error) {
	slot := m.cur.next.Load()
	next := m.Advance(slot)

	// The slot right behind the consumer cursor is never handed out
	if next == m.cur.rd.Load() {
		return 0, ErrFull
	}

	m.cur.next.Store(next)

	return slot, nil
}

// Commit publishes all the reserved slots to the consumer.
// Payload stores made before Commit are visible to the consumer
// once it reads one of the published slots.
func (m *Manager) Commit() {
	wr := m.cur.next.Load()
	m.cur.wr.Store(wr)

	m.refreshDiagnostics(m.cur.rd.Load(), wr)
}

// Rollback drops the reserved (not yet committed) slots
// and returns how many they were.
func (m *Manager) Rollback() uint32 {
	wr := m.cur.wr.Load()
	next := m.cur.next.Load()

	m.cur.next.Store(wr)

	return distance(wr, next, m.dim)
}

// Read consumes the next published slot.
// It returns the index of the slot, or ErrEmpty.
//
// The producer does not reuse the returned slot until the following
// call to Read or Drain, so the payload can be loaded after Read returns.
func (m *Manager) Read() (uint32, error) {
	rd := m.cur.rd.Load()
	wr := m.cur.wr.Load()

	if rd == wr {
		return 0, ErrEmpty
	}

	next := m.Advance(rd)
	m.cur.rd.Store(next)

	m.refreshDiagnostics(next, wr)

	return rd, nil
}

// Drain discards all the published slots not read yet
// and returns how many they were. It never fails.
func (m *Manager) Drain() uint32 {
	rd := m.cur.rd.Load()
	wr := m.cur.wr.Load()

	discarded := distance(rd, wr, m.dim)
	m.cur.rd.Store(wr)

	m.refreshDiagnostics(wr, wr)

	return discarded
}

// Stats returns a snapshot of the manager.
func (m *Manager) Stats() Stats {
	return Stats{
		Dim:   m.dim,
		Read:  m.cur.rd.Load(),
		Write: m.cur.wr.Load(),
		Next:  m.cur.next.Load(),
		Used:  m.cur.used.Load(),
		Free:  m.cur.free.Load(),
	}
}

func (m *Manager) refreshDiagnostics(rd, wr uint32) {
	used := distance(rd, wr, m.dim)
	m.cur.used.Store(used)
	m.cur.free.Store(m.dim - used)
}
