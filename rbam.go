// Package rbam provides the main entrypoint for the rbam library:
// a lock-free ring buffer access manager shared by one producer and one consumer.
//
// The manager only hands out slot indexes, the payload lives in an array
// owned by the caller. A typical producer stores the payload between
// Reserve and Commit:
//
//	slot, err := mgr.Reserve()
//	if err != nil {
//		// full, retry later
//	}
//	payload[slot] = item
//	mgr.Commit()
//
// while the consumer loads it right after Read:
//
//	slot, err := mgr.Read()
//	if err != nil {
//		// empty, retry later
//	}
//	item := payload[slot]
package rbam

import (
	"github.com/FerroO2000/rbam/internal/rb"
)

// Manager is a ring buffer access manager.
type Manager = rb.Manager

// Stats is a snapshot of a manager.
type Stats = rb.Stats

var (
	// ErrInvalidCapacity is returned when a manager is created with zero slots.
	ErrInvalidCapacity = rb.ErrInvalidCapacity
	// ErrFull is returned when the producer has no free slot to reserve.
	ErrFull = rb.ErrFull
	// ErrEmpty is returned when the consumer has no published slot to read.
	ErrEmpty = rb.ErrEmpty
)

// New returns a new manager for a buffer of dim slots.
// At most dim-1 slots can be ready at the same time.
func New(dim uint32) (*Manager, error) {
	return rb.NewManager(dim)
}
