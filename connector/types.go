package connector

import (
	"github.com/FerroO2000/rbam/internal/rb"
)

var _ Connector[any] = (*RingBuffer[any])(nil)

// RingBuffer is a lock-free spsc generic ring buffer.
type RingBuffer[T any] = rb.RingBuffer[T]

// Errors returned by the ring buffer connector.
var (
	ErrClosed = rb.ErrClosed
	ErrFull   = rb.ErrFull
	ErrEmpty  = rb.ErrEmpty
)
