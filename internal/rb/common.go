package rb

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// cursors holds the indexes shared between the producer and the consumer.
// Each side owns the fields it writes, the other side only loads them.
type cursors struct {
	// rd is owned by the consumer
	rd atomic.Uint32

	_ cpu.CacheLinePad

	// wr and next are owned by the producer
	wr   atomic.Uint32
	next atomic.Uint32

	_ cpu.CacheLinePad

	// used and free are diagnostic only, both sides store into them
	used atomic.Uint32
	free atomic.Uint32

	_ cpu.CacheLinePad
}

// distance returns the number of slots from rd (inclusive) to wr (exclusive).
func distance(rd, wr, dim uint32) uint32 {
	return uint32((uint64(wr) + uint64(dim) - uint64(rd)) % uint64(dim))
}
