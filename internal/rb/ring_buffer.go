package rb

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/FerroO2000/rbam/internal"
	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sys/cpu"
)

// MaxCapacity is the maximum number of items a RingBuffer can hold.
const MaxCapacity = math.MaxUint32 - 1

// ErrClosed is returned when the buffer is closed.
var ErrClosed = errors.New("ring buffer: buffer is closed")

// PollConfig defines how Write and Read wait for a free or a published slot.
type PollConfig struct {
	// MaxSpins is the number of retries yielding the processor
	// before falling back to sleeping.
	MaxSpins int
	// InitialBackoff is the first sleep interval.
	InitialBackoff time.Duration
	// MaxBackoff caps the sleep interval.
	MaxBackoff time.Duration
}

type ringBufferMetrics struct {
	// producer side
	writtenItems   atomic.Int64
	fullRejections atomic.Int64

	_ cpu.CacheLinePad

	// consumer side
	readItems       atomic.Int64
	emptyRejections atomic.Int64
	drainedItems    atomic.Int64

	_ cpu.CacheLinePad

	writeWaitTime *internal.Histogram
	readWaitTime  *internal.Histogram
}

func (m *ringBufferMetrics) init(tel *internal.Telemetry, mgr *Manager) {
	tel.NewCounter("written_items", func() int64 { return m.writtenItems.Load() })
	tel.NewCounter("full_rejections", func() int64 { return m.fullRejections.Load() })
	tel.NewCounter("read_items", func() int64 { return m.readItems.Load() })
	tel.NewCounter("empty_rejections", func() int64 { return m.emptyRejections.Load() })
	tel.NewCounter("drained_items", func() int64 { return m.drainedItems.Load() })

	tel.NewGauge("used_slots", func() int64 { return int64(mgr.Stats().Used) })
	tel.NewGauge("free_slots", func() int64 { return int64(mgr.Stats().Free) })

	m.writeWaitTime = tel.NewHistogram("write_wait_time", metric.WithUnit("us"))
	m.readWaitTime = tel.NewHistogram("read_wait_time", metric.WithUnit("us"))
}

// RingBuffer is a lock-free single producer/single consumer generic ring buffer.
// It stores the items in its own slots and uses a Manager to coordinate them.
//
// Only one goroutine can write and only one goroutine can read.
type RingBuffer[T any] struct {
	tel *internal.Telemetry

	mgr   *Manager
	slots []T

	pollCfg PollConfig

	isClosed atomic.Bool

	_ cpu.CacheLinePad

	metrics ringBufferMetrics
}

// NewRingBuffer returns a new ring buffer that can hold up to capacity items.
func NewRingBuffer[T any](capacity uint32, pollCfg PollConfig, tel *internal.Telemetry) (*RingBuffer[T], error) {
	if capacity == 0 || capacity > MaxCapacity {
		return nil, ErrInvalidCapacity
	}

	// One more slot is needed to tell a full buffer from an empty one
	dim := capacity + 1

	mgr, err := NewManager(dim)
	if err != nil {
		return nil, err
	}

	rb := &RingBuffer[T]{
		tel: tel,

		mgr:   mgr,
		slots: make([]T, dim),

		pollCfg: pollCfg,
	}

	rb.metrics.init(tel, mgr)

	return rb, nil
}

// TryWrite writes the item without waiting.
// It returns ErrFull if there is no free slot.
func (rb *RingBuffer[T]) TryWrite(item T) error {
	if rb.isClosed.Load() {
		return ErrClosed
	}

	slot, err := rb.mgr.Reserve()
	if err != nil {
		rb.metrics.fullRejections.Add(1)
		return err
	}

	rb.slots[slot] = item
	rb.mgr.Commit()

	rb.metrics.writtenItems.Add(1)

	return nil
}

// TryRead reads an item without waiting.
// It returns ErrEmpty if there is nothing to read,
// or ErrClosed if the buffer is closed and there is nothing left to read.
func (rb *RingBuffer[T]) TryRead() (T, error) {
	var zero T

	// Loaded before reading, so items committed before closing are not lost
	isClosed := rb.isClosed.Load()

	slot, err := rb.mgr.Read()
	if err != nil {
		if isClosed {
			return zero, ErrClosed
		}

		rb.metrics.emptyRejections.Add(1)
		return zero, err
	}

	// The slot is not reused by the producer until the next read
	item := rb.slots[slot]
	rb.slots[slot] = zero

	rb.metrics.readItems.Add(1)

	return item, nil
}

// Write writes the item into the buffer.
// If the buffer is full, it waits until a slot is freed,
// the buffer is closed or the context is done.
func (rb *RingBuffer[T]) Write(ctx context.Context, item T) error {
	err := rb.TryWrite(item)
	if !errors.Is(err, ErrFull) {
		return err
	}

	startTime := time.Now()

	_, err = poll(ctx, rb.pollCfg, ErrFull, func() (struct{}, error) {
		return struct{}{}, rb.TryWrite(item)
	})

	rb.metrics.writeWaitTime.Record(ctx, time.Since(startTime).Microseconds())

	return err
}

// Read reads an item from the buffer.
// If the buffer is empty, it waits until an item is written,
// the buffer is closed or the context is done.
func (rb *RingBuffer[T]) Read(ctx context.Context) (T, error) {
	item, err := rb.TryRead()
	if !errors.Is(err, ErrEmpty) {
		return item, err
	}

	startTime := time.Now()

	item, err = poll(ctx, rb.pollCfg, ErrEmpty, rb.TryRead)

	rb.metrics.readWaitTime.Record(ctx, time.Since(startTime).Microseconds())

	return item, err
}

// Drain discards all the items not read yet and returns how many they were.
// It must be called by the consumer.
func (rb *RingBuffer[T]) Drain(ctx context.Context) uint32 {
	_, span := rb.tel.NewTrace(ctx, "drain ring buffer")
	defer span.End()

	var zero T

	// Clear the published slots while the consumer cursor still protects them.
	// Items published after the snapshot are discarded without being cleared.
	stats := rb.mgr.Stats()
	for slot := stats.Read; slot != stats.Write; slot = rb.mgr.Advance(slot) {
		rb.slots[slot] = zero
	}

	discarded := rb.mgr.Drain()

	rb.metrics.drainedItems.Add(int64(discarded))

	span.SetAttributes(attribute.Int64("discarded_items", int64(discarded)))

	if discarded > 0 {
		rb.tel.LogInfo("drained ring buffer", "discarded_items", discarded)
	}

	return discarded
}

// Len returns the number of items in the buffer.
func (rb *RingBuffer[T]) Len() uint32 {
	return rb.mgr.Len()
}

// Capacity returns the maximum number of items the buffer can hold.
func (rb *RingBuffer[T]) Capacity() uint32 {
	return rb.mgr.Capacity()
}

// Stats returns a snapshot of the underlying manager.
func (rb *RingBuffer[T]) Stats() Stats {
	return rb.mgr.Stats()
}

// Close closes the buffer. Writes fail right away,
// while the items already written can still be read.
func (rb *RingBuffer[T]) Close() {
	if !rb.isClosed.CompareAndSwap(false, true) {
		return
	}

	rb.tel.LogInfo("closed", "pending_items", rb.mgr.Len())
}

// poll retries the given function until it returns an error
// different from retryErr, or the context is done.
// It spins first, then it sleeps with an exponential backoff.
func poll[R any](ctx context.Context, cfg PollConfig, retryErr error, try func() (R, error)) (R, error) {
	for range cfg.MaxSpins {
		runtime.Gosched()

		res, err := try()
		if !errors.Is(err, retryErr) {
			return res, err
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialBackoff
	bo.MaxInterval = cfg.MaxBackoff
	bo.Reset()

	timer := time.NewTimer(nextBackoff(bo, cfg.MaxBackoff))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			var zero R
			return zero, ctx.Err()
		case <-timer.C:
		}

		res, err := try()
		if !errors.Is(err, retryErr) {
			return res, err
		}

		timer.Reset(nextBackoff(bo, cfg.MaxBackoff))
	}
}

func nextBackoff(bo backoff.BackOff, maxInterval time.Duration) time.Duration {
	next := bo.NextBackOff()
	if next == backoff.Stop {
		return maxInterval
	}

	return next
}
