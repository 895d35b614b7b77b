package connector

import (
	"fmt"
	"time"

	"github.com/FerroO2000/rbam/internal"
	"github.com/FerroO2000/rbam/internal/config"
	"github.com/FerroO2000/rbam/internal/rb"
)

// Default values for the ring buffer configuration.
const (
	DefaultRingBufferCapacity       = 1024
	DefaultRingBufferMaxSpins       = 64
	DefaultRingBufferInitialBackoff = 10 * time.Microsecond
	DefaultRingBufferMaxBackoff     = time.Millisecond
)

// RingBufferConfig is the configuration of a ring buffer connector.
type RingBufferConfig struct {
	// Name identifies the connector in logs and metrics.
	Name string

	// Capacity is the number of items the buffer can hold.
	Capacity uint32

	// MaxSpins is the number of times a blocked Write/Read yields
	// the processor before starting to sleep.
	MaxSpins int

	// InitialBackoff is the first sleep interval of a blocked Write/Read.
	InitialBackoff time.Duration
	// MaxBackoff is the maximum sleep interval of a blocked Write/Read.
	MaxBackoff time.Duration
}

// NewRingBufferConfig returns the default configuration for a ring buffer.
func NewRingBufferConfig(name string) *RingBufferConfig {
	return &RingBufferConfig{
		Name: name,

		Capacity: DefaultRingBufferCapacity,

		MaxSpins: DefaultRingBufferMaxSpins,

		InitialBackoff: DefaultRingBufferInitialBackoff,
		MaxBackoff:     DefaultRingBufferMaxBackoff,
	}
}

// Validate checks the configuration.
func (c *RingBufferConfig) Validate(ac *config.AnomalyCollector) {
	config.CheckNotZero(ac, "Capacity", &c.Capacity, DefaultRingBufferCapacity)
	config.CheckNotGreater(ac, "Capacity", &c.Capacity, rb.MaxCapacity)

	config.CheckNotNegative(ac, "MaxSpins", &c.MaxSpins, DefaultRingBufferMaxSpins)

	config.CheckNotNegative(ac, "InitialBackoff", &c.InitialBackoff, DefaultRingBufferInitialBackoff)
	config.CheckNotZero(ac, "InitialBackoff", &c.InitialBackoff, DefaultRingBufferInitialBackoff)
	config.CheckNotLowerThan(ac, "MaxBackoff", "InitialBackoff", &c.MaxBackoff, c.InitialBackoff)
}

// NewRingBuffer returns a new lock-free spsc generic ring buffer.
// Invalid configuration values are logged and replaced by their defaults.
func NewRingBuffer[T any](cfg *RingBufferConfig) (*RingBuffer[T], error) {
	tel := internal.NewTelemetry("ring_buffer", cfg.Name)

	config.NewValidator(tel).Validate(cfg)

	buf, err := rb.NewRingBuffer[T](cfg.Capacity, rb.PollConfig{
		MaxSpins:       cfg.MaxSpins,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
	}, tel)

	if err != nil {
		return nil, fmt.Errorf("connector %q: %w", cfg.Name, err)
	}

	tel.LogInfo("created", "capacity", buf.Capacity())

	return buf, nil
}
