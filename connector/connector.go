// Package connector contains the connectors used to move items
// from a producer goroutine to a consumer goroutine.
package connector

import "context"

// Connector is the interface for a generic connector.
type Connector[T any] interface {
	// Write writes the item, waiting for room if needed.
	Write(ctx context.Context, item T) error
	// Read reads the next item, waiting for one if needed.
	Read(ctx context.Context) (T, error)
	// Close closes (forever) the connector.
	Close()
}
