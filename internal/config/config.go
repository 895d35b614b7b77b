// Package config contains the helpers used to validate the configurations
// across the library. Invalid values are never fatal: they are replaced
// by a fallback and reported as anomalies.
package config

// Config defines the minimal interface for a configuration
// in order to be validated.
type Config interface {
	// Validate checks the configuration, fixing the invalid values.
	Validate(ac *AnomalyCollector)
}
