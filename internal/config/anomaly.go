package config

import (
	"iter"
	"slices"
)

// Anomaly is a configuration field that has been replaced by a fallback value.
type Anomaly struct {
	Field    string
	Reason   string
	Actual   any
	Fallback any
}

// AnomalyCollector collects the anomalies found while validating a configuration.
type AnomalyCollector struct {
	anomalies []*Anomaly
}

// NewAnomalyCollector returns an empty anomaly collector.
func NewAnomalyCollector() *AnomalyCollector {
	return &AnomalyCollector{
		anomalies: []*Anomaly{},
	}
}

func (ac *AnomalyCollector) add(field, reason string, actual, fallback any) {
	ac.anomalies = append(ac.anomalies, &Anomaly{
		Field:    field,
		Reason:   reason,
		Actual:   actual,
		Fallback: fallback,
	})
}

// Len returns the number of collected anomalies.
func (ac *AnomalyCollector) Len() int {
	return len(ac.anomalies)
}

// All iterates over the collected anomalies.
func (ac *AnomalyCollector) All() iter.Seq[*Anomaly] {
	return slices.Values(ac.anomalies)
}
