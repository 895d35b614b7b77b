package config

import (
	"github.com/FerroO2000/rbam/internal"
)

// Validator validates configurations and logs the anomalies as warnings.
type Validator struct {
	tel *internal.Telemetry
}

// NewValidator returns a new validator.
func NewValidator(tel *internal.Telemetry) *Validator {
	return &Validator{
		tel: tel,
	}
}

// Validate validates the given configuration and returns
// the number of fields that have been replaced by a fallback.
func (v *Validator) Validate(cfg Config) int {
	ac := NewAnomalyCollector()
	cfg.Validate(ac)

	for an := range ac.All() {
		v.tel.LogWarn("config anomaly",
			"field", an.Field, "reason", an.Reason,
			"actual", an.Actual, "fallback", an.Fallback)
	}

	return ac.Len()
}
