package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testConfig struct {
	Size     uint32
	Retries  int
	MinDelay time.Duration
	MaxDelay time.Duration
}

func (c *testConfig) Validate(ac *AnomalyCollector) {
	CheckNotZero(ac, "Size", &c.Size, 16)
	CheckNotGreater(ac, "Size", &c.Size, 1024)
	CheckNotNegative(ac, "Retries", &c.Retries, 3)
	CheckNotLowerThan(ac, "MaxDelay", "MinDelay", &c.MaxDelay, c.MinDelay)
}

func Test_checks(t *testing.T) {
	suite := []struct {
		name      string
		cfg       testConfig
		expected  testConfig
		anomalies int
	}{
		{
			name:     "valid",
			cfg:      testConfig{Size: 8, Retries: 1, MinDelay: time.Second, MaxDelay: 2 * time.Second},
			expected: testConfig{Size: 8, Retries: 1, MinDelay: time.Second, MaxDelay: 2 * time.Second},
		},
		{
			name:      "zero size",
			cfg:       testConfig{Size: 0, Retries: 1},
			expected:  testConfig{Size: 16, Retries: 1},
			anomalies: 1,
		},
		{
			name:      "size too big",
			cfg:       testConfig{Size: 4096},
			expected:  testConfig{Size: 1024},
			anomalies: 1,
		},
		{
			name:      "all wrong",
			cfg:       testConfig{Size: 0, Retries: -1, MinDelay: time.Second},
			expected:  testConfig{Size: 16, Retries: 3, MinDelay: time.Second, MaxDelay: time.Second},
			anomalies: 3,
		},
	}

	for _, tCase := range suite {
		t.Run(tCase.name, func(t *testing.T) {
			assert := assert.New(t)

			ac := NewAnomalyCollector()
			tCase.cfg.Validate(ac)

			assert.Equal(tCase.expected, tCase.cfg)
			assert.Equal(tCase.anomalies, ac.Len())
		})
	}
}

func Test_AnomalyCollector(t *testing.T) {
	assert := assert.New(t)

	ac := NewAnomalyCollector()

	size := uint32(0)
	CheckNotZero(ac, "Size", &size, 16)

	anomalies := []*Anomaly{}
	for an := range ac.All() {
		anomalies = append(anomalies, an)
	}

	assert.Len(anomalies, 1)
	assert.Equal(&Anomaly{
		Field:    "Size",
		Reason:   "cannot be zero",
		Actual:   uint32(0),
		Fallback: uint32(16),
	}, anomalies[0])
}
