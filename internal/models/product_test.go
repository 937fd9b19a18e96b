package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriggerConfigJSONBRoundTrip(t *testing.T) {
	original := TriggerConfig{
		CoveragePeriods: []CoveragePeriod{
			{ID: "1", StartDate: "2024-06-01", EndDate: "2024-06-30", PerilType: PerilLowIndex},
		},
		OptimizationConfig: &OptimizationConfig{
			ID:          "manual-builder",
			PremiumRate: 0.085,
			PremiumCost: 250,
			Periods: []ConfigPeriod{
				{StartDay: 0, EndDay: 29, Perils: []Peril{{PerilType: "LRI", Trigger: 50, Duration: 5, UnitPayout: 2, MaxPayout: 100}}},
			},
		},
		SumInsured: 250,
		PremiumCap: 25,
	}

	value, err := original.Value()
	assert.NoError(t, err)

	var restored TriggerConfig
	assert.NoError(t, restored.Scan(value))
	assert.Equal(t, original, restored, "the triggers blob must survive a database round trip")
}

func TestRegionScan_RejectsNonBytes(t *testing.T) {
	var region Region

	assert.Error(t, region.Scan(42), "non-byte column values are a driver bug, not data")
	assert.NoError(t, region.Scan(nil), "NULL columns scan to the zero value")
}
