package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptimizationResultConfig(t *testing.T) {
	result := &OptimizationResult{
		ID:          "2",
		PremiumRate: 0.085,
		PremiumCost: 21.25,
		RiskLevel:   "MEDIUM RISK",
		Score:       0.91,
		Periods: []ConfigPeriod{
			{StartDay: 0, EndDay: 29, Perils: []Peril{{PerilType: "LRI", Trigger: 50}}},
		},
	}

	config := result.Config()

	assert.Equal(t, "2", config.ID)
	assert.Equal(t, 0.085, config.PremiumRate)
	assert.Equal(t, 21.25, config.PremiumCost)
	assert.Equal(t, result.Periods, config.Periods)
}

func TestOptimizationResultConfig_NilReceiver(t *testing.T) {
	var result *OptimizationResult

	assert.Nil(t, result.Config(), "nil result should produce a nil config, not panic")
}

func TestExceedsPremiumCap(t *testing.T) {
	result := &OptimizationResult{PremiumCost: 30}

	assert.True(t, result.ExceedsPremiumCap(25))
	assert.False(t, result.ExceedsPremiumCap(30), "a cost equal to the cap does not exceed it")
	assert.False(t, result.ExceedsPremiumCap(0), "an unset cap never triggers the warning")
}
