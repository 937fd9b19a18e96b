package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"product-service/internal/models"
	"product-service/utils"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func createDroughtPhase(startDate, endDate string) models.PhaseInput {
	return models.PhaseInput{
		Type:            "Drought",
		Trigger:         "50",
		Exit:            "20",
		DailyCap:        "10",
		UnitPayout:      "2",
		MaxPayout:       "100",
		ConsecutiveDays: "5",
		PhaseStartDate:  startDate,
		PhaseEndDate:    endDate,
	}
}

func createManualForm(phases ...models.PhaseInput) models.ManualBuilderForm {
	return models.ManualBuilderForm{
		ProductName:       "Rice Drought Cover",
		CropType:          "rice",
		Province:          "Kampong Thom",
		District:          "Stoung",
		Commune:           "Kampong Chen",
		SumInsured:        "250",
		PremiumCap:        "25",
		PlantingDate:      "2024-06-01",
		GrowingDuration:   "120",
		CoverageType:      "Drought",
		WeatherDataPeriod: "20",
		Indexes:           phases,
	}
}

func createPremiumResponse() models.PremiumResponse {
	premium := models.PremiumResponse{
		Status: "success",
		PhaseAnalysis: utils.JSONMap{
			"phase_1": map[string]any{"avg_payout": 12.5},
		},
		RiskMetrics: utils.JSONMap{
			"loss_ratio": 0.42,
		},
		YearlyAnalysis: []any{
			map[string]any{"year": 2003, "payout": 0.0},
		},
	}
	premium.Premium.Rate = 8.5
	premium.Premium.ETotal = 21.25
	premium.Premium.MaxPayout = 250
	return premium
}

// ============================================================================
// SINGLE PHASE MAPPING
// ============================================================================

func TestFromManualBuilder_SinglePhase(t *testing.T) {
	form := createManualForm(createDroughtPhase("2024-06-01", "2024-06-30"))
	product := FromManualBuilder(form, createPremiumResponse())

	assert.Equal(t, "Rice Drought Cover", product.Name)
	assert.NotNil(t, product.Crop)
	assert.Equal(t, "rice", *product.Crop)
	assert.Equal(t, models.ProductLive, product.Status, "manual builder products finalize as live")
	assert.Equal(t, models.DataTypeList{models.DataTypePrecipitation}, product.DataType)
	assert.Equal(t, "Kampong Thom", product.Region.Province)
	assert.Equal(t, "Kampong Chen", product.Region.Commune)

	assert.Equal(t, "2024-06-01", product.CoverageStartDate)
	assert.Equal(t, "2024-06-30", product.CoverageEndDate)

	assert.Len(t, product.Triggers.CoveragePeriods, 1)
	period := product.Triggers.CoveragePeriods[0]
	assert.Equal(t, "1", period.ID)
	assert.Equal(t, "2024-06-01", period.StartDate)
	assert.Equal(t, "2024-06-30", period.EndDate)
	assert.Equal(t, models.PerilLowIndex, period.PerilType, "Drought maps to LowIndex")

	config := product.Triggers.OptimizationConfig
	assert.NotNil(t, config)
	assert.Equal(t, "manual-builder", config.ID)
	assert.InDelta(t, 0.085, config.PremiumRate, 1e-9, "config premium rate is the decimal form")
	assert.Equal(t, 250.0, config.PremiumCost)

	assert.Len(t, config.Periods, 1)
	configPeriod := config.Periods[0]
	assert.Equal(t, 0, configPeriod.StartDay, "phase starting on planting date is day 0")
	assert.Equal(t, 29, configPeriod.EndDay, "June 1 to June 30 is day 29")

	assert.Len(t, configPeriod.Perils, 1)
	peril := configPeriod.Perils[0]
	assert.Equal(t, "LRI", peril.PerilType, "LowIndex on a precipitation product is LRI")
	assert.Equal(t, 50.0, peril.Trigger)
	assert.Equal(t, 5, peril.Duration)
	assert.Equal(t, 2.0, peril.UnitPayout)
	assert.Equal(t, 100.0, peril.MaxPayout)
	assert.Equal(t, 20.0, peril.Exit)
	assert.Equal(t, 10.0, peril.DailyCap)
	assert.Equal(t, 5, peril.ConsecutiveDays)
}

func TestFromManualBuilder_TermsCarryPremiumAudit(t *testing.T) {
	form := createManualForm(createDroughtPhase("2024-06-01", "2024-06-30"))
	premium := createPremiumResponse()
	product := FromManualBuilder(form, premium)

	assert.Equal(t, 8.5, product.Terms.PremiumRate, "terms keep the percentage rate")
	assert.Equal(t, 21.25, product.Terms.AverageRiskRate)
	assert.Equal(t, 250.0, product.Terms.MaxPayout)
	assert.Equal(t, premium.PhaseAnalysis, product.Terms.PhaseAnalysis, "phase analysis is carried verbatim")
	assert.Equal(t, premium.RiskMetrics, product.Terms.RiskMetrics)
	assert.Equal(t, premium.YearlyAnalysis, product.Terms.YearlyAnalysis)
	assert.Equal(t, "120", product.Terms.GrowingDuration)
	assert.Equal(t, "2024-06-01", product.Terms.PlantingDate)
}

// ============================================================================
// PHASE ORDERING & COVERAGE WINDOW
// ============================================================================

func TestFromManualBuilder_UnorderedPhases(t *testing.T) {
	late := createDroughtPhase("2024-08-01", "2024-08-31")
	early := createDroughtPhase("2024-06-01", "2024-06-30")
	early.Type = "Excess Rainfall"

	form := createManualForm(late, early)
	product := FromManualBuilder(form, createPremiumResponse())

	assert.Equal(t, "2024-06-01", product.CoverageStartDate, "coverage window starts at the earliest phase")
	assert.Equal(t, "2024-08-31", product.CoverageEndDate, "coverage window ends at the latest phase")

	assert.Len(t, product.Triggers.CoveragePeriods, 2)
	assert.Equal(t, "2024-06-01", product.Triggers.CoveragePeriods[0].StartDate, "periods are sorted by start date")
	assert.Equal(t, models.PerilHighIndex, product.Triggers.CoveragePeriods[0].PerilType, "Excess Rainfall maps to HighIndex")
	assert.Equal(t, "2024-08-01", product.Triggers.CoveragePeriods[1].StartDate)

	periods := product.Triggers.OptimizationConfig.Periods
	assert.Equal(t, 0, periods[0].StartDay)
	assert.Equal(t, 61, periods[1].StartDay, "August 1 is 61 days after June 1 planting")
	assert.Equal(t, "ERI", periods[0].Perils[0].PerilType)
}

func TestFromManualBuilder_CoverageEndFromOverlappingPhases(t *testing.T) {
	// A long phase can span a later-starting short one, so the window end
	// must come from the max phase end rather than the last-starting phase.
	long := createDroughtPhase("2024-06-01", "2024-09-30")
	short := createDroughtPhase("2024-07-01", "2024-07-31")

	form := createManualForm(long, short)
	product := FromManualBuilder(form, createPremiumResponse())

	assert.Equal(t, "2024-06-01", product.CoverageStartDate)
	assert.Equal(t, "2024-09-30", product.CoverageEndDate, "window ends at the max end across phases")
}

func TestFromManualBuilder_NoPhases(t *testing.T) {
	form := createManualForm()
	product := FromManualBuilder(form, createPremiumResponse())

	assert.Equal(t, "2024-06-01", product.CoverageStartDate, "empty phase list falls back to planting date")
	assert.Equal(t, "2024-06-01", product.CoverageEndDate)
	assert.Empty(t, product.Triggers.CoveragePeriods)
	assert.Empty(t, product.Triggers.OptimizationConfig.Periods)
}

// ============================================================================
// NUMERIC COERCION & FALLBACKS
// ============================================================================

func TestFromManualBuilder_MalformedNumbersCoerceToZero(t *testing.T) {
	phase := createDroughtPhase("2024-06-01", "2024-06-30")
	phase.Trigger = "abc"
	phase.UnitPayout = ""
	phase.ConsecutiveDays = "oops"

	form := createManualForm(phase)
	product := FromManualBuilder(form, createPremiumResponse())

	peril := product.Triggers.OptimizationConfig.Periods[0].Perils[0]
	assert.Equal(t, 0.0, peril.Trigger, "malformed trigger coerces to zero")
	assert.Equal(t, 0.0, peril.UnitPayout, "missing unit payout coerces to zero")
	assert.Equal(t, 1, peril.ConsecutiveDays, "malformed consecutive days defaults to one")
	assert.Equal(t, 1, peril.Duration)
}

func TestFromManualBuilder_SumInsuredFallsBackToMaxPayout(t *testing.T) {
	form := createManualForm(createDroughtPhase("2024-06-01", "2024-06-30"))
	form.SumInsured = ""
	form.PremiumCap = "not-a-number"

	product := FromManualBuilder(form, createPremiumResponse())

	assert.Equal(t, 250.0, product.Triggers.SumInsured, "missing sum insured falls back to premium max payout")
	assert.Equal(t, 250.0, product.Triggers.PremiumCap, "unparseable premium cap falls back to premium max payout")
}

func TestFromManualBuilder_TimestampDatesAreTruncated(t *testing.T) {
	phase := createDroughtPhase("2024-06-01T00:00:00.000Z", "2024-06-30T00:00:00.000Z")
	form := createManualForm(phase)
	form.PlantingDate = "2024-06-01T00:00:00.000Z"

	product := FromManualBuilder(form, createPremiumResponse())

	assert.Equal(t, "2024-06-01", product.CoverageStartDate, "ISO timestamps are reduced to date-only form")
	assert.Equal(t, "2024-06-30", product.Triggers.CoveragePeriods[0].EndDate)
	assert.Equal(t, "2024-06-01", product.Terms.PlantingDate)
	assert.Equal(t, 29, product.Triggers.OptimizationConfig.Periods[0].EndDay)
}
