package mapper

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"product-service/internal/models"
	"product-service/utils"
)

const isoDateLayout = "2006-01-02"

// dateOnly strips any time component from an ISO timestamp.
func dateOnly(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

func parseDate(s string, fallback time.Time) time.Time {
	t, err := time.Parse(isoDateLayout, dateOnly(s))
	if err != nil {
		return fallback
	}
	return t
}

// FromManualBuilder converts phase-based Manual Builder form state plus a
// synchronous premium-calculation response into the canonical product.
//
// The mapping is total: missing numeric fields coerce to zero (duration to
// one) instead of failing, and unparseable dates fall back to the planting
// date. Rejecting incomplete input is the validator's responsibility.
// Products from this path are always finalized immediately as live.
func FromManualBuilder(form models.ManualBuilderForm, premium models.PremiumResponse) models.Product {
	plantingDate := dateOnly(form.PlantingDate)
	planting := parseDate(form.PlantingDate, time.Time{})

	phases := make([]models.PhaseInput, len(form.Indexes))
	copy(phases, form.Indexes)
	sort.SliceStable(phases, func(i, j int) bool {
		return parseDate(phases[i].PhaseStartDate, planting).Before(parseDate(phases[j].PhaseStartDate, planting))
	})

	// The coverage window is min start / max end across all phases. The
	// latest-starting phase is not necessarily the latest-ending one, so
	// the end is scanned independently of the sort order.
	coverageStart := plantingDate
	coverageEnd := plantingDate
	if len(phases) > 0 {
		coverageStart = dateOnly(phases[0].PhaseStartDate)
		coverageEnd = dateOnly(phases[0].PhaseEndDate)
		for _, phase := range phases[1:] {
			if parseDate(phase.PhaseEndDate, planting).After(parseDate(coverageEnd, planting)) {
				coverageEnd = dateOnly(phase.PhaseEndDate)
			}
		}
	}

	coveragePeriods := make([]models.CoveragePeriod, len(phases))
	configPeriods := make([]models.ConfigPeriod, len(phases))
	for i, phase := range phases {
		perilType := NormalizeManualPeril(phase.Type)
		coveragePeriods[i] = models.CoveragePeriod{
			ID:        strconv.Itoa(i + 1),
			StartDate: dateOnly(phase.PhaseStartDate),
			EndDate:   dateOnly(phase.PhaseEndDate),
			PerilType: perilType,
		}

		configPeriods[i] = models.ConfigPeriod{
			StartDay: StartDayOffset(planting, parseDate(phase.PhaseStartDate, planting)),
			EndDay:   EndDayOffset(planting, parseDate(phase.PhaseEndDate, planting)),
			Perils: []models.Peril{{
				PerilType:       perilType.WireCode(models.DataTypePrecipitation),
				Trigger:         utils.ParseFloatOrZero(phase.Trigger),
				Duration:        utils.ParseIntOrDefault(phase.ConsecutiveDays, 1),
				UnitPayout:      utils.ParseFloatOrZero(phase.UnitPayout),
				MaxPayout:       utils.ParseFloatOrZero(phase.MaxPayout),
				Exit:            utils.ParseFloatOrZero(phase.Exit),
				DailyCap:        utils.ParseFloatOrZero(phase.DailyCap),
				ConsecutiveDays: utils.ParseIntOrDefault(phase.ConsecutiveDays, 1),
			}},
		}
	}

	sumInsured := utils.ParseFloatOrZero(form.SumInsured)
	if sumInsured == 0 {
		sumInsured = premium.Premium.MaxPayout
	}
	premiumCap := utils.ParseFloatOrZero(form.PremiumCap)
	if premiumCap == 0 {
		premiumCap = premium.Premium.MaxPayout
	}

	crop := form.CropType
	return models.Product{
		Name:     form.ProductName,
		Crop:     &crop,
		DataType: models.DataTypeList{models.DataTypePrecipitation},
		Region: models.Region{
			Province: form.Province,
			District: form.District,
			Commune:  form.Commune,
		},
		Status: models.ProductLive,
		Triggers: models.TriggerConfig{
			CoveragePeriods: coveragePeriods,
			OptimizationConfig: &models.OptimizationConfig{
				ID:          "manual-builder",
				PremiumRate: premium.Premium.Rate / 100, // percentage to decimal
				PremiumCost: premium.Premium.MaxPayout,
				Periods:     configPeriods,
			},
			SumInsured:        sumInsured,
			PremiumCap:        premiumCap,
			CoverageType:      form.CoverageType,
			WeatherDataPeriod: form.WeatherDataPeriod,
		},
		CoverageStartDate: coverageStart,
		CoverageEndDate:   coverageEnd,
		Terms: models.Terms{
			PremiumRate:     premium.Premium.Rate,
			AverageRiskRate: premium.Premium.ETotal,
			MaxPayout:       premium.Premium.MaxPayout,
			PhaseAnalysis:   premium.PhaseAnalysis,
			RiskMetrics:     premium.RiskMetrics,
			YearlyAnalysis:  premium.YearlyAnalysis,
			GrowingDuration: form.GrowingDuration,
			PlantingDate:    plantingDate,
		},
	}
}
