package mapper

import (
	"time"

	"product-service/internal/models"
	"product-service/utils"
)

// FromWizard converts InsureSmart wizard state, the user's coverage
// periods and a selected optimization result into the canonical product.
//
// Period dates are truncated to date-only form, but the periods are
// otherwise carried through as authored. The selected result already
// carries day offsets and perils computed by the optimizer, so no
// derivation happens here beyond the coverage window. This is the only
// authoring path that supports a draft status; the caller's explicit
// draft/live choice is taken as-is.
func FromWizard(state models.WizardState, periods []models.CoveragePeriod, selected *models.OptimizationResult, status models.ProductStatus) models.Product {
	normalized := make([]models.CoveragePeriod, len(periods))
	copy(normalized, periods)
	for i := range normalized {
		normalized[i].StartDate = dateOnly(normalized[i].StartDate)
		normalized[i].EndDate = dateOnly(normalized[i].EndDate)
	}

	// Coverage window is min start / max end across all periods; the two
	// bounds can come from different periods when windows overlap.
	today := time.Now().Format(isoDateLayout)
	coverageStart := today
	coverageEnd := today
	if len(normalized) > 0 {
		coverageStart = normalized[0].StartDate
		coverageEnd = normalized[0].EndDate
		for _, period := range normalized[1:] {
			if parseDate(period.StartDate, time.Time{}).Before(parseDate(coverageStart, time.Time{})) {
				coverageStart = period.StartDate
			}
			if parseDate(period.EndDate, time.Time{}).After(parseDate(coverageEnd, time.Time{})) {
				coverageEnd = period.EndDate
			}
		}
	}

	terms := models.Terms{
		CropDuration:               state.CropDuration,
		Notes:                      state.Notes,
		SelectedOptimizationResult: selected,
		RiskScore:                  models.RiskUnknown,
	}
	if selected != nil {
		terms.PremiumRate = selected.PremiumRate
		terms.PremiumCost = selected.PremiumCost
		if selected.RiskLevel != "" {
			terms.RiskScore = models.RiskLevel(selected.RiskLevel)
		}
	}

	dataType := state.DataType
	if dataType == "" {
		dataType = models.DataTypePrecipitation
	}

	crop := "" // the wizard does not capture a crop label
	return models.Product{
		Name:     state.Name,
		Crop:     &crop,
		DataType: models.DataTypeList{dataType},
		Region: models.Region{
			Province: state.Province,
			District: state.District,
			Commune:  state.Commune,
		},
		Status: status,
		Triggers: models.TriggerConfig{
			CoveragePeriods:    normalized,
			OptimizationConfig: selected.Config(),
			SumInsured:         utils.ParseFloatOrZero(state.SumInsured),
			PremiumCap:         utils.ParseFloatOrZero(state.PremiumCap),
		},
		CoverageStartDate: coverageStart,
		CoverageEndDate:   coverageEnd,
		Terms:             terms,
	}
}

// BuildOptimizeRequest assembles the submit body for the optimization
// collaborator from wizard state. Peril type "Both" is sent verbatim; the
// optimizer expands it into two perils itself.
func BuildOptimizeRequest(state models.WizardState, periods []models.CoveragePeriod) models.OptimizeRequest {
	dataType := state.DataType
	if dataType == "" {
		dataType = models.DataTypePrecipitation
	}

	wirePeriods := make([]models.OptimizePeriod, len(periods))
	for i, period := range periods {
		wirePeriods[i] = models.OptimizePeriod{
			StartDate: dateOnly(period.StartDate),
			EndDate:   dateOnly(period.EndDate),
			PerilType: period.PerilType.WireCode(dataType),
		}
	}

	return models.OptimizeRequest{
		Product: models.OptimizeProductSummary{
			ProductName:  state.Name,
			Province:     state.Province,
			Commune:      state.Commune,
			CropDuration: state.CropDuration,
			SumInsured:   state.SumInsured,
			PremiumCap:   state.PremiumCap,
			Notes:        state.Notes,
			DataType:     string(dataType),
		},
		Periods: wirePeriods,
	}
}
