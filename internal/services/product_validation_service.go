package services

import (
	"fmt"
	"strings"
	"time"

	"product-service/internal/models"
	"product-service/utils"
)

// ProductValidationService checks a fully-mapped product against the
// structural and business invariants that gate persistence. Every rule is
// evaluated independently so a caller sees all problems at once.
type ProductValidationService struct{}

func NewProductValidationService() *ProductValidationService {
	return &ProductValidationService{}
}

// ValidateProduct returns all rule violations for a product; an empty
// list means the product is acceptable for persistence. It is pure and
// performs no I/O.
func (s *ProductValidationService) ValidateProduct(product *models.Product) []string {
	violations := []string{}

	if strings.TrimSpace(product.Name) == "" {
		violations = append(violations, "Product name is required")
	}

	if product.Region.Province == "" && product.Region.Commune == "" {
		violations = append(violations, "Region information (province/commune) is required")
	}

	if product.CoverageStartDate == "" || product.CoverageEndDate == "" {
		violations = append(violations, "Coverage dates are required")
	}

	if product.CoverageStartDate != "" && product.CoverageEndDate != "" {
		start, startErr := time.Parse("2006-01-02", product.CoverageStartDate)
		end, endErr := time.Parse("2006-01-02", product.CoverageEndDate)
		if startErr == nil && endErr == nil && !end.After(start) {
			violations = append(violations, "Coverage end date must be after start date")
		}
	}

	if isEmptyTriggers(product.Triggers) {
		violations = append(violations, "Trigger configuration is required")
	}

	if isEmptyTerms(product.Terms) {
		violations = append(violations, "Product terms are required")
	}

	if len(product.DataType) == 0 {
		violations = append(violations, "Data type is required")
	}

	return violations
}

// CoercionWarnings reports phases whose trigger value silently coerced to
// zero during mapping. Advisory only: a zero trigger is legal but usually
// means the author forgot the field.
func (s *ProductValidationService) CoercionWarnings(form models.ManualBuilderForm) []string {
	warnings := []string{}
	for i, phase := range form.Indexes {
		trimmed := strings.TrimSpace(phase.Trigger)
		if trimmed != "0" && utils.ParseFloatOrZero(phase.Trigger) == 0 {
			warnings = append(warnings, fmt.Sprintf("Phase %d has no usable trigger value; it will trigger at 0", i+1))
		}
	}
	return warnings
}

func isEmptyTriggers(t models.TriggerConfig) bool {
	return len(t.CoveragePeriods) == 0 && t.OptimizationConfig == nil
}

func isEmptyTerms(t models.Terms) bool {
	return t.PremiumRate == 0 &&
		t.RiskScore == "" &&
		t.SelectedOptimizationResult == nil &&
		t.PhaseAnalysis == nil &&
		t.RiskMetrics == nil &&
		t.YearlyAnalysis == nil &&
		t.PlantingDate == "" &&
		t.GrowingDuration == "" &&
		t.CropDuration == "" &&
		t.Notes == ""
}
