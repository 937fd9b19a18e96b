package models

// ============================================================================
// OPTIMIZATION CONFIGURATION & RESULTS
// ============================================================================
//
// These shapes follow the optimizer's wire format exactly: period boundaries
// are day offsets relative to the product's earliest coverage date, and
// peril tags use the index codes (LRI/ERI/LTI/HTI) rather than the
// canonical peril vocabulary.

// Peril is a single trigger condition inside an optimization period.
// LowIndex-flavored perils (LRI/LTI) pay when the observed value is at or
// below the trigger; HighIndex-flavored ones (ERI/HTI) at or above.
type Peril struct {
	PerilType  string  `json:"peril_type"`
	Trigger    float64 `json:"trigger"`
	Duration   int     `json:"duration"`
	UnitPayout float64 `json:"unit_payout"`
	MaxPayout  float64 `json:"max_payout"`

	AllocatedSI float64 `json:"allocated_si,omitempty"`

	// Manual Builder compatibility fields
	Exit            float64 `json:"exit,omitempty"`
	DailyCap        float64 `json:"dailyCap,omitempty"`
	ConsecutiveDays int     `json:"consecutiveDays,omitempty"`
}

type ConfigPeriod struct {
	PeriodName string  `json:"period_name,omitempty"`
	StartDay   int     `json:"start_day"`
	EndDay     int     `json:"end_day"`
	Perils     []Peril `json:"perils"`
}

// OptimizationConfig is the exact shape the external optimizer consumes
// and returns: an ordered sequence of day-offset periods, each with one
// or two perils.
type OptimizationConfig struct {
	ID          string         `json:"id"`
	PremiumRate float64        `json:"premiumRate"`
	PremiumCost float64        `json:"premiumCost"`
	Periods     []ConfigPeriod `json:"periods"`
}

// OptimizationResult is one candidate configuration from a completed
// optimization job, captured verbatim. When the job completes but finds no
// viable configuration the optimizer returns a single element whose Error
// field is set in place of real candidates.
type OptimizationResult struct {
	ID              string  `json:"id,omitempty"`
	OptionType      string  `json:"optionType,omitempty"`
	Label           string  `json:"label,omitempty"`
	Description     string  `json:"description,omitempty"`
	LossRatio       float64 `json:"lossRatio"`
	ExpectedPayout  float64 `json:"expectedPayout"`
	PremiumRate     float64 `json:"premiumRate"`
	PremiumCost     float64 `json:"premiumCost"`
	MaxPayout       float64 `json:"max_payout,omitempty"`
	RiskLevel       string  `json:"riskLevel,omitempty"`
	Score           float64 `json:"score,omitempty"`
	PremiumIncrease string  `json:"premiumIncrease,omitempty"`

	Periods []ConfigPeriod `json:"periods,omitempty"`

	PeriodBreakdown      []map[string]any `json:"period_breakdown,omitempty"`
	YearlyResults        []map[string]any `json:"yearly_results,omitempty"`
	PayoutYears          *int             `json:"payout_years,omitempty"`
	CoverageScore        float64          `json:"coverage_score,omitempty"`
	PayoutStabilityScore float64          `json:"payout_stability_score,omitempty"`
	CoveragePenalty      float64          `json:"coverage_penalty,omitempty"`
	PeriodsWithNoPayouts int              `json:"periods_with_no_payouts,omitempty"`

	Error string `json:"error,omitempty"`
}

// Config extracts the portion of a result that gets embedded into a
// product's trigger configuration at save time.
func (r *OptimizationResult) Config() *OptimizationConfig {
	if r == nil {
		return nil
	}
	return &OptimizationConfig{
		ID:          r.ID,
		PremiumRate: r.PremiumRate,
		PremiumCost: r.PremiumCost,
		Periods:     r.Periods,
	}
}

// ExceedsPremiumCap reports whether a candidate's premium cost overruns
// the stated cap. Such candidates stay selectable; the overrun is a
// warning, not a rejection.
func (r *OptimizationResult) ExceedsPremiumCap(premiumCap float64) bool {
	return premiumCap > 0 && r.PremiumCost > premiumCap
}
