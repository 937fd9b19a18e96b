package models

import "product-service/utils"

// ============================================================================
// AUTHORING-TOOL INPUT SHAPES
// ============================================================================

// PhaseInput is one growth-phase row from the Manual Builder form. Numeric
// fields arrive as strings and are coerced to zero by the mapper when
// missing or malformed; the validator is the single gate for rejecting
// incomplete input.
type PhaseInput struct {
	Type            string `json:"type"`
	Trigger         string `json:"trigger"`
	Exit            string `json:"exit"`
	DailyCap        string `json:"dailyCap"`
	UnitPayout      string `json:"unitPayout"`
	MaxPayout       string `json:"maxPayout"`
	ConsecutiveDays string `json:"consecutiveDays"`
	PhaseStartDate  string `json:"phaseStartDate"`
	PhaseEndDate    string `json:"phaseEndDate"`
}

// ManualBuilderForm is the phase-based form state of the Manual Builder.
type ManualBuilderForm struct {
	ProductName       string       `json:"productName"`
	CropType          string       `json:"cropType"`
	Province          string       `json:"province"`
	District          string       `json:"district"`
	Commune           string       `json:"commune"`
	SumInsured        string       `json:"sumInsured"`
	PremiumCap        string       `json:"premiumCap"`
	PlantingDate      string       `json:"plantingDate"`
	GrowingDuration   string       `json:"growingDuration"`
	CoverageType      string       `json:"coverageType"`
	WeatherDataPeriod string       `json:"weatherDataPeriod"`
	Indexes           []PhaseInput `json:"indexes"`
}

// PremiumResponse is the synchronous premium-calculation response that
// feeds the Manual Builder path, folded into product terms verbatim for
// audit purposes.
type PremiumResponse struct {
	Status  string `json:"status"`
	Premium struct {
		Rate      float64 `json:"rate"`
		ETotal    float64 `json:"etotal"`
		MaxPayout float64 `json:"max_payout"`
	} `json:"premium"`
	PhaseAnalysis  utils.JSONMap `json:"phase_analysis"`
	RiskMetrics    utils.JSONMap `json:"risk_metrics"`
	YearlyAnalysis []any         `json:"yearly_analysis"`
}

// WizardState is the product step of the InsureSmart wizard.
type WizardState struct {
	Name         string   `json:"name"`
	Province     string   `json:"province"`
	District     string   `json:"district"`
	Commune      string   `json:"commune"`
	DataType     DataType `json:"dataType"`
	CropDuration string   `json:"cropDuration"`
	SumInsured   string   `json:"sumInsured"`
	PremiumCap   string   `json:"premiumCap"`
	Notes        string   `json:"notes"`
}

// ============================================================================
// OPTIMIZER WIRE CONTRACT
// ============================================================================

type OptimizeProductSummary struct {
	ProductName  string `json:"productName"`
	Province     string `json:"province"`
	Commune      string `json:"commune"`
	CropDuration string `json:"cropDuration"`
	SumInsured   string `json:"sumInsured"`
	PremiumCap   string `json:"premiumCap"`
	Notes        string `json:"notes"`
	DataType     string `json:"dataType"`
}

type OptimizePeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	PerilType string `json:"perilType"`
}

type OptimizeRequest struct {
	Product OptimizeProductSummary `json:"product"`
	Periods []OptimizePeriod       `json:"periods"`
}
