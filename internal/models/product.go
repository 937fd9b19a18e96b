package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"product-service/utils"
)

// ============================================================================
// CANONICAL PRODUCT SCHEMA
// ============================================================================
//
// Both authoring paths (Manual Builder and the InsureSmart wizard) converge
// to this shape before persistence. Triggers, terms, region and the data
// type list are stored as JSONB columns.

type Product struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	Name              string        `json:"name" db:"name"`
	Crop              *string       `json:"crop,omitempty" db:"crop"`
	DataType          DataTypeList  `json:"data_type" db:"data_type"`
	Region            Region        `json:"region" db:"region"`
	Status            ProductStatus `json:"status" db:"status"`
	Triggers          TriggerConfig `json:"triggers" db:"triggers"`
	CoverageStartDate string        `json:"coverage_start_date" db:"coverage_start_date"`
	CoverageEndDate   string        `json:"coverage_end_date" db:"coverage_end_date"`
	Terms             Terms         `json:"terms" db:"terms"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

type Region struct {
	Province string `json:"province"`
	District string `json:"district"`
	Commune  string `json:"commune"`
}

// CoveragePeriod is a user-defined calendar window during which one or two
// perils are monitored. Dates stay in ISO form here; day offsets live in
// the optimization config only.
type CoveragePeriod struct {
	ID        string    `json:"id"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	PerilType PerilType `json:"perilType"`
}

// TriggerConfig is the persisted `triggers` blob: the coverage period list
// plus the optimization configuration the product was finalized with.
type TriggerConfig struct {
	CoveragePeriods    []CoveragePeriod    `json:"coveragePeriods"`
	OptimizationConfig *OptimizationConfig `json:"optimizationConfig"`
	SumInsured         float64             `json:"sumInsured"`
	PremiumCap         float64             `json:"premiumCap"`

	// Manual Builder compatibility fields
	CoverageType      string `json:"coverageType,omitempty"`
	WeatherDataPeriod string `json:"weatherDataPeriod,omitempty"`
}

// Terms is the persisted `terms` blob: human-readable derived metrics for
// enrollment and premium display. It is a superset of what the two
// authoring paths produce; unset fields are omitted.
type Terms struct {
	PremiumRate     float64   `json:"premiumRate"`
	PremiumCost     float64   `json:"premiumCost,omitempty"`
	RiskScore       RiskLevel `json:"riskScore,omitempty"`
	AverageRiskRate float64   `json:"averageRiskRate,omitempty"`
	MaxPayout       float64   `json:"maxPayout,omitempty"`

	// Manual Builder audit fields, folded in verbatim from the premium
	// calculation response.
	PhaseAnalysis   utils.JSONMap `json:"phaseAnalysis,omitempty"`
	RiskMetrics     utils.JSONMap `json:"riskMetrics,omitempty"`
	YearlyAnalysis  []any         `json:"yearlyAnalysis,omitempty"`
	GrowingDuration string        `json:"growingDuration,omitempty"`
	PlantingDate    string        `json:"plantingDate,omitempty"`

	// Wizard fields.
	CropDuration               string              `json:"cropDuration,omitempty"`
	Notes                      string              `json:"notes,omitempty"`
	SelectedOptimizationResult *OptimizationResult `json:"selectedOptimizationResult,omitempty"`
}

type DataTypeList []DataType

// ============================================================================
// JSONB COLUMN SUPPORT
// ============================================================================

func jsonbValue(v any) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonbScan(dest any, value any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("jsonb scan: expected []byte but got %T", value)
	}
	return json.Unmarshal(b, dest)
}

func (r Region) Value() (driver.Value, error) { return jsonbValue(r) }
func (r *Region) Scan(value any) error        { return jsonbScan(r, value) }

func (t TriggerConfig) Value() (driver.Value, error) { return jsonbValue(t) }
func (t *TriggerConfig) Scan(value any) error        { return jsonbScan(t, value) }

func (t Terms) Value() (driver.Value, error) { return jsonbValue(t) }
func (t *Terms) Scan(value any) error        { return jsonbScan(t, value) }

func (d DataTypeList) Value() (driver.Value, error) { return jsonbValue(d) }
func (d *DataTypeList) Scan(value any) error        { return jsonbScan(d, value) }

