package models

type PerilType string

const (
	PerilLowIndex  PerilType = "LowIndex"
	PerilHighIndex PerilType = "HighIndex"
	PerilBoth      PerilType = "Both"
)

type DataType string

const (
	DataTypePrecipitation DataType = "precipitation"
	DataTypeTemperature   DataType = "temperature"
)

type ProductStatus string

const (
	ProductDraft    ProductStatus = "draft"
	ProductLive     ProductStatus = "live"
	ProductArchived ProductStatus = "archived"
)

type RiskLevel string

const (
	RiskLow     RiskLevel = "LOW RISK"
	RiskMedium  RiskLevel = "MEDIUM RISK"
	RiskHigh    RiskLevel = "HIGH RISK"
	RiskUnknown RiskLevel = "UNKNOWN"
)

func IsValidProductStatus(status ProductStatus) bool {
	switch status {
	case ProductDraft, ProductLive, ProductArchived:
		return true
	default:
		return false
	}
}

func IsValidDataType(dataType DataType) bool {
	switch dataType {
	case DataTypePrecipitation, DataTypeTemperature:
		return true
	default:
		return false
	}
}

// WireCode returns the peril code the optimizer speaks: rainfall indexes
// (LRI/ERI) for precipitation products, temperature indexes (LTI/HTI)
// otherwise. PerilBoth stays "Both"; the optimizer expands it itself.
func (p PerilType) WireCode(dataType DataType) string {
	switch p {
	case PerilLowIndex:
		if dataType == DataTypeTemperature {
			return "LTI"
		}
		return "LRI"
	case PerilHighIndex:
		if dataType == DataTypeTemperature {
			return "HTI"
		}
		return "ERI"
	case PerilBoth:
		return "Both"
	default:
		return "LRI"
	}
}

// HumanLabel returns the operator-facing label for a peril type.
func (p PerilType) HumanLabel(dataType DataType) string {
	temperature := dataType == DataTypeTemperature
	switch p {
	case PerilLowIndex:
		if temperature {
			return "Low Temperature"
		}
		return "Low Rainfall"
	case PerilHighIndex:
		if temperature {
			return "High Temperature"
		}
		return "High Rainfall"
	case PerilBoth:
		if temperature {
			return "Both (LTI + HTI)"
		}
		return "Both (LRI + ERI)"
	default:
		return string(p)
	}
}
