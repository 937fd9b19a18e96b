package mapper

import "product-service/internal/models"

// The two authoring tools evolved independent peril vocabularies. The
// Manual Builder names coverage types after the weather event ("Drought",
// "Excess Rainfall"); the wizard uses index codes (LRI/ERI for rainfall,
// LTI/HTI for temperature, plus "Both"). Both map onto the canonical
// {LowIndex, HighIndex, Both} vocabulary here.

// NormalizeManualPeril maps a Manual Builder coverage type to the
// canonical vocabulary. Unknown labels fall back to LowIndex, matching
// the authoring tool's own default.
func NormalizeManualPeril(label string) models.PerilType {
	switch label {
	case "Drought":
		return models.PerilLowIndex
	case "Excess Rainfall":
		return models.PerilHighIndex
	default:
		return models.PerilLowIndex
	}
}

// NormalizeWizardPeril maps a wizard peril code to the canonical
// vocabulary. The wizard emits "BOTH" from its select control but "Both"
// on the optimizer wire; both spellings are accepted. Unknown codes fall
// back to LowIndex.
func NormalizeWizardPeril(code string) models.PerilType {
	switch code {
	case "LRI", "LTI":
		return models.PerilLowIndex
	case "ERI", "HTI":
		return models.PerilHighIndex
	case "Both", "BOTH":
		return models.PerilBoth
	default:
		return models.PerilLowIndex
	}
}
