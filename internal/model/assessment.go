package model

// RiskLevel is the coarse risk tier shown to the operator
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Label returns the display label for the tier
func (l RiskLevel) Label() string {
	switch l {
	case RiskHigh:
		return "High Risk"
	case RiskMedium:
		return "Medium Risk"
	default:
		return "Low Risk"
	}
}

// Color returns the display colour for the tier
func (l RiskLevel) Color() string {
	switch l {
	case RiskHigh:
		return "#DC2626"
	case RiskMedium:
		return "#F59E0B"
	default:
		return "#16A34A"
	}
}

// RiskAssessment is the interpreted classifier result. A new submission
// replaces it; it is never edited.
type RiskAssessment struct {
	RiskLevel       RiskLevel `json:"riskLevel"`
	Label           string    `json:"label"`
	Color           string    `json:"color"`
	Confidence      float64   `json:"confidence"`
	Factors         []string  `json:"factors"`
	Recommendations []string  `json:"recommendations"`

	// RawLabel is the prediction as received; LabelRecognized is false when
	// it was not one of high/medium/low and the tier fell back to low.
	RawLabel        string `json:"rawLabel"`
	LabelRecognized bool   `json:"labelRecognized"`
}

// Handoff is what the intake view passes to the result view
type Handoff struct {
	Record     IntakeRecord       `json:"assessmentData"`
	Prediction ClassifierResponse `json:"predictionResult"`
}
