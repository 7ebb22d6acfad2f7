package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"maternalrisk/internal/model"
)

// ModelFactor is the contributing-factor text shown for every assessment
const ModelFactor = "Model-based risk estimation using vitals and history."

var (
	urgentRecommendations = []string{
		"URGENT: Consult a specialist or higher-level facility.",
		"Ensure close monitoring and follow-up.",
		"Prepare an emergency transport plan if required.",
	}
	routineRecommendations = []string{
		"Continue regular antenatal check-ups.",
		"Maintain healthy diet and moderate exercise.",
		"Monitor blood pressure and blood sugar regularly.",
	}
)

// ResultInterpreter maps a raw classifier response to a RiskAssessment.
// Interpret is pure: the same payload always gives the same assessment.
type ResultInterpreter struct {
	strictLabels bool
}

// NewResultInterpreter creates an interpreter. With strictLabels, a label
// other than high/medium/low is an error instead of a low-risk result.
func NewResultInterpreter(strictLabels bool) *ResultInterpreter {
	return &ResultInterpreter{strictLabels: strictLabels}
}

// Interpret reads "prediction" and "confidence score" from the payload
func (i *ResultInterpreter) Interpret(raw model.ClassifierResponse) (model.RiskAssessment, error) {
	var payload struct {
		Prediction json.RawMessage `json:"prediction"`
		Confidence json.RawMessage `json:"confidence score"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return model.RiskAssessment{}, fmt.Errorf("%w: %v", ErrMalformedPrediction, err)
	}

	label := predictionLabel(payload.Prediction)
	level, recognized := riskLevelFor(label)
	if !recognized && i.strictLabels {
		return model.RiskAssessment{}, fmt.Errorf("%w: %q", ErrUnrecognizedLabel, label)
	}

	return model.RiskAssessment{
		RiskLevel:       level,
		Label:           level.Label(),
		Color:           level.Color(),
		Confidence:      confidenceValue(payload.Confidence),
		Factors:         []string{ModelFactor},
		Recommendations: recommendationsFor(level),
		RawLabel:        label,
		LabelRecognized: recognized,
	}, nil
}

// riskLevelFor is an allow-list: exact "high" and "medium" map to their
// tiers, everything else is low.
func riskLevelFor(label string) (model.RiskLevel, bool) {
	switch strings.ToLower(label) {
	case "high":
		return model.RiskHigh, true
	case "medium":
		return model.RiskMedium, true
	case "low":
		return model.RiskLow, true
	default:
		return model.RiskLow, false
	}
}

// recommendationsFor branches on high only; medium shares the routine list with low
func recommendationsFor(level model.RiskLevel) []string {
	src := routineRecommendations
	if level == model.RiskHigh {
		src = urgentRecommendations
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func predictionLabel(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}

// confidenceValue treats absent, null or non-numeric confidence as 0 and
// clamps the rest to [0, 1].
func confidenceValue(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0
		}
		if v, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0
		}
	}
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
