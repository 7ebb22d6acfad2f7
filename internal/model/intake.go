package model

import (
	"math"
	"strconv"
	"strings"
)

// Location is the patient's setting
type Location string

const (
	LocationRural Location = "rural"
	LocationUrban Location = "urban"
)

// IntakeRecord is the canonical field set for one assessment session.
// Numeric fields keep the operator's raw text; a typo or an out-of-range
// value is stored as entered and reported by Validate.
type IntakeRecord struct {
	Name            string   `json:"name"`
	Age             string   `json:"age"`
	Height          string   `json:"height"`
	Weight          string   `json:"weight"`
	WeeksPregnant   string   `json:"weeksPregnant"`
	SystolicBP      string   `json:"systolicBP"`
	DiastolicBP     string   `json:"diastolicBP"`
	BloodSugar      string   `json:"bloodSugar"`
	HeartRate       string   `json:"heartRate"`
	BodyTemperature string   `json:"bodyTemperature"`
	BMI             string   `json:"bmi"`
	Location        Location `json:"location"`

	PreviousComplications bool `json:"previousComplications"`
	PreExistingDiabetes   bool `json:"preExistingDiabetes"`
	GestationalDiabetes   bool `json:"gestationalDiabetes"`
	MentalHealthConcerns  bool `json:"mentalHealthConcerns"`
	ShortBirthSpacing     bool `json:"shortBirthSpacing"`
}

// NewIntakeRecord returns the empty record a session starts with
func NewIntakeRecord() IntakeRecord {
	return IntakeRecord{Location: LocationRural}
}

// Missing lists the required fields that are still empty, in form order
func (r IntakeRecord) Missing() []string {
	missing := []string{}
	for _, spec := range catalog {
		if !spec.Required {
			continue
		}
		if strings.TrimSpace(spec.Value(&r)) == "" {
			missing = append(missing, spec.Name)
		}
	}
	return missing
}

// Complete reports whether every required field is present
func (r IntakeRecord) Complete() bool {
	return len(r.Missing()) == 0
}

// Validate returns advisory issues for the operator. It never blocks a write.
func (r IntakeRecord) Validate() []FieldIssue {
	issues := []FieldIssue{}
	for _, spec := range catalog {
		if issue, ok := spec.check(&r); ok {
			issues = append(issues, issue)
		}
	}
	return issues
}

// ParseNumber parses a raw numeric field. ok is false for empty input and
// for anything that is not a finite number.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// numberOrNaN converts a raw field the way a browser form's Number() does:
// empty text is 0, anything unparseable is NaN.
func numberOrNaN(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func flagValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
