package service

import (
	"context"
	"regexp"
	"strings"

	"maternalrisk/internal/model"
)

const negation = `(no|not|never|don't|do not|didn't|without|none)`

var (
	reAge         = regexp.MustCompile(`age\s*(\d+)`)
	reBP          = regexp.MustCompile(`(?:bp|blood pressure)\s*(\d+)\s*(?:by|over|/)\s*(\d+)`)
	reBloodSugar  = regexp.MustCompile(`(?:blood sugar|glucose|bs)\s*(\d+)`)
	reTemperature = regexp.MustCompile(`(?:temperature|temp)\s*(\d+\.?\d*)`)
	reBMI         = regexp.MustCompile(`bmi\s*(\d+\.?\d*)`)
	reHeartRate   = regexp.MustCompile(`(?:heart rate|pulse)\s*(\d+)`)
)

// flagRule sets a history flag to 0 when the mention is negated and 1 otherwise
type flagRule struct {
	field    string
	negated  *regexp.Regexp
	positive *regexp.Regexp
}

var flagRules = []flagRule{
	{
		field:    model.FieldMentalHealthConcerns,
		negated:  regexp.MustCompile(negation + `.*(mental health|depression|anxiety)`),
		positive: regexp.MustCompile(`(mental health|depression|anxiety)`),
	},
	{
		field:    model.FieldPreExistingDiabetes,
		negated:  regexp.MustCompile(negation + `.*pre[- ]?existing diabetes`),
		positive: regexp.MustCompile(`pre[- ]?existing diabetes`),
	},
	{
		field:    model.FieldGestationalDiabetes,
		negated:  regexp.MustCompile(negation + `.*gestational diabetes`),
		positive: regexp.MustCompile(`gestational diabetes`),
	},
	{
		field:    model.FieldPreviousComplications,
		negated:  regexp.MustCompile(negation + `.*complication`),
		positive: regexp.MustCompile(`previous.*complication`),
	},
}

// RuleFieldParser extracts intake fields from a transcript with keyword
// patterns. Numbers come back as strings, history flags as 0 or 1.
type RuleFieldParser struct{}

func NewRuleFieldParser() *RuleFieldParser { return &RuleFieldParser{} }

// ParseFields never fails; an unrecognised transcript yields an empty set
func (p *RuleFieldParser) ParseFields(ctx context.Context, text string) (map[string]any, error) {
	return ParseTranscript(text), nil
}

// ParseTranscript applies the keyword patterns to text
func ParseTranscript(text string) map[string]any {
	text = strings.ToLower(text)
	data := map[string]any{}

	if m := reAge.FindStringSubmatch(text); m != nil {
		data[model.FieldAge] = m[1]
	}
	if m := reBP.FindStringSubmatch(text); m != nil {
		data[model.FieldSystolicBP] = m[1]
		data[model.FieldDiastolicBP] = m[2]
	}
	if m := reBloodSugar.FindStringSubmatch(text); m != nil {
		data[model.FieldBloodSugar] = m[1]
	}
	if m := reTemperature.FindStringSubmatch(text); m != nil {
		data[model.FieldBodyTemperature] = m[1]
	}
	if m := reBMI.FindStringSubmatch(text); m != nil {
		data[model.FieldBMI] = m[1]
	}
	if m := reHeartRate.FindStringSubmatch(text); m != nil {
		data[model.FieldHeartRate] = m[1]
	}

	for _, rule := range flagRules {
		switch {
		case rule.negated.MatchString(text):
			data[rule.field] = 0
		case rule.positive.MatchString(text):
			data[rule.field] = 1
		}
	}

	return data
}
