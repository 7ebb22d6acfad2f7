package model

import (
	"fmt"
	"strconv"
	"strings"

	"maternalrisk/internal/utils"
)

// Canonical field names
const (
	FieldName                  = "name"
	FieldAge                   = "age"
	FieldHeight                = "height"
	FieldWeight                = "weight"
	FieldWeeksPregnant         = "weeksPregnant"
	FieldLocation              = "location"
	FieldSystolicBP            = "systolicBP"
	FieldDiastolicBP           = "diastolicBP"
	FieldBloodSugar            = "bloodSugar"
	FieldHeartRate             = "heartRate"
	FieldBodyTemperature       = "bodyTemperature"
	FieldBMI                   = "bmi"
	FieldPreviousComplications = "previousComplications"
	FieldPreExistingDiabetes   = "preExistingDiabetes"
	FieldGestationalDiabetes   = "gestationalDiabetes"
	FieldMentalHealthConcerns  = "mentalHealthConcerns"
	FieldShortBirthSpacing     = "shortBirthSpacing"
)

// FieldKind describes how a raw value is interpreted
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindChoice
	KindFlag
)

func (k FieldKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindChoice:
		return "choice"
	case KindFlag:
		return "flag"
	default:
		return "text"
	}
}

// Issue codes reported by Validate
const (
	IssueRequired      = "required"
	IssueNotANumber    = "not_a_number"
	IssueOutOfRange    = "out_of_range"
	IssueInvalidChoice = "invalid_choice"
)

// FieldIssue is an advisory validation finding for one field
type FieldIssue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FieldSpec declares one intake field: its kind, range and aliases
type FieldSpec struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"-"`
	Unit     string    `json:"unit,omitempty"`
	Min      float64   `json:"min,omitempty"`
	Max      float64   `json:"max,omitempty"`
	Required bool      `json:"required"`
	Choices  []string  `json:"choices,omitempty"`
	Aliases  []string  `json:"-"`

	text func(r *IntakeRecord) *string
	flag func(r *IntakeRecord) *bool
}

// TextRef returns the record slot backing a text, number or choice field
func (s FieldSpec) TextRef(r *IntakeRecord) *string {
	if s.text == nil {
		return nil
	}
	return s.text(r)
}

// FlagRef returns the record slot backing a flag field
func (s FieldSpec) FlagRef(r *IntakeRecord) *bool {
	if s.flag == nil {
		return nil
	}
	return s.flag(r)
}

// Value renders the field's current value as text
func (s FieldSpec) Value(r *IntakeRecord) string {
	if s.Kind == KindFlag {
		return strconv.FormatBool(*s.flag(r))
	}
	return *s.text(r)
}

func (s FieldSpec) check(r *IntakeRecord) (FieldIssue, bool) {
	if s.Kind == KindFlag {
		return FieldIssue{}, false
	}

	raw := strings.TrimSpace(*s.text(r))
	if raw == "" {
		if s.Required {
			return FieldIssue{Field: s.Name, Code: IssueRequired, Message: s.Label + " is required"}, true
		}
		return FieldIssue{}, false
	}

	switch s.Kind {
	case KindNumber:
		v, ok := ParseNumber(raw)
		if !ok {
			return FieldIssue{Field: s.Name, Code: IssueNotANumber, Message: fmt.Sprintf("%s must be a number", s.Label)}, true
		}
		if s.Max > s.Min && (v < s.Min || v > s.Max) {
			return FieldIssue{
				Field:   s.Name,
				Code:    IssueOutOfRange,
				Message: fmt.Sprintf("%s should be between %g and %g %s", s.Label, s.Min, s.Max, s.Unit),
			}, true
		}
	case KindChoice:
		for _, c := range s.Choices {
			if raw == c {
				return FieldIssue{}, false
			}
		}
		return FieldIssue{
			Field:   s.Name,
			Code:    IssueInvalidChoice,
			Message: fmt.Sprintf("%s must be one of: %s", s.Label, strings.Join(s.Choices, ", ")),
		}, true
	}

	return FieldIssue{}, false
}

// catalog lists every intake field in form order. Height and weight come
// before bmi so a partial set carrying all three keeps its explicit bmi.
var catalog = []FieldSpec{
	{Name: FieldName, Label: "Patient name", Kind: KindText, Required: true,
		text: func(r *IntakeRecord) *string { return &r.Name }},
	{Name: FieldAge, Label: "Age", Kind: KindNumber, Unit: "years", Min: 15, Max: 50, Required: true,
		text: func(r *IntakeRecord) *string { return &r.Age }},
	{Name: FieldHeight, Label: "Height", Kind: KindNumber, Unit: "m", Min: 1.0, Max: 2.5, Required: true,
		text: func(r *IntakeRecord) *string { return &r.Height }},
	{Name: FieldWeight, Label: "Weight", Kind: KindNumber, Unit: "kg", Min: 30, Max: 150, Required: true,
		text: func(r *IntakeRecord) *string { return &r.Weight }},
	{Name: FieldWeeksPregnant, Label: "Weeks of pregnancy", Kind: KindNumber, Unit: "weeks", Min: 1, Max: 42, Required: true,
		Aliases: []string{"weeks", "gestationalAge"},
		text:    func(r *IntakeRecord) *string { return &r.WeeksPregnant }},
	{Name: FieldLocation, Label: "Location", Kind: KindChoice,
		Choices: []string{string(LocationRural), string(LocationUrban)},
		text:    func(r *IntakeRecord) *string { return (*string)(&r.Location) }},
	{Name: FieldSystolicBP, Label: "Systolic BP", Kind: KindNumber, Unit: "mmHg", Min: 60, Max: 200, Required: true,
		Aliases: []string{"systolic", "sbp"},
		text:    func(r *IntakeRecord) *string { return &r.SystolicBP }},
	{Name: FieldDiastolicBP, Label: "Diastolic BP", Kind: KindNumber, Unit: "mmHg", Min: 40, Max: 140, Required: true,
		Aliases: []string{"diastolic", "dbp"},
		text:    func(r *IntakeRecord) *string { return &r.DiastolicBP }},
	{Name: FieldBloodSugar, Label: "Blood sugar", Kind: KindNumber, Unit: "mg/dL", Min: 40, Max: 300, Required: true,
		Aliases: []string{"bs", "glucose"},
		text:    func(r *IntakeRecord) *string { return &r.BloodSugar }},
	{Name: FieldHeartRate, Label: "Heart rate", Kind: KindNumber, Unit: "bpm", Min: 40, Max: 200, Required: true,
		Aliases: []string{"heartrate", "pulse"},
		text:    func(r *IntakeRecord) *string { return &r.HeartRate }},
	{Name: FieldBodyTemperature, Label: "Body temperature", Kind: KindNumber, Unit: "°C", Min: 34, Max: 42, Required: true,
		Aliases: []string{"bodytemp", "temperature", "temp"},
		text:    func(r *IntakeRecord) *string { return &r.BodyTemperature }},
	{Name: FieldBMI, Label: "BMI", Kind: KindNumber, Unit: "kg/m²", Required: true,
		text: func(r *IntakeRecord) *string { return &r.BMI }},
	{Name: FieldPreviousComplications, Label: "Previous complications", Kind: KindFlag,
		flag: func(r *IntakeRecord) *bool { return &r.PreviousComplications }},
	{Name: FieldPreExistingDiabetes, Label: "Pre-existing diabetes", Kind: KindFlag,
		flag: func(r *IntakeRecord) *bool { return &r.PreExistingDiabetes }},
	{Name: FieldGestationalDiabetes, Label: "Gestational diabetes", Kind: KindFlag,
		flag: func(r *IntakeRecord) *bool { return &r.GestationalDiabetes }},
	{Name: FieldMentalHealthConcerns, Label: "Mental health concerns", Kind: KindFlag,
		flag: func(r *IntakeRecord) *bool { return &r.MentalHealthConcerns }},
	{Name: FieldShortBirthSpacing, Label: "Short birth spacing", Kind: KindFlag,
		flag: func(r *IntakeRecord) *bool { return &r.ShortBirthSpacing }},
}

// Fields returns the field catalog in form order
func Fields() []FieldSpec {
	out := make([]FieldSpec, len(catalog))
	copy(out, catalog)
	return out
}

// LookupField resolves a canonical name or alias ("Bodytemp", "heartrate")
// to its field spec.
func LookupField(name string) (FieldSpec, bool) {
	for _, spec := range catalog {
		if utils.MatchFieldAlias(name, spec.Name, spec.Aliases) {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// FieldIndex returns the form-order position of a canonical field name, or -1
func FieldIndex(name string) int {
	for i, spec := range catalog {
		if spec.Name == name {
			return i
		}
	}
	return -1
}
