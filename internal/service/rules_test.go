package service

import (
	"context"
	"testing"

	"maternalrisk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTranscript(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]any
	}{
		{
			name: "vitals",
			text: "Age 24, BP 130 over 85, blood sugar 110, temperature 37.2, pulse 88",
			want: map[string]any{
				model.FieldAge:             "24",
				model.FieldSystolicBP:      "130",
				model.FieldDiastolicBP:     "85",
				model.FieldBloodSugar:      "110",
				model.FieldBodyTemperature: "37.2",
				model.FieldHeartRate:       "88",
			},
		},
		{
			name: "slash blood pressure and bmi",
			text: "blood pressure 120/80 bmi 23.5",
			want: map[string]any{
				model.FieldSystolicBP:  "120",
				model.FieldDiastolicBP: "80",
				model.FieldBMI:         "23.5",
			},
		},
		{
			name: "positive history",
			text: "she has gestational diabetes and previous birth complications, some anxiety",
			want: map[string]any{
				model.FieldGestationalDiabetes:   1,
				model.FieldPreviousComplications: 1,
				model.FieldMentalHealthConcerns:  1,
			},
		},
		{
			name: "negated history",
			text: "no pre-existing diabetes, never had depression",
			want: map[string]any{
				model.FieldPreExistingDiabetes:  0,
				model.FieldMentalHealthConcerns: 0,
			},
		},
		{
			name: "nothing recognisable",
			text: "the weather is nice today",
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTranscript(tt.text))
		})
	}
}

func TestRuleFieldParserMergesIntoStore(t *testing.T) {
	fields, err := NewRuleFieldParser().ParseFields(context.Background(), "heart rate 92 and temp 38")
	require.NoError(t, err)

	store := NewFieldStore(nil)
	store.MergeFields(fields)
	record, _ := store.Snapshot()

	assert.Equal(t, "92", record.HeartRate)
	assert.Equal(t, "38", record.BodyTemperature)
}
