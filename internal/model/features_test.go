package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeatureVectorOrder(t *testing.T) {
	r := NewIntakeRecord()
	r.Age = "1"
	r.SystolicBP = "2"
	r.DiastolicBP = "3"
	r.BloodSugar = "4"
	r.BodyTemperature = "5"
	r.BMI = "6"
	r.PreviousComplications = true
	r.PreExistingDiabetes = false
	r.GestationalDiabetes = true
	r.MentalHealthConcerns = false
	r.HeartRate = "11"

	got := NewFeatureVector(r)
	want := FeatureVector{1, 2, 3, 4, 5, 6, 1, 0, 1, 0, 11}
	assert.Equal(t, want, got)
}

func TestNewFeatureVectorIgnoresNonFeatureFields(t *testing.T) {
	a := completeRecord()
	b := completeRecord()
	b.Name = "Someone else"
	b.Height = "1.8"
	b.Weight = "70"
	b.WeeksPregnant = "30"
	b.Location = LocationUrban
	assert.Equal(t, NewFeatureVector(a), NewFeatureVector(b))
}

func TestNewFeatureVectorEmptyAndInvalid(t *testing.T) {
	r := NewIntakeRecord()
	r.Age = "abc"

	v := NewFeatureVector(r)
	assert.True(t, math.IsNaN(v[0]))
	assert.Equal(t, 0.0, v[1])
	assert.Equal(t, 0.0, v[10])
}

func TestFeatureVectorMarshalJSON(t *testing.T) {
	v := FeatureVector{25, 130, 80, 15, 98, 23.1, 1, 0, 0, 1, math.NaN()}
	data, err := json.Marshal(PredictionRequest{Features: v})
	require.NoError(t, err)
	assert.JSONEq(t, `{"features":[25,130,80,15,98,23.1,1,0,0,1,null]}`, string(data))
}

func TestClassifierResponseRoundTrip(t *testing.T) {
	var wrapper struct {
		Prediction ClassifierResponse `json:"predictionResult"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"predictionResult":{"prediction":"High","confidence":0.83}}`), &wrapper))
	assert.JSONEq(t, `{"prediction":"High","confidence":0.83}`, string(wrapper.Prediction))

	data, err := json.Marshal(ClassifierResponse(nil))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
