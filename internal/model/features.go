package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// FeatureCount is the length of the classifier's input vector
const FeatureCount = 11

// FeatureOrder is the classifier contract: changing it requires a new
// contract version on the prediction service.
var FeatureOrder = [FeatureCount]string{
	FieldAge,
	FieldSystolicBP,
	FieldDiastolicBP,
	FieldBloodSugar,
	FieldBodyTemperature,
	FieldBMI,
	FieldPreviousComplications,
	FieldPreExistingDiabetes,
	FieldGestationalDiabetes,
	FieldMentalHealthConcerns,
	FieldHeartRate,
}

// FeatureVector is the fixed-order numeric encoding of an intake record
type FeatureVector [FeatureCount]float64

// NewFeatureVector encodes a record. Empty numerics become 0 and
// unparseable ones NaN; completeness is not checked here.
func NewFeatureVector(r IntakeRecord) FeatureVector {
	return FeatureVector{
		numberOrNaN(r.Age),
		numberOrNaN(r.SystolicBP),
		numberOrNaN(r.DiastolicBP),
		numberOrNaN(r.BloodSugar),
		numberOrNaN(r.BodyTemperature),
		numberOrNaN(r.BMI),
		flagValue(r.PreviousComplications),
		flagValue(r.PreExistingDiabetes),
		flagValue(r.GestationalDiabetes),
		flagValue(r.MentalHealthConcerns),
		numberOrNaN(r.HeartRate),
	}
}

// MarshalJSON writes non-finite entries as null, which is what the
// prediction service receives from a browser for NaN.
func (v FeatureVector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// PredictionRequest is the body sent to the prediction endpoint
type PredictionRequest struct {
	Features FeatureVector `json:"features"`
}

// ClassifierResponse is the prediction service's payload, kept verbatim.
// Its structure belongs to the service; ResultInterpreter reads it.
type ClassifierResponse json.RawMessage

// MarshalJSON emits the payload unchanged
func (r ClassifierResponse) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON stores a copy of the payload
func (r *ClassifierResponse) UnmarshalJSON(data []byte) error {
	*r = append((*r)[0:0], data...)
	return nil
}

// PredictionError is the body of a non-2xx prediction response
type PredictionError struct {
	Detail json.RawMessage `json:"detail"`
}
