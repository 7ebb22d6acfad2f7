package service

import (
	"context"
	"errors"
	"sync"

	"maternalrisk/internal/model"
)

type fakeEngine struct {
	available bool
	startErr  error

	mu      sync.Mutex
	started []string
	stopped int
}

func (e *fakeEngine) Available() bool { return e.available }

func (e *fakeEngine) Start(lang string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.startErr != nil {
		return e.startErr
	}
	e.started = append(e.started, lang)
	return nil
}

func (e *fakeEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped++
}

// parserFunc adapts a function to FieldParser
type parserFunc func(ctx context.Context, text string) (map[string]any, error)

func (f parserFunc) ParseFields(ctx context.Context, text string) (map[string]any, error) {
	return f(ctx, text)
}

func staticParser(fields map[string]any) FieldParser {
	return parserFunc(func(context.Context, string) (map[string]any, error) {
		return fields, nil
	})
}

func failingParser() FieldParser {
	return parserFunc(func(context.Context, string) (map[string]any, error) {
		return nil, errors.New("upstream exploded")
	})
}

// classifierFunc adapts a function to Classifier
type classifierFunc func(ctx context.Context, features model.FeatureVector) (model.ClassifierResponse, error)

func (f classifierFunc) Predict(ctx context.Context, features model.FeatureVector) (model.ClassifierResponse, error) {
	return f(ctx, features)
}

func staticClassifier(body string) Classifier {
	return classifierFunc(func(context.Context, model.FeatureVector) (model.ClassifierResponse, error) {
		return model.ClassifierResponse(body), nil
	})
}

func filledRecord() model.IntakeRecord {
	r := model.NewIntakeRecord()
	r.Name = "Asha"
	r.Age = "26"
	r.Height = "1.6"
	r.Weight = "60"
	r.WeeksPregnant = "24"
	r.SystolicBP = "120"
	r.DiastolicBP = "80"
	r.BloodSugar = "90"
	r.HeartRate = "80"
	r.BodyTemperature = "36.8"
	r.BMI = "23.44"
	return r
}
