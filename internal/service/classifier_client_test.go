package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maternalrisk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionClient_Predict(t *testing.T) {
	var received model.PredictionRequest
	var rawBody map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&rawBody))
		var features []float64
		assert.NoError(t, json.Unmarshal(rawBody["features"], &features))
		copy(received.Features[:], features)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction":"High","confidence score":0.83,"extra":[1,2]}`))
	}))
	defer server.Close()

	client := NewPredictionClient(server.URL+"/predict", 5*time.Second, nil)
	features := model.FeatureVector{25, 130, 80, 15, 98, 23.1, 1, 0, 0, 1, 86}

	raw, err := client.Predict(context.Background(), features)
	require.NoError(t, err)
	assert.JSONEq(t, `{"prediction":"High","confidence score":0.83,"extra":[1,2]}`, string(raw))
	assert.Equal(t, features, received.Features)
	assert.Len(t, rawBody, 1)
}

func TestPredictionClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantDetail string
		wantErr    error
	}{
		{
			name:       "string detail",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail":"Expected 11 features"}`,
			wantStatus: 422,
			wantDetail: "Expected 11 features",
		},
		{
			name:       "structured detail",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail":[{"loc":["body","features"]}]}`,
			wantStatus: 422,
			wantDetail: `[{"loc":["body","features"]}]`,
		},
		{
			name:       "no detail",
			status:     http.StatusInternalServerError,
			body:       `oops`,
			wantStatus: 500,
			wantDetail: "Internal Server Error",
		},
		{
			name:       "malformed success body",
			status:     http.StatusOK,
			body:       `{"prediction":`,
			wantStatus: 200,
			wantDetail: "malformed response body",
			wantErr:    ErrMalformedPrediction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewPredictionClient(server.URL, 5*time.Second, nil).Predict(context.Background(), model.FeatureVector{})

			var classifierErr *ClassifierError
			require.True(t, errors.As(err, &classifierErr), "got %v", err)
			assert.Equal(t, tt.wantStatus, classifierErr.StatusCode)
			assert.Equal(t, tt.wantDetail, classifierErr.Detail)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPredictionClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewPredictionClient(url, time.Second, nil).Predict(context.Background(), model.FeatureVector{})

	var classifierErr *ClassifierError
	require.True(t, errors.As(err, &classifierErr))
	assert.Zero(t, classifierErr.StatusCode)
	assert.Error(t, classifierErr.Err)
}

func TestPredictionClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewPredictionClient(server.URL, 5*time.Second, nil).Predict(ctx, model.FeatureVector{})
	assert.ErrorIs(t, err, ErrTimeout)
}
