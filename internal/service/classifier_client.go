package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"maternalrisk/internal/model"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Classifier is the external risk-classification service
type Classifier interface {
	Predict(ctx context.Context, features model.FeatureVector) (model.ClassifierResponse, error)
}

// PredictionClient calls the prediction endpoint. One attempt per call, no retry.
type PredictionClient struct {
	httpClient *resty.Client
	endpoint   string
	logger     *zap.Logger
}

// NewPredictionClient creates a client for the prediction endpoint
func NewPredictionClient(endpoint string, timeout time.Duration, logger *zap.Logger) *PredictionClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &PredictionClient{
		httpClient: client,
		endpoint:   endpoint,
		logger:     logger,
	}
}

// Predict sends the feature vector and returns the raw response body
func (c *PredictionClient) Predict(ctx context.Context, features model.FeatureVector) (model.ClassifierResponse, error) {
	c.logger.Debug("Calling prediction endpoint", zap.String("endpoint", c.endpoint))

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(model.PredictionRequest{Features: features}).
		Post(c.endpoint)
	if err != nil {
		return nil, &ClassifierError{Err: wrapRemoteError("prediction request", err)}
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		detail := predictionDetail(body)
		if detail == "" {
			detail = statusText(resp.StatusCode())
		}
		return nil, &ClassifierError{
			StatusCode: resp.StatusCode(),
			Detail:     detail,
		}
	}

	if !json.Valid(body) {
		return nil, &ClassifierError{
			StatusCode: resp.StatusCode(),
			Detail:     "malformed response body",
			Err:        ErrMalformedPrediction,
		}
	}

	out := make(model.ClassifierResponse, len(body))
	copy(out, body)
	return out, nil
}

// predictionDetail extracts {"detail": ...} from an error body. A string
// detail is returned as-is, any other JSON detail verbatim.
func predictionDetail(body []byte) string {
	var payload model.PredictionError
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text
	}
	if string(payload.Detail) == "null" {
		return ""
	}
	return strings.TrimSpace(string(payload.Detail))
}

// statusText is used when the service gave no detail
func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "classifier failure"
}
