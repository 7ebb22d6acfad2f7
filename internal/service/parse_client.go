package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"maternalrisk/internal/model"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RemoteFieldParser calls the voice-parse endpoint
type RemoteFieldParser struct {
	httpClient *resty.Client
	endpoint   string
	logger     *zap.Logger
}

// NewRemoteFieldParser creates a client for the voice-parse endpoint
func NewRemoteFieldParser(endpoint string, timeout time.Duration, logger *zap.Logger) *RemoteFieldParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RemoteFieldParser{
		httpClient: client,
		endpoint:   endpoint,
		logger:     logger,
	}
}

// ParseFields sends the normalized transcript and returns parsed_fields.
// Transport errors, non-2xx responses and payloads without a parsed_fields
// object all yield ErrParseFailure.
func (p *RemoteFieldParser) ParseFields(ctx context.Context, text string) (map[string]any, error) {
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetBody(model.ParseTextRequest{Text: text}).
		Post(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, wrapRemoteError("parse request", err))
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: parse endpoint returned %d", ErrParseFailure, resp.StatusCode())
	}

	var payload struct {
		ParsedFields json.RawMessage `json:"parsed_fields"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrParseFailure, err)
	}

	var fields map[string]any
	if len(payload.ParsedFields) == 0 || json.Unmarshal(payload.ParsedFields, &fields) != nil || fields == nil {
		return nil, fmt.Errorf("%w: response has no parsed_fields object", ErrParseFailure)
	}

	p.logger.Debug("Transcript parsed", zap.Int("field_count", len(fields)))
	return fields, nil
}
