package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"maternalrisk/internal/model"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RagClient forwards free-form questions to the retrieval-augmented chat
// service and relays its JSON answer unchanged.
type RagClient struct {
	httpClient *resty.Client
	endpoint   string
	logger     *zap.Logger
}

// NewRagClient creates a client for the chat service
func NewRagClient(endpoint string, timeout time.Duration, logger *zap.Logger) *RagClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RagClient{
		httpClient: client,
		endpoint:   endpoint,
		logger:     logger,
	}
}

// Ask posts {"question": question}. Non-2xx responses and bodies that are
// not JSON yield ErrChatService; deadline expiry also carries ErrTimeout.
func (c *RagClient) Ask(ctx context.Context, question string) (json.RawMessage, error) {
	start := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(model.RagAskRequest{Question: question}).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChatService, wrapRemoteError("chat request", err))
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: chat service returned %d: %s",
			ErrChatService, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	body := resp.Body()
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: chat service returned a non-JSON body", ErrChatService)
	}

	c.logger.Debug("Chat answer received",
		zap.Int("question_len", len(question)),
		zap.Duration("latency", time.Since(start)),
	)
	return json.RawMessage(body), nil
}
