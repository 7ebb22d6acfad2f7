package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"maternalrisk/internal/config"
	"maternalrisk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"id":    "chatcmpl-1",
			"model": "test-model",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func testOpenAIConfig(base string) *config.OpenAIConfig {
	return &config.OpenAIConfig{
		APIKey:    "test-key",
		APIBase:   base,
		ChatModel: "test-model",
		Timeout:   5,
		Enabled:   true,
	}
}

func TestAIFieldParser_DisabledUsesRules(t *testing.T) {
	parser := NewAIFieldParser(NewOpenAIClient(&config.OpenAIConfig{}, nil), nil, nil)

	fields, err := parser.ParseFields(context.Background(), "pulse 88 and temperature 37.2")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		model.FieldHeartRate:       "88",
		model.FieldBodyTemperature: "37.2",
	}, fields)

	fields, err = NewAIFieldParser(nil, nil, nil).ParseFields(context.Background(), "pulse 88")
	require.NoError(t, err)
	assert.Equal(t, "88", fields[model.FieldHeartRate])
}

func TestAIFieldParser_UsesModelReply(t *testing.T) {
	reply := "```json\n{\"age\": \"26\", \"Bodytemp\": \"37.9\", \"pulse\": \"101\", \"shoeSize\": \"7\", \"bmi\": null}\n```"
	server := newChatServer(t, http.StatusOK, reply)
	defer server.Close()

	parser := NewAIFieldParser(NewOpenAIClient(testOpenAIConfig(server.URL), nil), nil, nil)
	fields, err := parser.ParseFields(context.Background(), "age 26, temperature 37.9, pulse 101")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		model.FieldAge:             "26",
		model.FieldBodyTemperature: "37.9",
		model.FieldHeartRate:       "101",
	}, fields)
}

func TestAIFieldParser_FallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"reply without object", http.StatusOK, "Sorry, I can't help with that."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newChatServer(t, tt.status, tt.content)
			defer server.Close()

			parser := NewAIFieldParser(NewOpenAIClient(testOpenAIConfig(server.URL), nil), nil, nil)
			fields, err := parser.ParseFields(context.Background(), "pulse 88")
			require.NoError(t, err)
			assert.Equal(t, map[string]any{model.FieldHeartRate: "88"}, fields)
		})
	}
}

func TestAIFieldParser_EmptyText(t *testing.T) {
	fields, err := NewAIFieldParser(nil, nil, nil).ParseFields(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, fields)
}
