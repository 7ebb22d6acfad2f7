package service

import (
	"context"
	"fmt"
	"strings"

	"maternalrisk/internal/model"
	"maternalrisk/internal/utils"

	"go.uber.org/zap"
)

const transcriptSystemPrompt = `You are an intake assistant for community health workers screening pregnant women. Extract clinical fields from a spoken transcript.

Extract the following information if present:
- age: age in years (string of digits)
- height: height in metres (string, e.g. "1.62")
- weight: weight in kg (string)
- weeksPregnant: weeks of pregnancy (string)
- systolicBP, diastolicBP: blood pressure, "130 over 85" means systolicBP "130", diastolicBP "85"
- bloodSugar: blood sugar in mg/dL (string)
- bodyTemperature: body temperature in °C (string)
- heartRate: heart rate or pulse in bpm (string)
- bmi: body mass index (string)
- previousComplications, preExistingDiabetes, gestationalDiabetes, mentalHealthConcerns, shortBirthSpacing: 1 if the condition is stated, 0 if it is denied

Important rules:
- Respond ONLY with a valid JSON object
- If a field is not mentioned, omit it
- Never guess values that were not spoken

Example:
Transcript: "age 26, bp 140 by 95, no gestational diabetes, pulse 90"
Response: {"age": "26", "systolicBP": "140", "diastolicBP": "95", "gestationalDiabetes": 0, "heartRate": "90"}`

// AIFieldParser extracts intake fields from a transcript with a chat model.
// When AI is disabled or the model's answer is unusable it falls back to
// the keyword rules.
type AIFieldParser struct {
	aiClient *OpenAIClient
	fallback FieldParser
	logger   *zap.Logger
}

// NewAIFieldParser creates a parser; fallback defaults to the keyword rules
func NewAIFieldParser(aiClient *OpenAIClient, fallback FieldParser, logger *zap.Logger) *AIFieldParser {
	if fallback == nil {
		fallback = NewRuleFieldParser()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIFieldParser{
		aiClient: aiClient,
		fallback: fallback,
		logger:   logger,
	}
}

// ParseFields implements FieldParser
func (p *AIFieldParser) ParseFields(ctx context.Context, text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return map[string]any{}, nil
	}

	if !p.aiClient.IsEnabled() {
		p.logger.Debug("OpenAI is not enabled, using keyword rules")
		return p.fallback.ParseFields(ctx, text)
	}

	fields, err := p.parseWithAI(ctx, text)
	if err != nil {
		p.logger.Warn("AI transcript parsing failed, using keyword rules", zap.Error(err))
		return p.fallback.ParseFields(ctx, text)
	}
	return fields, nil
}

func (p *AIFieldParser) parseWithAI(ctx context.Context, text string) (map[string]any, error) {
	resp, err := p.aiClient.ChatCompletion(ctx, ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: transcriptSystemPrompt},
			{Role: "user", Content: text},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	// Model replies are not always bare JSON
	raw, err := utils.ExtractReplyObject(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	// Keep only known intake fields under their canonical names
	fields := make(map[string]any, len(raw))
	for key, value := range raw {
		spec, ok := model.LookupField(key)
		if !ok || value == nil {
			continue
		}
		fields[spec.Name] = value
	}

	p.logger.Debug("AI transcript parsing completed", zap.Int("field_count", len(fields)))
	return fields, nil
}
