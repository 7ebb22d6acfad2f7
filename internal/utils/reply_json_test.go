package utils

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractReplyObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]any
		wantErr bool
	}{
		{
			name:  "Pure JSON",
			input: `{"age": "26", "gestationalDiabetes": 0}`,
			want:  map[string]any{"age": "26", "gestationalDiabetes": float64(0)},
		},
		{
			name:  "JSON in markdown code block",
			input: "```json\n" + `{"systolicBP": "140", "diastolicBP": "95"}` + "\n```",
			want:  map[string]any{"systolicBP": "140", "diastolicBP": "95"},
		},
		{
			name:  "Unlabelled code block",
			input: "```\n{\"heartRate\": \"90\"}\n```",
			want:  map[string]any{"heartRate": "90"},
		},
		{
			name:  "JSON with surrounding text",
			input: `Here are the fields: {"weight": "58", "note": "brace } in string"} hope that helps.`,
			want:  map[string]any{"weight": "58", "note": "brace } in string"},
		},
		{
			name:  "Trailing comma",
			input: `{"age": "31", "bmi": "24.1",}`,
			want:  map[string]any{"age": "31", "bmi": "24.1"},
		},
		{
			name:  "Unquoted keys",
			input: `{age: "31", heartRate: "88"}`,
			want:  map[string]any{"age": "31", "heartRate": "88"},
		},
		{
			name:  "Single quotes",
			input: `{'age': '26', 'bloodSugar': '7.5'}`,
			want:  map[string]any{"age": "26", "bloodSugar": "7.5"},
		},
		{
			name:  "Empty object",
			input: `{}`,
			want:  map[string]any{},
		},
		{
			name:    "Empty input",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "Array is not an object",
			input:   `["age", "26"]`,
			wantErr: true,
		},
		{
			name:    "Prose only",
			input:   "I could not find any fields in that transcript.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractReplyObject(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoObject) {
					t.Fatalf("ExtractReplyObject() error = %v, want ErrNoObject", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractReplyObject() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractReplyObject() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSingleToDoubleQuotesKeepsApostrophes(t *testing.T) {
	in := `{"note": "patient's pulse"}`
	if got := singleToDoubleQuotes(in); got != in {
		t.Errorf("singleToDoubleQuotes() = %s, want %s", got, in)
	}
}
