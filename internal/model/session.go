package model

// OpenSessionRequest opens an intake view for one browser tab
type OpenSessionRequest struct {
	SpeechSupported bool `json:"speech_supported"`
}

// SessionResponse describes the state of an intake session
type SessionResponse struct {
	SessionID string       `json:"session_id"`
	Revision  uint64       `json:"revision"`
	Record    IntakeRecord `json:"record"`
	Complete  bool         `json:"complete"`
	Missing   []string     `json:"missing"`
	Issues    []FieldIssue `json:"issues"`
	Voice     string       `json:"voice_state"`
}

// SetFieldRequest carries one raw field value
type SetFieldRequest struct {
	Value any `json:"value"`
}

// MergeResult reports which fields a partial update touched
type MergeResult struct {
	Applied  []string `json:"applied"`
	Ignored  []string `json:"ignored,omitempty"`
	Revision uint64   `json:"revision"`

	// Stale is set when the record changed after the update's base revision.
	// Discarded is set when a stale update was dropped instead of applied.
	Stale     bool `json:"stale,omitempty"`
	Discarded bool `json:"discarded,omitempty"`
}

// VoiceStartRequest starts single-shot recognition
type VoiceStartRequest struct {
	Lang string `json:"lang"`
}

// VoiceStartResponse identifies the recognition that was started
type VoiceStartResponse struct {
	RecognitionID uint64 `json:"recognition_id"`
	Lang          string `json:"lang"`
	State         string `json:"voice_state"`
}

// TranscriptRequest delivers a final recognition result
type TranscriptRequest struct {
	RecognitionID uint64 `json:"recognition_id" binding:"required"`
	Transcript    string `json:"transcript"`
}

// VoiceErrorRequest reports a platform recognition failure
type VoiceErrorRequest struct {
	RecognitionID uint64 `json:"recognition_id"`
	Error         string `json:"error"`
}

// VoiceOutcome describes what a transcript did to the record
type VoiceOutcome struct {
	Transcript  string       `json:"transcript"`
	Discarded   bool         `json:"discarded"`
	ParseFailed bool         `json:"parse_failed"`
	Merge       *MergeResult `json:"merge,omitempty"`
}

// SubmitResponse tells the intake view where to go next
type SubmitResponse struct {
	Next       string             `json:"next"`
	Prediction ClassifierResponse `json:"prediction"`
}

// PatientSummary is the header of the result view
type PatientSummary struct {
	Name          string `json:"name"`
	Age           string `json:"age"`
	WeeksPregnant string `json:"weeksPregnant"`
}

// ResultResponse is the rendered result view
type ResultResponse struct {
	Patient    PatientSummary `json:"patient"`
	Assessment RiskAssessment `json:"assessment"`
}

// ParseTextRequest is the voice-parse collaborator's request body
type ParseTextRequest struct {
	Text string `json:"text"`
}

// ParseTextResponse is the voice-parse collaborator's response body
type ParseTextResponse struct {
	ParsedFields map[string]any `json:"parsed_fields"`
}

// RagAskRequest is the body of POST /rag/ask
type RagAskRequest struct {
	Question string `json:"question" binding:"required"`
}
