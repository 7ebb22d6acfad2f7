package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"maternalrisk/internal/model"
	"maternalrisk/internal/utils"

	"go.uber.org/zap"
)

// Voice adapter states
const (
	VoiceIdle      = "idle"
	VoiceListening = "listening"
)

// SpeechEngine is the platform speech-to-text capability. Recognition is
// single-shot: one final transcript, no interim results.
type SpeechEngine interface {
	Available() bool
	Start(lang string) error
	Stop()
}

// FieldParser turns a transcript into a partial intake field set
type FieldParser interface {
	ParseFields(ctx context.Context, text string) (map[string]any, error)
}

// ClientSpeechEngine stands for a recognizer running in the operator's
// browser. It only records whether the browser reported one; results arrive
// through the adapter's Handle* methods.
type ClientSpeechEngine struct {
	supported bool
}

func NewClientSpeechEngine(supported bool) *ClientSpeechEngine {
	return &ClientSpeechEngine{supported: supported}
}

func (e *ClientSpeechEngine) Available() bool { return e.supported }
func (e *ClientSpeechEngine) Start(string) error { return nil }
func (e *ClientSpeechEngine) Stop() {}

// VoiceIntakeAdapter moves between idle and listening and merges parsed
// transcripts into a FieldStore. Only one recognition may be active.
type VoiceIntakeAdapter struct {
	mu            sync.Mutex
	state         string
	recognitionID uint64

	engine       SpeechEngine
	parser       FieldParser
	store        *FieldStore
	discardStale bool
	timeout      time.Duration
	defaultLang  string
	logger       *zap.Logger
}

// VoiceOptions configures a VoiceIntakeAdapter
type VoiceOptions struct {
	DiscardStale bool
	Timeout      time.Duration
	DefaultLang  string
}

// NewVoiceIntakeAdapter creates an idle adapter
func NewVoiceIntakeAdapter(engine SpeechEngine, parser FieldParser, store *FieldStore, opts VoiceOptions, logger *zap.Logger) *VoiceIntakeAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.DefaultLang == "" {
		opts.DefaultLang = "en-IN"
	}
	return &VoiceIntakeAdapter{
		state:        VoiceIdle,
		engine:       engine,
		parser:       parser,
		store:        store,
		discardStale: opts.DiscardStale,
		timeout:      opts.Timeout,
		defaultLang:  opts.DefaultLang,
		logger:       logger,
	}
}

// State returns the current state
func (a *VoiceIntakeAdapter) State() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Start begins a recognition and returns its id and the language it runs
// in. It fails fast with ErrCapabilityUnavailable when no recognizer exists,
// and with ErrAlreadyListening instead of queueing a second one.
func (a *VoiceIntakeAdapter) Start(lang string) (uint64, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == VoiceListening {
		return 0, "", ErrAlreadyListening
	}
	if a.engine == nil || !a.engine.Available() {
		return 0, "", ErrCapabilityUnavailable
	}
	if lang == "" {
		lang = a.defaultLang
	}
	if err := a.engine.Start(lang); err != nil {
		a.logger.Error("Speech recognition failed to start", zap.Error(err))
		return 0, "", fmt.Errorf("%w: %v", ErrRecognition, err)
	}

	a.recognitionID++
	a.state = VoiceListening
	a.logger.Debug("Voice recognition started",
		zap.Uint64("recognition_id", a.recognitionID),
		zap.String("lang", lang),
	)
	return a.recognitionID, lang, nil
}

// Stop returns to idle at once. A result still in flight for the stopped
// recognition is discarded; a parse already issued is not cancelled.
func (a *VoiceIntakeAdapter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != VoiceListening {
		return
	}
	a.engine.Stop()
	a.state = VoiceIdle
	a.logger.Debug("Voice recognition stopped", zap.Uint64("recognition_id", a.recognitionID))
}

// HandleError records a platform recognition failure and returns to idle.
// It is reported to the operator, not turned into a field error.
func (a *VoiceIntakeAdapter) HandleError(recognitionID uint64, reason string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.isCurrent(recognitionID) {
		return nil
	}
	a.state = VoiceIdle
	a.logger.Warn("Speech recognition error",
		zap.Uint64("recognition_id", a.recognitionID),
		zap.String("reason", reason),
	)
	return fmt.Errorf("%w: %s", ErrRecognition, reason)
}

// HandleEnd records the natural end of a recognition
func (a *VoiceIntakeAdapter) HandleEnd(recognitionID uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.isCurrent(recognitionID) {
		a.state = VoiceIdle
	}
}

// HandleTranscript takes the final transcript of the current recognition,
// parses it and merges the result into the store. Results for a
// stopped or superseded recognition are discarded. A parse failure is logged
// and leaves the record untouched; it is never returned as an error.
func (a *VoiceIntakeAdapter) HandleTranscript(ctx context.Context, recognitionID uint64, transcript string) model.VoiceOutcome {
	a.mu.Lock()
	if !a.isCurrent(recognitionID) {
		a.mu.Unlock()
		a.logger.Debug("Discarding transcript for inactive recognition", zap.Uint64("recognition_id", recognitionID))
		return model.VoiceOutcome{Discarded: true}
	}
	// single-shot: the recognition ends with its result
	a.state = VoiceIdle
	a.mu.Unlock()

	text := utils.NormalizeWhitespace(transcript)
	outcome := model.VoiceOutcome{Transcript: text}
	if text == "" {
		return outcome
	}

	base := a.store.Revision()

	// The parse outlives the caller and Stop(); only the bounded wait ends it.
	parseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	fields, err := a.parser.ParseFields(parseCtx, text)
	if err != nil {
		if !errors.Is(err, ErrParseFailure) {
			err = fmt.Errorf("%w: %w", ErrParseFailure, err)
		}
		a.logger.Warn("Speech parsing failed", zap.String("transcript", text), zap.Error(err))
		outcome.ParseFailed = true
		return outcome
	}

	result := a.store.MergeFieldsSince(fields, base, a.discardStale)
	if result.Stale {
		a.logger.Warn("Voice merge raced with manual edits",
			zap.Uint64("base_revision", base),
			zap.Uint64("revision", result.Revision),
			zap.Bool("discarded", result.Discarded),
		)
	}
	outcome.Merge = &result
	return outcome
}

func (a *VoiceIntakeAdapter) isCurrent(recognitionID uint64) bool {
	return a.state == VoiceListening && recognitionID == a.recognitionID
}
