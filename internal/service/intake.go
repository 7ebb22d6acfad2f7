package service

import (
	"context"
	"sync"
	"time"

	"maternalrisk/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IntakeController owns the state of one browser tab's intake view
type IntakeController struct {
	ID     string
	Fields *FieldStore
	Voice  *VoiceIntakeAdapter

	lastSeen time.Time
}

// Snapshot describes the controller for the intake view
func (c *IntakeController) Snapshot() model.SessionResponse {
	record, revision := c.Fields.Snapshot()
	return model.SessionResponse{
		SessionID: c.ID,
		Revision:  revision,
		Record:    record,
		Complete:  record.Complete(),
		Missing:   record.Missing(),
		Issues:    record.Validate(),
		Voice:     c.Voice.State(),
	}
}

// IntakeOptions configures an IntakeService
type IntakeOptions struct {
	SessionTTL   time.Duration
	DiscardStale bool
	Timeout      time.Duration
	SpeechLang   string
}

// IntakeService keeps one IntakeController per tab session and runs
// submissions and result rendering for them.
type IntakeService struct {
	mu          sync.Mutex
	controllers map[string]*IntakeController

	parser      FieldParser
	coordinator *SubmissionCoordinator
	bridge      *SessionBridge
	interpreter *ResultInterpreter
	opts        IntakeOptions
	now         func() time.Time
	logger      *zap.Logger
}

// NewIntakeService creates the session registry
func NewIntakeService(
	parser FieldParser,
	coordinator *SubmissionCoordinator,
	bridge *SessionBridge,
	interpreter *ResultInterpreter,
	opts IntakeOptions,
	logger *zap.Logger,
) *IntakeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	return &IntakeService{
		controllers: make(map[string]*IntakeController),
		parser:      parser,
		coordinator: coordinator,
		bridge:      bridge,
		interpreter: interpreter,
		opts:        opts,
		now:         time.Now,
		logger:      logger,
	}
}

// Open creates a controller for a new tab. speechSupported is what the
// browser reported about its speech recognizer.
func (s *IntakeService) Open(speechSupported bool) *IntakeController {
	id := uuid.NewString()
	fields := NewFieldStore(s.logger.With(zap.String("session_id", id)))
	voice := NewVoiceIntakeAdapter(
		NewClientSpeechEngine(speechSupported),
		s.parser,
		fields,
		VoiceOptions{
			DiscardStale: s.opts.DiscardStale,
			Timeout:      s.opts.Timeout,
			DefaultLang:  s.opts.SpeechLang,
		},
		s.logger.With(zap.String("session_id", id)),
	)

	c := &IntakeController{ID: id, Fields: fields, Voice: voice}

	s.mu.Lock()
	expired := s.sweepLocked()
	c.lastSeen = s.now()
	s.controllers[id] = c
	s.mu.Unlock()

	s.dropHandoffs(context.Background(), expired)
	s.logger.Info("Intake session opened",
		zap.String("session_id", id),
		zap.Bool("speech_supported", speechSupported),
	)
	return c
}

// Get returns the controller for a session
func (s *IntakeService) Get(sessionID string) (*IntakeController, error) {
	s.mu.Lock()
	c, ok := s.controllers[sessionID]
	if ok && !s.expiredLocked(c) {
		c.lastSeen = s.now()
		s.mu.Unlock()
		return c, nil
	}
	if ok {
		c.Voice.Stop()
		delete(s.controllers, sessionID)
	}
	s.mu.Unlock()

	if ok {
		s.dropHandoffs(context.Background(), []string{sessionID})
	}
	return nil, ErrSessionNotFound
}

// Sweep drops every expired session together with its hand-off and
// returns how many were dropped.
func (s *IntakeService) Sweep(ctx context.Context) int {
	s.mu.Lock()
	expired := s.sweepLocked()
	s.mu.Unlock()

	s.dropHandoffs(ctx, expired)
	return len(expired)
}

// Close drops the controller and its hand-off
func (s *IntakeService) Close(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	if c, ok := s.controllers[sessionID]; ok {
		c.Voice.Stop()
		delete(s.controllers, sessionID)
	}
	s.mu.Unlock()

	return s.bridge.Clear(ctx, sessionID)
}

// Submit snapshots the session's record and submits it
func (s *IntakeService) Submit(ctx context.Context, sessionID string) (model.ClassifierResponse, error) {
	c, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	record, _ := c.Fields.Snapshot()
	return s.coordinator.Submit(ctx, sessionID, record)
}

// Result loads the hand-off and interprets it. ErrMissingSessionState means
// the result view must send the operator back to intake.
func (s *IntakeService) Result(ctx context.Context, sessionID string) (model.ResultResponse, error) {
	handoff, err := s.bridge.Take(ctx, sessionID)
	if err != nil {
		return model.ResultResponse{}, err
	}

	assessment, err := s.interpreter.Interpret(handoff.Prediction)
	if err != nil {
		return model.ResultResponse{}, err
	}

	return model.ResultResponse{
		Patient: model.PatientSummary{
			Name:          handoff.Record.Name,
			Age:           handoff.Record.Age,
			WeeksPregnant: handoff.Record.WeeksPregnant,
		},
		Assessment: assessment,
	}, nil
}

// Len returns the number of live sessions
func (s *IntakeService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.controllers)
}

func (s *IntakeService) expiredLocked(c *IntakeController) bool {
	return s.now().Sub(c.lastSeen) >= s.opts.SessionTTL
}

func (s *IntakeService) sweepLocked() []string {
	var expired []string
	for id, c := range s.controllers {
		if s.expiredLocked(c) {
			c.Voice.Stop()
			delete(s.controllers, id)
			expired = append(expired, id)
			s.logger.Debug("Intake session expired", zap.String("session_id", id))
		}
	}
	return expired
}

// dropHandoffs clears the bridge entries of sessions that are gone
func (s *IntakeService) dropHandoffs(ctx context.Context, sessionIDs []string) {
	for _, id := range sessionIDs {
		if err := s.bridge.Clear(ctx, id); err != nil {
			s.logger.Warn("Failed to clear expired hand-off",
				zap.String("session_id", id),
				zap.Error(err),
			)
		}
	}
}
