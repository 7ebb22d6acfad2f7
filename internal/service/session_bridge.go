package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"maternalrisk/internal/model"
	"maternalrisk/internal/store"
)

const (
	assessmentDataKey   = "assessmentData"
	predictionResultKey = "predictionResult"
)

// SessionBridge hands one IntakeRecord snapshot and one raw classifier
// response from the intake view to the result view of the same tab.
type SessionBridge struct {
	kv  store.KV
	ttl time.Duration
}

// NewSessionBridge creates a bridge over kv; entries expire after ttl
func NewSessionBridge(kv store.KV, ttl time.Duration) *SessionBridge {
	return &SessionBridge{kv: kv, ttl: ttl}
}

func bridgeKey(sessionID, entry string) string {
	return "intake:" + sessionID + ":" + entry
}

// Put replaces the session's hand-off. The previous pair is removed first
// and a failed write removes both entries again, so Take never pairs one
// submission's record with another's prediction.
func (b *SessionBridge) Put(ctx context.Context, sessionID string, record model.IntakeRecord, raw model.ClassifierResponse) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := b.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear previous hand-off: %w", err)
	}

	if err := b.kv.Set(ctx, bridgeKey(sessionID, assessmentDataKey), string(data), b.ttl); err != nil {
		return b.abandon(ctx, sessionID, fmt.Errorf("failed to store record: %w", err))
	}
	if err := b.kv.Set(ctx, bridgeKey(sessionID, predictionResultKey), string(raw), b.ttl); err != nil {
		return b.abandon(ctx, sessionID, fmt.Errorf("failed to store prediction: %w", err))
	}
	return nil
}

// abandon drops a half-written hand-off and returns the write error
func (b *SessionBridge) abandon(ctx context.Context, sessionID string, err error) error {
	if clearErr := b.Clear(context.WithoutCancel(ctx), sessionID); clearErr != nil {
		return errors.Join(err, fmt.Errorf("failed to clear partial hand-off: %w", clearErr))
	}
	return err
}

// Take reads the hand-off. If either entry is absent it returns
// ErrMissingSessionState and no partial data.
func (b *SessionBridge) Take(ctx context.Context, sessionID string) (model.Handoff, error) {
	data, err := b.get(ctx, sessionID, assessmentDataKey)
	if err != nil {
		return model.Handoff{}, err
	}
	prediction, err := b.get(ctx, sessionID, predictionResultKey)
	if err != nil {
		return model.Handoff{}, err
	}

	var handoff model.Handoff
	if err := json.Unmarshal([]byte(data), &handoff.Record); err != nil {
		return model.Handoff{}, fmt.Errorf("%w: stored record unreadable: %v", ErrMissingSessionState, err)
	}
	handoff.Prediction = model.ClassifierResponse(prediction)
	return handoff, nil
}

// Clear removes the session's hand-off
func (b *SessionBridge) Clear(ctx context.Context, sessionID string) error {
	return b.kv.Delete(ctx,
		bridgeKey(sessionID, assessmentDataKey),
		bridgeKey(sessionID, predictionResultKey),
	)
}

func (b *SessionBridge) get(ctx context.Context, sessionID, entry string) (string, error) {
	value, err := b.kv.Get(ctx, bridgeKey(sessionID, entry))
	if errors.Is(err, store.ErrMiss) || (err == nil && value == "") {
		return "", ErrMissingSessionState
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", entry, err)
	}
	return value, nil
}
