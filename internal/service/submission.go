package service

import (
	"context"
	"time"

	"maternalrisk/internal/model"

	"go.uber.org/zap"
)

// SubmissionCoordinator sends a record to the classifier and hands the
// result to the SessionBridge.
type SubmissionCoordinator struct {
	classifier      Classifier
	bridge          *SessionBridge
	requireComplete bool
	timeout         time.Duration
	logger          *zap.Logger
}

// NewSubmissionCoordinator creates a coordinator. Completeness is advisory
// unless requireComplete is set.
func NewSubmissionCoordinator(classifier Classifier, bridge *SessionBridge, requireComplete bool, timeout time.Duration, logger *zap.Logger) *SubmissionCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SubmissionCoordinator{
		classifier:      classifier,
		bridge:          bridge,
		requireComplete: requireComplete,
		timeout:         timeout,
		logger:          logger,
	}
}

// Submit makes one classifier call for record. On success the record and
// the raw response are stored for sessionID; on failure nothing is stored
// and the operator has to resubmit.
func (c *SubmissionCoordinator) Submit(ctx context.Context, sessionID string, record model.IntakeRecord) (model.ClassifierResponse, error) {
	if missing := record.Missing(); len(missing) > 0 {
		if c.requireComplete {
			return nil, &IncompleteRecordError{Missing: missing}
		}
		c.logger.Info("Submitting incomplete intake record",
			zap.String("session_id", sessionID),
			zap.Strings("missing", missing),
		)
	}

	features := model.NewFeatureVector(record)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.classifier.Predict(callCtx, features)
	if err != nil {
		c.logger.Error("Prediction failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := c.bridge.Put(ctx, sessionID, record, raw); err != nil {
		return nil, err
	}

	c.logger.Info("Assessment submitted", zap.String("session_id", sessionID))
	return raw, nil
}
