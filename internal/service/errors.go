package service

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrUnknownField          = errors.New("unknown intake field")
	ErrCapabilityUnavailable = errors.New("speech recognition capability unavailable")
	ErrAlreadyListening      = errors.New("voice recognition already active")
	ErrRecognition           = errors.New("speech recognition failed")
	ErrParseFailure          = errors.New("transcript parse failed")
	ErrMissingSessionState   = errors.New("no submitted assessment for this session")
	ErrTimeout               = errors.New("remote call timed out")
	ErrIncompleteRecord      = errors.New("intake record incomplete")
	ErrUnrecognizedLabel     = errors.New("unrecognized risk label")
	ErrMalformedPrediction   = errors.New("malformed prediction payload")
	ErrSessionNotFound       = errors.New("intake session not found")
	ErrChatService           = errors.New("chat service request failed")
)

// ClassifierError is returned when the prediction service call fails.
// Detail carries the service's own message when it sent one.
type ClassifierError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *ClassifierError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("classifier returned %d: %s", e.StatusCode, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("classifier returned %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("classifier request failed: %v", e.Err)
	default:
		return "classifier request failed"
	}
}

func (e *ClassifierError) Unwrap() error { return e.Err }

// IncompleteRecordError lists the required fields that were empty at submission
type IncompleteRecordError struct {
	Missing []string
}

func (e *IncompleteRecordError) Error() string {
	return fmt.Sprintf("%v: missing %v", ErrIncompleteRecord, e.Missing)
}

func (e *IncompleteRecordError) Unwrap() error { return ErrIncompleteRecord }

// wrapRemoteError tags deadline expiry with ErrTimeout
func wrapRemoteError(op string, err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
