package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"maternalrisk/internal/model"

	"go.uber.org/zap"
)

// FieldStore owns one session's IntakeRecord. It recomputes bmi when height
// or weight change and never rejects a value: validation is advisory.
// Every mutation bumps the revision.
type FieldStore struct {
	mu       sync.Mutex
	record   model.IntakeRecord
	revision uint64
	logger   *zap.Logger
}

// NewFieldStore creates a store holding an empty record
func NewFieldStore(logger *zap.Logger) *FieldStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FieldStore{
		record: model.NewIntakeRecord(),
		logger: logger,
	}
}

// SetField updates one field by canonical name or alias and returns the new revision
func (s *FieldStore) SetField(name string, raw any) (uint64, error) {
	spec, ok := model.LookupField(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(spec, raw)
	s.revision++
	return s.revision, nil
}

// MergeFields applies a partial field set. Only the fields it names change;
// each behaves like SetField, so bmi is recomputed only when height or weight
// are part of the set. Unknown keys are ignored.
func (s *FieldStore) MergeFields(partial map[string]any) model.MergeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.merge(partial)
}

// MergeFieldsSince applies a partial field set computed against revision base.
// If the record has changed since then the result is marked stale, and with
// discardStale set it is dropped without touching the record.
func (s *FieldStore) MergeFieldsSince(partial map[string]any, base uint64, discardStale bool) model.MergeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.revision != base {
		if discardStale {
			return model.MergeResult{
				Applied:   []string{},
				Revision:  s.revision,
				Stale:     true,
				Discarded: true,
			}
		}
		result := s.merge(partial)
		result.Stale = true
		return result
	}
	return s.merge(partial)
}

// Snapshot returns a copy of the record and the revision it was taken at
func (s *FieldStore) Snapshot() (model.IntakeRecord, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.record, s.revision
}

// Revision returns the current revision
func (s *FieldStore) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.revision
}

// Reset clears the record for a new assessment
func (s *FieldStore) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = model.NewIntakeRecord()
	s.revision++
	return s.revision
}

type touchedField struct {
	key  string
	spec model.FieldSpec
	raw  any
}

// appliesBefore orders a partial set by form position. Keys naming the same
// field apply aliases first, in key order, so the canonical name wins.
func appliesBefore(a, b touchedField) bool {
	ia, ib := model.FieldIndex(a.spec.Name), model.FieldIndex(b.spec.Name)
	if ia != ib {
		return ia < ib
	}
	ca, cb := a.key == a.spec.Name, b.key == b.spec.Name
	if ca != cb {
		return cb
	}
	return a.key < b.key
}

func (s *FieldStore) merge(partial map[string]any) model.MergeResult {
	result := model.MergeResult{Applied: []string{}}

	touched := make([]touchedField, 0, len(partial))
	for key, raw := range partial {
		spec, ok := model.LookupField(key)
		if !ok {
			result.Ignored = append(result.Ignored, key)
			continue
		}
		touched = append(touched, touchedField{key: key, spec: spec, raw: raw})
	}

	// Form order, so an explicit bmi lands after any height/weight recompute
	sort.Slice(touched, func(i, j int) bool {
		return appliesBefore(touched[i], touched[j])
	})

	for i, t := range touched {
		s.apply(t.spec, t.raw)
		if i == 0 || touched[i-1].spec.Name != t.spec.Name {
			result.Applied = append(result.Applied, t.spec.Name)
		}
	}
	sort.Strings(result.Ignored)

	if len(result.Ignored) > 0 {
		s.logger.Debug("Ignoring unknown intake fields", zap.Strings("fields", result.Ignored))
	}
	if len(result.Applied) > 0 {
		s.revision++
	}
	result.Revision = s.revision
	return result
}

func (s *FieldStore) apply(spec model.FieldSpec, raw any) {
	switch spec.Kind {
	case model.KindFlag:
		*spec.FlagRef(&s.record) = coerceFlag(raw)
	case model.KindChoice:
		*spec.TextRef(&s.record) = strings.ToLower(strings.TrimSpace(coerceText(raw)))
	default:
		*spec.TextRef(&s.record) = coerceText(raw)
	}

	if spec.Name == model.FieldHeight || spec.Name == model.FieldWeight {
		s.recomputeBMI()
	}
}

// recomputeBMI writes bmi = weight / height² to 2 decimals when both are
// present and height > 0. Otherwise bmi keeps its previous value.
func (s *FieldStore) recomputeBMI() {
	height, okH := model.ParseNumber(s.record.Height)
	weight, okW := model.ParseNumber(s.record.Weight)
	if !okH || !okW || height <= 0 {
		return
	}
	s.record.BMI = FormatBMI(weight, height)
}

// FormatBMI renders weight / height² rounded to two decimals
func FormatBMI(weight, height float64) string {
	return strconv.FormatFloat(weight/(height*height), 'f', 2, 64)
}

func coerceText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func coerceFlag(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case float32:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "y", "on", "checked":
			return true
		}
		return false
	default:
		return false
	}
}
