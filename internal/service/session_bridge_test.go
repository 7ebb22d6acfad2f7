package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"maternalrisk/internal/model"
	"maternalrisk/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionBridge_PutTake(t *testing.T) {
	ctx := context.Background()
	bridge := NewSessionBridge(store.NewMemoryKV(), time.Hour)
	record := filledRecord()

	require.NoError(t, bridge.Put(ctx, "tab-1", record, model.ClassifierResponse(`{"prediction":"Low"}`)))

	handoff, err := bridge.Take(ctx, "tab-1")
	require.NoError(t, err)
	assert.Equal(t, record, handoff.Record)
	assert.JSONEq(t, `{"prediction":"Low"}`, string(handoff.Prediction))

	// reading does not consume
	_, err = bridge.Take(ctx, "tab-1")
	assert.NoError(t, err)
}

func TestSessionBridge_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	bridge := NewSessionBridge(store.NewMemoryKV(), time.Hour)

	require.NoError(t, bridge.Put(ctx, "tab-1", filledRecord(), model.ClassifierResponse(`{"prediction":"Low"}`)))

	_, err := bridge.Take(ctx, "tab-2")
	assert.ErrorIs(t, err, ErrMissingSessionState)
}

func TestSessionBridge_OverwritesPreviousSubmission(t *testing.T) {
	ctx := context.Background()
	bridge := NewSessionBridge(store.NewMemoryKV(), time.Hour)

	first := filledRecord()
	second := filledRecord()
	second.Age = "33"
	require.NoError(t, bridge.Put(ctx, "tab-1", first, model.ClassifierResponse(`{"prediction":"Low"}`)))
	require.NoError(t, bridge.Put(ctx, "tab-1", second, model.ClassifierResponse(`{"prediction":"High"}`)))

	handoff, err := bridge.Take(ctx, "tab-1")
	require.NoError(t, err)
	assert.Equal(t, "33", handoff.Record.Age)
	assert.JSONEq(t, `{"prediction":"High"}`, string(handoff.Prediction))
}

func TestSessionBridge_PartialStateIsMissing(t *testing.T) {
	ctx := context.Background()

	t.Run("record only", func(t *testing.T) {
		kv := store.NewMemoryKV()
		require.NoError(t, kv.Set(ctx, bridgeKey("tab-1", assessmentDataKey), `{"name":"Asha"}`, 0))

		_, err := NewSessionBridge(kv, time.Hour).Take(ctx, "tab-1")
		assert.ErrorIs(t, err, ErrMissingSessionState)
	})

	t.Run("prediction only", func(t *testing.T) {
		kv := store.NewMemoryKV()
		require.NoError(t, kv.Set(ctx, bridgeKey("tab-1", predictionResultKey), `{"prediction":"High"}`, 0))

		_, err := NewSessionBridge(kv, time.Hour).Take(ctx, "tab-1")
		assert.ErrorIs(t, err, ErrMissingSessionState)
	})

	t.Run("unreadable record", func(t *testing.T) {
		kv := store.NewMemoryKV()
		require.NoError(t, kv.Set(ctx, bridgeKey("tab-1", assessmentDataKey), `{not json`, 0))
		require.NoError(t, kv.Set(ctx, bridgeKey("tab-1", predictionResultKey), `{"prediction":"High"}`, 0))

		_, err := NewSessionBridge(kv, time.Hour).Take(ctx, "tab-1")
		assert.ErrorIs(t, err, ErrMissingSessionState)
	})
}

func TestSessionBridge_Clear(t *testing.T) {
	ctx := context.Background()
	bridge := NewSessionBridge(store.NewMemoryKV(), time.Hour)
	require.NoError(t, bridge.Put(ctx, "tab-1", filledRecord(), model.ClassifierResponse(`{}`)))

	require.NoError(t, bridge.Clear(ctx, "tab-1"))
	_, err := bridge.Take(ctx, "tab-1")
	assert.ErrorIs(t, err, ErrMissingSessionState)
}

// flakyKV fails Set for keys with the given suffix while failing is set
type flakyKV struct {
	*store.MemoryKV
	suffix  string
	failing bool
}

func (f *flakyKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.failing && strings.HasSuffix(key, f.suffix) {
		return errors.New("redis down")
	}
	return f.MemoryKV.Set(ctx, key, value, ttl)
}

func TestSessionBridge_FailedPutNeverMixesSubmissions(t *testing.T) {
	for _, entry := range []string{assessmentDataKey, predictionResultKey} {
		t.Run(entry, func(t *testing.T) {
			ctx := context.Background()
			kv := &flakyKV{MemoryKV: store.NewMemoryKV(), suffix: entry}
			bridge := NewSessionBridge(kv, time.Hour)

			first := filledRecord()
			require.NoError(t, bridge.Put(ctx, "tab-1", first, model.ClassifierResponse(`{"prediction":"High"}`)))

			second := filledRecord()
			second.Name = "Meera"
			kv.failing = true
			err := bridge.Put(ctx, "tab-1", second, model.ClassifierResponse(`{"prediction":"Low"}`))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "redis down")

			_, err = bridge.Take(ctx, "tab-1")
			assert.ErrorIs(t, err, ErrMissingSessionState)

			kv.failing = false
			require.NoError(t, bridge.Put(ctx, "tab-1", second, model.ClassifierResponse(`{"prediction":"Low"}`)))
			handoff, err := bridge.Take(ctx, "tab-1")
			require.NoError(t, err)
			assert.Equal(t, "Meera", handoff.Record.Name)
			assert.JSONEq(t, `{"prediction":"Low"}`, string(handoff.Prediction))
		})
	}
}
