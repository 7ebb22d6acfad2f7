package main

import (
	"context"
	"testing"
	"time"

	"maternalrisk/internal/service"
	"maternalrisk/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestRunSweeperPurgesExpiredState(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), "intake:gone:assessmentData", "{}", time.Millisecond))
	require.NoError(t, kv.Set(context.Background(), "intake:kept:assessmentData", "{}", 0))

	bridge := service.NewSessionBridge(kv, time.Hour)
	intake := service.NewIntakeService(service.NewRuleFieldParser(), nil, bridge, service.NewResultInterpreter(false),
		service.IntakeOptions{SessionTTL: 20 * time.Millisecond}, nil)
	intake.Open(true)
	require.Equal(t, 1, intake.Len())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		runSweeper(ctx, 5*time.Millisecond, intake, kv, zap.NewNop())
	}()

	assert.Eventually(t, func() bool {
		return intake.Len() == 0 && kv.Len() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
