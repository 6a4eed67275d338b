package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	transferapp "github.com/pharmanet/backend/internal/application/transfer"
)

type countingSweeper struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSweeper) ExpireOverdue(_ context.Context) (*transferapp.ExpiredRequestStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return &transferapp.ExpiredRequestStats{ProcessedAt: time.Now()}, nil
}

func (s *countingSweeper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestExpiryScheduler_SweepsOnStartAndInterval(t *testing.T) {
	sweeper := &countingSweeper{}
	sched := NewExpiryScheduler(ExpirySchedulerConfig{
		CheckInterval: 10 * time.Millisecond,
		SweepTimeout:  time.Second,
	}, sweeper, zap.NewNop())

	require.NoError(t, sched.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return sweeper.count() >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, sched.Stop(context.Background()))
}

func TestExpiryScheduler_StartTwiceIsNoOp(t *testing.T) {
	sweeper := &countingSweeper{}
	sched := NewExpiryScheduler(DefaultExpirySchedulerConfig(), sweeper, zap.NewNop())

	require.NoError(t, sched.Start(context.Background()))
	require.NoError(t, sched.Start(context.Background()))
	require.NoError(t, sched.Stop(context.Background()))
}

func TestExpiryScheduler_StopWithoutStart(t *testing.T) {
	sched := NewExpiryScheduler(DefaultExpirySchedulerConfig(), &countingSweeper{}, zap.NewNop())
	require.NoError(t, sched.Stop(context.Background()))
}
