package scheduler

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/models"
)

func TestService_StartStopIdempotent(t *testing.T) {
	svc := NewService(context.Background(), NewBatch(nil, nil, 0, arbor.NewLogger()), nil, arbor.NewLogger())

	assert.False(t, svc.IsRunning())
	assert.Nil(t, svc.NextRun())

	require.NoError(t, svc.Start("0 7 * * *"))
	require.NoError(t, svc.Start("0 7 * * *"))
	assert.True(t, svc.IsRunning())

	next := svc.NextRun()
	require.NotNil(t, next)
	assert.Equal(t, 7, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.True(t, next.After(time.Now()))

	require.NoError(t, svc.Stop())
	require.NoError(t, svc.Stop())
	assert.False(t, svc.IsRunning())
	assert.Nil(t, svc.NextRun())

	// restartable after stop
	require.NoError(t, svc.Start(""))
	assert.True(t, svc.IsRunning())
	require.NoError(t, svc.Stop())
}

func TestService_StartRejectsBadSchedule(t *testing.T) {
	svc := NewService(context.Background(), NewBatch(nil, nil, 0, arbor.NewLogger()), nil, arbor.NewLogger())
	assert.Error(t, svc.Start("every morning"))
	assert.False(t, svc.IsRunning())
}

func TestService_OverlappingTriggersAreSkipped(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	finished := make(chan struct{})

	batch := NewBatch([]Step{{Name: "slow", Wave: 1, Run: func(ctx context.Context) error {
		close(started)
		<-unblock
		return nil
	}}}, nil, 0, arbor.NewLogger())

	var mu sync.Mutex
	var skipped int
	batch.Subscribe(func(e models.BatchEvent) {
		mu.Lock()
		defer mu.Unlock()
		switch e.Type {
		case models.BatchSkipped:
			skipped++
		case models.BatchCompleted:
			close(finished)
		}
	})

	svc := NewService(context.Background(), batch, NewLocalLocker(), arbor.NewLogger())

	require.NoError(t, svc.TriggerBatch())
	<-started

	assert.ErrorIs(t, svc.TriggerBatch(), ErrBatchInProgress)
	assert.ErrorIs(t, svc.TriggerAnalysis(), ErrBatchInProgress)
	_, err := svc.RunBatch(context.Background())
	assert.ErrorIs(t, err, ErrBatchInProgress)

	close(unblock)
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("background batch did not finish")
	}

	mu.Lock()
	assert.Equal(t, 3, skipped)
	mu.Unlock()

	// lock is released once the run returns
	assert.Eventually(t, func() bool {
		release, err := svc.locker.TryLock(context.Background())
		if err != nil {
			return false
		}
		release()
		return true
	}, 2*time.Second, 10*time.Millisecond)
}

func TestService_RunAnalysis(t *testing.T) {
	ran := false
	batch := NewBatch(nil, func(ctx context.Context) error { ran = true; return nil }, 0, arbor.NewLogger())
	svc := NewService(context.Background(), batch, nil, arbor.NewLogger())

	outcome, err := svc.RunAnalysis(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, outcome.Succeeded())
}

func TestLocalLocker(t *testing.T) {
	locker := NewLocalLocker()

	release, err := locker.TryLock(context.Background())
	require.NoError(t, err)

	_, err = locker.TryLock(context.Background())
	assert.ErrorIs(t, err, ErrBatchInProgress)

	release()
	release, err = locker.TryLock(context.Background())
	require.NoError(t, err)
	release()
}

func TestRedisLocker(t *testing.T) {
	url := os.Getenv("AUGUR_TEST_REDIS_URL")
	if url == "" {
		t.Skip("AUGUR_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	first, err := NewRedisLocker(ctx, url, time.Minute)
	require.NoError(t, err)
	defer first.Close()
	second, err := NewRedisLocker(ctx, url, time.Minute)
	require.NoError(t, err)
	defer second.Close()

	release, err := first.TryLock(ctx)
	require.NoError(t, err)

	_, err = second.TryLock(ctx)
	assert.ErrorIs(t, err, ErrBatchInProgress)

	release()
	release, err = second.TryLock(ctx)
	require.NoError(t, err)
	release()
}
