package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositorySaveGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewRepository(4, time.Hour)
	o, _ := newTestOrchestrator(t)

	require.NoError(t, repo.Save(ctx, o))
	assert.Equal(t, 1, repo.Len())

	got, err := repo.GetByID(ctx, o.ID())
	require.NoError(t, err)
	assert.Same(t, o, got)

	require.NoError(t, repo.Delete(ctx, o.ID()))
	_, err = repo.GetByID(ctx, o.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, repo.Delete(ctx, o.ID()), ErrSessionNotFound)
	require.ErrorIs(t, repo.Delete(ctx, uuid.New()), ErrSessionNotFound)
}

func TestRepositoryEvictionClosesSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewRepository(1, time.Hour)

	first, sched := newTestOrchestrator(t, 1)
	updates := first.Subscribe(ctx)
	_, err := first.SelectImage(pngUpload(t))
	require.NoError(t, err)
	require.NoError(t, first.StartAnalysis())
	require.NoError(t, repo.Save(ctx, first))

	second, _ := newTestOrchestrator(t)
	require.NoError(t, repo.Save(ctx, second))

	_, err = repo.GetByID(ctx, first.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 1, repo.Len())

	for range updates {
	}
	assertIdle(t, first.Snapshot())
	assert.Zero(t, sched.Pending())
}

func TestRepositoryExpiresIdleSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewRepository(4, 20*time.Millisecond)
	o, sched := newTestOrchestrator(t, 1)
	updates := o.Subscribe(ctx)
	_, err := o.SelectImage(pngUpload(t))
	require.NoError(t, err)
	require.NoError(t, o.StartAnalysis())
	require.NoError(t, repo.Save(ctx, o))

	// Wait on the subscription rather than GetByID, which renews the session.
	require.Eventually(t, func() bool { return closed(updates) }, time.Second, 5*time.Millisecond)

	_, err = repo.GetByID(ctx, o.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
	assertIdle(t, o.Snapshot())
	assert.Zero(t, sched.Pending())
}

func TestRepositoryTouchRenews(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewRepository(4, 100*time.Millisecond)
	o, _ := newTestOrchestrator(t)
	require.NoError(t, repo.Save(ctx, o))

	for range 8 {
		time.Sleep(20 * time.Millisecond)
		require.NoError(t, repo.Touch(ctx, o.ID()))
	}
	_, err := repo.GetByID(ctx, o.ID())
	require.NoError(t, err)

	require.ErrorIs(t, repo.Touch(ctx, uuid.New()), ErrSessionNotFound)
}

// closed drains ch and reports whether it has been closed.
func closed(ch <-chan Snapshot) bool {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return true
			}
		default:
			return false
		}
	}
}
