package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTracksLifecycle(t *testing.T) {
	r := New()
	err := r.Run(context.Background(), "job", func(ctx context.Context) error {
		st, ok := r.Lookup("job")
		require.True(t, ok)
		assert.True(t, st.Running)
		assert.False(t, st.StartedAt.IsZero())
		return nil
	})
	require.NoError(t, err)

	st, ok := r.Lookup("job")
	require.True(t, ok)
	assert.False(t, st.Running)
	require.NotNil(t, st.StoppedAt)
	assert.Empty(t, st.Error)
}

func TestRunRecordsFailure(t *testing.T) {
	r := New()
	boom := errors.New("boom")
	err := r.Run(context.Background(), "job", func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	st, _ := r.Lookup("job")
	assert.Equal(t, "boom", st.Error)
}

func TestRunSuppressesErrorAfterCancel(t *testing.T) {
	r := New()
	ctx, cancel := context.WithCancel(context.Background())
	err := r.Run(ctx, "job", func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})
	assert.Error(t, err)

	// Cancellation is a clean stop; the status carries no error.
	st, _ := r.Lookup("job")
	assert.Empty(t, st.Error)
}

func TestRunRejectsDuplicateName(t *testing.T) {
	r := New()
	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.Run(context.Background(), "job", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	err := r.Run(context.Background(), "job", func(ctx context.Context) error { return nil })
	assert.ErrorContains(t, err, "already running")

	close(release)
	wg.Wait()

	// Once stopped, the name can run again.
	err = r.Run(context.Background(), "job", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestRunRejectsNilTask(t *testing.T) {
	r := New()
	assert.Error(t, r.Run(context.Background(), "job", nil))
}

func TestStatusesSnapshot(t *testing.T) {
	r := New()
	require.NoError(t, r.Run(context.Background(), "a", func(ctx context.Context) error { return nil }))
	require.NoError(t, r.Run(context.Background(), "b", func(ctx context.Context) error { return nil }))

	statuses := r.Statuses()
	assert.Len(t, statuses, 2)
	for _, st := range statuses {
		assert.False(t, st.Running)
		assert.WithinDuration(t, time.Now().UTC(), st.StartedAt, time.Minute)
	}
}
