package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_CallbackRunsBeforeDone(t *testing.T) {
	applied := false
	task := Go(context.Background(), func(context.Context) (int, error) {
		return 7, nil
	}, func(r Result[int]) {
		applied = r.OK() && r.Value == 7
	})

	v, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.True(t, applied)

	r, done := task.Result()
	assert.True(t, done)
	assert.Equal(t, 7, r.Value)
}

func TestTask_Failure(t *testing.T) {
	boom := errors.New("boom")
	var got error
	task := Go(context.Background(), func(context.Context) (string, error) {
		return "", boom
	}, func(r Result[string]) { got = r.Err })

	_, err := task.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, got, boom)
}

func TestTask_WaitGivesUpWithoutStoppingTask(t *testing.T) {
	release := make(chan struct{})
	task := Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, done := task.Result()
	assert.False(t, done)

	close(release)
	v, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestCompleted(t *testing.T) {
	task := Completed(Result[int]{Value: 3})
	select {
	case <-task.Done():
	default:
		t.Fatal("completed task should be done")
	}
	v, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}
