package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/internal/pkg/async"
)

func TestPoolExecute(t *testing.T) {
	pool := async.NewPool(2)

	tasks := []async.Task{
		{Name: "one", Execute: func() (any, error) { return 1, nil }},
		{Name: "two", Execute: func() (any, error) { return "two", nil }},
		{Name: "broken", Execute: func() (any, error) { return nil, errors.New("boom") }},
	}

	results := pool.Execute(context.Background(), tasks)
	require.Len(t, results, 3)

	assert.Equal(t, 1, results["one"].Data)
	assert.NoError(t, results["one"].Err)
	assert.Equal(t, "two", results["two"].Data)
	assert.EqualError(t, results["broken"].Err, "boom")
}

func TestPoolRecoversPanics(t *testing.T) {
	pool := async.NewPool(1)

	results := pool.Execute(context.Background(), []async.Task{
		{Name: "panics", Execute: func() (any, error) { panic("bad stage") }},
		{Name: "fine", Execute: func() (any, error) { return true, nil }},
	})

	require.Len(t, results, 2)
	assert.ErrorContains(t, results["panics"].Err, "bad stage")
	assert.Equal(t, true, results["fine"].Data)
}

func TestPoolIsReusable(t *testing.T) {
	pool := async.NewPool(3)
	var calls atomic.Int32

	task := async.Task{Name: "count", Execute: func() (any, error) {
		calls.Add(1)
		return nil, nil
	}}

	for range 3 {
		results := pool.Execute(context.Background(), []async.Task{task})
		assert.Len(t, results, 1)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestPoolStopsOnCancel(t *testing.T) {
	pool := async.NewPool(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	results := pool.Execute(ctx, []async.Task{
		{Name: "slow", Execute: func() (any, error) {
			<-release
			return nil, nil
		}},
	})

	assert.Empty(t, results)
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}

func TestNewPoolClampsWorkers(t *testing.T) {
	assert.Equal(t, 1, async.NewPool(0).Workers())
	assert.Equal(t, 4, async.NewPool(4).Workers())
}
