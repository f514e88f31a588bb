package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecuteAllPreservesOrder(t *testing.T) {
	t.Parallel()

	const total = 10
	pool := NewWorkerPool(3, nil)

	var inFlight, peak atomic.Int32
	tasks := make([]Task[int], total)
	for i := range tasks {
		tasks[i] = func(context.Context) (int, error) {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			// Later tasks finish first.
			time.Sleep(time.Duration(total-i) * time.Millisecond)
			inFlight.Add(-1)
			return i * i, nil
		}
	}

	var mu sync.Mutex
	var progress []int
	var totals []int
	res := ExecuteAll(context.Background(), pool, tasks, func(done, all int, _ error) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, done)
		totals = append(totals, all)
	})

	require.Equal(t, total, res.SuccessCount)
	require.Zero(t, res.ErrorCount)
	require.Len(t, res.Results, total)
	for i, v := range res.Results {
		require.Equal(t, i*i, v)
		require.NoError(t, res.Errors[i])
	}
	require.LessOrEqual(t, peak.Load(), int32(3))
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, progress)
	for _, all := range totals {
		require.Equal(t, total, all)
	}
}

func TestExecuteAllSettlesFailures(t *testing.T) {
	t.Parallel()

	pool := NewWorkerPool(2, nil)
	boom := errors.New("boom")
	tasks := []Task[string]{
		func(context.Context) (string, error) { return "a", nil },
		func(context.Context) (string, error) { return "", boom },
		func(context.Context) (string, error) { panic("kaboom") },
		func(context.Context) (string, error) { return "d", nil },
	}

	var lastErrs []error
	var mu sync.Mutex
	res := ExecuteAll(context.Background(), pool, tasks, func(_, _ int, err error) {
		mu.Lock()
		defer mu.Unlock()
		lastErrs = append(lastErrs, err)
	})

	require.Equal(t, 2, res.SuccessCount)
	require.Equal(t, 2, res.ErrorCount)
	require.Equal(t, "a", res.Results[0])
	require.ErrorIs(t, res.Errors[1], boom)
	require.ErrorContains(t, res.Errors[2], "kaboom")
	require.Equal(t, "d", res.Results[3])
	require.Len(t, lastErrs, 4)
}

func TestExecuteAllCanceledContext(t *testing.T) {
	t.Parallel()

	pool := NewWorkerPool(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := atomic.Int32{}
	tasks := make([]Task[int], 5)
	for i := range tasks {
		tasks[i] = func(context.Context) (int, error) {
			ran.Add(1)
			return i, nil
		}
	}
	res := ExecuteAll(ctx, pool, tasks, nil)
	require.Equal(t, 5, res.ErrorCount)
	require.Zero(t, ran.Load())
	for _, err := range res.Errors {
		require.ErrorIs(t, err, context.Canceled)
	}
}

func ExampleExecuteAll() {
	pool := NewWorkerPool(2, nil)
	tasks := []Task[string]{
		func(context.Context) (string, error) { return "meny", nil },
		func(context.Context) (string, error) { return "kontakt", nil },
	}
	res := ExecuteAll(context.Background(), pool, tasks, nil)
	fmt.Println(res.Results, res.SuccessCount)
	// Output: [meny kontakt] 2
}
