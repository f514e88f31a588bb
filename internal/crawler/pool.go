package crawler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Task is one unit of work submitted to a WorkerPool.
type Task[T any] func(ctx context.Context) (T, error)

// ProgressFunc is called after every task completion.
type ProgressFunc func(completed, total int, lastErr error)

// PoolResult holds the settled outcome of a batch. Results[i] and Errors[i]
// always belong to tasks[i].
type PoolResult[T any] struct {
	Results      []T
	Errors       []error
	SuccessCount int
	ErrorCount   int
}

// WorkerPool runs tasks with bounded concurrency.
type WorkerPool struct {
	concurrency int
	logger      *zap.Logger
}

// NewWorkerPool returns a pool running at most concurrency tasks at once.
func NewWorkerPool(concurrency int, logger *zap.Logger) *WorkerPool {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{concurrency: concurrency, logger: logger}
}

// Concurrency returns the slot count.
func (p *WorkerPool) Concurrency() int {
	return p.concurrency
}

// ExecuteAll runs every task, starting each as soon as a slot frees. One
// task failing never stops the others. If ctx is canceled, tasks that have
// not started yet settle with the context error.
func ExecuteAll[T any](ctx context.Context, p *WorkerPool, tasks []Task[T], onProgress ProgressFunc) PoolResult[T] {
	res := PoolResult[T]{
		Results: make([]T, len(tasks)),
		Errors:  make([]error, len(tasks)),
	}
	sem := semaphore.NewWeighted(int64(p.concurrency))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)
	settle := func(i int, v T, err error) {
		mu.Lock()
		defer mu.Unlock()
		res.Results[i] = v
		res.Errors[i] = err
		if err != nil {
			res.ErrorCount++
		} else {
			res.SuccessCount++
		}
		completed++
		if onProgress != nil {
			onProgress(completed, len(tasks), err)
		}
	}

	for i, task := range tasks {
		if err := sem.Acquire(ctx, 1); err != nil {
			var zero T
			settle(i, zero, fmt.Errorf("task %d not started: %w", i, err))
			continue
		}
		wg.Add(1)
		go func(i int, task Task[T]) {
			defer wg.Done()
			defer sem.Release(1)
			v, err := runTask(ctx, task)
			if err != nil {
				p.logger.Debug("pool task failed", zap.Int("index", i), zap.Error(err))
			}
			settle(i, v, err)
		}(i, task)
	}
	wg.Wait()
	return res
}

func runTask[T any](ctx context.Context, task Task[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task(ctx)
}
