package harness

import (
	"context"
	"sync"
	"time"
)

// WorkerPool manages the virtual users of one test run. Each user loops
// over the configured tasks in order, timing every iteration and recording
// it into the registry.
type WorkerPool struct {
	registry  *Registry
	tasks     []Task
	userCount int
	spawnRate float64
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewWorkerPool creates a pool that will spawn userCount virtual users at
// spawnRate users per second
func NewWorkerPool(registry *Registry, tasks []Task, userCount int, spawnRate float64) *WorkerPool {
	return &WorkerPool{
		registry:  registry,
		tasks:     tasks,
		userCount: userCount,
		spawnRate: spawnRate,
		stopChan:  make(chan struct{}),
	}
}

// Spawn starts virtual users gradually at the configured spawn rate. It
// returns once every user has been started or the context is cancelled.
func (wp *WorkerPool) Spawn(ctx context.Context) {
	interval := time.Duration(float64(time.Second) / wp.spawnRate)

	for i := 0; i < wp.userCount; i++ {
		wp.wg.Add(1)
		go wp.user(ctx)

		if i == wp.userCount-1 {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// Stop signals all users to stop and waits for them to finish
func (wp *WorkerPool) Stop() {
	close(wp.stopChan)
	wp.wg.Wait()
}

// user is the main virtual-user loop
func (wp *WorkerPool) user(ctx context.Context) {
	defer wp.wg.Done()

	for {
		for _, task := range wp.tasks {
			select {
			case <-wp.stopChan:
				return
			case <-ctx.Done():
				return
			default:
			}

			started := time.Now()
			err := task.Run(ctx)
			wp.registry.Record(task.Name, task.Method, time.Since(started), err)
		}
	}
}
