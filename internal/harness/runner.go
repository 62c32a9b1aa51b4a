package harness

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"loadtest-stats/internal/config"
	"loadtest-stats/internal/report"
	"loadtest-stats/internal/stats"
)

// Runner orchestrates one load-test run: it spawns the virtual users,
// drives the tasks for the configured duration, and collects the final
// statistics snapshot.
type Runner struct {
	config    *config.Config
	registry  *Registry
	collector *stats.Collector
	console   *report.ConsoleReporter
	logger    *zap.Logger
}

// NewRunner creates a new runner from the run configuration
func NewRunner(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	environment := stats.EnvironmentTest
	if cfg.Test.Environment != "" {
		var err error
		environment, err = stats.ParseEnvironment(cfg.Test.Environment)
		if err != nil {
			return nil, err
		}
	}

	registry := NewRegistry(cfg.Test.NumUsers, cfg.Test.SpawnRate, cfg.Test.ResetStatsAfterSpawn)

	return &Runner{
		config:    cfg,
		registry:  registry,
		collector: stats.NewCollector(registry, cfg.Test.Tag, environment),
		console:   report.NewConsoleReporter(),
		logger:    logger,
	}, nil
}

// Registry returns the live statistics source for this run
func (r *Runner) Registry() *Registry {
	return r.registry
}

// Run executes the load test and returns the final snapshot
func (r *Runner) Run(ctx context.Context) (*stats.AggregatedStats, error) {
	r.console.PrintHeader(r.config)

	tasks := r.buildTasks()
	pool := NewWorkerPool(r.registry, tasks, r.config.Test.NumUsers, r.config.Test.SpawnRate)

	// Create a context bounding the whole run
	testCtx, cancel := context.WithTimeout(ctx, time.Duration(r.config.Test.DurationSeconds)*time.Second)
	defer cancel()

	r.logger.Info("starting load test",
		zap.String("tag", r.config.Test.Tag),
		zap.Int("users", r.config.Test.NumUsers),
		zap.Float64("spawn_rate", r.config.Test.SpawnRate),
	)

	// Spawn users gradually, then optionally reset the ramp-up noise out of
	// the counters
	go func() {
		pool.Spawn(testCtx)
		r.logger.Info("all users spawned", zap.Int("users", r.config.Test.NumUsers))
		if r.config.Test.ResetStatsAfterSpawn && testCtx.Err() == nil {
			r.registry.ResetAll()
			r.logger.Info("stats reset after spawn")
		}
	}()

	// Create a ticker for progress updates
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	// Monitor progress
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-testCtx.Done():
				close(done)
				return
			case <-ticker.C:
				r.console.PrintProgress(r.collector.Collect())
			}
		}
	}()

	// Wait for the run to complete
	<-testCtx.Done()
	<-done

	// Stop all users
	pool.Stop()

	if err := ctx.Err(); err != nil && testCtx.Err() != context.DeadlineExceeded {
		return nil, fmt.Errorf("load test interrupted: %w", err)
	}

	snapshot := r.collector.Collect()
	r.console.PrintStats(snapshot)

	return snapshot, nil
}

// buildTasks converts the configured task list into executable HTTP tasks
func (r *Runner) buildTasks() []Task {
	client := &http.Client{Timeout: 30 * time.Second}

	tasks := make([]Task, 0, len(r.config.Test.Tasks))
	for _, tc := range r.config.Test.Tasks {
		tasks = append(tasks, NewHTTPTask(tc.Name, tc.Method, r.config.Test.Host+tc.Path, client))
	}
	return tasks
}
