package harness

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Task is one named unit of simulated work executed repeatedly by virtual
// users. Run performs a single iteration; a non-nil error counts as a
// failure for that task's statistics.
type Task struct {
	Name   string
	Method string
	Run    func(ctx context.Context) error
}

// NewHTTPTask builds a task that issues a single HTTP request per
// iteration. Responses with a 4xx or 5xx status count as failures.
func NewHTTPTask(name, method, url string, client *http.Client) Task {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return Task{
		Name:   name,
		Method: method,
		Run: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, method, url, nil)
			if err != nil {
				return fmt.Errorf("failed to build request: %w", err)
			}

			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			// Drain so the connection can be reused
			io.Copy(io.Discard, resp.Body)

			if resp.StatusCode >= 400 {
				return fmt.Errorf("request failed with status %d", resp.StatusCode)
			}
			return nil
		},
	}
}
