package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"go.uber.org/zap"

	"loadtest-stats/internal/config"
	"loadtest-stats/internal/stats"
)

// AthenaReader reconstructs previously stored task statistics from the
// analytic table the ETL pipeline loads snapshots into. Every result column
// comes back as VARCHAR, so values are parsed against the declared field
// layout before row reconstruction.
type AthenaReader struct {
	client       *athena.Client
	cfg          config.AthenaConfig
	logger       *zap.Logger
	pollInterval time.Duration
}

// NewAthenaReader creates a reader for the configured snapshot table
func NewAthenaReader(awsCfg aws.Config, cfg config.AthenaConfig, logger *zap.Logger) *AthenaReader {
	return &AthenaReader{
		client:       athena.NewFromConfig(awsCfg),
		cfg:          cfg,
		logger:       logger,
		pollInterval: 2 * time.Second,
	}
}

// ReadTaskStats queries the latest stored per-task rows for the given tag
// and reconstructs them into a snapshot. Metadata is not part of the
// per-task rows, so the returned snapshot carries tasks only.
func (r *AthenaReader) ReadTaskStats(ctx context.Context, tag string) (*stats.AggregatedStats, error) {
	query := fmt.Sprintf(`SELECT %s FROM "%s"."%s" WHERE tag = '%s' ORDER BY task_name, request_method`,
		strings.Join(stats.TaskStatsColumns(), ", "),
		r.cfg.Database, r.cfg.Table,
		strings.ReplaceAll(tag, "'", "''"),
	)

	executionID, err := r.startQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := r.waitForQuery(ctx, executionID); err != nil {
		return nil, err
	}

	rows, err := r.fetchRows(ctx, executionID)
	if err != nil {
		return nil, err
	}

	tasks := make([]stats.TaskStats, 0, len(rows))
	for i, row := range rows {
		values, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		task, err := stats.TaskStatsFromRow(values)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		tasks = append(tasks, task)
	}

	r.logger.Info("loaded stored task stats",
		zap.String("tag", tag),
		zap.String("query_execution_id", executionID),
		zap.Int("tasks", len(tasks)),
	)
	return stats.NewAggregatedStats(nil, tasks)
}

func (r *AthenaReader) startQuery(ctx context.Context, query string) (string, error) {
	input := &athena.StartQueryExecutionInput{
		QueryString: aws.String(query),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(r.cfg.Database),
		},
	}
	if r.cfg.WorkGroup != "" {
		input.WorkGroup = aws.String(r.cfg.WorkGroup)
	}
	if r.cfg.OutputLocation != "" {
		input.ResultConfiguration = &types.ResultConfiguration{
			OutputLocation: aws.String(r.cfg.OutputLocation),
		}
	}

	out, err := r.client.StartQueryExecution(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to start Athena query: %w", err)
	}
	return aws.ToString(out.QueryExecutionId), nil
}

// waitForQuery polls until the query reaches a terminal state
func (r *AthenaReader) waitForQuery(ctx context.Context, executionID string) error {
	for {
		out, err := r.client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(executionID),
		})
		if err != nil {
			return fmt.Errorf("failed to poll Athena query: %w", err)
		}

		state := out.QueryExecution.Status.State
		switch state {
		case types.QueryExecutionStateSucceeded:
			return nil
		case types.QueryExecutionStateFailed, types.QueryExecutionStateCancelled:
			reason := ""
			if out.QueryExecution.Status.StateChangeReason != nil {
				reason = *out.QueryExecution.Status.StateChangeReason
			}
			return fmt.Errorf("Athena query %s: %s", strings.ToLower(string(state)), reason)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.pollInterval):
		}
	}
}

// fetchRows pages through the query results, skipping the header row
func (r *AthenaReader) fetchRows(ctx context.Context, executionID string) ([][]string, error) {
	var rows [][]string
	first := true

	paginator := athena.NewGetQueryResultsPaginator(r.client, &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(executionID),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch Athena results: %w", err)
		}
		for _, row := range page.ResultSet.Rows {
			if first {
				// The first row of the first page is the column header
				first = false
				continue
			}
			cols := make([]string, len(row.Data))
			for i, datum := range row.Data {
				cols[i] = aws.ToString(datum.VarCharValue)
			}
			rows = append(rows, cols)
		}
	}
	return rows, nil
}

// columnParsers converts each VARCHAR result column to the native type its
// TaskStats field expects, in field declaration order
var columnParsers = []func(string) (any, error){
	parseString, // task_name
	parseString, // request_method
	parseInt,    // num_requests
	parseInt,    // num_failures
	parseInt,    // median_response_time
	parseFloat,  // average_response_time
	parseFloat,  // min_response_time
	parseFloat,  // max_response_time
	parseFloat,  // total_reqs_per_second
	parseFloat,  // total_fails_per_sec
	parseIntArray,
}

// parseRow converts one result row's columns into the flat value sequence
// consumed by stats.TaskStatsFromRow
func parseRow(cols []string) ([]any, error) {
	if len(cols) != len(columnParsers) {
		return nil, fmt.Errorf("%w: result row has %d columns, expected %d",
			stats.ErrSchemaDrift, len(cols), len(columnParsers))
	}

	values := make([]any, len(cols))
	for i, col := range cols {
		v, err := columnParsers[i](col)
		if err != nil {
			return nil, fmt.Errorf("%w: column %d (%q): %v", stats.ErrSchemaDrift, i, col, err)
		}
		values[i] = v
	}
	return values, nil
}

func parseString(s string) (any, error) {
	return s, nil
}

func parseInt(s string) (any, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseFloat(s string) (any, error) {
	return strconv.ParseFloat(s, 64)
}

// parseIntArray parses Athena's VARCHAR form of an array column, e.g.
// "[120, 450, 0]"
func parseIntArray(s string) (any, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, fmt.Errorf("value %q is not an array", s)
	}
	inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	if inner == "" {
		return []any{}, nil
	}

	parts := strings.Split(inner, ",")
	out := make([]any, len(parts))
	for i, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}
