package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"loadtest-stats/internal/stats"
)

// S3Writer persists snapshot JSON objects to an S3 bucket, laid out as
// <prefix>/<tag>/<timestamp>.stats.json so downstream ETL can partition by
// tag.
type S3Writer struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewS3Writer creates a writer for the given bucket and key prefix
func NewS3Writer(awsCfg aws.Config, bucket, prefix string, logger *zap.Logger) *S3Writer {
	return &S3Writer{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// Write uploads the snapshot and returns the object key
func (w *S3Writer) Write(ctx context.Context, snapshot *stats.AggregatedStats) (string, error) {
	data, err := snapshot.ToJSON()
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	key := w.objectKey(snapshot)
	_, err = w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot to s3://%s/%s: %w", w.bucket, key, err)
	}

	w.logger.Info("snapshot uploaded",
		zap.String("bucket", w.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return key, nil
}

func (w *S3Writer) objectKey(snapshot *stats.AggregatedStats) string {
	tag := "stats"
	timestamp := time.Now().Unix()
	if md := snapshot.Metadata; md != nil {
		tag = md.Tag
		timestamp = md.Timestamp
	}
	if w.prefix == "" {
		return fmt.Sprintf("%s/%d.stats.json", tag, timestamp)
	}
	return fmt.Sprintf("%s/%s/%d.stats.json", w.prefix, tag, timestamp)
}
