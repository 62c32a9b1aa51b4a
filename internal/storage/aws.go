package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"loadtest-stats/internal/config"
)

// NewAWSConfig builds the AWS SDK configuration used by the S3 and Athena
// clients. If no static credentials are configured, the default credential
// chain (env, shared credentials, IAM role, etc.) is used.
func NewAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	}

	return aws.Config{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	}, nil
}
