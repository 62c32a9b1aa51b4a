package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config represents the complete configuration for a load-test run
type Config struct {
	AWS     AWSConfig     `json:"aws"`
	Test    TestConfig    `json:"test"`
	Storage StorageConfig `json:"storage"`
	Output  OutputConfig  `json:"output"`
}

// AWSConfig contains AWS credentials and region
type AWSConfig struct {
	Region          string `json:"region"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

// TestConfig contains load-test parameters
type TestConfig struct {
	Host                 string       `json:"host"`
	Tasks                []TaskConfig `json:"tasks"`
	NumUsers             int          `json:"num_users"`
	SpawnRate            float64      `json:"spawn_rate"`
	DurationSeconds      int          `json:"duration_seconds"`
	ResetStatsAfterSpawn bool         `json:"reset_stats_after_spawn"`
	Tag                  string       `json:"tag"`
	Environment          string       `json:"environment"`
}

// TaskConfig defines one simulated API call
type TaskConfig struct {
	Name   string `json:"name"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

// StorageConfig defines where collected snapshots are persisted and where
// previous runs are queried from
type StorageConfig struct {
	Dir    string       `json:"dir"`
	Bucket string       `json:"bucket"`
	Prefix string       `json:"prefix"`
	Athena AthenaConfig `json:"athena"`
}

// AthenaConfig identifies the table holding previously stored snapshots
type AthenaConfig struct {
	Database       string `json:"database"`
	Table          string `json:"table"`
	WorkGroup      string `json:"workgroup"`
	OutputLocation string `json:"output_location"`
}

// OutputConfig defines report output settings
type OutputConfig struct {
	ReportFile string `json:"report_file"`
}

// LoadConfig reads and parses the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Test.Host == "" {
		return fmt.Errorf("test.host is required")
	}
	if len(c.Test.Tasks) == 0 {
		return fmt.Errorf("test.tasks must define at least one task")
	}
	for i, task := range c.Test.Tasks {
		if task.Name == "" {
			return fmt.Errorf("test.tasks[%d].name is required", i)
		}
		if task.Method == "" {
			return fmt.Errorf("test.tasks[%d].method is required", i)
		}
		if task.Path == "" {
			return fmt.Errorf("test.tasks[%d].path is required", i)
		}
	}
	if c.Test.NumUsers <= 0 {
		return fmt.Errorf("test.num_users must be positive")
	}
	if c.Test.SpawnRate <= 0 {
		return fmt.Errorf("test.spawn_rate must be positive")
	}
	if c.Test.DurationSeconds <= 0 {
		return fmt.Errorf("test.duration_seconds must be positive")
	}
	if c.Test.Tag == "" {
		return fmt.Errorf("test.tag is required")
	}
	// region is only needed when S3 or Athena storage is configured
	if (c.Storage.Bucket != "" || c.Storage.Athena.Database != "") && c.AWS.Region == "" {
		return fmt.Errorf("aws.region is required when S3 or Athena storage is configured")
	}
	// access_key_id and secret_access_key are optional
	// if empty, the SDK will use default credential chain
	if c.Storage.Dir == "" && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.dir or storage.bucket is required")
	}
	if c.Storage.Athena.Database != "" && c.Storage.Athena.Table == "" {
		return fmt.Errorf("storage.athena.table is required when storage.athena.database is set")
	}
	if c.Output.ReportFile == "" {
		return fmt.Errorf("output.report_file is required")
	}

	return nil
}
