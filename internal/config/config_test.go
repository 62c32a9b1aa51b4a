package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		AWS: AWSConfig{Region: "us-east-1"},
		Test: TestConfig{
			Host: "https://example.test",
			Tasks: []TaskConfig{
				{Name: "GetPatient", Method: "GET", Path: "/v2/fhir/Patient"},
			},
			NumUsers:        10,
			SpawnRate:       1.0,
			DurationSeconds: 60,
			Tag:             "release-42",
			Environment:     "TEST",
		},
		Storage: StorageConfig{Dir: "./stats"},
		Output:  OutputConfig{ReportFile: "report.md"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing host",
			mutate:  func(c *Config) { c.Test.Host = "" },
			wantErr: "test.host",
		},
		{
			name:    "no tasks",
			mutate:  func(c *Config) { c.Test.Tasks = nil },
			wantErr: "test.tasks",
		},
		{
			name:    "task missing method",
			mutate:  func(c *Config) { c.Test.Tasks[0].Method = "" },
			wantErr: "test.tasks[0].method",
		},
		{
			name:    "zero users",
			mutate:  func(c *Config) { c.Test.NumUsers = 0 },
			wantErr: "test.num_users",
		},
		{
			name:    "negative spawn rate",
			mutate:  func(c *Config) { c.Test.SpawnRate = -1 },
			wantErr: "test.spawn_rate",
		},
		{
			name:    "zero duration",
			mutate:  func(c *Config) { c.Test.DurationSeconds = 0 },
			wantErr: "test.duration_seconds",
		},
		{
			name:    "missing tag",
			mutate:  func(c *Config) { c.Test.Tag = "" },
			wantErr: "test.tag",
		},
		{
			name: "s3 without region",
			mutate: func(c *Config) {
				c.AWS.Region = ""
				c.Storage.Bucket = "stats-bucket"
			},
			wantErr: "aws.region",
		},
		{
			name: "no storage target",
			mutate: func(c *Config) {
				c.Storage.Dir = ""
				c.Storage.Bucket = ""
			},
			wantErr: "storage.dir or storage.bucket",
		},
		{
			name: "athena database without table",
			mutate: func(c *Config) {
				c.Storage.Athena.Database = "stats_db"
			},
			wantErr: "storage.athena.table",
		},
		{
			name:    "missing report file",
			mutate:  func(c *Config) { c.Output.ReportFile = "" },
			wantErr: "output.report_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
