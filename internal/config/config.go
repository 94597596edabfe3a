// Package config provides unified configuration for the monitoring toolkit.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode represents the toolkit operation to run.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeTraffic  Mode = "traffic"
	ModeDescribe Mode = "describe"
	ModeBaseline Mode = "baseline"
	ModeCheck    Mode = "check"
	ModeSchedule Mode = "schedule"
	ModeRuns     Mode = "runs"
)

// Config holds the unified configuration for the monitoring toolkit.
type Config struct {
	// Mode specifies the operation: generate, traffic, describe, baseline, check, schedule, runs
	Mode Mode `json:"mode" yaml:"mode"`

	// Region is the AWS region for all service clients
	Region string `json:"region" yaml:"region"`

	// Endpoint is the SageMaker endpoint to monitor
	Endpoint EndpointConfig `json:"endpoint" yaml:"endpoint"`

	// Bucket is the S3 bucket holding datasets, capture data, and baselines
	Bucket string `json:"bucket" yaml:"bucket"`

	// Prefixes are the S3 key prefixes for each artifact kind
	Prefixes PrefixConfig `json:"prefixes" yaml:"prefixes"`

	// Traffic configures synthetic traffic generation
	Traffic TrafficConfig `json:"traffic" yaml:"traffic"`

	// Schedule configures the monitoring schedule
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule"`

	// Metrics configures Prometheus exposition
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// LedgerPath is the path to the local run ledger database
	LedgerPath string `json:"ledger_path" yaml:"ledger_path"`

	// DataDir is the base directory for local files (ledger, downloads)
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// EndpointConfig identifies the endpoint under monitoring.
type EndpointConfig struct {
	// Name is the SageMaker endpoint name
	Name string `json:"name" yaml:"name"`

	// ContentType is the request content type sent on invoke
	ContentType string `json:"content_type" yaml:"content_type"`

	// Timeout bounds a single invocation
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// PrefixConfig holds the S3 key prefixes for toolkit artifacts.
type PrefixConfig struct {
	// Data is the prefix for generated datasets
	Data string `json:"data" yaml:"data"`

	// Capture is the prefix the endpoint's data capture writes to
	Capture string `json:"capture" yaml:"capture"`

	// Baseline is the prefix holding statistics.json and constraints.json
	Baseline string `json:"baseline" yaml:"baseline"`

	// Reports is the prefix monitoring executions write reports to
	Reports string `json:"reports" yaml:"reports"`
}

// TrafficConfig holds synthetic traffic generation settings.
type TrafficConfig struct {
	// Rows is the number of rows to generate and send
	Rows int `json:"rows" yaml:"rows"`

	// Features is the number of feature columns per row
	Features int `json:"features" yaml:"features"`

	// Seed seeds the dataset generator; 0 selects a time-based seed
	Seed int64 `json:"seed" yaml:"seed"`

	// Interval is the pause between consecutive invocations
	Interval time.Duration `json:"interval" yaml:"interval"`

	// MissingRate is the probability a row gets a missing value defect
	MissingRate float64 `json:"missing_rate" yaml:"missing_rate"`

	// TypeErrorRate is the probability a row gets a non-numeric token defect
	TypeErrorRate float64 `json:"type_error_rate" yaml:"type_error_rate"`

	// DriftFactor scales drifted feature values; 1.0 disables scale drift
	DriftFactor float64 `json:"drift_factor" yaml:"drift_factor"`

	// NegativeRate is the probability a row gets a negative outlier defect
	NegativeRate float64 `json:"negative_rate" yaml:"negative_rate"`
}

// ScheduleConfig holds monitoring schedule settings.
type ScheduleConfig struct {
	// Name is the monitoring schedule name
	Name string `json:"name" yaml:"name"`

	// Cron is the SageMaker cron expression, e.g. cron(0 * ? * * *)
	Cron string `json:"cron" yaml:"cron"`

	// RoleArn is the IAM role the monitoring job assumes
	RoleArn string `json:"role_arn" yaml:"role_arn"`

	// InstanceType is the processing instance type for monitoring jobs
	InstanceType string `json:"instance_type" yaml:"instance_type"`

	// InstanceCount is the processing instance count
	InstanceCount int32 `json:"instance_count" yaml:"instance_count"`

	// VolumeSizeGB is the EBS volume size per instance
	VolumeSizeGB int32 `json:"volume_size_gb" yaml:"volume_size_gb"`

	// MaxRuntime bounds a single monitoring job execution
	MaxRuntime time.Duration `json:"max_runtime" yaml:"max_runtime"`

	// ImageURI overrides the model-monitor analyzer image; empty resolves by region
	ImageURI string `json:"image_uri" yaml:"image_uri"`

	// Delete removes the schedule instead of creating it
	Delete bool `json:"delete" yaml:"delete"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables exposition
	Addr string `json:"addr" yaml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Mode:    ModeDescribe,
		Region:  "us-east-1",
		DataDir: "./data/smmonitor",
		Endpoint: EndpointConfig{
			ContentType: "text/csv",
			Timeout:     30 * time.Second,
		},
		Prefixes: PrefixConfig{
			Data:     "training-data",
			Capture:  "data-capture",
			Baseline: "baselining/results",
			Reports:  "monitoring/reports",
		},
		Traffic: TrafficConfig{
			Rows:        200,
			Features:    20,
			Interval:    time.Second,
			DriftFactor: 1.0,
		},
		Schedule: ScheduleConfig{
			Cron:          "cron(0 * ? * * *)",
			InstanceType:  "ml.m5.xlarge",
			InstanceCount: 1,
			VolumeSizeGB:  20,
			MaxRuntime:    time.Hour,
		},
	}
}

// Resolve sets path defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/smmonitor"
	}
	if c.LedgerPath == "" {
		c.LedgerPath = filepath.Join(c.DataDir, "ledger.db")
	}
	if c.Schedule.Name == "" && c.Endpoint.Name != "" {
		c.Schedule.Name = c.Endpoint.Name + "-data-quality"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeGenerate, ModeTraffic, ModeDescribe, ModeBaseline, ModeCheck, ModeSchedule, ModeRuns:
		// Valid modes
	default:
		return fmt.Errorf("invalid mode: %s (must be generate, traffic, describe, baseline, check, schedule, or runs)", c.Mode)
	}

	if c.Region == "" {
		return fmt.Errorf("region is required")
	}

	if c.Mode != ModeRuns && c.Bucket == "" && c.Mode != ModeDescribe {
		return fmt.Errorf("bucket is required for mode %s", c.Mode)
	}

	needsEndpoint := c.Mode == ModeTraffic || c.Mode == ModeDescribe || c.Mode == ModeCheck || c.Mode == ModeSchedule
	if needsEndpoint && c.Endpoint.Name == "" {
		return fmt.Errorf("endpoint.name is required for mode %s", c.Mode)
	}

	// Traffic mode accepts zero rows: the driver runs until interrupted.
	if c.Traffic.Rows < 0 || (c.Traffic.Rows == 0 && c.Mode != ModeTraffic) {
		return fmt.Errorf("traffic.rows must be positive, got %d", c.Traffic.Rows)
	}
	if c.Traffic.Features <= 0 {
		return fmt.Errorf("traffic.features must be positive, got %d", c.Traffic.Features)
	}
	for name, rate := range map[string]float64{
		"traffic.missing_rate":    c.Traffic.MissingRate,
		"traffic.type_error_rate": c.Traffic.TypeErrorRate,
		"traffic.negative_rate":   c.Traffic.NegativeRate,
	} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%s must be in [0,1], got %g", name, rate)
		}
	}
	if c.Traffic.DriftFactor <= 0 {
		return fmt.Errorf("traffic.drift_factor must be positive, got %g", c.Traffic.DriftFactor)
	}

	if c.Schedule.InstanceCount < 1 {
		return fmt.Errorf("schedule.instance_count must be at least 1, got %d", c.Schedule.InstanceCount)
	}
	if c.Schedule.VolumeSizeGB < 1 {
		return fmt.Errorf("schedule.volume_size_gb must be at least 1, got %d", c.Schedule.VolumeSizeGB)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the SMMONITOR_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("SMMONITOR_MODE"); v != "" {
		cfg.Mode = Mode(v)
	}
	if v := os.Getenv("SMMONITOR_REGION"); v != "" {
		cfg.Region = v
	}
	if v := os.Getenv("SMMONITOR_BUCKET"); v != "" {
		cfg.Bucket = v
	}
	if v := os.Getenv("SMMONITOR_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// Endpoint configuration
	if v := os.Getenv("SMMONITOR_ENDPOINT_NAME"); v != "" {
		cfg.Endpoint.Name = v
	}
	if v := os.Getenv("SMMONITOR_ENDPOINT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Endpoint.Timeout = d
		}
	}

	// Prefix configuration
	if v := os.Getenv("SMMONITOR_PREFIX_DATA"); v != "" {
		cfg.Prefixes.Data = v
	}
	if v := os.Getenv("SMMONITOR_PREFIX_CAPTURE"); v != "" {
		cfg.Prefixes.Capture = v
	}
	if v := os.Getenv("SMMONITOR_PREFIX_BASELINE"); v != "" {
		cfg.Prefixes.Baseline = v
	}
	if v := os.Getenv("SMMONITOR_PREFIX_REPORTS"); v != "" {
		cfg.Prefixes.Reports = v
	}

	// Traffic configuration
	if v := os.Getenv("SMMONITOR_TRAFFIC_ROWS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Traffic.Rows)
	}
	if v := os.Getenv("SMMONITOR_TRAFFIC_FEATURES"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Traffic.Features)
	}
	if v := os.Getenv("SMMONITOR_TRAFFIC_SEED"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Traffic.Seed)
	}
	if v := os.Getenv("SMMONITOR_TRAFFIC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Traffic.Interval = d
		}
	}
	if v := os.Getenv("SMMONITOR_TRAFFIC_DRIFT_FACTOR"); v != "" {
		fmt.Sscanf(v, "%g", &cfg.Traffic.DriftFactor)
	}

	// Schedule configuration
	if v := os.Getenv("SMMONITOR_SCHEDULE_NAME"); v != "" {
		cfg.Schedule.Name = v
	}
	if v := os.Getenv("SMMONITOR_SCHEDULE_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SMMONITOR_SCHEDULE_ROLE_ARN"); v != "" {
		cfg.Schedule.RoleArn = v
	}
	if v := os.Getenv("SMMONITOR_SCHEDULE_IMAGE_URI"); v != "" {
		cfg.Schedule.ImageURI = v
	}

	// Metrics configuration
	if v := os.Getenv("SMMONITOR_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}

	// Ledger configuration
	if v := os.Getenv("SMMONITOR_LEDGER_PATH"); v != "" {
		cfg.LedgerPath = v
	}
}

// EnsureDirectories creates all required local directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		filepath.Dir(c.LedgerPath),
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
