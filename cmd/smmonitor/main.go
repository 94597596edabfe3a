// Package main implements the unified smmonitor binary.
// One binary drives the whole data-quality monitoring workflow: dataset
// generation, endpoint traffic, capture inspection, baselining, local
// constraint checks, and monitoring schedule management, selected with
// the --mode flag.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/app"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		mode        string
		region      string
		bucket      string
		endpointArg string
		dataDir     string
		rows        int
		seed        int64
		interval    time.Duration
		missingRate float64
		typeErrRate float64
		negRate     float64
		driftFactor float64
		schedName   string
		cronExpr    string
		roleArn     string
		deleteSched bool
		metricsAddr string
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&mode, "mode", "", "Operation: generate, traffic, describe, baseline, check, schedule, runs")
	flag.StringVar(&region, "region", "", "AWS region")
	flag.StringVar(&bucket, "bucket", "", "S3 bucket for datasets, capture data, and baselines")
	flag.StringVar(&endpointArg, "endpoint", "", "SageMaker endpoint name")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for local files")
	flag.IntVar(&rows, "rows", 0, "Rows to generate or send")
	flag.Int64Var(&seed, "seed", 0, "Dataset generator seed (0 selects a time-based seed)")
	flag.DurationVar(&interval, "interval", 0, "Pause between invocations")
	flag.Float64Var(&missingRate, "missing-rate", 0, "Probability of a missing-value defect per row")
	flag.Float64Var(&typeErrRate, "type-error-rate", 0, "Probability of a type-error defect per row")
	flag.Float64Var(&negRate, "negative-rate", 0, "Probability of a negative-value defect per row")
	flag.Float64Var(&driftFactor, "drift-factor", 0, "Scale factor applied to all features (1.0 disables drift)")
	flag.StringVar(&schedName, "schedule-name", "", "Monitoring schedule name")
	flag.StringVar(&cronExpr, "cron", "", "Schedule cron expression, e.g. cron(0 * ? * * *)")
	flag.StringVar(&roleArn, "role-arn", "", "IAM role ARN for monitoring jobs")
	flag.BoolVar(&deleteSched, "delete-schedule", false, "Delete the monitoring schedule instead of creating it")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "Listen address for Prometheus /metrics (empty disables)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "smmonitor - SageMaker data-quality monitoring toolkit\n\n")
		fmt.Fprintf(os.Stderr, "Usage: smmonitor [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  smmonitor --mode generate --bucket my-bucket --rows 500\n")
		fmt.Fprintf(os.Stderr, "  smmonitor --mode traffic --endpoint churn-predictor --bucket my-bucket --drift-factor 10\n")
		fmt.Fprintf(os.Stderr, "  smmonitor --mode schedule --endpoint churn-predictor --bucket my-bucket --role-arn arn:aws:iam::...:role/Monitor\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  SMMONITOR_MODE            Operation mode\n")
		fmt.Fprintf(os.Stderr, "  SMMONITOR_REGION          AWS region\n")
		fmt.Fprintf(os.Stderr, "  SMMONITOR_BUCKET          S3 bucket\n")
		fmt.Fprintf(os.Stderr, "  SMMONITOR_ENDPOINT_NAME   SageMaker endpoint name\n")
		fmt.Fprintf(os.Stderr, "  SMMONITOR_SCHEDULE_ROLE_ARN  IAM role ARN for monitoring jobs\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("smmonitor version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Command line flags take highest priority.
	if mode != "" {
		cfg.Mode = config.Mode(mode)
	}
	if region != "" {
		cfg.Region = region
	}
	if bucket != "" {
		cfg.Bucket = bucket
	}
	if endpointArg != "" {
		cfg.Endpoint.Name = endpointArg
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if rows > 0 {
		cfg.Traffic.Rows = rows
	}
	if seed != 0 {
		cfg.Traffic.Seed = seed
	}
	if interval > 0 {
		cfg.Traffic.Interval = interval
	}
	if missingRate > 0 {
		cfg.Traffic.MissingRate = missingRate
	}
	if typeErrRate > 0 {
		cfg.Traffic.TypeErrorRate = typeErrRate
	}
	if negRate > 0 {
		cfg.Traffic.NegativeRate = negRate
	}
	if driftFactor > 0 {
		cfg.Traffic.DriftFactor = driftFactor
	}
	if schedName != "" {
		cfg.Schedule.Name = schedName
	}
	if cronExpr != "" {
		cfg.Schedule.Cron = cronExpr
	}
	if roleArn != "" {
		cfg.Schedule.RoleArn = roleArn
	}
	if deleteSched {
		cfg.Schedule.Delete = true
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	cfg.Resolve()

	printBanner(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)
	return cfg, nil
}

// printBanner prints the startup banner with configuration summary.
func printBanner(cfg *config.Config) {
	log.Printf("smmonitor %s", version)
	log.Printf("  Mode:     %s", cfg.Mode)
	log.Printf("  Region:   %s", cfg.Region)
	if cfg.Bucket != "" {
		log.Printf("  Bucket:   %s", cfg.Bucket)
	}
	if cfg.Endpoint.Name != "" {
		log.Printf("  Endpoint: %s", cfg.Endpoint.Name)
	}
	if cfg.Mode == config.ModeSchedule {
		log.Printf("  Schedule: %s (%s)", cfg.Schedule.Name, cfg.Schedule.Cron)
	}
}
