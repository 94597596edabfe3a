// Package main implements the smmonitor-traffic binary: a thin wrapper
// that runs the traffic mode only, for long-lived traffic loops driven by
// schedulers or containers.
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

var version = "dev"

func main() {
	var (
		configFile  string
		endpointArg string
		region      string
		rows        int
		interval    time.Duration
		driftFactor float64
		metricsAddr string
		showVersion bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&endpointArg, "endpoint", "", "SageMaker endpoint name")
	flag.StringVar(&region, "region", "", "AWS region")
	flag.IntVar(&rows, "rows", 0, "Rows to send (0 runs until interrupted)")
	flag.DurationVar(&interval, "interval", time.Second, "Pause between invocations")
	flag.Float64Var(&driftFactor, "drift-factor", 0, "Scale factor applied to all features")
	flag.StringVar(&metricsAddr, "metrics-addr", ":9464", "Listen address for Prometheus /metrics")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("smmonitor-traffic version %s\n", version)
		os.Exit(0)
	}

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}
	config.LoadFromEnv(cfg)

	cfg.Mode = config.ModeTraffic
	if endpointArg != "" {
		cfg.Endpoint.Name = endpointArg
	}
	if region != "" {
		cfg.Region = region
	}
	cfg.Traffic.Rows = rows
	cfg.Traffic.Interval = interval
	if driftFactor > 0 {
		cfg.Traffic.DriftFactor = driftFactor
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	cfg.Resolve()

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
