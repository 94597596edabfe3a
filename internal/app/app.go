// Package app wires the toolkit's components together and dispatches the
// configured operation.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/baseline"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/capture"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/config"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/dataset"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/endpoint"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/ledger"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/metrics"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/report"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/schedule"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/storage"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/traffic"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/pkg/types"
)

// TrainingDataFile is the generated dataset's object name under the data
// prefix.
const TrainingDataFile = "training-dataset.csv"

// Deps are the injectable backends; tests swap these for fakes.
type Deps struct {
	Store     storage.ObjectStorage
	Invoker   endpoint.Invoker
	Describer endpoint.Describer
	Schedules *schedule.Manager
	Ledger    *ledger.Ledger
	Metrics   *metrics.Metrics
	Out       io.Writer
}

// App runs one toolkit operation against wired backends.
type App struct {
	cfg        *config.Config
	deps       Deps
	metricsSrv *http.Server
}

// New wires an application against real AWS services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	deps := Deps{Out: os.Stdout}

	if cfg.Bucket != "" {
		store, err := storage.NewS3Storage(ctx, cfg.Bucket, storage.S3Config{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
		deps.Store = store
	}

	if cfg.Endpoint.Name != "" {
		client, err := endpoint.NewClient(ctx, endpoint.Config{
			Region:       cfg.Region,
			EndpointName: cfg.Endpoint.Name,
			ContentType:  cfg.Endpoint.ContentType,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create endpoint client: %w", err)
		}
		deps.Invoker = client
		deps.Describer = client
	}

	if cfg.Mode == config.ModeSchedule {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		deps.Schedules = schedule.NewManager(sagemaker.NewFromConfig(awsCfg))
	}

	led, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return nil, err
	}
	deps.Ledger = led

	if cfg.Metrics.Addr != "" {
		deps.Metrics = metrics.NewDefault()
	}

	return NewWithDeps(cfg, deps), nil
}

// NewWithDeps wires an application against pre-built backends.
func NewWithDeps(cfg *config.Config, deps Deps) *App {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	return &App{cfg: cfg, deps: deps}
}

// Run dispatches the configured mode.
func (a *App) Run(ctx context.Context) error {
	a.startMetricsServer()

	switch a.cfg.Mode {
	case config.ModeGenerate:
		return a.runGenerate(ctx)
	case config.ModeTraffic:
		return a.runTraffic(ctx)
	case config.ModeDescribe:
		return a.runDescribe(ctx)
	case config.ModeBaseline:
		return a.runBaseline(ctx)
	case config.ModeCheck:
		return a.runCheck(ctx)
	case config.ModeSchedule:
		return a.runSchedule(ctx)
	case config.ModeRuns:
		return a.runRuns(ctx)
	default:
		return fmt.Errorf("unknown mode: %s", a.cfg.Mode)
	}
}

// Close releases held resources.
func (a *App) Close() error {
	if a.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.metricsSrv.Shutdown(shutdownCtx)
	}
	if a.deps.Ledger != nil {
		return a.deps.Ledger.Close()
	}
	return nil
}

func (a *App) startMetricsServer() {
	if a.cfg.Metrics.Addr == "" || a.deps.Metrics == nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metricsSrv = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux}

	go func() {
		log.Printf("metrics listening on %s", a.cfg.Metrics.Addr)
		if err := a.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.deps.Out, format+"\n", args...)
}

// newGenerator builds the dataset generator from traffic settings.
func (a *App) newGenerator() (*dataset.Generator, error) {
	seed := a.cfg.Traffic.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return dataset.NewGenerator(dataset.GeneratorConfig{
		Features: a.cfg.Traffic.Features,
		Seed:     seed,
	})
}

// runGenerate produces the training dataset, uploads it under the data
// prefix, and keeps a local copy for inspection.
func (a *App) runGenerate(ctx context.Context) error {
	gen, err := a.newGenerator()
	if err != nil {
		return err
	}

	ds, err := gen.Generate(a.cfg.Traffic.Rows)
	if err != nil {
		return err
	}

	data, err := dataset.MarshalCSV(ds, true)
	if err != nil {
		return err
	}

	localPath := filepath.Join(a.cfg.DataDir, TrainingDataFile)
	if err := os.WriteFile(localPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write local dataset: %w", err)
	}

	key := a.cfg.Prefixes.Data + "/" + TrainingDataFile
	if err := a.deps.Store.PutObject(ctx, key, data); err != nil {
		return err
	}

	a.printf("generated %d rows x %d features (seed %d)",
		len(ds.Rows), a.cfg.Traffic.Features, gen.Seed())
	a.printf("fingerprint: %x", dataset.Fingerprint(data))
	a.printf("uploaded: s3://%s/%s", a.deps.Store.Bucket(), key)
	a.printf("local copy: %s", localPath)
	return nil
}

// runTraffic drives synthetic traffic at the endpoint and records the run.
func (a *App) runTraffic(ctx context.Context) error {
	gen, err := a.newGenerator()
	if err != nil {
		return err
	}

	tc := a.cfg.Traffic
	injector := dataset.NewInjector(dataset.InjectorConfig{
		MissingRate:   tc.MissingRate,
		TypeErrorRate: tc.TypeErrorRate,
		NegativeRate:  tc.NegativeRate,
		DriftFactor:   tc.DriftFactor,
		Seed:          gen.Seed(),
	})

	driver := traffic.NewDriver(traffic.Config{
		Rows:     tc.Rows,
		Interval: tc.Interval,
		Endpoint: a.cfg.Endpoint.Name,
	}, gen, injector, a.deps.Invoker, a.deps.Metrics)

	started := time.Now()
	a.printf("sending %d rows to %s (interval %s)", tc.Rows, a.cfg.Endpoint.Name, tc.Interval)

	result, runErr := driver.Run(ctx)

	if a.deps.Ledger != nil && result != nil {
		runID, err := a.deps.Ledger.RecordRun(ctx, ledger.Run{
			Endpoint:           a.cfg.Endpoint.Name,
			Mode:               string(config.ModeTraffic),
			DatasetSeed:        gen.Seed(),
			DatasetFingerprint: result.Fingerprint,
			RowsSent:           result.Sent,
			RowsFailed:         result.Failed,
			MissingRate:        tc.MissingRate,
			TypeErrorRate:      tc.TypeErrorRate,
			NegativeRate:       tc.NegativeRate,
			DriftFactor:        tc.DriftFactor,
			StartedAt:          started,
			FinishedAt:         time.Now(),
		})
		if err != nil {
			log.Printf("failed to record run: %v", err)
		} else {
			a.printf("run recorded: %s", runID)
		}
	}

	if result != nil {
		a.printf("sent %d, failed %d in %s", result.Sent, result.Failed, result.Elapsed.Round(time.Millisecond))
		for kind, n := range result.Defects {
			a.printf("  defect %s: %d", kind, n)
		}
	}

	if runErr != nil && runErr != context.Canceled && runErr != context.DeadlineExceeded {
		return runErr
	}
	return nil
}

// runDescribe prints the endpoint's status and data capture configuration,
// then lists what capture has landed so far.
func (a *App) runDescribe(ctx context.Context) error {
	info, err := a.deps.Describer.Describe(ctx)
	if err != nil {
		return err
	}

	a.printf("endpoint: %s", info.Name)
	a.printf("status: %s", info.Status)
	for _, v := range info.Variants {
		a.printf("variant: %s", v)
	}

	if info.Capture == nil || !info.Capture.Enabled {
		a.printf("data capture: disabled")
		return nil
	}

	a.printf("data capture: enabled (%s)", info.Capture.Status)
	a.printf("sampling: %d%%", info.Capture.SamplingPercentage)
	a.printf("destination: %s", info.Capture.Destination.String())

	if a.deps.Store == nil {
		return nil
	}

	reader := capture.NewReader(a.deps.Store, a.cfg.Prefixes.Capture, a.cfg.Endpoint.Name)
	files, err := reader.ListFiles(ctx)
	if err != nil {
		return err
	}
	a.printf("capture files: %d under s3://%s/%s", len(files), a.deps.Store.Bucket(), reader.Prefix())

	if len(files) == 0 {
		return nil
	}

	// Show one decoded record so the capture format is visible.
	records, err := reader.ReadAll(ctx)
	if err != nil {
		return err
	}
	a.countCaptureReads(len(files), len(records))
	a.printf("capture records: %d", len(records))

	sample, err := json.MarshalIndent(records[0], "", "  ")
	if err != nil {
		return err
	}
	a.printf("sample record:\n%s", sample)
	return nil
}

// runBaseline loads and summarizes the baseline documents when they exist,
// and suggests and uploads them from the training dataset when they don't.
func (a *App) runBaseline(ctx context.Context) error {
	loader := baseline.NewLoader(a.deps.Store, a.cfg.Prefixes.Baseline)

	raw, err := loader.LoadRaw(ctx, baseline.StatisticsFile)
	switch {
	case err == nil:
		a.printf("statistics: s3://%s/%s/%s", a.deps.Store.Bucket(), a.cfg.Prefixes.Baseline, baseline.StatisticsFile)
		for _, line := range baseline.Summary(raw) {
			a.printf("%s", line)
		}
	case baseline.IsMissing(err):
		if err := a.suggestBaseline(ctx); err != nil {
			return err
		}
	default:
		return err
	}

	rawConstraints, err := loader.LoadRaw(ctx, baseline.ConstraintsFile)
	if err != nil {
		return err
	}
	a.printf("constraints: s3://%s/%s/%s", a.deps.Store.Bucket(), a.cfg.Prefixes.Baseline, baseline.ConstraintsFile)
	for _, line := range baseline.Summary(rawConstraints) {
		a.printf("%s", line)
	}
	return nil
}

// suggestBaseline computes baseline documents from a regenerated training
// dataset and uploads them under the baseline prefix.
func (a *App) suggestBaseline(ctx context.Context) error {
	gen, err := a.newGenerator()
	if err != nil {
		return err
	}
	ds, err := gen.Generate(a.cfg.Traffic.Rows)
	if err != nil {
		return err
	}

	stats, constraints, err := baseline.Suggest(ds)
	if err != nil {
		return err
	}

	docs := []struct {
		name string
		doc  interface{}
	}{
		{baseline.StatisticsFile, stats},
		{baseline.ConstraintsFile, constraints},
	}
	for _, d := range docs {
		data, err := json.MarshalIndent(d.doc, "", "  ")
		if err != nil {
			return err
		}
		key := a.cfg.Prefixes.Baseline + "/" + d.name
		if err := a.deps.Store.PutObject(ctx, key, data); err != nil {
			return err
		}
		a.printf("suggested and uploaded: s3://%s/%s", a.deps.Store.Bucket(), key)
	}
	return nil
}

// runCheck replays captured inference inputs against the baseline
// constraints and reports violations, then shows the latest service-side
// report when one exists.
func (a *App) runCheck(ctx context.Context) error {
	loader := baseline.NewLoader(a.deps.Store, a.cfg.Prefixes.Baseline)
	stats, err := loader.LoadStatistics(ctx)
	if err != nil {
		return err
	}
	constraints, err := loader.LoadConstraints(ctx)
	if err != nil {
		return err
	}

	reader := capture.NewReader(a.deps.Store, a.cfg.Prefixes.Capture, a.cfg.Endpoint.Name)
	records, err := reader.ReadAll(ctx)
	if err != nil {
		return err
	}
	rows := capture.InputRows(records)
	a.countCaptureReads(0, len(records))
	a.printf("checking %d captured rows against baseline", len(rows))

	doc, err := baseline.Check(stats, constraints, rows)
	if err != nil {
		return err
	}

	if a.deps.Metrics != nil {
		a.deps.Metrics.Violations.WithLabelValues(a.cfg.Endpoint.Name).
			Set(float64(len(doc.Violations)))
	}

	if len(doc.Violations) == 0 {
		a.printf("no violations")
	}
	for _, v := range doc.Violations {
		a.printf("violation [%s] %s: %s", v.ConstraintCheckType, v.FeatureName, v.Description)
	}

	reports := report.NewReader(a.deps.Store, a.cfg.Prefixes.Reports)
	latest, err := reports.Latest(ctx)
	switch {
	case err == nil:
		for _, line := range report.Render(latest) {
			a.printf("%s", line)
		}
	case report.IsEmpty(err):
		a.printf("no monitoring reports published yet")
	default:
		return err
	}
	return nil
}

// runSchedule creates the data-quality monitoring schedule and waits for
// it to be visible.
func (a *App) runSchedule(ctx context.Context) error {
	sc := a.cfg.Schedule

	if sc.Delete {
		if err := a.deps.Schedules.Delete(ctx, sc.Name); err != nil {
			return err
		}
		a.printf("deleted monitoring schedule %s", sc.Name)
		if a.deps.Ledger != nil {
			if err := a.deps.Ledger.RecordAction(ctx, sc.Name, "delete", ""); err != nil {
				log.Printf("failed to record action: %v", err)
			}
		}
		return nil
	}

	spec := schedule.Spec{
		Name:          sc.Name,
		EndpointName:  a.cfg.Endpoint.Name,
		Cron:          sc.Cron,
		Statistics:    a.baselineURI(baseline.StatisticsFile),
		Constraints:   a.baselineURI(baseline.ConstraintsFile),
		Output:        types.S3URI{Bucket: a.cfg.Bucket, Key: a.cfg.Prefixes.Reports},
		RoleArn:       sc.RoleArn,
		ImageURI:      sc.ImageURI,
		Region:        a.cfg.Region,
		InstanceType:  sc.InstanceType,
		InstanceCount: sc.InstanceCount,
		VolumeSizeGB:  sc.VolumeSizeGB,
		MaxRuntime:    sc.MaxRuntime,
	}

	if err := a.deps.Schedules.Create(ctx, spec); err != nil {
		return err
	}
	a.printf("created monitoring schedule %s (%s)", spec.Name, spec.Cron)

	if a.deps.Ledger != nil {
		if err := a.deps.Ledger.RecordAction(ctx, spec.Name, "create", spec.Cron); err != nil {
			log.Printf("failed to record action: %v", err)
		}
	}

	status, err := a.deps.Schedules.Describe(ctx, spec.Name)
	if err != nil {
		return err
	}
	a.printf("status: %s", status.State)
	a.printf("arn: %s", status.ARN)

	executions, err := a.deps.Schedules.ListExecutions(ctx, spec.Name, 5)
	if err != nil {
		return err
	}
	for _, exec := range executions {
		a.printf("execution %s at %s", exec.Status, exec.ScheduledAt.Format(time.RFC3339))
	}
	return nil
}

// runRuns lists the recorded traffic runs for the endpoint, and the
// schedule actions issued through the toolkit.
func (a *App) runRuns(ctx context.Context) error {
	runs, err := a.deps.Ledger.RecentRuns(ctx, a.cfg.Endpoint.Name, 20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		a.printf("no recorded runs")
	}
	for _, run := range runs {
		a.printf("%s %s sent=%d failed=%d drift=%g missing=%g fingerprint=%x started=%s",
			run.RunID, run.Endpoint, run.RowsSent, run.RowsFailed,
			run.DriftFactor, run.MissingRate, run.DatasetFingerprint,
			run.StartedAt.Format(time.RFC3339))
	}

	if a.cfg.Schedule.Name == "" {
		return nil
	}
	actions, err := a.deps.Ledger.Actions(ctx, a.cfg.Schedule.Name)
	if err != nil {
		return err
	}
	for _, action := range actions {
		a.printf("schedule %s %s %s at %s",
			action.ScheduleName, action.Action, action.Detail,
			action.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func (a *App) baselineURI(name string) types.S3URI {
	return types.S3URI{Bucket: a.cfg.Bucket, Key: a.cfg.Prefixes.Baseline + "/" + name}
}

func (a *App) countCaptureReads(files, records int) {
	if a.deps.Metrics == nil {
		return
	}
	if files > 0 {
		a.deps.Metrics.CaptureFilesRead.WithLabelValues(a.cfg.Endpoint.Name).Add(float64(files))
	}
	if records > 0 {
		a.deps.Metrics.CaptureRecordsRead.WithLabelValues(a.cfg.Endpoint.Name).Add(float64(records))
	}
}
