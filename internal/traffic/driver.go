// Package traffic drives synthetic inference traffic at a hosted endpoint
// so its data capture fills with records for monitoring jobs to analyze.
package traffic

import (
	"bytes"
	"context"
	"log"
	"strings"
	"time"

	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/dataset"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/endpoint"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/metrics"
)

// Config holds traffic driver settings.
type Config struct {
	// Rows is the number of invocations to send. Zero means run until
	// the context is cancelled.
	Rows int

	// Interval is the pause between invocations.
	Interval time.Duration

	// Endpoint labels the run's metrics.
	Endpoint string
}

// Result summarizes one traffic run.
type Result struct {
	Sent    int
	Failed  int
	Defects map[dataset.DefectKind]int
	Elapsed time.Duration

	// Fingerprint hashes the payloads that reached the endpoint, so a
	// recorded run can be correlated with its data. Zero when nothing
	// was sent.
	Fingerprint uint64
}

// Driver sends generated rows at an endpoint, one at a time, optionally
// corrupting payloads on the way out. Sequential on purpose: monitoring
// capture is about record content, not load.
type Driver struct {
	cfg      Config
	gen      *dataset.Generator
	injector *dataset.Injector
	invoker  endpoint.Invoker
	metrics  *metrics.Metrics
}

// NewDriver creates a traffic driver. The injector may be nil for clean
// traffic; metrics may be nil to disable instrumentation.
func NewDriver(cfg Config, gen *dataset.Generator, injector *dataset.Injector,
	invoker endpoint.Invoker, m *metrics.Metrics) *Driver {
	if injector == nil {
		injector = dataset.NewInjector(dataset.InjectorConfig{})
	}
	return &Driver{
		cfg:      cfg,
		gen:      gen,
		injector: injector,
		invoker:  invoker,
		metrics:  m,
	}
}

// Run invokes the endpoint until the configured row count is reached or
// the context is cancelled. Individual invoke failures are counted and
// logged but do not stop the run.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{Defects: make(map[dataset.DefectKind]int)}

	var sent bytes.Buffer
	defer func() {
		result.Elapsed = time.Since(start)
		if result.Sent > 0 {
			result.Fingerprint = dataset.Fingerprint(sent.Bytes())
		}
	}()

	var ticker *time.Ticker
	if d.cfg.Interval > 0 {
		ticker = time.NewTicker(d.cfg.Interval)
		defer ticker.Stop()
	}

	for i := 0; d.cfg.Rows == 0 || i < d.cfg.Rows; i++ {
		if i > 0 && ticker != nil {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return result, err
		}

		ds, err := d.gen.Generate(1)
		if err != nil {
			return result, err
		}

		cells, kinds := d.injector.Apply(ds.Rows[0].Features)
		for _, kind := range kinds {
			result.Defects[kind]++
			d.countDefect(kind)
		}

		payload := strings.Join(cells, ",")
		pred, err := d.invoker.Invoke(ctx, payload)
		if err != nil {
			result.Failed++
			d.countInvocation(metrics.OutcomeError, 0)
			log.Printf("invoke %d failed: %v", i, err)
			continue
		}

		result.Sent++
		sent.WriteString(payload)
		sent.WriteByte('\n')
		d.countInvocation(metrics.OutcomeOK, pred.Latency)
	}

	return result, nil
}

func (d *Driver) countInvocation(outcome string, latency time.Duration) {
	if d.metrics == nil {
		return
	}
	d.metrics.InvocationsTotal.WithLabelValues(d.cfg.Endpoint, outcome).Inc()
	if outcome == metrics.OutcomeOK {
		d.metrics.InvokeSeconds.WithLabelValues(d.cfg.Endpoint).Observe(latency.Seconds())
	}
}

func (d *Driver) countDefect(kind dataset.DefectKind) {
	if d.metrics == nil {
		return
	}
	d.metrics.DefectsTotal.WithLabelValues(d.cfg.Endpoint, string(kind)).Inc()
}
