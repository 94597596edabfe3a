package endpoint

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cloudacademy/sagemaker-data-quality-monitoring/pkg/types"
)

// FakeEndpoint implements Invoker and Describer in memory.
// Used by traffic-driver and app tests, the way a local model server
// would behave: it records every payload and returns a canned score.
type FakeEndpoint struct {
	mu       sync.Mutex
	payloads []string

	// Score is returned for every invocation. Default 0.5.
	Score float64

	// InvokeErr, when set, fails every invocation.
	InvokeErr error

	// CaptureDestination is reported by Describe.
	CaptureDestination types.S3URI
}

// NewFakeEndpoint creates a fake endpoint returning the given score.
func NewFakeEndpoint(score float64) *FakeEndpoint {
	return &FakeEndpoint{Score: score}
}

// Invoke records the payload and returns the canned prediction.
func (f *FakeEndpoint) Invoke(ctx context.Context, payload string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	if f.InvokeErr != nil {
		return Prediction{}, f.InvokeErr
	}

	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()

	return Prediction{
		Score:       f.Score,
		Variant:     "AllTraffic",
		InferenceID: uuid.NewString(),
		Latency:     time.Millisecond,
	}, nil
}

// Describe reports a fixed in-service endpoint with capture enabled.
func (f *FakeEndpoint) Describe(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Info{
		Name:     "fake-endpoint",
		Status:   "InService",
		Variants: []string{"AllTraffic"},
		Capture: &CaptureInfo{
			Enabled:            true,
			Status:             "Started",
			SamplingPercentage: 100,
			Destination:        f.CaptureDestination,
		},
	}, nil
}

// Payloads returns a copy of all payloads received so far.
func (f *FakeEndpoint) Payloads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.payloads))
	copy(out, f.payloads)
	return out
}
