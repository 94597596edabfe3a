package dataset

import (
	"math/rand"
	"strconv"
)

// DefectKind names a class of injected data-quality defect.
type DefectKind string

const (
	DefectMissing  DefectKind = "missing_value"
	DefectBadType  DefectKind = "type_error"
	DefectNegative DefectKind = "negative_value"
	DefectDrift    DefectKind = "scale_drift"
)

// InjectorConfig holds per-row defect probabilities and the drift factor.
type InjectorConfig struct {
	// MissingRate is the probability a row gets one cell blanked.
	MissingRate float64

	// TypeErrorRate is the probability a row gets one non-numeric token.
	TypeErrorRate float64

	// NegativeRate is the probability a row gets one feature negated.
	NegativeRate float64

	// DriftFactor multiplies every feature value. 1.0 disables drift.
	DriftFactor float64

	// Seed seeds defect placement for reproducible runs.
	Seed int64
}

// Injector corrupts inference payload rows to simulate drifting and
// defective production traffic. Defects are applied per row with the
// configured probabilities; at most one cell per defect kind is touched
// so individual violations stay attributable.
type Injector struct {
	cfg InjectorConfig
	rng *rand.Rand
}

// NewInjector creates an injector for the given configuration.
func NewInjector(cfg InjectorConfig) *Injector {
	if cfg.DriftFactor == 0 {
		cfg.DriftFactor = 1.0
	}
	return &Injector{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Apply corrupts a copy of the feature vector and renders it as payload
// cells. The returned kinds name the defects that were injected.
func (in *Injector) Apply(features []float64) ([]string, []DefectKind) {
	var kinds []DefectKind

	values := make([]float64, len(features))
	copy(values, features)

	if in.cfg.DriftFactor != 1.0 {
		for i := range values {
			values[i] *= in.cfg.DriftFactor
		}
		kinds = append(kinds, DefectDrift)
	}

	if in.roll(in.cfg.NegativeRate) {
		i := in.rng.Intn(len(values))
		if values[i] > 0 {
			values[i] = -values[i]
		}
		kinds = append(kinds, DefectNegative)
	}

	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}

	if in.roll(in.cfg.TypeErrorRate) {
		cells[in.rng.Intn(len(cells))] = "not-a-number"
		kinds = append(kinds, DefectBadType)
	}

	// Missing last so it can blank a cell another defect touched.
	if in.roll(in.cfg.MissingRate) {
		cells[in.rng.Intn(len(cells))] = ""
		kinds = append(kinds, DefectMissing)
	}

	return cells, kinds
}

func (in *Injector) roll(rate float64) bool {
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	return in.rng.Float64() < rate
}
