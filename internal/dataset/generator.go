// Package dataset generates synthetic binary-classification tabular data
// for driving inference traffic and baselining.
package dataset

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/cloudacademy/sagemaker-data-quality-monitoring/pkg/types"
)

// Row is a single sample: a fixed-width feature vector plus a binary label.
type Row struct {
	Features []float64
	Label    int
}

// Dataset is an ordered collection of rows sharing one schema.
type Dataset struct {
	Schema types.FeatureSchema
	Rows   []Row
}

// GeneratorConfig holds synthetic data generation settings.
type GeneratorConfig struct {
	// Features is the number of feature columns.
	Features int

	// Seed seeds the generator. Zero selects a time-based seed.
	Seed int64

	// ClassSep is the distance between the two class centroids.
	// Default: 2.0
	ClassSep float64

	// Noise is the per-feature Gaussian noise standard deviation.
	// Default: 1.0
	Noise float64

	// Center is the base feature value both centroids are offset from.
	// Kept positive so baseline non-negativity constraints hold for
	// clean data. Default: 5.0
	Center float64
}

// Generator produces deterministic synthetic classification data.
// Two class centroids are drawn once from the seed; samples are the
// centroid of their class plus Gaussian noise.
type Generator struct {
	cfg       GeneratorConfig
	schema    types.FeatureSchema
	centroids [2][]float64
	rng       *rand.Rand
}

// NewGenerator creates a generator for the given configuration.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Features <= 0 {
		return nil, fmt.Errorf("features must be positive, got %d", cfg.Features)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.ClassSep == 0 {
		cfg.ClassSep = 2.0
	}
	if cfg.Noise == 0 {
		cfg.Noise = 1.0
	}
	if cfg.Center == 0 {
		cfg.Center = 5.0
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	g := &Generator{
		cfg:    cfg,
		schema: types.NewFeatureSchema(cfg.Features, "label"),
		rng:    rng,
	}

	// Centroids are fixed for the generator's lifetime so repeated
	// Generate calls sample the same two distributions.
	for class := 0; class < 2; class++ {
		centroid := make([]float64, cfg.Features)
		for j := range centroid {
			offset := cfg.ClassSep * (rng.Float64() - 0.5)
			if class == 1 {
				offset += cfg.ClassSep
			}
			centroid[j] = cfg.Center + offset
		}
		g.centroids[class] = centroid
	}

	return g, nil
}

// Schema returns the schema generated rows follow.
func (g *Generator) Schema() types.FeatureSchema {
	return g.schema
}

// Seed returns the effective seed, useful for reproducing a run.
func (g *Generator) Seed() int64 {
	return g.cfg.Seed
}

// Generate produces n rows. Labels alternate between the two classes so
// the sample stays balanced regardless of n.
func (g *Generator) Generate(n int) (*Dataset, error) {
	if n <= 0 {
		return nil, fmt.Errorf("row count must be positive, got %d", n)
	}

	rows := make([]Row, n)
	for i := range rows {
		label := i % 2
		features := make([]float64, g.cfg.Features)
		centroid := g.centroids[label]
		for j := range features {
			v := centroid[j] + g.rng.NormFloat64()*g.cfg.Noise
			if v < 0 {
				v = -v
			}
			features[j] = v
		}
		rows[i] = Row{Features: features, Label: label}
	}

	return &Dataset{Schema: g.schema, Rows: rows}, nil
}
