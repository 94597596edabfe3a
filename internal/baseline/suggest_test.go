package baseline

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/dataset"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/pkg/types"
)

func fixedDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Schema: types.NewFeatureSchema(2, "label"),
		Rows: []dataset.Row{
			{Features: []float64{1, 10}, Label: 0},
			{Features: []float64{2, 20}, Label: 1},
			{Features: []float64{3, 30}, Label: 0},
			{Features: []float64{4, 40}, Label: 1},
		},
	}
}

func TestSuggest(t *testing.T) {
	stats, constraints, err := Suggest(fixedDataset())
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if stats.Dataset.ItemCount != 4 {
		t.Errorf("item count = %d, want 4", stats.Dataset.ItemCount)
	}
	// 2 features + label
	if len(stats.Features) != 3 {
		t.Fatalf("expected 3 feature stats, got %d", len(stats.Features))
	}
	if len(constraints.Features) != 3 {
		t.Fatalf("expected 3 feature constraints, got %d", len(constraints.Features))
	}

	f0 := stats.Feature("feature_0")
	if f0 == nil || f0.NumericalStatistics == nil {
		t.Fatal("missing numerical statistics for feature_0")
	}
	ns := f0.NumericalStatistics
	if ns.Mean != 2.5 {
		t.Errorf("mean = %g, want 2.5", ns.Mean)
	}
	if ns.Sum != 10 {
		t.Errorf("sum = %g, want 10", ns.Sum)
	}
	if ns.Min != 1 || ns.Max != 4 {
		t.Errorf("min/max = %g/%g, want 1/4", ns.Min, ns.Max)
	}
	wantStd := math.Sqrt(1.25) // population std dev of {1,2,3,4}
	if math.Abs(ns.StdDev-wantStd) > 1e-12 {
		t.Errorf("std dev = %g, want %g", ns.StdDev, wantStd)
	}

	c0 := constraints.Feature("feature_0")
	if c0 == nil {
		t.Fatal("missing constraint for feature_0")
	}
	if c0.Completeness != 1.0 {
		t.Errorf("completeness = %g, want 1.0", c0.Completeness)
	}
	if c0.NumConstraints == nil || !c0.NumConstraints.IsNonNegative {
		t.Error("expected non-negative constraint for all-positive feature")
	}

	label := stats.Feature("label")
	if label == nil || label.InferredType != TypeIntegral {
		t.Error("expected Integral label statistics")
	}

	mc := constraints.MonitoringConfig
	if mc.EvaluateConstraints != "Enabled" {
		t.Errorf("evaluate_constraints = %q", mc.EvaluateConstraints)
	}
	if mc.DistributionConstraints.ComparisonThreshold != 0.1 {
		t.Errorf("comparison threshold = %g", mc.DistributionConstraints.ComparisonThreshold)
	}
}

func TestSuggest_NegativeFeature(t *testing.T) {
	ds := &dataset.Dataset{
		Schema: types.NewFeatureSchema(1, ""),
		Rows: []dataset.Row{
			{Features: []float64{-1}},
			{Features: []float64{2}},
		},
	}

	_, constraints, err := Suggest(ds)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	c := constraints.Feature("feature_0")
	if c.NumConstraints.IsNonNegative {
		t.Error("feature with negative values must not get a non-negative constraint")
	}
}

func TestSuggest_Empty(t *testing.T) {
	if _, _, err := Suggest(&dataset.Dataset{}); err == nil {
		t.Error("expected error for empty dataset")
	}
}

// TestProperty_SuggestStatisticsLaws validates that for any generated
// dataset, the suggested statistics satisfy min <= mean <= max and
// sum == mean * n for every feature.
func TestProperty_SuggestStatisticsLaws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("min <= mean <= max and sum = mean*n", prop.ForAll(
		func(seed int64, features, rows int) bool {
			g, err := dataset.NewGenerator(dataset.GeneratorConfig{Features: features, Seed: seed})
			if err != nil {
				return false
			}
			ds, err := g.Generate(rows)
			if err != nil {
				return false
			}

			stats, _, err := Suggest(ds)
			if err != nil {
				return false
			}

			for _, f := range stats.Features {
				ns := f.NumericalStatistics
				if ns == nil {
					return false
				}
				if ns.Min > ns.Mean || ns.Mean > ns.Max {
					return false
				}
				if math.Abs(ns.Sum-ns.Mean*float64(rows)) > 1e-6*math.Max(1, math.Abs(ns.Sum)) {
					return false
				}
				if ns.StdDev < 0 {
					return false
				}
			}
			return true
		},
		gen.Int64Range(1, 1<<40),
		gen.IntRange(1, 16),
		gen.IntRange(2, 100),
	))

	properties.TestingRun(t)
}
