package baseline

import (
	"math"

	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/dataset"
	monerrors "github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/errors"
)

// Suggest computes baseline statistics and constraints from a clean
// dataset, the way a baselining job would. The result is meant for
// comparison against the managed job's output, not as a drop-in
// replacement for it (no distribution sketch is computed).
func Suggest(ds *dataset.Dataset) (*Statistics, *Constraints, error) {
	if ds == nil || len(ds.Rows) == 0 {
		return nil, nil, monerrors.NewDatasetError(monerrors.CodeEmptyDataset,
			"cannot suggest a baseline from an empty dataset")
	}

	n := len(ds.Rows)
	numFeatures := ds.Schema.NumFeatures()

	stats := &Statistics{
		Dataset:  DatasetStats{ItemCount: int64(n)},
		Features: make([]FeatureStatistics, 0, numFeatures),
	}
	constraints := &Constraints{
		Features: make([]FeatureConstraint, 0, numFeatures),
		MonitoringConfig: MonitoringConfig{
			EvaluateConstraints:    "Enabled",
			EmitMetrics:            "Enabled",
			DatatypeCheckThreshold: 1.0,
			DomainContentThreshold: 1.0,
			DistributionConstraints: DistributionConstraints{
				PerformComparison:   "Enabled",
				ComparisonThreshold: 0.1,
				ComparisonMethod:    "Robust",
			},
		},
	}

	for j, name := range ds.Schema.FeatureNames {
		var sum, min, max float64
		min = math.Inf(1)
		max = math.Inf(-1)

		for _, row := range ds.Rows {
			v := row.Features[j]
			sum += v
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		mean := sum / float64(n)

		var sqDiff float64
		for _, row := range ds.Rows {
			d := row.Features[j] - mean
			sqDiff += d * d
		}
		stdDev := math.Sqrt(sqDiff / float64(n))

		stats.Features = append(stats.Features, FeatureStatistics{
			Name:         name,
			InferredType: TypeFractional,
			NumericalStatistics: &NumericalStatistics{
				Common: CommonStatistics{NumPresent: int64(n)},
				Mean:   mean,
				Sum:    sum,
				StdDev: stdDev,
				Min:    min,
				Max:    max,
			},
		})

		constraints.Features = append(constraints.Features, FeatureConstraint{
			Name:           name,
			InferredType:   TypeFractional,
			Completeness:   1.0,
			NumConstraints: &NumericalConstraints{IsNonNegative: min >= 0},
		})
	}

	if ds.Schema.HasLabel() {
		var labelSum float64
		min, max := math.Inf(1), math.Inf(-1)
		for _, row := range ds.Rows {
			v := float64(row.Label)
			labelSum += v
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		mean := labelSum / float64(n)
		var sqDiff float64
		for _, row := range ds.Rows {
			d := float64(row.Label) - mean
			sqDiff += d * d
		}

		stats.Features = append(stats.Features, FeatureStatistics{
			Name:         ds.Schema.LabelName,
			InferredType: TypeIntegral,
			NumericalStatistics: &NumericalStatistics{
				Common: CommonStatistics{NumPresent: int64(n)},
				Mean:   mean,
				Sum:    labelSum,
				StdDev: math.Sqrt(sqDiff / float64(n)),
				Min:    min,
				Max:    max,
			},
		})
		constraints.Features = append(constraints.Features, FeatureConstraint{
			Name:           ds.Schema.LabelName,
			InferredType:   TypeIntegral,
			Completeness:   1.0,
			NumConstraints: &NumericalConstraints{IsNonNegative: true},
		})
	}

	return stats, constraints, nil
}
