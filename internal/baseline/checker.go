package baseline

import (
	"fmt"
	"math"
	"strconv"

	monerrors "github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/errors"
)

// Constraint check types, named as the managed monitor names them in
// constraint_violations.json.
const (
	CheckCompleteness = "completeness_check"
	CheckDataType     = "data_type_check"
	CheckNonNegative  = "non_negativity_check"
	CheckDrift        = "baseline_drift_check"
)

// Violation is one entry of a constraint_violations.json document.
type Violation struct {
	FeatureName         string `json:"feature_name"`
	ConstraintCheckType string `json:"constraint_check_type"`
	Description         string `json:"description"`
}

// ViolationsDocument mirrors constraint_violations.json.
type ViolationsDocument struct {
	Violations []Violation `json:"violations"`
}

// Check evaluates captured input rows against a baseline and returns the
// violations the managed monitor would be expected to flag. Rows are the
// raw CSV cells in feature order (no label column). Advisory only: the
// managed evaluation additionally compares full distributions.
func Check(stats *Statistics, constraints *Constraints, rows [][]string) (*ViolationsDocument, error) {
	if stats == nil || constraints == nil {
		return nil, monerrors.NewBaselineError(monerrors.CodeBaselineMissing,
			"both statistics and constraints are required", nil)
	}
	if len(rows) == 0 {
		return nil, monerrors.NewCaptureError(monerrors.CodeNoCaptureFiles,
			"no rows to check", nil)
	}

	doc := &ViolationsDocument{Violations: []Violation{}}

	for col, fc := range constraints.Features {
		// Captured inference payloads carry features only; skip the
		// baseline's label column when present.
		if col >= len(rows[0]) {
			break
		}

		var present, missing, numeric, negative int
		var sum float64

		for _, row := range rows {
			if col >= len(row) {
				missing++
				continue
			}
			cell := row[col]
			if cell == "" {
				missing++
				continue
			}
			present++
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			numeric++
			sum += v
			if v < 0 {
				negative++
			}
		}

		total := present + missing

		// Completeness: observed presence ratio must not fall below
		// the baselined completeness.
		completeness := float64(present) / float64(total)
		if completeness < fc.Completeness {
			doc.Violations = append(doc.Violations, Violation{
				FeatureName:         fc.Name,
				ConstraintCheckType: CheckCompleteness,
				Description: fmt.Sprintf(
					"observed completeness %.4f is below the baseline %.4f",
					completeness, fc.Completeness),
			})
		}

		// Data type: fraction of parseable values must meet the
		// datatype check threshold.
		if fc.InferredType == TypeFractional || fc.InferredType == TypeIntegral {
			if present > 0 {
				numericRatio := float64(numeric) / float64(present)
				if numericRatio < constraints.MonitoringConfig.DatatypeCheckThreshold {
					doc.Violations = append(doc.Violations, Violation{
						FeatureName:         fc.Name,
						ConstraintCheckType: CheckDataType,
						Description: fmt.Sprintf(
							"%.2f%% of observed values match the %s type, threshold is %.2f%%",
							numericRatio*100, fc.InferredType,
							constraints.MonitoringConfig.DatatypeCheckThreshold*100),
					})
				}
			}
		}

		// Non-negativity.
		if fc.NumConstraints != nil && fc.NumConstraints.IsNonNegative && negative > 0 {
			doc.Violations = append(doc.Violations, Violation{
				FeatureName:         fc.Name,
				ConstraintCheckType: CheckNonNegative,
				Description: fmt.Sprintf(
					"%d negative values observed for a non-negative feature", negative),
			})
		}

		// Baseline drift: observed mean outside the comparison band
		// around the baselined mean.
		fs := stats.Feature(fc.Name)
		if fs != nil && fs.NumericalStatistics != nil && numeric > 0 {
			threshold := constraints.MonitoringConfig.DistributionConstraints.ComparisonThreshold
			if threshold > 0 && fs.NumericalStatistics.StdDev > 0 {
				observedMean := sum / float64(numeric)
				shift := math.Abs(observedMean-fs.NumericalStatistics.Mean) / fs.NumericalStatistics.StdDev
				if shift > threshold {
					doc.Violations = append(doc.Violations, Violation{
						FeatureName:         fc.Name,
						ConstraintCheckType: CheckDrift,
						Description: fmt.Sprintf(
							"observed mean %.4f deviates %.2f std devs from baseline mean %.4f (threshold %.2f)",
							observedMean, shift, fs.NumericalStatistics.Mean, threshold),
					})
				}
			}
		}
	}

	return doc, nil
}
