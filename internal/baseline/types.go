// Package baseline models the Model Monitor baseline artifacts: the
// statistics.json and constraints.json documents a baselining job emits,
// plus a local constraint checker for previewing violations.
package baseline

import "encoding/json"

// Inferred feature types used in baseline documents.
const (
	TypeFractional = "Fractional"
	TypeIntegral   = "Integral"
	TypeString     = "String"
)

// Statistics mirrors the statistics.json document.
type Statistics struct {
	Version  float64             `json:"version"`
	Dataset  DatasetStats        `json:"dataset"`
	Features []FeatureStatistics `json:"features"`
}

// DatasetStats holds whole-dataset statistics.
type DatasetStats struct {
	ItemCount int64 `json:"item_count"`
}

// FeatureStatistics holds per-feature statistics. Exactly one of
// NumericalStatistics and StringStatistics is set, matching InferredType.
type FeatureStatistics struct {
	Name                string               `json:"name"`
	InferredType        string               `json:"inferred_type"`
	NumericalStatistics *NumericalStatistics `json:"numerical_statistics,omitempty"`
	StringStatistics    *StringStatistics    `json:"string_statistics,omitempty"`
}

// CommonStatistics holds presence counts shared by all feature types.
type CommonStatistics struct {
	NumPresent int64 `json:"num_present"`
	NumMissing int64 `json:"num_missing"`
}

// NumericalStatistics holds statistics for numeric features.
// Distribution carries the KLL sketch emitted by the managed baselining
// job; the toolkit preserves it opaquely.
type NumericalStatistics struct {
	Common       CommonStatistics `json:"common"`
	Mean         float64          `json:"mean"`
	Sum          float64          `json:"sum"`
	StdDev       float64          `json:"std_dev"`
	Min          float64          `json:"min"`
	Max          float64          `json:"max"`
	Distribution json.RawMessage  `json:"distribution,omitempty"`
}

// StringStatistics holds statistics for string features.
type StringStatistics struct {
	Common        CommonStatistics `json:"common"`
	DistinctCount int64            `json:"distinct_count"`
}

// Constraints mirrors the constraints.json document.
type Constraints struct {
	Version          float64             `json:"version"`
	Features         []FeatureConstraint `json:"features"`
	MonitoringConfig MonitoringConfig    `json:"monitoring_config"`
}

// FeatureConstraint holds per-feature constraints.
type FeatureConstraint struct {
	Name           string                `json:"name"`
	InferredType   string                `json:"inferred_type"`
	Completeness   float64               `json:"completeness"`
	NumConstraints *NumericalConstraints `json:"num_constraints,omitempty"`
}

// NumericalConstraints holds constraints specific to numeric features.
type NumericalConstraints struct {
	IsNonNegative bool `json:"is_non_negative"`
}

// MonitoringConfig holds the evaluation settings the managed monitor
// applies when comparing captured data against the baseline.
type MonitoringConfig struct {
	EvaluateConstraints     string                  `json:"evaluate_constraints"`
	EmitMetrics             string                  `json:"emit_metrics"`
	DatatypeCheckThreshold  float64                 `json:"datatype_check_threshold"`
	DomainContentThreshold  float64                 `json:"domain_content_threshold"`
	DistributionConstraints DistributionConstraints `json:"distribution_constraints"`
}

// DistributionConstraints holds drift comparison settings.
type DistributionConstraints struct {
	PerformComparison   string  `json:"perform_comparison"`
	ComparisonThreshold float64 `json:"comparison_threshold"`
	ComparisonMethod    string  `json:"comparison_method"`
}

// Feature returns the statistics for the named feature, or nil.
func (s *Statistics) Feature(name string) *FeatureStatistics {
	for i := range s.Features {
		if s.Features[i].Name == name {
			return &s.Features[i]
		}
	}
	return nil
}

// Feature returns the constraint for the named feature, or nil.
func (c *Constraints) Feature(name string) *FeatureConstraint {
	for i := range c.Features {
		if c.Features[i].Name == name {
			return &c.Features[i]
		}
	}
	return nil
}
