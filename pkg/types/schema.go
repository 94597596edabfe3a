package types

import "fmt"

// FeatureSchema describes the layout of a tabular inference dataset:
// an ordered list of numeric feature columns plus an optional label column.
type FeatureSchema struct {
	// FeatureNames are the ordered feature column names.
	FeatureNames []string

	// LabelName is the label column name, empty when the dataset is unlabeled.
	LabelName string
}

// NewFeatureSchema builds a schema with n generated feature names
// (feature_0 .. feature_n-1) and the given label column.
func NewFeatureSchema(n int, labelName string) FeatureSchema {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("feature_%d", i)
	}
	return FeatureSchema{FeatureNames: names, LabelName: labelName}
}

// NumFeatures returns the number of feature columns.
func (s FeatureSchema) NumFeatures() int {
	return len(s.FeatureNames)
}

// HasLabel reports whether the schema carries a label column.
func (s FeatureSchema) HasLabel() bool {
	return s.LabelName != ""
}

// Columns returns all column names in CSV order, label last when present.
func (s FeatureSchema) Columns() []string {
	cols := make([]string, 0, len(s.FeatureNames)+1)
	cols = append(cols, s.FeatureNames...)
	if s.HasLabel() {
		cols = append(cols, s.LabelName)
	}
	return cols
}

// Validate checks that the schema is usable: at least one feature and
// no duplicate column names.
func (s FeatureSchema) Validate() error {
	if len(s.FeatureNames) == 0 {
		return fmt.Errorf("schema has no feature columns")
	}
	seen := make(map[string]struct{}, len(s.FeatureNames)+1)
	for _, name := range s.Columns() {
		if name == "" {
			return fmt.Errorf("schema has an empty column name")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate column name %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
