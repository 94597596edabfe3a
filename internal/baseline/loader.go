package baseline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	monerrors "github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/errors"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/storage"
)

// Names of the baseline documents under the baseline prefix.
const (
	StatisticsFile  = "statistics.json"
	ConstraintsFile = "constraints.json"
)

// Loader fetches baseline documents from object storage.
type Loader struct {
	store  storage.ObjectStorage
	prefix string
}

// NewLoader creates a loader for the given baseline prefix.
func NewLoader(store storage.ObjectStorage, prefix string) *Loader {
	return &Loader{store: store, prefix: strings.Trim(prefix, "/")}
}

func (l *Loader) key(name string) string {
	if l.prefix == "" {
		return name
	}
	return l.prefix + "/" + name
}

// LoadStatistics fetches and decodes statistics.json.
func (l *Loader) LoadStatistics(ctx context.Context) (*Statistics, error) {
	raw, err := l.LoadRaw(ctx, StatisticsFile)
	if err != nil {
		return nil, err
	}

	var stats Statistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, monerrors.NewBaselineError(monerrors.CodeMalformedDoc,
			"statistics document is not valid JSON", err)
	}
	return &stats, nil
}

// LoadConstraints fetches and decodes constraints.json.
func (l *Loader) LoadConstraints(ctx context.Context) (*Constraints, error) {
	raw, err := l.LoadRaw(ctx, ConstraintsFile)
	if err != nil {
		return nil, err
	}

	var constraints Constraints
	if err := json.Unmarshal(raw, &constraints); err != nil {
		return nil, monerrors.NewBaselineError(monerrors.CodeMalformedDoc,
			"constraints document is not valid JSON", err)
	}
	return &constraints, nil
}

// IsMissing reports whether err means the baseline document does not
// exist yet, as opposed to a fetch or decode failure.
func IsMissing(err error) bool {
	return monerrors.GetCode(err) == monerrors.CodeBaselineMissing
}

// LoadRaw fetches a baseline document without decoding it.
func (l *Loader) LoadRaw(ctx context.Context, name string) ([]byte, error) {
	raw, err := l.store.GetObject(ctx, l.key(name))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, monerrors.NewBaselineError(monerrors.CodeBaselineMissing,
				fmt.Sprintf("baseline document %s not found under %s", name, l.prefix), err)
		}
		return nil, monerrors.NewBaselineError(monerrors.CodeMalformedDoc,
			fmt.Sprintf("failed to fetch baseline document %s", name), err)
	}
	return raw, nil
}

// Summary renders the headline fields of a raw baseline document for
// display, without a full decode. Works on both document kinds.
func Summary(raw []byte) []string {
	doc := gjson.ParseBytes(raw)
	var lines []string

	if itemCount := doc.Get("dataset.item_count"); itemCount.Exists() {
		lines = append(lines, fmt.Sprintf("baseline rows: %d", itemCount.Int()))
	}

	features := doc.Get("features")
	if !features.Exists() {
		return lines
	}
	lines = append(lines, fmt.Sprintf("features: %d", len(features.Array())))

	features.ForEach(func(_, f gjson.Result) bool {
		name := f.Get("name").String()
		inferred := f.Get("inferred_type").String()
		switch {
		case f.Get("numerical_statistics").Exists():
			lines = append(lines, fmt.Sprintf("  %s (%s): mean=%.4f std_dev=%.4f min=%.4f max=%.4f",
				name, inferred,
				f.Get("numerical_statistics.mean").Float(),
				f.Get("numerical_statistics.std_dev").Float(),
				f.Get("numerical_statistics.min").Float(),
				f.Get("numerical_statistics.max").Float()))
		case f.Get("completeness").Exists():
			nonNeg := f.Get("num_constraints.is_non_negative").Bool()
			lines = append(lines, fmt.Sprintf("  %s (%s): completeness=%g non_negative=%v",
				name, inferred, f.Get("completeness").Float(), nonNeg))
		default:
			lines = append(lines, fmt.Sprintf("  %s (%s)", name, inferred))
		}
		return true
	})

	if threshold := doc.Get("monitoring_config.distribution_constraints.comparison_threshold"); threshold.Exists() {
		lines = append(lines, fmt.Sprintf("comparison threshold: %g", threshold.Float()))
	}

	return lines
}
