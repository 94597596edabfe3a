// Package report locates and renders monitoring job results: the
// constraint_violations.json documents a data-quality job writes under
// the reports prefix.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/baseline"
	monerrors "github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/errors"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/storage"
)

// ViolationsFile is the name of the violations document inside one
// execution's report directory.
const ViolationsFile = "constraint_violations.json"

// Report is one monitoring execution's violations document together with
// the object key it was read from.
type Report struct {
	Key        string
	Violations baseline.ViolationsDocument
}

// Reader locates monitoring reports under a prefix in object storage.
type Reader struct {
	store  storage.ObjectStorage
	prefix string
}

// NewReader creates a reader over the given reports prefix.
func NewReader(store storage.ObjectStorage, prefix string) *Reader {
	return &Reader{store: store, prefix: strings.Trim(prefix, "/")}
}

// ListReports returns the keys of all violations documents under the
// prefix, sorted ascending. Execution report directories embed the
// schedule time, so the last key is the most recent execution.
func (r *Reader) ListReports(ctx context.Context) ([]string, error) {
	keys, err := r.store.ListObjects(ctx, r.prefix+"/")
	if err != nil {
		return nil, monerrors.NewBaselineError(monerrors.CodeMalformedDoc,
			fmt.Sprintf("failed to list reports under %s", r.prefix), err)
	}

	var reports []string
	for _, key := range keys {
		if strings.HasSuffix(key, "/"+ViolationsFile) || key == ViolationsFile {
			reports = append(reports, key)
		}
	}
	sort.Strings(reports)
	return reports, nil
}

// Latest fetches the most recent violations document. A missing document
// is not an error state: a schedule whose executions all passed produces
// no violations files, so Latest reports that distinctly.
func (r *Reader) Latest(ctx context.Context) (*Report, error) {
	keys, err := r.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, monerrors.NewBaselineError(monerrors.CodeNoViolations,
			fmt.Sprintf("no violations documents under %s", r.prefix), nil)
	}
	return r.Load(ctx, keys[len(keys)-1])
}

// Load fetches and decodes one violations document by key.
func (r *Reader) Load(ctx context.Context, key string) (*Report, error) {
	raw, err := r.store.GetObject(ctx, key)
	if err != nil {
		return nil, monerrors.NewBaselineError(monerrors.CodeMalformedDoc,
			fmt.Sprintf("failed to fetch violations document %s", key), err)
	}

	report := &Report{Key: key}
	if err := json.Unmarshal(raw, &report.Violations); err != nil {
		return nil, monerrors.NewBaselineError(monerrors.CodeMalformedDoc,
			fmt.Sprintf("violations document %s is not valid JSON", key), err)
	}
	return report, nil
}

// IsEmpty reports whether no violations documents exist yet.
func IsEmpty(err error) bool {
	return monerrors.GetCode(err) == monerrors.CodeNoViolations
}

// Render formats a violations document for display, grouped by check type.
func Render(rep *Report) []string {
	lines := []string{
		fmt.Sprintf("report: %s", rep.Key),
		fmt.Sprintf("violations: %d", len(rep.Violations.Violations)),
	}

	byCheck := make(map[string][]baseline.Violation)
	var order []string
	for _, v := range rep.Violations.Violations {
		if _, seen := byCheck[v.ConstraintCheckType]; !seen {
			order = append(order, v.ConstraintCheckType)
		}
		byCheck[v.ConstraintCheckType] = append(byCheck[v.ConstraintCheckType], v)
	}
	sort.Strings(order)

	for _, check := range order {
		lines = append(lines, fmt.Sprintf("  %s (%d):", check, len(byCheck[check])))
		for _, v := range byCheck[check] {
			lines = append(lines, fmt.Sprintf("    %s: %s", v.FeatureName, v.Description))
		}
	}
	return lines
}
