package report

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/storage"
)

const violationsDoc = `{
  "violations": [
    {
      "feature_name": "feature_3",
      "constraint_check_type": "data_type_check",
      "description": "Value: 1.0 does not meet the constraint requirement! Data type match requirement is not met. Expected data type: Fractional, Expected match: 100.0%. Observed: Only 99.5% of data is Fractional."
    },
    {
      "feature_name": "feature_7",
      "constraint_check_type": "completeness_check",
      "description": "Data completeness requirement is not met. Expected: 100.0%. Observed: 98.0%."
    },
    {
      "feature_name": "feature_3",
      "constraint_check_type": "baseline_drift_check",
      "description": "Baseline drift distance: 0.42 exceeds threshold: 0.1"
    }
  ]
}`

func newStore(t *testing.T) *storage.LocalStorage {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir(), "test-bucket")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return store
}

func TestReader_Latest(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	keys := []string{
		"monitoring/reports/2026-08-29-12-00/constraint_violations.json",
		"monitoring/reports/2026-08-30-12-00/constraint_violations.json",
	}
	for _, key := range keys {
		if err := store.PutObject(ctx, key, []byte(violationsDoc)); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	// Statistics from the same executions must not show up as reports.
	if err := store.PutObject(ctx, "monitoring/reports/2026-08-30-12-00/statistics.json", []byte("{}")); err != nil {
		t.Fatalf("put statistics: %v", err)
	}

	reader := NewReader(store, "monitoring/reports")

	listed, err := reader.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 reports, got %d: %v", len(listed), listed)
	}

	latest, err := reader.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.Key != keys[1] {
		t.Errorf("latest key = %q, want %q", latest.Key, keys[1])
	}
	if len(latest.Violations.Violations) != 3 {
		t.Errorf("expected 3 violations, got %d", len(latest.Violations.Violations))
	}
}

func TestReader_Latest_NoReports(t *testing.T) {
	reader := NewReader(newStore(t), "monitoring/reports")

	_, err := reader.Latest(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsEmpty(err) {
		t.Errorf("expected empty-report error, got %v", err)
	}
}

func TestReader_Load_Malformed(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	key := "monitoring/reports/2026-08-30-12-00/constraint_violations.json"
	if err := store.PutObject(ctx, key, []byte("not json")); err != nil {
		t.Fatalf("put: %v", err)
	}

	reader := NewReader(store, "monitoring/reports")
	if _, err := reader.Load(ctx, key); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRender(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	key := "monitoring/reports/2026-08-30-12-00/constraint_violations.json"
	if err := store.PutObject(ctx, key, []byte(violationsDoc)); err != nil {
		t.Fatalf("put: %v", err)
	}

	reader := NewReader(store, "monitoring/reports")
	rep, err := reader.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	lines := Render(rep)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "violations: 3") {
		t.Errorf("missing violation count:\n%s", joined)
	}
	for _, check := range []string{"data_type_check (1):", "completeness_check (1):", "baseline_drift_check (1):"} {
		if !strings.Contains(joined, check) {
			t.Errorf("missing %q:\n%s", check, joined)
		}
	}
	if !strings.Contains(joined, "feature_7: Data completeness requirement") {
		t.Errorf("missing feature line:\n%s", joined)
	}
}
