package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLedger_RecordAndQueryRuns(t *testing.T) {
	l := openLedger(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	runs := []Run{
		{
			Endpoint:           "churn-predictor",
			Mode:               "traffic",
			DatasetSeed:        42,
			DatasetFingerprint: 0xdeadbeefcafe,
			RowsSent:           200,
			RowsFailed:         0,
			DriftFactor:        1.0,
			StartedAt:          base,
			FinishedAt:         base.Add(time.Minute),
		},
		{
			Endpoint:           "churn-predictor",
			Mode:               "traffic",
			DatasetSeed:        42,
			DatasetFingerprint: 0xdeadbeefcafe,
			RowsSent:           180,
			RowsFailed:         20,
			MissingRate:        0.1,
			TypeErrorRate:      0.05,
			DriftFactor:        10.0,
			StartedAt:          base.Add(time.Hour),
			FinishedAt:         base.Add(time.Hour + time.Minute),
		},
		{
			Endpoint:   "other-endpoint",
			Mode:       "traffic",
			RowsSent:   5,
			StartedAt:  base.Add(2 * time.Hour),
			FinishedAt: base.Add(2*time.Hour + time.Second),
		},
	}

	var ids []string
	for _, run := range runs {
		id, err := l.RecordRun(ctx, run)
		if err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
		if id == "" {
			t.Fatal("expected a generated run ID")
		}
		ids = append(ids, id)
	}

	got, err := l.RecentRuns(ctx, "churn-predictor", 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	// Newest first.
	if got[0].RunID != ids[1] {
		t.Errorf("first run = %s, want %s", got[0].RunID, ids[1])
	}
	if got[0].DriftFactor != 10.0 {
		t.Errorf("drift factor = %v", got[0].DriftFactor)
	}
	if got[0].DatasetFingerprint != 0xdeadbeefcafe {
		t.Errorf("fingerprint = %x", got[0].DatasetFingerprint)
	}
	if !got[0].StartedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("started at = %v", got[0].StartedAt)
	}

	all, err := l.RecentRuns(ctx, "", 10)
	if err != nil {
		t.Fatalf("RecentRuns(all) failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 runs total, got %d", len(all))
	}
}

func TestLedger_RecentRunsLimit(t *testing.T) {
	l := openLedger(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := l.RecordRun(ctx, Run{
			Endpoint:   "e",
			Mode:       "traffic",
			StartedAt:  time.Now().Add(time.Duration(i) * time.Minute),
			FinishedAt: time.Now().Add(time.Duration(i)*time.Minute + time.Second),
		})
		if err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	got, err := l.RecentRuns(ctx, "e", 3)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 runs, got %d", len(got))
	}
}

func TestLedger_Actions(t *testing.T) {
	l := openLedger(t)
	ctx := context.Background()

	if err := l.RecordAction(ctx, "churn-data-quality", "create", "cron(0 * ? * * *)"); err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}
	if err := l.RecordAction(ctx, "churn-data-quality", "delete", ""); err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}
	if err := l.RecordAction(ctx, "other-schedule", "create", ""); err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}

	actions, err := l.Actions(ctx, "churn-data-quality")
	if err != nil {
		t.Fatalf("Actions failed: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}
	if actions[0].Action != "delete" {
		t.Errorf("newest action = %q, want delete", actions[0].Action)
	}
	if actions[1].Detail != "cron(0 * ? * * *)" {
		t.Errorf("detail = %q", actions[1].Detail)
	}
}

func TestLedger_Reopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	id, err := l.RecordRun(context.Background(), Run{
		Endpoint: "e", Mode: "traffic",
		StartedAt: time.Now(), FinishedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("failed to reopen ledger: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.RecentRuns(context.Background(), "e", 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != id {
		t.Errorf("run not persisted across reopen: %v", runs)
	}
}
