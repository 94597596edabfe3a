// Package ledger persists a local history of traffic runs and schedule
// actions in ledger.db, so earlier runs remain inspectable after the
// process exits.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded traffic run.
type Run struct {
	RunID              string
	Endpoint           string
	Mode               string
	DatasetSeed        int64
	DatasetFingerprint uint64
	RowsSent           int
	RowsFailed         int
	MissingRate        float64
	TypeErrorRate      float64
	NegativeRate       float64
	DriftFactor        float64
	StartedAt          time.Time
	FinishedAt         time.Time
}

// Action is one recorded schedule lifecycle operation.
type Action struct {
	ScheduleName string
	Action       string
	Detail       string
	CreatedAt    time.Time
}

// Ledger records runs and schedule actions in SQLite.
type Ledger struct {
	db *sql.DB
	mu sync.Mutex

	insertRunStmt    *sql.Stmt
	insertActionStmt *sql.Stmt
}

// Open opens (or creates) a ledger database at dbPath.
func Open(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ledger: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range AllSchemaSQL() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("ledger: failed to initialize schema: %w", err)
		}
	}

	insertRun, err := db.Prepare(`
		INSERT INTO runs (
			run_id, endpoint, mode,
			dataset_seed, dataset_fingerprint,
			rows_sent, rows_failed,
			missing_rate, type_error_rate, negative_rate, drift_factor,
			started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: failed to prepare run insert: %w", err)
	}

	insertAction, err := db.Prepare(`
		INSERT INTO schedule_actions (schedule_name, action, detail, created_at)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: failed to prepare action insert: %w", err)
	}

	return &Ledger{
		db:               db,
		insertRunStmt:    insertRun,
		insertActionStmt: insertAction,
	}, nil
}

// RecordRun persists one traffic run. An empty RunID gets a generated one.
// Returns the run ID.
func (l *Ledger) RecordRun(ctx context.Context, run Run) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}

	_, err := l.insertRunStmt.ExecContext(ctx,
		run.RunID, run.Endpoint, run.Mode,
		run.DatasetSeed, strconv.FormatUint(run.DatasetFingerprint, 16),
		run.RowsSent, run.RowsFailed,
		run.MissingRate, run.TypeErrorRate, run.NegativeRate, run.DriftFactor,
		run.StartedAt.Unix(), run.FinishedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("ledger: failed to insert run: %w", err)
	}
	return run.RunID, nil
}

// RecordAction persists one schedule lifecycle operation.
func (l *Ledger) RecordAction(ctx context.Context, scheduleName, action, detail string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.insertActionStmt.ExecContext(ctx,
		scheduleName, action, detail, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("ledger: failed to insert action: %w", err)
	}
	return nil
}

// RecentRuns returns the latest runs for an endpoint, newest first. An
// empty endpoint returns runs for all endpoints.
func (l *Ledger) RecentRuns(ctx context.Context, endpoint string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT run_id, endpoint, mode,
		       dataset_seed, dataset_fingerprint,
		       rows_sent, rows_failed,
		       missing_rate, type_error_rate, negative_rate, drift_factor,
		       started_at, finished_at
		FROM runs`
	args := []interface{}{}
	if endpoint != "" {
		query += " WHERE endpoint = ?"
		args = append(args, endpoint)
	}
	query += " ORDER BY started_at DESC, run_id LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var fingerprint string
		var startedAt, finishedAt int64
		if err := rows.Scan(
			&run.RunID, &run.Endpoint, &run.Mode,
			&run.DatasetSeed, &fingerprint,
			&run.RowsSent, &run.RowsFailed,
			&run.MissingRate, &run.TypeErrorRate, &run.NegativeRate, &run.DriftFactor,
			&startedAt, &finishedAt,
		); err != nil {
			return nil, fmt.Errorf("ledger: failed to scan run: %w", err)
		}
		run.DatasetFingerprint, _ = strconv.ParseUint(fingerprint, 16, 64)
		run.StartedAt = time.Unix(startedAt, 0).UTC()
		run.FinishedAt = time.Unix(finishedAt, 0).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Actions returns the recorded operations for a schedule, newest first.
func (l *Ledger) Actions(ctx context.Context, scheduleName string) ([]Action, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT schedule_name, action, detail, created_at
		FROM schedule_actions
		WHERE schedule_name = ?
		ORDER BY id DESC`, scheduleName)
	if err != nil {
		return nil, fmt.Errorf("ledger: failed to query actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		var createdAt int64
		var detail sql.NullString
		if err := rows.Scan(&a.ScheduleName, &a.Action, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("ledger: failed to scan action: %w", err)
		}
		a.Detail = detail.String
		a.CreatedAt = time.Unix(createdAt, 0).UTC()
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.insertRunStmt != nil {
		l.insertRunStmt.Close()
	}
	if l.insertActionStmt != nil {
		l.insertActionStmt.Close()
	}
	return l.db.Close()
}
