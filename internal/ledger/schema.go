package ledger

// CreateRunsTableSQL creates the traffic runs table. One row per traffic
// run: what was sent, with which defect settings, against which endpoint.
const CreateRunsTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    endpoint TEXT NOT NULL,
    mode TEXT NOT NULL,
    dataset_seed INTEGER NOT NULL,
    dataset_fingerprint TEXT NOT NULL,
    rows_sent INTEGER NOT NULL,
    rows_failed INTEGER NOT NULL,
    missing_rate REAL NOT NULL,
    type_error_rate REAL NOT NULL,
    negative_rate REAL NOT NULL,
    drift_factor REAL NOT NULL,
    started_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL
)`

// CreateRunsIndexSQL indexes runs by endpoint for history queries.
const CreateRunsIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_runs_endpoint
ON runs(endpoint, started_at DESC)`

// CreateActionsTableSQL creates the schedule actions table, recording
// schedule lifecycle operations issued through the toolkit.
const CreateActionsTableSQL = `
CREATE TABLE IF NOT EXISTS schedule_actions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    schedule_name TEXT NOT NULL,
    action TEXT NOT NULL,
    detail TEXT,
    created_at INTEGER NOT NULL
)`

// AllSchemaSQL returns all schema statements in creation order.
func AllSchemaSQL() []string {
	return []string{
		CreateRunsTableSQL,
		CreateRunsIndexSQL,
		CreateActionsTableSQL,
	}
}
