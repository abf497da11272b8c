package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/domzcondes/opsmon/pkg/models"
	"github.com/domzcondes/opsmon/pkg/report"
)

// SQLiteSource reads execution records from a local SQLite replica of the
// repository tables. It also owns the replica schema, which makes it the
// fixture of choice for tests and offline runs.
type SQLiteSource struct {
	db     *sql.DB
	folder string
	groups []string
}

// NewSQLiteSource opens (and if needed initializes) a SQLite replica
func NewSQLiteSource(cfg Config) (*SQLiteSource, error) {
	path := cfg.DSN
	if path == "" {
		path = "opsmon.db"
	}

	// WAL plus a generous busy timeout keeps the dashboard reader and the
	// replication writer from tripping over each other.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open replica: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	src := &SQLiteSource{db: db, folder: cfg.Folder, groups: cfg.JobGroups}
	if err := src.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize replica schema: %w", err)
	}
	return src, nil
}

func (s *SQLiteSource) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workflow_runs (
		subject_area TEXT NOT NULL,
		workflow_name TEXT NOT NULL,
		workflow_run_id INTEGER,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		run_status_code INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_runs (
		subject_area TEXT NOT NULL,
		session_name TEXT NOT NULL,
		workflow_run_id INTEGER,
		actual_start DATETIME NOT NULL,
		run_status_code INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS batch_jobs (
		job_group_name TEXT NOT NULL,
		table_display_name TEXT NOT NULL,
		start_run_date DATETIME NOT NULL,
		end_run_date DATETIME,
		status_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_workflow_runs_start ON workflow_runs(start_time);
	CREATE INDEX IF NOT EXISTS idx_session_runs_start ON session_runs(actual_start);
	CREATE INDEX IF NOT EXISTS idx_batch_jobs_start ON batch_jobs(start_run_date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertWorkflowRun writes one workflow run into the replica
func (s *SQLiteSource) InsertWorkflowRun(folder, name string, runID int64, start time.Time, end *time.Time, statusCode int) error {
	_, err := s.db.Exec(`
		INSERT INTO workflow_runs (subject_area, workflow_name, workflow_run_id, start_time, end_time, run_status_code)
		VALUES (?, ?, ?, ?, ?, ?)`,
		folder, name, runID, start, end, statusCode)
	return err
}

// InsertSessionRun writes one session run into the replica
func (s *SQLiteSource) InsertSessionRun(folder, name string, runID int64, start time.Time, statusCode int) error {
	_, err := s.db.Exec(`
		INSERT INTO session_runs (subject_area, session_name, workflow_run_id, actual_start, run_status_code)
		VALUES (?, ?, ?, ?, ?)`,
		folder, name, runID, start, statusCode)
	return err
}

// InsertBatchJob writes one batch-job run into the replica
func (s *SQLiteSource) InsertBatchJob(group, display string, start time.Time, end *time.Time, message string) error {
	_, err := s.db.Exec(`
		INSERT INTO batch_jobs (job_group_name, table_display_name, start_run_date, end_run_date, status_message)
		VALUES (?, ?, ?, ?, ?)`,
		group, display, start, end, message)
	return err
}

// FetchWorkflowRuns reads workflow runs whose start time falls in the window
func (s *SQLiteSource) FetchWorkflowRuns(ctx context.Context, window models.ReportWindow) ([]models.ExecutionRecord, error) {
	query := `
		SELECT subject_area, workflow_name, workflow_run_id, start_time, end_time, run_status_code
		FROM workflow_runs
		WHERE start_time >= ? AND start_time < ?
		  AND subject_area NOT IN ('Shared', 'Monitoring')`
	args := []interface{}{window.Start, window.End}
	if s.folder != "" {
		query += " AND subject_area = ?"
		args = append(args, s.folder)
	}
	query += " ORDER BY start_time DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("workflow query failed: %w", err)
	}
	defer rows.Close()

	var records []models.ExecutionRecord
	for rows.Next() {
		var (
			rec     models.ExecutionRecord
			runID   sql.NullInt64
			endTime sql.NullTime
			code    int
		)
		if err := rows.Scan(&rec.GroupName, &rec.ItemName, &runID, &rec.StartTime, &endTime, &code); err != nil {
			return nil, fmt.Errorf("workflow scan failed: %w", err)
		}
		rec.Source = models.SourceWorkflow
		if runID.Valid {
			rec.RunID = fmt.Sprintf("%d", runID.Int64)
		}
		if endTime.Valid {
			t := endTime.Time
			rec.EndTime = &t
		}
		rec.Status = report.NormalizeRunCode(code)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FetchSessionRuns reads session runs whose actual start falls in the window
func (s *SQLiteSource) FetchSessionRuns(ctx context.Context, window models.ReportWindow) ([]models.ExecutionRecord, error) {
	query := `
		SELECT subject_area, session_name, workflow_run_id, actual_start, run_status_code
		FROM session_runs
		WHERE actual_start >= ? AND actual_start < ?
		  AND subject_area NOT IN ('Shared', 'Monitoring')`
	args := []interface{}{window.Start, window.End}
	if s.folder != "" {
		query += " AND subject_area = ?"
		args = append(args, s.folder)
	}
	query += " ORDER BY actual_start DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("session query failed: %w", err)
	}
	defer rows.Close()

	var records []models.ExecutionRecord
	for rows.Next() {
		var (
			rec   models.ExecutionRecord
			runID sql.NullInt64
			code  int
		)
		if err := rows.Scan(&rec.GroupName, &rec.ItemName, &runID, &rec.StartTime, &code); err != nil {
			return nil, fmt.Errorf("session scan failed: %w", err)
		}
		rec.Source = models.SourceSession
		if runID.Valid {
			rec.RunID = fmt.Sprintf("%d", runID.Int64)
		}
		rec.Status = report.NormalizeRunCode(code)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FetchBatchJobs reads hub batch-job runs for the configured job groups
func (s *SQLiteSource) FetchBatchJobs(ctx context.Context, window models.ReportWindow) ([]models.ExecutionRecord, error) {
	query := `
		SELECT job_group_name, table_display_name, start_run_date, end_run_date, status_message
		FROM batch_jobs
		WHERE start_run_date >= ? AND start_run_date < ?`
	args := []interface{}{window.Start, window.End}
	if len(s.groups) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(s.groups)), ",")
		query += " AND job_group_name IN (" + placeholders + ")"
		for _, g := range s.groups {
			args = append(args, g)
		}
	}
	query += " ORDER BY start_run_date DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("batch job query failed: %w", err)
	}
	defer rows.Close()

	var records []models.ExecutionRecord
	for rows.Next() {
		var (
			rec     models.ExecutionRecord
			endTime sql.NullTime
			message sql.NullString
		)
		if err := rows.Scan(&rec.GroupName, &rec.ItemName, &rec.StartTime, &endTime, &message); err != nil {
			return nil, fmt.Errorf("batch job scan failed: %w", err)
		}
		rec.Source = models.SourceBatchJob
		if endTime.Valid {
			t := endTime.Time
			rec.EndTime = &t
		}
		rec.RawMessage = message.String
		rec.Status = report.NormalizeJobMessage(message.String)
		rec.RejectCount = parseRejects(message.String)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// HealthCheck pings the replica
func (s *SQLiteSource) HealthCheck() error {
	return s.db.Ping()
}

// Close releases the database handle
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
