package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/domzcondes/opsmon/pkg/models"
	"github.com/domzcondes/opsmon/pkg/report"
)

// PostgresSource reads execution records from a PostgreSQL-hosted repository
// (typically a replicated copy of the vendor repository views).
type PostgresSource struct {
	db     *sql.DB
	folder string
	groups []string
}

// NewPostgresSource opens a connection pool against the repository database
func NewPostgresSource(cfg Config) (*PostgresSource, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 5
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 2
	}
	maxLifetime := cfg.ConnMaxLifetime
	if maxLifetime == 0 {
		maxLifetime = 30 * time.Minute
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &PostgresSource{db: db, folder: cfg.Folder, groups: cfg.JobGroups}, nil
}

// FetchWorkflowRuns reads workflow runs whose start time falls in the window
func (s *PostgresSource) FetchWorkflowRuns(ctx context.Context, window models.ReportWindow) ([]models.ExecutionRecord, error) {
	query := `
		SELECT subject_area, workflow_name, workflow_run_id, start_time, end_time, run_status_code
		FROM rep_wflow_run
		WHERE start_time >= $1 AND start_time < $2
		  AND subject_area NOT IN ('Shared', 'Monitoring')
		  AND ($3 = '' OR subject_area = $3)
		ORDER BY start_time DESC`

	rows, err := s.db.QueryContext(ctx, query, window.Start, window.End, s.folder)
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
func (s *PostgresSource) FetchSessionRuns(ctx context.Context, window models.ReportWindow) ([]models.ExecutionRecord, error) {
	query := `
		SELECT subject_area, session_name, workflow_run_id, actual_start, run_status_code
		FROM rep_sess_log
		WHERE actual_start >= $1 AND actual_start < $2
		  AND subject_area NOT IN ('Shared', 'Monitoring')
		  AND ($3 = '' OR subject_area = $3)
		ORDER BY actual_start DESC`

	rows, err := s.db.QueryContext(ctx, query, window.Start, window.End, s.folder)
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
func (s *PostgresSource) FetchBatchJobs(ctx context.Context, window models.ReportWindow) ([]models.ExecutionRecord, error) {
	query := `
		SELECT jg.job_group_name, jc.table_display_name, jc.start_run_date, jc.end_run_date, jc.status_message
		FROM job_groups jg
		JOIN job_group_controls jgc ON jg.rowid_job_group = jgc.rowid_job_group
		JOIN job_controls jc ON jgc.rowid_job_group_control = jc.rowid_job_group_control
		WHERE jc.start_run_date >= $1 AND jc.start_run_date < $2
		  AND (COALESCE(cardinality($3::text[]), 0) = 0 OR jg.job_group_name = ANY($3))
		ORDER BY jc.start_run_date DESC`

	rows, err := s.db.QueryContext(ctx, query, window.Start, window.End, pq.Array(s.groups))
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

// HealthCheck pings the repository database
func (s *PostgresSource) HealthCheck() error {
	return s.db.Ping()
}

// Close releases the connection pool
func (s *PostgresSource) Close() error {
	return s.db.Close()
}
