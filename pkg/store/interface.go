package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/domzcondes/opsmon/pkg/models"
)

// Source reads execution records from a repository database. Both the
// PostgreSQL and SQLite implementations satisfy this interface; the memory
// implementation backs tests and dry runs.
//
// Fetch methods return normalized records sorted by start time descending.
// They never retry; connectivity failures surface as errors and the caller
// decides whether the cycle proceeds without that source's data.
type Source interface {
	FetchWorkflowRuns(ctx context.Context, window models.ReportWindow) ([]models.ExecutionRecord, error)
	FetchSessionRuns(ctx context.Context, window models.ReportWindow) ([]models.ExecutionRecord, error)
	FetchBatchJobs(ctx context.Context, window models.ReportWindow) ([]models.ExecutionRecord, error)

	HealthCheck() error
	Close() error
}

// Config holds repository connection configuration
type Config struct {
	Type string // "postgres" or "sqlite"
	DSN  string

	// Batch-job sources are filtered to these job groups; empty means all
	JobGroups []string

	// The workflow repository folder to report on; empty means all folders
	// except the repository's own housekeeping folders
	Folder string

	// PostgreSQL pool tuning
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSource creates a repository source based on configuration
func NewSource(cfg Config) (Source, error) {
	switch cfg.Type {
	case "postgres", "postgresql":
		return NewPostgresSource(cfg)
	case "sqlite", "":
		return NewSQLiteSource(cfg)
	default:
		return nil, fmt.Errorf("unsupported source type %q", cfg.Type)
	}
}

// parseRejects extracts the rejected-record count from a status message of
// the form "... with N rejected records ...". Messages without the phrase
// count zero rejects.
func parseRejects(msg string) int {
	const marker = " rejected records"
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return 0
	}
	head := strings.TrimRight(msg[:idx], " ")
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
