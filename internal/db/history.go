package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sunishkjoseph/mwhealth/internal/orchestrator"
)

// HealthRun is one row from the health_runs table.
type HealthRun struct {
	ID         int
	RunID      string
	Check      string
	Status     string
	ExitCode   int
	DurationMs int
	Categories int
	Diagnostic string
	Timestamp  string
}

// WriteRun records a completed check run. Satisfies orchestrator.HistoryWriter.
func (d *DB) WriteRun(ctx context.Context, rec orchestrator.RunRecord) error {
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO health_runs (run_id, check_name, status, exit_code, duration_ms, categories, diagnostic)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Check, rec.Status, rec.ExitCode, rec.DurationMs, rec.Categories, rec.Diagnostic,
	)
	if err != nil {
		return fmt.Errorf("write run history: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs, optionally filtered to one check type.
func (d *DB) RecentRuns(ctx context.Context, check string, limit int) ([]HealthRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, run_id, check_name, status, exit_code, duration_ms, categories, diagnostic, timestamp
	          FROM health_runs`
	args := []any{}
	if check != "" {
		query += ` WHERE check_name = ?`
		args = append(args, check)
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query run history: %w", err)
	}
	defer rows.Close()

	var runs []HealthRun
	for rows.Next() {
		var r HealthRun
		var exitCode, durationMs sql.NullInt64
		var diagnostic sql.NullString
		if err := rows.Scan(&r.ID, &r.RunID, &r.Check, &r.Status, &exitCode, &durationMs, &r.Categories, &diagnostic, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan run history: %w", err)
		}
		r.ExitCode = int(exitCode.Int64)
		r.DurationMs = int(durationMs.Int64)
		r.Diagnostic = diagnostic.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run history: %w", err)
	}
	return runs, nil
}

// LastRun returns the most recent run for a check, or nil when none exists.
func (d *DB) LastRun(ctx context.Context, check string) (*HealthRun, error) {
	runs, err := d.RecentRuns(ctx, check, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// StatusCounts aggregates run counts per status for a check, across the whole
// retained history.
func (d *DB) StatusCounts(ctx context.Context, check string) (map[string]int, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM health_runs WHERE check_name = ? GROUP BY status`,
		check,
	)
	if err != nil {
		return nil, fmt.Errorf("query status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status counts: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

// Prune deletes history rows beyond the newest keep entries per check.
func (d *DB) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, fmt.Errorf("keep must be positive, got %d", keep)
	}
	res, err := d.conn.ExecContext(ctx,
		`DELETE FROM health_runs WHERE id NOT IN (
		   SELECT id FROM (
		     SELECT id, ROW_NUMBER() OVER (PARTITION BY check_name ORDER BY timestamp DESC, id DESC) AS rn
		     FROM health_runs
		   ) WHERE rn <= ?
		 )`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune run history: %w", err)
	}
	return res.RowsAffected()
}
