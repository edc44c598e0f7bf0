package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
)

// RunRow is one archived run as served over the API.
type RunRow struct {
	ID                string         `json:"id"`
	State             string         `json:"state"`
	StartedAt         string         `json:"startedAt"`
	FinishedAt        string         `json:"finishedAt"`
	TimedOut          bool           `json:"timedOut"`
	TotalRaw          int            `json:"totalRaw"`
	TotalUnique       int            `json:"totalUnique"`
	DuplicatesRemoved int            `json:"duplicatesRemoved"`
	FilteredOut       int            `json:"filteredOut"`
	BySource          map[string]int `json:"bySource"`
	ByCategory        map[string]int `json:"byCategory"`
}

// SaveRun archives a finished run: its summary row, every surviving job
// in output order, and every fetch error. One transaction per run.
func SaveRun(ctx context.Context, db *sql.DB, res domain.Result) error {
	bySource := map[string]int{}
	for s, n := range res.Stats.BySource {
		bySource[string(s)] = n
	}
	srcJSON, _ := json.Marshal(bySource)
	catJSON, _ := json.Marshal(res.Stats.ByCategory)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (id, state, started_at, finished_at, timed_out,
  total_raw, total_unique, duplicates_removed, filtered_out, by_source, by_category)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		res.RunID,
		string(res.State),
		res.StartedAt.Format(time.RFC3339),
		res.FinishedAt.Format(time.RFC3339),
		boolToInt(res.TimedOut),
		res.Stats.TotalRaw,
		res.Stats.TotalUnique,
		res.Stats.DuplicatesRemoved,
		res.Stats.FilteredOut,
		string(srcJSON),
		string(catJSON),
	); err != nil {
		return fmt.Errorf("save run %s: %w", res.RunID, err)
	}

	// relies on the unique index on (run_id, source, external_id)
	jobStmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO run_jobs (run_id, position, company, title, location, url, posted_at, source, external_id, description)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("save run %s: %w", res.RunID, err)
	}
	defer jobStmt.Close()

	for i, j := range res.Jobs {
		var posted any
		if j.PostedAt != nil {
			posted = j.PostedAt.UTC().Format(time.RFC3339)
		}
		if _, err := jobStmt.ExecContext(ctx,
			res.RunID, i, j.Company, j.Title, j.Location, j.URL,
			posted, string(j.Source), j.ExternalID, j.Description,
		); err != nil {
			return fmt.Errorf("save run %s job %d: %w", res.RunID, i, err)
		}
	}

	errStmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_errors (run_id, source, company, kind, message)
VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("save run %s: %w", res.RunID, err)
	}
	defer errStmt.Close()

	for _, fe := range res.Errors {
		if _, err := errStmt.ExecContext(ctx,
			res.RunID, string(fe.Source), fe.Company, string(fe.Kind), fe.Message,
		); err != nil {
			return fmt.Errorf("save run %s error row: %w", res.RunID, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]RunRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := db.QueryContext(ctx, `
SELECT id, state, started_at, finished_at, timed_out,
  total_raw, total_unique, duplicates_removed, filtered_out, by_source, by_category
FROM runs
ORDER BY started_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var timedOut int
		var srcJSON, catJSON string
		if err := rows.Scan(
			&r.ID,
			&r.State,
			&r.StartedAt,
			&r.FinishedAt,
			&timedOut,
			&r.TotalRaw,
			&r.TotalUnique,
			&r.DuplicatesRemoved,
			&r.FilteredOut,
			&srcJSON,
			&catJSON,
		); err != nil {
			return nil, err
		}
		r.TimedOut = timedOut != 0
		_ = json.Unmarshal([]byte(srcJSON), &r.BySource)
		_ = json.Unmarshal([]byte(catJSON), &r.ByCategory)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadRun returns a single archived run summary by id.
func LoadRun(ctx context.Context, db *sql.DB, runID string) (RunRow, error) {
	var r RunRow
	var timedOut int
	var srcJSON, catJSON string
	err := db.QueryRowContext(ctx, `
SELECT id, state, started_at, finished_at, timed_out,
  total_raw, total_unique, duplicates_removed, filtered_out, by_source, by_category
FROM runs
WHERE id = ?;`, runID).Scan(
		&r.ID,
		&r.State,
		&r.StartedAt,
		&r.FinishedAt,
		&timedOut,
		&r.TotalRaw,
		&r.TotalUnique,
		&r.DuplicatesRemoved,
		&r.FilteredOut,
		&srcJSON,
		&catJSON,
	)
	if err != nil {
		return RunRow{}, err
	}
	r.TimedOut = timedOut != 0
	_ = json.Unmarshal([]byte(srcJSON), &r.BySource)
	_ = json.Unmarshal([]byte(catJSON), &r.ByCategory)
	return r, nil
}

// LoadRunJobs returns the archived jobs of a run in output order.
func LoadRunJobs(ctx context.Context, db *sql.DB, runID string) ([]domain.Job, error) {
	rows, err := db.QueryContext(ctx, `
SELECT company, title, location, url, posted_at, source, external_id, description
FROM run_jobs
WHERE run_id = ?
ORDER BY position ASC;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		var j domain.Job
		var src string
		var posted sql.NullString
		if err := rows.Scan(
			&j.Company,
			&j.Title,
			&j.Location,
			&j.URL,
			&posted,
			&src,
			&j.ExternalID,
			&j.Description,
		); err != nil {
			return nil, err
		}
		j.Source = domain.Source(src)
		if posted.Valid {
			if t, err := time.Parse(time.RFC3339, posted.String); err == nil {
				t = t.UTC()
				j.PostedAt = &t
			}
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadRunErrors returns the fetch errors recorded for a run.
func LoadRunErrors(ctx context.Context, db *sql.DB, runID string) ([]domain.FetchError, error) {
	rows, err := db.QueryContext(ctx, `
SELECT source, company, kind, message
FROM run_errors
WHERE run_id = ?
ORDER BY id ASC;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FetchError
	for rows.Next() {
		var fe domain.FetchError
		var src, kind string
		if err := rows.Scan(&src, &fe.Company, &kind, &fe.Message); err != nil {
			return nil, err
		}
		fe.Source = domain.Source(src)
		fe.Kind = domain.ErrorKind(kind)
		out = append(out, fe)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CleanupOldRuns prunes runs older than three months along with their
// jobs and errors.
func CleanupOldRuns(db *sql.DB) (deleted int64, err error) {
	res, err := db.Exec(`
DELETE FROM runs
WHERE started_at < datetime('now', '-3 months');
`)
	if err != nil {
		return 0, fmt.Errorf("cleanup old runs: %w", err)
	}
	n, _ := res.RowsAffected()

	if _, err := db.Exec(`
DELETE FROM run_jobs
WHERE run_id NOT IN (SELECT id FROM runs);
`); err != nil {
		return n, fmt.Errorf("cleanup orphan jobs: %w", err)
	}
	if _, err := db.Exec(`
DELETE FROM run_errors
WHERE run_id NOT IN (SELECT id FROM runs);
`); err != nil {
		return n, fmt.Errorf("cleanup orphan errors: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
