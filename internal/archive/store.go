package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fakeyudi/worktime/internal/report"
	"github.com/fakeyudi/worktime/internal/session"
)

// ErrNotFound is returned when no archived run matches an id.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed width so generated_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID           string
	GeneratedAt  time.Time
	SourcePath   string
	SourceFormat string
	FirstDay     string
	LastDay      string
	Total        time.Duration
	Days         int
	Diagnostics  int
}

// Store is the SQLite-backed report archive.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive at path.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save stores r and its per-day totals in one transaction.
func (s *Store) Save(ctx context.Context, r *report.Report) (err error) {
	payload, err := (&report.JSONRenderer{}).Render(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	var first, last string
	if n := len(r.Days); n > 0 {
		first, last = r.Days[0].Date.String(), r.Days[n-1].Date.String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting archive transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, generated_at, source_path, source_format, first_day, last_day, total_seconds, days, diagnostics, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID,
		r.GeneratedAt.UTC().Format(timeLayout),
		r.Source.Path,
		r.Source.Format,
		first,
		last,
		int64(r.Total/time.Second),
		len(r.Days),
		len(r.Diagnostics),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, d := range r.Days {
		_, err = tx.ExecContext(ctx, `INSERT INTO day_totals
			(run_id, date, active_seconds, break_seconds, unterminated)
			VALUES (?, ?, ?, ?, ?)`,
			r.RunID,
			d.Date.String(),
			int64(d.Active/time.Second),
			int64(d.Break/time.Second),
			boolToInt(d.Unterminated),
		)
		if err != nil {
			return fmt.Errorf("inserting day total %s: %w", d.Date, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// List returns the most recent runs first. A limit of zero or less lists
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT id, generated_at, source_path, source_format, first_day, last_day, total_seconds, days, diagnostics
		FROM runs ORDER BY generated_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var generatedAt string
		var total int64
		if err := rows.Scan(&rs.ID, &generatedAt, &rs.SourcePath, &rs.SourceFormat,
			&rs.FirstDay, &rs.LastDay, &total, &rs.Days, &rs.Diagnostics); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if rs.GeneratedAt, err = time.Parse(timeLayout, generatedAt); err != nil {
			return nil, fmt.Errorf("parsing generated_at for run %s: %w", rs.ID, err)
		}
		rs.Total = time.Duration(total) * time.Second
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Get loads the full report of a run. id may be any unambiguous prefix of
// the run id.
func (s *Store) Get(ctx context.Context, id string) (*report.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("run: %w", ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id = ? DESC LIMIT 2`,
		id, escapeLike(id)+"%", id)
	if err != nil {
		return nil, fmt.Errorf("loading run: %w", err)
	}
	defer rows.Close()

	var ids, payloads []string
	for rows.Next() {
		var rid, payload string
		if err := rows.Scan(&rid, &payload); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		ids = append(ids, rid)
		payloads = append(payloads, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading run: %w", err)
	}

	switch {
	case len(ids) == 0:
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	case len(ids) > 1 && ids[0] != id:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
	r, err := (&report.JSONParser{}).Parse([]byte(payloads[0]))
	if err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", ids[0], err)
	}
	return r, nil
}

// Delete removes a run and its day totals.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

// DayTotal is the archived active time of one day in one run.
type DayTotal struct {
	RunID        string
	Date         session.Date
	Active       time.Duration
	Break        time.Duration
	Unterminated bool
}

// DayTotals returns the archived totals of a run in date order.
func (s *Store) DayTotals(ctx context.Context, runID string) ([]DayTotal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, date, active_seconds, break_seconds, unterminated
		FROM day_totals WHERE run_id = ? ORDER BY date`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing day totals: %w", err)
	}
	defer rows.Close()

	var out []DayTotal
	for rows.Next() {
		var dt DayTotal
		var date string
		var active, brk int64
		var unterminated int
		if err := rows.Scan(&dt.RunID, &date, &active, &brk, &unterminated); err != nil {
			return nil, fmt.Errorf("scanning day total: %w", err)
		}
		if dt.Date, err = session.ParseDate(date); err != nil {
			return nil, err
		}
		dt.Active = time.Duration(active) * time.Second
		dt.Break = time.Duration(brk) * time.Second
		dt.Unterminated = unterminated != 0
		out = append(out, dt)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
