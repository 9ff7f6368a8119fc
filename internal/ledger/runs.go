package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Counts are the totals reported at the end of a run.
type Counts struct {
	Media             int `json:"media"`
	Sidecars          int `json:"sidecars"`
	Matched           int `json:"matched"`
	UnmatchedMedia    int `json:"unmatched_media"`
	UnmatchedSidecars int `json:"unmatched_sidecars"`
	Skipped           int `json:"skipped"`
}

// Run is one reconcile invocation.
type Run struct {
	ID           string    `json:"id"`
	SourceDir    string    `json:"source_dir"`
	OutputDir    string    `json:"output_dir"`
	DryRun       bool      `json:"dry_run"`
	Status       Status    `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitzero"`
	Counts       Counts    `json:"counts"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// PairRecord is a confirmed pair and where it was placed.
type PairRecord struct {
	MediaPath   string `json:"media_path"`
	SidecarPath string `json:"sidecar_path"`
	Pass        string `json:"pass"`
	MediaDest   string `json:"media_dest,omitempty"`
	SidecarDest string `json:"sidecar_dest,omitempty"`
}

// ErrRunNotFound is returned by GetRun for an unknown identifier.
var ErrRunNotFound = errors.New("run not found")

// BeginRun records a new running run and returns it with its generated ID.
func (s *Store) BeginRun(ctx context.Context, sourceDir, outputDir string, dryRun bool) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		SourceDir: sourceDir,
		OutputDir: filepath.Clean(outputDir),
		DryRun:    dryRun,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	err := s.exec(ctx,
		`INSERT INTO runs (id, source_dir, output_dir, status, dry_run, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceDir, run.OutputDir, string(run.Status), boolToInt(dryRun), formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordPairs stores the pairs of a run in one transaction.
func (s *Store) RecordPairs(ctx context.Context, runID string, pairs []PairRecord) error {
	if len(pairs) == 0 {
		return nil
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin pairs tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO pairs (run_id, media_path, sidecar_path, pass, media_dest, sidecar_dest)
             VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare pair insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range pairs {
			if _, err := stmt.ExecContext(ctx, runID, p.MediaPath, p.SidecarPath, p.Pass, nullableString(p.MediaDest), nullableString(p.SidecarDest)); err != nil {
				return fmt.Errorf("insert pair %s: %w", p.MediaPath, err)
			}
		}
		return tx.Commit()
	})
}

// FinishRun stores the final status and counts of a run. A non-nil runErr
// marks the run failed.
func (s *Store) FinishRun(ctx context.Context, runID string, counts Counts, runErr error) error {
	status := StatusCompleted
	var message any
	if runErr != nil {
		status = StatusFailed
		message = runErr.Error()
	}
	err := s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, media_count = ?, sidecar_count = ?,
            matched_count = ?, unmatched_media_count = ?, unmatched_sidecar_count = ?,
            skipped_count = ?, error_message = ?
         WHERE id = ?`,
		string(status), formatTime(time.Now().UTC()), counts.Media, counts.Sidecars,
		counts.Matched, counts.UnmatchedMedia, counts.UnmatchedSidecars,
		counts.Skipped, message, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

const runColumns = `id, source_dir, output_dir, status, dry_run, started_at, finished_at,
    media_count, sidecar_count, matched_count, unmatched_media_count,
    unmatched_sidecar_count, skipped_count, error_message`

// GetRun returns the run with the given ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 lists all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// ListPairs returns the pairs recorded for a run ordered by sidecar path.
func (s *Store) ListPairs(ctx context.Context, runID string) ([]PairRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT media_path, sidecar_path, pass, media_dest, sidecar_dest
         FROM pairs WHERE run_id = ? ORDER BY sidecar_path`, runID)
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}
	defer rows.Close()

	var pairs []PairRecord
	for rows.Next() {
		var p PairRecord
		var mediaDest, sidecarDest sql.NullString
		if err := rows.Scan(&p.MediaPath, &p.SidecarPath, &p.Pass, &mediaDest, &sidecarDest); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		p.MediaDest = mediaDest.String
		p.SidecarDest = sidecarDest.String
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// ProcessedNames returns the base names of media and sidecars that completed,
// non-dry runs placed into outputDir. Sidecars count even when they were not
// copied, so their pairs are not redone.
func (s *Store) ProcessedNames(ctx context.Context, outputDir string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.media_dest, p.sidecar_path, p.sidecar_dest
         FROM pairs p JOIN runs r ON r.id = p.run_id
         WHERE r.output_dir = ? AND r.status = ? AND r.dry_run = 0`,
		filepath.Clean(outputDir), string(StatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("query processed names: %w", err)
	}
	defer rows.Close()

	seen := map[string]struct{}{}
	for rows.Next() {
		var mediaDest, sidecarDest sql.NullString
		var sidecarPath string
		if err := rows.Scan(&mediaDest, &sidecarPath, &sidecarDest); err != nil {
			return nil, fmt.Errorf("scan processed name: %w", err)
		}
		for _, value := range []string{mediaDest.String, sidecarPath, sidecarDest.String} {
			if value != "" {
				seen[filepath.Base(value)] = struct{}{}
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		status     string
		dryRun     int
		startedAt  string
		finishedAt sql.NullString
		message    sql.NullString
	)
	err := row.Scan(&run.ID, &run.SourceDir, &run.OutputDir, &status, &dryRun, &startedAt, &finishedAt,
		&run.Counts.Media, &run.Counts.Sidecars, &run.Counts.Matched, &run.Counts.UnmatchedMedia,
		&run.Counts.UnmatchedSidecars, &run.Counts.Skipped, &message)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Status = Status(status)
	run.DryRun = dryRun != 0
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	run.ErrorMessage = message.String
	return &run, nil
}

// timeLayout keeps a fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
