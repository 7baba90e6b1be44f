package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// timeLayout keeps a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, source_path, output_path, container, video_format, arguments,
    state, message, percent, started_at, finished_at`

// Begin records a new running transcode and returns it with its assigned ID.
func (s *Store) Begin(ctx context.Context, run Run) (*Run, error) {
	if strings.TrimSpace(run.SourcePath) == "" {
		return nil, errors.New("source path is required")
	}
	if strings.TrimSpace(run.OutputPath) == "" {
		return nil, errors.New("output path is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.State = StateRunning
	run.FinishedAt = nil

	res, err := s.exec(
		ctx,
		`INSERT INTO runs (source_path, output_path, container, video_format, arguments, state, percent, started_at)
         VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		run.SourcePath,
		run.OutputPath,
		nullableString(run.Container),
		nullableString(run.VideoFormat),
		nullableString(run.Arguments),
		run.State,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("run id: %w", err)
	}
	run.ID = id
	return &run, nil
}

// Progress stores the latest completion fraction of a running transcode.
func (s *Store) Progress(ctx context.Context, id int64, percent float64) error {
	if _, err := s.exec(
		ctx,
		`UPDATE runs SET percent = ? WHERE id = ? AND state = ?`,
		percent, id, StateRunning,
	); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// Finish moves a run into a terminal state. Finishing a run twice is an error.
func (s *Store) Finish(ctx context.Context, id int64, state State, message string) error {
	if !state.Terminal() {
		return fmt.Errorf("finish run: state %q is not terminal", state)
	}
	finished := formatTime(time.Now())
	res, err := s.exec(
		ctx,
		`UPDATE runs SET state = ?, message = ?, finished_at = ?,
             percent = CASE WHEN ? = 'completed' THEN 1 ELSE percent END
         WHERE id = ? AND state = ?`,
		state, nullableString(message), finished, state, id, StateRunning,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: run %d is not running", id)
	}
	return nil
}

// GetByID fetches a run by identifier. A missing run returns nil without error.
func (s *Store) GetByID(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(orBackground(ctx), `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first. A non-positive limit returns all runs.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(orBackground(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// MarkAbandoned fails runs left in the running state by a process that exited
// without finishing them.
func (s *Store) MarkAbandoned(ctx context.Context) (int64, error) {
	res, err := s.exec(
		ctx,
		`UPDATE runs SET state = ?, message = ?, finished_at = ? WHERE state = ?`,
		StateFailed, "abandoned", formatTime(time.Now()), StateRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes every finished run and returns the number removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM runs WHERE state != ?`, StateRunning)
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run                               Run
		container, videoFormat, arguments sql.NullString
		message, finishedRaw              sql.NullString
		state, startedRaw                 string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.SourcePath,
		&run.OutputPath,
		&container,
		&videoFormat,
		&arguments,
		&state,
		&message,
		&run.Percent,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	run.Container = container.String
	run.VideoFormat = videoFormat.String
	run.Arguments = arguments.String
	run.Message = message.String
	run.State = State(state)
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
