package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"vidscript/internal/config"
)

// Store records transcription runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database at cfg.CatalogPath.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.CatalogPath())
}

// OpenPath opens the catalog database stored at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records a running transcription and returns its id.
func (s *Store) Begin(ctx context.Context, mediaPath, recordPath, model string) (string, error) {
	if strings.TrimSpace(mediaPath) == "" {
		return "", errors.New("begin run: media path required")
	}
	mediaPath, recordPath = absPath(mediaPath), absPath(recordPath)
	id := uuid.NewString()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, media_path, record_path, status, model, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		mediaPath,
		recordPath,
		StatusRunning,
		nullableString(model),
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Finish closes a running transcription with its outcome.
func (s *Store) Finish(ctx context.Context, id string, outcome Outcome) error {
	status := StatusOK
	errorMessage := ""
	if outcome.Err != nil {
		status = StatusFailed
		errorMessage = outcome.Err.Error()
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs
         SET status = ?, language = ?, language_probability = ?, duration = ?,
             segments = ?, error_message = ?, finished_at = ?
         WHERE id = ?`,
		status,
		nullableString(outcome.Language),
		outcome.LanguageProbability,
		outcome.Duration,
		outcome.Segments,
		nullableString(errorMessage),
		time.Now().UTC().Format(timeLayout),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: unknown run %q", id)
	}
	return nil
}

// Get fetches a run by id. A missing run returns nil without error.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs first. A limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
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

// ForMedia returns the runs of one media file, most recent first.
func (s *Store) ForMedia(ctx context.Context, mediaPath string) ([]*Run, error) {
	mediaPath = absPath(mediaPath)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM runs WHERE media_path = ? ORDER BY started_at DESC, rowid DESC`,
		mediaPath,
	)
	if err != nil {
		return nil, fmt.Errorf("runs for media: %w", err)
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
	return runs, rows.Err()
}

// Prune deletes finished runs started before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM runs WHERE status != ? AND started_at < ?`,
		StatusRunning,
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
