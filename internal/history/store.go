package history

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/osintdeck/osintdeck/internal/model"
)

// dbFileName is the history database file under the data directory.
const dbFileName = "osintdeck.db"

// ErrNotFound is returned when a requested history entry does not exist.
var ErrNotFound = errors.New("history entry not found")

// Entry is one persisted search.
type Entry struct {
	ID          string          `json:"id"`
	Fingerprint string          `json:"fingerprint"`
	Topic       string          `json:"topic"`
	Input       string          `json:"input"`
	SearchType  string          `json:"search_type,omitempty"`
	Status      string          `json:"status"`
	Failures    int             `json:"failures"`
	Results     json.RawMessage `json:"results,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
}

// Store is the SQLite-backed search history.
//
// Design decision: One database file per data directory, not per topic.
// History queries cut across topics ("what did I look up last week"),
// and a single file keeps backup and pruning trivial.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	// ops serializes lifecycle writes so a request's Finish can never
	// outrun its Record.
	ops  chan func(ctx context.Context)
	done chan struct{}
}

// Open opens or creates the history database under dataDir.
func Open(dataDir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// SQLite supports one writer; a single pooled connection avoids
	// SQLITE_BUSY under concurrent lifecycle callbacks.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
		ops:    make(chan func(ctx context.Context), 128),
		done:   make(chan struct{}),
	}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	go s.worker()
	return s, nil
}

// worker drains lifecycle writes in submission order.
func (s *Store) worker() {
	defer close(s.done)
	for op := range s.ops {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		op(ctx)
		cancel()
	}
}

// Close flushes pending lifecycle writes and closes the database.
func (s *Store) Close() error {
	close(s.ops)
	<-s.done
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS searches (
		id TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		topic TEXT NOT NULL,
		input TEXT NOT NULL,
		search_type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'running',
		failures INTEGER NOT NULL DEFAULT 0,
		results TEXT,
		submitted_at DATETIME NOT NULL,
		finished_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_searches_fingerprint ON searches(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_searches_submitted ON searches(submitted_at);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Fingerprint derives the grouping key for a (topic, input) pair.
// SHA3-256 with a separator byte so ("ab","c") and ("a","bc") differ.
func Fingerprint(topic model.Topic, input string) string {
	h := sha3.New256()
	h.Write([]byte(topic))
	h.Write([]byte{0})
	h.Write([]byte(input))
	return hex.EncodeToString(h.Sum(nil))
}

// Record persists a newly accepted request in the running state.
func (s *Store) Record(ctx context.Context, req model.SearchRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO searches (id, fingerprint, topic, input, search_type, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		req.ID, Fingerprint(req.Topic, req.Input), req.Topic.String(), req.Input, req.SearchType, req.SubmittedAt.UTC())
	if err != nil {
		return fmt.Errorf("record search %s: %w", req.ID, err)
	}
	return nil
}

// Finish stores a request's terminal state and merged results.
func (s *Store) Finish(ctx context.Context, requestID, status string, results map[string]any, failures int) error {
	var resultsJSON []byte
	if len(results) > 0 {
		var err error
		if resultsJSON, err = json.Marshal(results); err != nil {
			return fmt.Errorf("serialize results for %s: %w", requestID, err)
		}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE searches SET status = ?, failures = ?, results = ?, finished_at = ?
		WHERE id = ?`,
		status, failures, nullableString(resultsJSON), time.Now().UTC(), requestID)
	if err != nil {
		return fmt.Errorf("finish search %s: %w", requestID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish search %s: %w", requestID, ErrNotFound)
	}
	return nil
}

// Recent returns the latest searches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fingerprint, topic, input, search_type, status, failures, results, submitted_at, finished_at
		FROM searches ORDER BY submitted_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent searches: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ByTarget returns every recorded search of one (topic, input) pair,
// newest first.
func (s *Store) ByTarget(ctx context.Context, topic model.Topic, input string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fingerprint, topic, input, search_type, status, failures, results, submitted_at, finished_at
		FROM searches WHERE fingerprint = ? ORDER BY submitted_at DESC`,
		Fingerprint(topic, input))
	if err != nil {
		return nil, fmt.Errorf("query searches by target: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Prune deletes entries older than the retention window and returns how
// many were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM searches WHERE submitted_at < ?`, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			results    sql.NullString
			finishedAt sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.Fingerprint, &e.Topic, &e.Input, &e.SearchType,
			&e.Status, &e.Failures, &results, &e.SubmittedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if results.Valid {
			e.Results = json.RawMessage(results.String)
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			e.FinishedAt = &t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// SearchStarted implements orchestrator.Recorder. The write happens off
// the request's hot path; failures are logged, never surfaced.
func (s *Store) SearchStarted(req model.SearchRequest) {
	s.enqueue(func(ctx context.Context) {
		if err := s.Record(ctx, req); err != nil {
			s.logger.Warn("history record failed", "request_id", req.ID, "error", err)
		}
	})
}

// SearchFinished implements orchestrator.Recorder.
func (s *Store) SearchFinished(req model.SearchRequest, status string, results map[string]any, failures int) {
	s.enqueue(func(ctx context.Context) {
		if err := s.Finish(ctx, req.ID, status, results, failures); err != nil {
			s.logger.Warn("history finish failed", "request_id", req.ID, "error", err)
		}
	})
}

// enqueue hands an operation to the worker, dropping it rather than
// blocking a request when the queue is saturated.
func (s *Store) enqueue(op func(ctx context.Context)) {
	select {
	case s.ops <- op:
	default:
		s.logger.Warn("history queue full, dropping lifecycle write")
	}
}
