// Package history persists scored analyses in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dgallion1/essaygest/internal/scoring"
)

var (
	// ErrNotFound is returned when no record has the requested ID.
	ErrNotFound = errors.New("history record not found")
	// ErrInvalidRecord is returned when a record is missing required fields.
	ErrInvalidRecord = errors.New("invalid history record")
)

// timeLayout is RFC 3339 with a fixed-width fraction so stored timestamps
// sort lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one saved analysis.
type Record struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	Title        string `json:"title"`
	Memo         string `json:"memo,omitempty"`
	QuestionText string `json:"questionText"`
	AnswerText   string `json:"answerText"`
	scoring.Analysis
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store manages saved analyses.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or connects to the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts rec, assigning an ID and timestamps when unset.
func (s *Store) Save(ctx context.Context, rec Record) (Record, error) {
	rec.Title = strings.TrimSpace(rec.Title)
	if rec.Title == "" {
		return Record{}, fmt.Errorf("%w: title is required", ErrInvalidRecord)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	} else if _, err := uuid.Parse(rec.ID); err != nil {
		return Record{}, fmt.Errorf("%w: id %q is not a UUID", ErrInvalidRecord, rec.ID)
	}
	rec.Analysis = scoring.Sanitize(rec.Analysis)

	now := s.now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = now

	cols, err := encodeColumns(rec.Analysis)
	if err != nil {
		return Record{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analysis_history (
            id, user_id, title, memo, question_text, answer_text, score, max_score,
            strengths, weaknesses, improvements, categories, detailed_analysis,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.UserID,
		rec.Title,
		nullableString(rec.Memo),
		rec.QuestionText,
		rec.AnswerText,
		rec.Score,
		rec.MaxScore,
		cols.strengths,
		cols.weaknesses,
		cols.improvements,
		cols.categories,
		cols.detailed,
		rec.CreatedAt.Format(timeLayout),
		rec.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert history record: %w", err)
	}
	return rec, nil
}

// UpdateNotes changes a record's title and memo.
func (s *Store) UpdateNotes(ctx context.Context, id, title, memo string) (Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Record{}, fmt.Errorf("%w: title is required", ErrInvalidRecord)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE analysis_history SET title = ?, memo = ?, updated_at = ? WHERE id = ?`,
		title, nullableString(memo), s.now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return Record{}, fmt.Errorf("update history record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Record{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// List returns userID's records, newest first.
func (s *Store) List(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}

// Get fetches one record.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// Delete removes one record.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analysis_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete history record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
