package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"readtrack/internal/modules/session/domain"
	sessionout "readtrack/internal/modules/session/port/out"
	"readtrack/internal/platform/clock"
	apperrors "readtrack/internal/platform/errors"
	"readtrack/internal/platform/id"
	"readtrack/internal/platform/sqlitedb"
)

// SQLiteStore persists sessions, categories and notes. Completing a session
// also rolls its duration into the category totals and the daily stats row
// of the day it ended.
type SQLiteStore struct {
	db    *sql.DB
	clock clock.Clock
	ids   id.Generator
	loc   *time.Location
}

var (
	_ sessionout.SessionStore    = (*SQLiteStore)(nil)
	_ sessionout.CategoryStore   = (*SQLiteStore)(nil)
	_ sessionout.NoteStore       = (*SQLiteStore)(nil)
	_ sessionout.SessionRecovery = (*SQLiteStore)(nil)
)

func NewSQLiteStore(db *sql.DB, clk clock.Clock, ids id.Generator, loc *time.Location) *SQLiteStore {
	if loc == nil {
		loc = time.UTC
	}
	return &SQLiteStore{db: db, clock: clk, ids: ids, loc: loc}
}

func nullableCategory(categoryID int64) any {
	if categoryID == 0 {
		return nil
	}
	return categoryID
}

func (s *SQLiteStore) CreateSession(ctx context.Context, userID, categoryID int64, startedAt time.Time) (string, error) {
	sessionID := s.ids.New()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reading_sessions (id, user_id, category_id, started_at) VALUES (?, ?, ?, ?)`,
			sessionID, userID, nullableCategory(categoryID), sqlitedb.FormatTime(startedAt),
		); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		if categoryID == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE categories SET session_count = session_count + 1 WHERE id = ? AND user_id = ?`,
			categoryID, userID,
		); err != nil {
			return fmt.Errorf("bump category sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

func (s *SQLiteStore) CompleteSession(ctx context.Context, sessionID string, durationSeconds float64, noteCount, mediaNoteCount int) error {
	endedAt := s.clock.Now()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var (
			userID     int64
			categoryID sql.NullInt64
		)
		err := tx.QueryRowContext(ctx, `SELECT user_id, category_id FROM reading_sessions WHERE id = ?`, sessionID).Scan(&userID, &categoryID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: session %s", apperrors.ErrNotFound, sessionID)
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
UPDATE reading_sessions
SET ended_at = ?, duration_seconds = ?, note_count = ?, media_note_count = ?, completed = 1, interrupted = 0
WHERE id = ?`,
			sqlitedb.FormatTime(endedAt), durationSeconds, noteCount, mediaNoteCount, sessionID,
		); err != nil {
			return fmt.Errorf("complete session: %w", err)
		}
		if categoryID.Valid {
			if _, err := tx.ExecContext(ctx,
				`UPDATE categories SET total_seconds = total_seconds + ? WHERE id = ?`,
				durationSeconds, categoryID.Int64,
			); err != nil {
				return fmt.Errorf("add category time: %w", err)
			}
		}
		local := endedAt.In(s.loc)
		column := bucketColumn(local.Hour())
		stmt := fmt.Sprintf(`
INSERT INTO daily_reading_stats (user_id, day, total_seconds, session_count, %[1]s)
VALUES (?, ?, ?, 1, ?)
ON CONFLICT(user_id, day) DO UPDATE SET
  total_seconds = total_seconds + excluded.total_seconds,
  session_count = session_count + 1,
  %[1]s = %[1]s + excluded.%[1]s`, column)
		if _, err := tx.ExecContext(ctx, stmt, userID, local.Format(time.DateOnly), durationSeconds, durationSeconds); err != nil {
			return fmt.Errorf("update daily stats: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) InterruptSession(ctx context.Context, sessionID string, durationSeconds float64, noteCount, mediaNoteCount int) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE reading_sessions
SET ended_at = ?, duration_seconds = ?, note_count = ?, media_note_count = ?, completed = 0, interrupted = 1
WHERE id = ?`,
		sqlitedb.FormatTime(s.clock.Now()), durationSeconds, noteCount, mediaNoteCount, sessionID,
	)
	if err != nil {
		return fmt.Errorf("interrupt session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: session %s", apperrors.ErrNotFound, sessionID)
	}
	return nil
}

// RecoverInterrupted marks sessions left open by a previous process as
// interrupted. Only sessions started before startedBefore are touched.
func (s *SQLiteStore) RecoverInterrupted(ctx context.Context, userID int64, startedBefore time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE reading_sessions
SET interrupted = 1, ended_at = ?
WHERE user_id = ? AND completed = 0 AND interrupted = 0 AND started_at < ?`,
		sqlitedb.FormatTime(s.clock.Now()), userID, sqlitedb.FormatTime(startedBefore),
	)
	if err != nil {
		return 0, fmt.Errorf("recover sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("recover sessions: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) EnsureCategory(ctx context.Context, userID int64, name string) (sessionout.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return sessionout.Category{}, fmt.Errorf("%w: category name is required", apperrors.ErrInvalidInput)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, created_at) VALUES (?, ?, ?) ON CONFLICT(user_id, name) DO NOTHING`,
		userID, name, sqlitedb.FormatTime(s.clock.Now()),
	); err != nil {
		return sessionout.Category{}, fmt.Errorf("ensure category: %w", err)
	}
	category := sessionout.Category{}
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE user_id = ? AND name = ?`, userID, name).Scan(&category.ID, &category.Name)
	if err != nil {
		return sessionout.Category{}, fmt.Errorf("load category: %w", err)
	}
	return category, nil
}

func (s *SQLiteStore) GetCategory(ctx context.Context, userID, categoryID int64) (sessionout.Category, error) {
	category := sessionout.Category{}
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE user_id = ? AND id = ?`, userID, categoryID).Scan(&category.ID, &category.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return sessionout.Category{}, fmt.Errorf("%w: category %d", apperrors.ErrNotFound, categoryID)
	}
	if err != nil {
		return sessionout.Category{}, fmt.Errorf("load category: %w", err)
	}
	return category, nil
}

func (s *SQLiteStore) SaveNote(ctx context.Context, note domain.Note) (string, error) {
	noteID := note.ID
	if noteID == "" {
		noteID = s.ids.New()
	}
	createdAt := note.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clock.Now()
	}
	var kind, fileRef string
	if note.Media != nil {
		kind, fileRef = string(note.Media.Kind), note.Media.FileRef
	}
	var sessionID any
	if note.SessionID != "" {
		sessionID = note.SessionID
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO notes (id, user_id, category_id, session_id, content, media_kind, file_ref, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			noteID, note.UserID, nullableCategory(note.CategoryID), sessionID, note.Content(), kind, fileRef, sqlitedb.FormatTime(createdAt),
		); err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		if note.CategoryID == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE categories SET note_count = note_count + 1 WHERE id = ?`, note.CategoryID); err != nil {
			return fmt.Errorf("bump category notes: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return noteID, nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func bucketColumn(hour int) string {
	switch {
	case hour < 6:
		return "night_seconds"
	case hour < 12:
		return "morning_seconds"
	case hour < 18:
		return "afternoon_seconds"
	default:
		return "evening_seconds"
	}
}
