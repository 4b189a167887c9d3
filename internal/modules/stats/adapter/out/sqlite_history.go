package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"readtrack/internal/modules/stats/domain"
	statsout "readtrack/internal/modules/stats/port/out"
	"readtrack/internal/platform/sqlitedb"
)

// SQLiteHistory reads the tables the session module writes.
type SQLiteHistory struct {
	db *sql.DB
}

var _ statsout.HistoryReader = (*SQLiteHistory)(nil)

func NewSQLiteHistory(db *sql.DB) *SQLiteHistory {
	return &SQLiteHistory{db: db}
}

func (h *SQLiteHistory) ListSessions(ctx context.Context, userID int64, since time.Time) ([]domain.HistoricalSession, error) {
	rows, err := h.db.QueryContext(ctx, `
SELECT s.id, COALESCE(s.category_id, 0), COALESCE(c.name, ''), s.started_at, COALESCE(s.ended_at, ''),
       s.duration_seconds, s.note_count, s.media_note_count, s.completed, s.interrupted
FROM reading_sessions s
LEFT JOIN categories c ON c.id = s.category_id
WHERE s.user_id = ? AND s.started_at >= ?
ORDER BY s.started_at, s.id`, userID, sqlitedb.FormatTime(since))
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoricalSession
	for rows.Next() {
		var (
			s               domain.HistoricalSession
			started, ended  string
			completed, intr bool
		)
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.CategoryName, &started, &ended,
			&s.DurationSeconds, &s.NoteCount, &s.MediaNoteCount, &completed, &intr); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if s.StartedAt, err = sqlitedb.ParseTime(started); err != nil {
			return nil, err
		}
		if ended != "" {
			if s.EndedAt, err = sqlitedb.ParseTime(ended); err != nil {
				return nil, err
			}
		}
		s.Completed, s.Interrupted = completed, intr
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

func (h *SQLiteHistory) ListNoteEvents(ctx context.Context, userID int64, since time.Time) ([]domain.NoteEvent, error) {
	rows, err := h.db.QueryContext(ctx, `
SELECT n.created_at, COALESCE(n.category_id, 0), COALESCE(c.name, ''), n.media_kind <> ''
FROM notes n
LEFT JOIN categories c ON c.id = n.category_id
WHERE n.user_id = ? AND n.created_at >= ?
ORDER BY n.created_at, n.id`, userID, sqlitedb.FormatTime(since))
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var out []domain.NoteEvent
	for rows.Next() {
		var (
			e       domain.NoteEvent
			created string
		)
		if err := rows.Scan(&created, &e.CategoryID, &e.CategoryName, &e.Media); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		if e.At, err = sqlitedb.ParseTime(created); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return out, nil
}

func (h *SQLiteHistory) CountCategories(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// Lifetime reads the all-time note and reading totals. Categories is left to
// CountCategories.
func (h *SQLiteHistory) Lifetime(ctx context.Context, userID int64) (domain.Lifetime, error) {
	var l domain.Lifetime
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE user_id = ?`, userID).Scan(&l.Notes); err != nil {
		return domain.Lifetime{}, fmt.Errorf("count notes: %w", err)
	}
	err := h.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(duration_seconds), 0)
FROM reading_sessions
WHERE user_id = ? AND completed = 1 AND duration_seconds > 0`, userID).Scan(&l.Sessions, &l.Seconds)
	if err != nil {
		return domain.Lifetime{}, fmt.Errorf("sum sessions: %w", err)
	}
	return l, nil
}
