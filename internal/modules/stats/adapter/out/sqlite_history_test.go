package out_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	statsout "readtrack/internal/modules/stats/adapter/out"
	"readtrack/internal/platform/sqlitedb"
)

func seed(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := sqlitedb.Open(ctx, filepath.Join(t.TempDir(), "readtrack.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	at := func(day, hour int) string {
		return sqlitedb.FormatTime(time.Date(2026, 5, day, hour, 0, 0, 0, time.UTC))
	}
	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO categories (id, user_id, name, created_at) VALUES (1, 1, 'Go', ?)`, []any{at(1, 8)}},
		{`INSERT INTO categories (id, user_id, name, created_at) VALUES (2, 1, 'Rust', ?)`, []any{at(1, 8)}},
		{`INSERT INTO categories (id, user_id, name, created_at) VALUES (3, 2, 'Other user', ?)`, []any{at(1, 8)}},
		{`INSERT INTO reading_sessions (id, user_id, category_id, started_at, ended_at, duration_seconds, note_count, completed)
		  VALUES ('s-old', 1, 1, ?, ?, 600, 1, 1)`, []any{at(2, 9), at(2, 10)}},
		{`INSERT INTO reading_sessions (id, user_id, category_id, started_at, ended_at, duration_seconds, media_note_count, completed)
		  VALUES ('s-new', 1, 2, ?, ?, 1200, 1, 1)`, []any{at(10, 19), at(10, 20)}},
		{`INSERT INTO reading_sessions (id, user_id, started_at, interrupted)
		  VALUES ('s-crash', 1, ?, 1)`, []any{at(11, 7)}},
		{`INSERT INTO reading_sessions (id, user_id, category_id, started_at, completed, duration_seconds)
		  VALUES ('s-other', 2, 3, ?, 1, 99)`, []any{at(10, 7)}},
		{`INSERT INTO notes (id, user_id, category_id, session_id, content, created_at) VALUES ('n1', 1, 1, 's-old', 'old', ?)`, []any{at(2, 9)}},
		{`INSERT INTO notes (id, user_id, category_id, session_id, content, media_kind, file_ref, created_at) VALUES ('n2', 1, 2, 's-new', 'Photo note', 'photo', 'f1', ?)`, []any{at(10, 19)}},
		{`INSERT INTO notes (id, user_id, content, created_at) VALUES ('n3', 1, 'loose', ?)`, []any{at(11, 6)}},
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s.query, s.args...); err != nil {
			t.Fatalf("seed %q: %v", s.query, err)
		}
	}
	return db
}

func TestSQLiteHistoryListsSince(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	history := statsout.NewSQLiteHistory(seed(t))
	since := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)

	sessions, err := history.ListSessions(ctx, 1, since)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %+v", sessions)
	}
	got := sessions[0]
	if got.ID != "s-new" || got.CategoryName != "Rust" || !got.Completed || got.DurationSeconds != 1200 || got.MediaNoteCount != 1 {
		t.Fatalf("first session = %+v", got)
	}
	if !got.EndedAt.Equal(time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC)) {
		t.Fatalf("ended at = %v", got.EndedAt)
	}
	crash := sessions[1]
	if crash.CategoryID != 0 || !crash.Interrupted || crash.Completed || !crash.EndedAt.IsZero() {
		t.Fatalf("crashed session = %+v", crash)
	}

	events, err := history.ListNoteEvents(ctx, 1, since)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(events) != 2 || !events[0].Media || events[0].CategoryName != "Rust" || events[1].CategoryID != 0 || events[1].Media {
		t.Fatalf("events = %+v", events)
	}
}

func TestSQLiteHistoryTotals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	history := statsout.NewSQLiteHistory(seed(t))

	n, err := history.CountCategories(ctx, 1)
	if err != nil || n != 2 {
		t.Fatalf("categories = %d, %v", n, err)
	}
	life, err := history.Lifetime(ctx, 1)
	if err != nil {
		t.Fatalf("lifetime: %v", err)
	}
	if life.Notes != 3 || life.Sessions != 2 || life.Seconds != 1800 {
		t.Fatalf("lifetime = %+v", life)
	}
	empty, err := history.Lifetime(ctx, 42)
	if err != nil || empty.Notes != 0 || empty.Seconds != 0 {
		t.Fatalf("empty lifetime = %+v, %v", empty, err)
	}
}
