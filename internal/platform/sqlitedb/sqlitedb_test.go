package sqlitedb_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"readtrack/internal/platform/sqlitedb"
)

func TestOpenAppliesPragmasAndSchema(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "readtrack.db")
	db, err := sqlitedb.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("read foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected wal journal mode, got %q", mode)
	}
	for _, table := range []string{"categories", "reading_sessions", "notes", "daily_reading_stats"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "readtrack.db")
	for i := 0; i < 2; i++ {
		db, err := sqlitedb.Open(context.Background(), path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		db.Close()
	}
}

func TestFormatTimeSortsLexicographically(t *testing.T) {
	t.Parallel()
	earlier := time.Date(2026, 3, 1, 9, 0, 0, 5, time.FixedZone("X", 3*3600))
	later := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a, b := sqlitedb.FormatTime(earlier), sqlitedb.FormatTime(later)
	if !(a < b) {
		t.Fatalf("expected %q < %q", a, b)
	}
	parsed, err := sqlitedb.ParseTime(a)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(earlier) {
		t.Fatalf("round trip mismatch: %v vs %v", parsed, earlier)
	}
}
