package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sessionout "readtrack/internal/modules/session/adapter/out"
)

type failingStore struct{}

func (failingStore) CreateSession(context.Context, int64, int64, time.Time) (string, error) {
	return "s-1", nil
}
func (failingStore) CompleteSession(context.Context, string, float64, int, int) error {
	return errors.New("boom")
}
func (failingStore) InterruptSession(context.Context, string, float64, int, int) error {
	return errors.New("boom")
}

func TestJournalStoreWritesCompletedSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	started := time.Date(2026, 3, 14, 8, 5, 9, 0, time.UTC)
	db := openDB(t)
	inner := sessionout.NewSQLiteStore(db, fixedClock(started.Add(25*time.Minute)), &seqID{}, time.UTC)
	category, err := inner.EnsureCategory(ctx, 1, "Distributed Systems")
	if err != nil {
		t.Fatalf("ensure category: %v", err)
	}
	dir := t.TempDir()
	journal := sessionout.NewJournalStore(inner, inner, dir, fixedClock(started.Add(25*time.Minute)), time.UTC, nil)

	sessionID, err := journal.CreateSession(ctx, 1, category.ID, started)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := journal.CompleteSession(ctx, sessionID, 1500, 3, 1); err != nil {
		t.Fatalf("complete: %v", err)
	}

	path := filepath.Join(dir, "2026", "03", "14", "080509-distributed-systems.md")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	note := string(raw)
	for _, want := range []string{"id: " + sessionID, "duration_seconds: 1500", "status: completed", "- Duration: 25m", "media_notes: 1"} {
		if !strings.Contains(note, want) {
			t.Fatalf("journal missing %q:\n%s", want, note)
		}
	}
}

func TestJournalStoreSkipsFailedCompletion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	journal := sessionout.NewJournalStore(failingStore{}, nil, dir, fixedClock(time.Now()), nil, nil)
	id, _ := journal.CreateSession(ctx, 1, 0, time.Now())
	if err := journal.CompleteSession(ctx, id, 10, 0, 0); err == nil {
		t.Fatalf("expected inner error to propagate")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("no journal may be written for a failed completion")
	}
}
