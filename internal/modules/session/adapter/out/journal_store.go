package out

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"readtrack/internal/modules/session/domain"
	sessionout "readtrack/internal/modules/session/port/out"
	"readtrack/internal/platform/clock"
	"readtrack/internal/platform/logging"
	"readtrack/internal/platform/markdown"
	"readtrack/internal/platform/slug"
)

type journalMeta struct {
	SchemaVersion   int     `yaml:"schema_version"`
	ID              string  `yaml:"id"`
	UserID          int64   `yaml:"user_id"`
	Category        string  `yaml:"category,omitempty"`
	StartedAt       string  `yaml:"started_at"`
	EndedAt         string  `yaml:"ended_at"`
	DurationSeconds float64 `yaml:"duration_seconds"`
	Notes           int     `yaml:"notes"`
	MediaNotes      int     `yaml:"media_notes"`
	Status          string  `yaml:"status"`
}

type openSession struct {
	userID     int64
	categoryID int64
	startedAt  time.Time
}

// JournalStore mirrors finished sessions into markdown notes under
// dir/YYYY/MM/DD. Journal write failures are logged and never fail the
// wrapped store call.
type JournalStore struct {
	inner      sessionout.SessionStore
	categories sessionout.CategoryStore
	dir        string
	clock      clock.Clock
	loc        *time.Location
	logger     *slog.Logger

	mu   sync.Mutex
	open map[string]openSession
}

func NewJournalStore(inner sessionout.SessionStore, categories sessionout.CategoryStore, dir string, clk clock.Clock, loc *time.Location, logger *slog.Logger) *JournalStore {
	if loc == nil {
		loc = time.UTC
	}
	return &JournalStore{
		inner:      inner,
		categories: categories,
		dir:        dir,
		clock:      clk,
		loc:        loc,
		logger:     logging.OrDiscard(logger),
		open:       map[string]openSession{},
	}
}

func (s *JournalStore) CreateSession(ctx context.Context, userID, categoryID int64, startedAt time.Time) (string, error) {
	sessionID, err := s.inner.CreateSession(ctx, userID, categoryID, startedAt)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.open[sessionID] = openSession{userID: userID, categoryID: categoryID, startedAt: startedAt}
	s.mu.Unlock()
	return sessionID, nil
}

func (s *JournalStore) CompleteSession(ctx context.Context, sessionID string, durationSeconds float64, noteCount, mediaNoteCount int) error {
	if err := s.inner.CompleteSession(ctx, sessionID, durationSeconds, noteCount, mediaNoteCount); err != nil {
		return err
	}
	s.record(ctx, sessionID, domain.StatusCompleted, durationSeconds, noteCount, mediaNoteCount)
	return nil
}

func (s *JournalStore) InterruptSession(ctx context.Context, sessionID string, durationSeconds float64, noteCount, mediaNoteCount int) error {
	if err := s.inner.InterruptSession(ctx, sessionID, durationSeconds, noteCount, mediaNoteCount); err != nil {
		return err
	}
	s.record(ctx, sessionID, domain.StatusInterrupted, durationSeconds, noteCount, mediaNoteCount)
	return nil
}

func (s *JournalStore) record(ctx context.Context, sessionID string, status domain.Status, durationSeconds float64, noteCount, mediaNoteCount int) {
	s.mu.Lock()
	open, ok := s.open[sessionID]
	delete(s.open, sessionID)
	s.mu.Unlock()
	if !ok {
		return
	}
	path, err := s.write(ctx, sessionID, open, status, durationSeconds, noteCount, mediaNoteCount)
	if err != nil {
		s.logger.Warn("write session journal failed", "session_id", sessionID, "error", err)
		return
	}
	s.logger.Debug("session journal written", "session_id", sessionID, "path", path)
}

func (s *JournalStore) write(ctx context.Context, sessionID string, open openSession, status domain.Status, durationSeconds float64, noteCount, mediaNoteCount int) (string, error) {
	category := ""
	if open.categoryID != 0 && s.categories != nil {
		if c, err := s.categories.GetCategory(ctx, open.userID, open.categoryID); err == nil {
			category = c.Name
		}
	}
	started := open.startedAt.In(s.loc)
	dir := filepath.Join(s.dir, started.Format("2006"), started.Format("01"), started.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	title := category
	if title == "" {
		title = "reading"
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", started.Format("150405"), slug.Make(title)))

	meta := journalMeta{
		SchemaVersion:   domain.SchemaVersion,
		ID:              sessionID,
		UserID:          open.userID,
		Category:        category,
		StartedAt:       started.Format(time.RFC3339),
		EndedAt:         s.clock.Now().In(s.loc).Format(time.RFC3339),
		DurationSeconds: durationSeconds,
		Notes:           noteCount,
		MediaNotes:      mediaNoteCount,
		Status:          string(status),
	}
	body := fmt.Sprintf("# Reading session %s\n\n- Category: %s\n- Duration: %s\n- Notes: %d (%d media)\n",
		started.Format("2006-01-02 15:04"), title, domain.FormatShort(int(durationSeconds)), noteCount, mediaNoteCount)
	rendered, err := markdown.Render(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	return path, nil
}
