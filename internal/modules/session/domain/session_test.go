package domain_test

import (
	"errors"
	"testing"
	"time"

	"readtrack/internal/modules/session/domain"
	apperrors "readtrack/internal/platform/errors"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()
	legal := map[[2]domain.Status]bool{
		{domain.StatusRunning, domain.StatusStopping}:     true,
		{domain.StatusStopping, domain.StatusCompleted}:   true,
		{domain.StatusStopping, domain.StatusInterrupted}: true,
	}
	all := []domain.Status{domain.StatusRunning, domain.StatusStopping, domain.StatusCompleted, domain.StatusInterrupted}
	for _, from := range all {
		for _, to := range all {
			if got := domain.CanTransition(from, to); got != legal[[2]domain.Status{from, to}] {
				t.Fatalf("CanTransition(%s, %s) = %v", from, to, got)
			}
		}
	}
}

func TestIncrementOnlyWhileRunning(t *testing.T) {
	t.Parallel()
	s := domain.Session{ID: "s", Status: domain.StatusRunning}
	if err := s.Increment(domain.CounterNote); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := s.Increment(domain.CounterMedia); err != nil {
		t.Fatalf("increment media: %v", err)
	}
	if err := s.Transition(domain.StatusStopping); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if err := s.Increment(domain.CounterNote); err == nil {
		t.Fatalf("increment while stopping must fail")
	}
	if s.NoteCount != 1 || s.MediaNoteCount != 1 {
		t.Fatalf("unexpected counters %+v", s)
	}
	if err := s.Transition(domain.StatusRunning); err == nil {
		t.Fatalf("stopping -> running must be rejected")
	}
}

func TestFormatClock(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59*time.Second + 999*time.Millisecond, "00:00:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{101 * time.Hour, "101:00:00"},
		{-time.Second, "00:00:00"},
	}
	for _, tc := range cases {
		if got := domain.FormatClock(tc.in); got != tc.want {
			t.Fatalf("FormatClock(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatShort(t *testing.T) {
	t.Parallel()
	cases := map[int]string{0: "0s", 40: "40s", 720: "12m", 3600: "1h", 3900: "1h 5m"}
	for in, want := range cases {
		if got := domain.FormatShort(in); got != want {
			t.Fatalf("FormatShort(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestElapsedNeverNegative(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := domain.Session{StartedAt: start}
	if s.Elapsed(start.Add(-time.Minute)) != 0 {
		t.Fatalf("elapsed must clamp at zero")
	}
	if s.Elapsed(start.Add(90*time.Second)) != 90*time.Second {
		t.Fatalf("unexpected elapsed")
	}
}

func TestNewMediaNote(t *testing.T) {
	t.Parallel()
	m, err := domain.NewMediaNote(domain.MediaPhoto, " file-1 ", "")
	if err != nil {
		t.Fatalf("new media note: %v", err)
	}
	if m.FileRef != "file-1" || m.Content() != "Photo note" {
		t.Fatalf("unexpected media note %+v content=%q", m, m.Content())
	}
	captioned, _ := domain.NewMediaNote(domain.MediaVoice, "f", " chapter recap ")
	if captioned.Content() != "chapter recap" {
		t.Fatalf("caption not used: %q", captioned.Content())
	}
	if _, err := domain.NewMediaNote("sticker", "f", ""); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
	if _, err := domain.NewMediaNote(domain.MediaDocument, "  ", ""); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected missing file ref error, got %v", err)
	}
	note := domain.Note{Media: &m}
	if note.Counter() != domain.CounterMedia || (domain.Note{Text: "x"}).Counter() != domain.CounterNote {
		t.Fatalf("unexpected counter mapping")
	}
}
