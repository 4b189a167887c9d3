package domain

import (
	"fmt"
	"time"
)

const SchemaVersion = 1

type Status string

const (
	StatusRunning     Status = "running"
	StatusStopping    Status = "stopping"
	StatusCompleted   Status = "completed"
	StatusInterrupted Status = "interrupted"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusInterrupted
}

// CanTransition reports whether a session may move from one status to another.
// Every stop passes through stopping.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusRunning:
		return to == StatusStopping
	case StatusStopping:
		return to == StatusCompleted || to == StatusInterrupted
	default:
		return false
	}
}

type CounterKind int

const (
	CounterNote CounterKind = iota + 1
	CounterMedia
)

func (k CounterKind) String() string {
	switch k {
	case CounterNote:
		return "note"
	case CounterMedia:
		return "media"
	default:
		return fmt.Sprintf("counter(%d)", int(k))
	}
}

type Session struct {
	ID             string
	UserID         int64
	CategoryID     int64
	CategoryName   string
	StartedAt      time.Time
	EndedAt        time.Time
	Status         Status
	NoteCount      int
	MediaNoteCount int
	// DurationSeconds is fixed when the session leaves stopping.
	DurationSeconds int
}

func (s *Session) Transition(to Status) error {
	if !CanTransition(s.Status, to) {
		return fmt.Errorf("illegal session transition %s -> %s", s.Status, to)
	}
	s.Status = to
	return nil
}

func (s *Session) Increment(kind CounterKind) error {
	if s.Status != StatusRunning {
		return fmt.Errorf("session %s is %s", s.ID, s.Status)
	}
	switch kind {
	case CounterNote:
		s.NoteCount++
	case CounterMedia:
		s.MediaNoteCount++
	default:
		return fmt.Errorf("unknown counter %s", kind)
	}
	return nil
}

func (s Session) Elapsed(now time.Time) time.Duration {
	d := now.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// FormatClock renders d as HH:MM:SS. Hours are not wrapped at 24.
func FormatClock(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// FormatShort renders a duration in seconds as "1h 5m", "12m" or "40s".
func FormatShort(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
