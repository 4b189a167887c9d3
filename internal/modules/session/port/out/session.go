package out

import (
	"context"
	"time"

	"readtrack/internal/modules/session/domain"
)

// SessionStore records sessions durably. Implementations must be safe for
// concurrent use; the registry calls them from many goroutines.
type SessionStore interface {
	CreateSession(ctx context.Context, userID, categoryID int64, startedAt time.Time) (string, error)
	CompleteSession(ctx context.Context, id string, durationSeconds float64, noteCount, mediaNoteCount int) error
	InterruptSession(ctx context.Context, id string, durationSeconds float64, noteCount, mediaNoteCount int) error
}

// DisplaySink renders text on an addressable surface. Returning
// apperrors.ErrUnchanged means the surface already shows text.
type DisplaySink interface {
	Push(ctx context.Context, target string, text string) error
}

// DisplayClearer is implemented by sinks that can remove what they rendered.
type DisplayClearer interface {
	Clear(ctx context.Context, target string) error
}

type Category struct {
	ID   int64
	Name string
}

type CategoryStore interface {
	EnsureCategory(ctx context.Context, userID int64, name string) (Category, error)
	GetCategory(ctx context.Context, userID, categoryID int64) (Category, error)
}

type NoteStore interface {
	SaveNote(ctx context.Context, note domain.Note) (string, error)
}

// SessionRecovery finds sessions a crashed process left neither completed nor
// interrupted.
type SessionRecovery interface {
	RecoverInterrupted(ctx context.Context, userID int64, startedBefore time.Time) (int, error)
}
