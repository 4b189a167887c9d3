package out

import (
	"context"
	"time"

	"readtrack/internal/modules/stats/domain"
)

// HistoryReader loads the persisted history the report is computed from.
type HistoryReader interface {
	ListSessions(ctx context.Context, userID int64, since time.Time) ([]domain.HistoricalSession, error)
	ListNoteEvents(ctx context.Context, userID int64, since time.Time) ([]domain.NoteEvent, error)
	CountCategories(ctx context.Context, userID int64) (int, error)
	// Lifetime returns all-time totals regardless of how far back the
	// listings reach.
	Lifetime(ctx context.Context, userID int64) (domain.Lifetime, error)
}
