package service

import (
	"context"
	"fmt"
	"time"

	"readtrack/internal/modules/stats/domain"
	statsout "readtrack/internal/modules/stats/port/out"
	apperrors "readtrack/internal/platform/errors"
)

type ReportOptions struct {
	Location           *time.Location
	WindowDays         int
	StreakLookbackDays int
	TopLimit           int
}

// ReportService loads a user's history and hands it to the pure aggregator.
type ReportService struct {
	history statsout.HistoryReader
	opts    ReportOptions
}

func NewReportService(history statsout.HistoryReader, opts ReportOptions) *ReportService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = domain.DefaultWindowDays
	}
	if opts.StreakLookbackDays <= 0 {
		opts.StreakLookbackDays = domain.DefaultStreakLookback
	}
	if opts.TopLimit <= 0 {
		opts.TopLimit = domain.DefaultTopCategories
	}
	return &ReportService{history: history, opts: opts}
}

// Since is the earliest instant the report needs: the start of the local day
// that opens the longer of the window and the streak lookback.
func (s *ReportService) Since(today time.Time, windowDays int) time.Time {
	days := max(windowDays, s.opts.StreakLookbackDays)
	local := today.In(s.opts.Location)
	return time.Date(local.Year(), local.Month(), local.Day()-days+1, 0, 0, 0, 0, s.opts.Location)
}

func (s *ReportService) Build(ctx context.Context, userID int64, today time.Time, windowDays int) (domain.Report, error) {
	if windowDays <= 0 {
		windowDays = s.opts.WindowDays
	}
	since := s.Since(today, windowDays)
	sessions, err := s.history.ListSessions(ctx, userID, since)
	if err != nil {
		return domain.Report{}, fmt.Errorf("%w: list sessions: %w", apperrors.ErrStoreUnavailable, err)
	}
	events, err := s.history.ListNoteEvents(ctx, userID, since)
	if err != nil {
		return domain.Report{}, fmt.Errorf("%w: list notes: %w", apperrors.ErrStoreUnavailable, err)
	}
	categories, err := s.history.CountCategories(ctx, userID)
	if err != nil {
		return domain.Report{}, fmt.Errorf("%w: count categories: %w", apperrors.ErrStoreUnavailable, err)
	}
	lifetime, err := s.history.Lifetime(ctx, userID)
	if err != nil {
		return domain.Report{}, fmt.Errorf("%w: lifetime totals: %w", apperrors.ErrStoreUnavailable, err)
	}
	lifetime.Categories = categories
	return domain.Compute(domain.Input{
		Today:              today,
		Location:           s.opts.Location,
		Sessions:           sessions,
		Events:             events,
		CategoryCount:      categories,
		WindowDays:         windowDays,
		StreakLookbackDays: s.opts.StreakLookbackDays,
		TopLimit:           s.opts.TopLimit,
		Lifetime:           &lifetime,
	}), nil
}
