package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"readtrack/internal/modules/stats/domain"
	statsdto "readtrack/internal/modules/stats/dto"
	"readtrack/internal/modules/stats/service"
	"readtrack/internal/modules/stats/usecase"
	"readtrack/internal/platform/clock"
	apperrors "readtrack/internal/platform/errors"
)

type fakeHistory struct {
	sessions []domain.HistoricalSession
	events   []domain.NoteEvent
	life     domain.Lifetime
	err      error
	since    time.Time
}

func (f *fakeHistory) ListSessions(_ context.Context, _ int64, since time.Time) ([]domain.HistoricalSession, error) {
	f.since = since
	return f.sessions, f.err
}

func (f *fakeHistory) ListNoteEvents(context.Context, int64, time.Time) ([]domain.NoteEvent, error) {
	return f.events, nil
}

func (f *fakeHistory) CountCategories(context.Context, int64) (int, error) {
	return 2, nil
}

func (f *fakeHistory) Lifetime(context.Context, int64) (domain.Lifetime, error) {
	return f.life, nil
}

func TestReportUsesClockAndLifetime(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 2, 20, 21, 0, 0, 0, time.UTC)
	history := &fakeHistory{
		sessions: []domain.HistoricalSession{{CategoryID: 1, CategoryName: "Go", StartedAt: now.Add(-time.Hour), EndedAt: now, DurationSeconds: 3600, Completed: true}},
		events:   []domain.NoteEvent{{At: now.Add(-time.Minute), CategoryID: 1, CategoryName: "Go"}},
		life:     domain.Lifetime{Notes: 12, Sessions: 4, Seconds: 9000},
	}
	svc := service.NewReportService(history, service.ReportOptions{WindowDays: 7, StreakLookbackDays: 30})
	uc := usecase.NewInteractor(svc, clock.Func(func() time.Time { return now }), nil)

	out, err := uc.Report(context.Background(), statsdto.ReportInput{UserID: 1})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	r := out.Report
	if r.Streak != 1 || len(r.Daily) != 7 || r.Daily[6].Seconds != 3600 {
		t.Fatalf("report = %+v", r)
	}
	if r.Lifetime != (domain.Lifetime{Categories: 2, Notes: 12, Sessions: 4, Seconds: 9000}) {
		t.Fatalf("lifetime = %+v", r.Lifetime)
	}
	if r.Level.Number != 3 || r.Goal.Target != 25 {
		t.Fatalf("level/goal = %+v %+v", r.Level, r.Goal)
	}
	if out.Tip == "" || !out.GeneratedAt.Equal(now) {
		t.Fatalf("tip/generated = %q %v", out.Tip, out.GeneratedAt)
	}
	if want := time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC); !history.since.Equal(want) {
		t.Fatalf("since = %v, want %v", history.since, want)
	}

	wide, err := uc.Report(context.Background(), statsdto.ReportInput{UserID: 1, WindowDays: 90})
	if err != nil || len(wide.Report.Daily) != 90 {
		t.Fatalf("window override: %d days, %v", len(wide.Report.Daily), err)
	}
}

func TestReportWrapsHistoryFailure(t *testing.T) {
	t.Parallel()
	history := &fakeHistory{err: errors.New("disk gone")}
	uc := usecase.NewInteractor(service.NewReportService(history, service.ReportOptions{}), nil, nil)
	if _, err := uc.Report(context.Background(), statsdto.ReportInput{UserID: 1}); !errors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
}
