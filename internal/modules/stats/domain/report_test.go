package domain_test

import (
	"testing"
	"time"

	"readtrack/internal/modules/stats/domain"
)

func TestComputeAssemblesReport(t *testing.T) {
	t.Parallel()
	today := day(10, 21)
	sessions := []domain.HistoricalSession{
		{CategoryID: 1, CategoryName: "Go", StartedAt: day(10, 19), EndedAt: day(10, 20), DurationSeconds: 3600, Completed: true},
		{CategoryID: 2, CategoryName: "Rust", StartedAt: day(9, 8), EndedAt: day(9, 9), DurationSeconds: 1800, Completed: true},
	}
	events := append(notesOn(8, 9, 10, 10), domain.NoteEvent{At: day(10, 20), CategoryID: 2, CategoryName: "Rust"})
	r := domain.Compute(domain.Input{Today: today, Location: time.UTC, Sessions: sessions, Events: events, CategoryCount: 2, WindowDays: 7})

	if r.Today != "2024-03-10" || r.Streak != 3 {
		t.Fatalf("today/streak = %s/%d", r.Today, r.Streak)
	}
	if r.Lifetime != (domain.Lifetime{Categories: 2, Notes: 5, Sessions: 2, Seconds: 5400}) {
		t.Fatalf("lifetime = %+v", r.Lifetime)
	}
	if len(r.Top) != 2 || r.Top[0].Name != "Go" {
		t.Fatalf("top = %+v", r.Top)
	}
	if r.Level.Number != 2 || r.Goal.Target != 10 {
		t.Fatalf("level/goal = %+v / %+v", r.Level, r.Goal)
	}
	if r.BusiestNotesDay.Date != "2024-03-10" || r.BusiestReadingDay.Date != "2024-03-10" {
		t.Fatalf("busiest = %+v / %+v", r.BusiestNotesDay, r.BusiestReadingDay)
	}
	if r.TimeOfDay.Evening != 3600 || r.TimeOfDay.Morning != 1800 {
		t.Fatalf("time of day = %+v", r.TimeOfDay)
	}
	if len(r.Achievements) == 0 {
		t.Fatal("expected achievements")
	}
}

func TestComputePrefersSuppliedLifetime(t *testing.T) {
	t.Parallel()
	life := domain.Lifetime{Categories: 9, Notes: 120, Sessions: 40, Seconds: 50_000}
	r := domain.Compute(domain.Input{Today: day(10, 12), Events: notesOn(10), Lifetime: &life})
	if r.Lifetime != life {
		t.Fatalf("lifetime = %+v", r.Lifetime)
	}
	if r.Level.Number != 25 || r.Goal.Target != 250 {
		t.Fatalf("level/goal from lifetime = %+v / %+v", r.Level, r.Goal)
	}
	if len(r.Daily) != domain.DefaultWindowDays {
		t.Fatalf("default window = %d", len(r.Daily))
	}
}
