package domain_test

import (
	"testing"
	"time"

	"readtrack/internal/modules/stats/domain"
)

func day(d int, hour int) time.Time {
	return time.Date(2024, time.March, d, hour, 0, 0, 0, time.UTC)
}

func notesOn(days ...int) []domain.NoteEvent {
	out := make([]domain.NoteEvent, 0, len(days))
	for _, d := range days {
		out = append(out, domain.NoteEvent{At: day(d, 10), CategoryID: 1, CategoryName: "Go"})
	}
	return out
}

func TestStreakCountsConsecutiveDaysEndingToday(t *testing.T) {
	t.Parallel()
	if got := domain.Streak(notesOn(8, 9, 10), day(10, 20), time.UTC, 0); got != 3 {
		t.Fatalf("streak = %d, want 3", got)
	}
}

func TestStreakStopsAtGap(t *testing.T) {
	t.Parallel()
	if got := domain.Streak(notesOn(8, 10), day(10, 20), time.UTC, 0); got != 1 {
		t.Fatalf("streak = %d, want 1", got)
	}
	if got := domain.Streak(notesOn(8, 9), day(10, 20), time.UTC, 0); got != 0 {
		t.Fatalf("streak without a note today = %d, want 0", got)
	}
}

func TestStreakHonoursLookback(t *testing.T) {
	t.Parallel()
	if got := domain.Streak(notesOn(6, 7, 8, 9, 10), day(10, 20), time.UTC, 2); got != 2 {
		t.Fatalf("streak = %d, want 2", got)
	}
}

func TestStreakUsesLocalCalendar(t *testing.T) {
	t.Parallel()
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// 20:00 UTC on the 9th is already the 10th in Tokyo.
	events := []domain.NoteEvent{{At: day(9, 20)}, {At: day(9, 1)}}
	if got := domain.Streak(events, day(9, 22), tokyo, 0); got != 2 {
		t.Fatalf("streak = %d, want 2", got)
	}
	if got := domain.Streak(events, day(9, 22), time.UTC, 0); got != 1 {
		t.Fatalf("utc streak = %d, want 1", got)
	}
}

func TestDailyMetricsWindow(t *testing.T) {
	t.Parallel()
	sessions := []domain.HistoricalSession{
		{CategoryID: 1, StartedAt: day(10, 9), DurationSeconds: 600, Completed: true},
		{CategoryID: 1, StartedAt: day(9, 9), DurationSeconds: 300, Completed: true},
		{CategoryID: 1, StartedAt: day(9, 11), DurationSeconds: 900, Interrupted: true},
		{CategoryID: 1, StartedAt: day(1, 9), DurationSeconds: 50, Completed: true},
	}
	daily := domain.DailyMetrics(sessions, notesOn(9, 10, 10), day(10, 23), time.UTC, 3)
	if len(daily) != 3 {
		t.Fatalf("len = %d, want 3", len(daily))
	}
	want := []domain.DailyMetric{
		{Date: "2024-03-08"},
		{Date: "2024-03-09", Notes: 1, Seconds: 300, Sessions: 1},
		{Date: "2024-03-10", Notes: 2, Seconds: 600, Sessions: 1},
	}
	for i := range want {
		if daily[i] != want[i] {
			t.Fatalf("daily[%d] = %+v, want %+v", i, daily[i], want[i])
		}
	}
	if got := domain.DailyMetrics(nil, nil, day(10, 0), time.UTC, 0); got != nil {
		t.Fatalf("zero window = %v, want nil", got)
	}
}

func TestTopCategoriesByNotes(t *testing.T) {
	t.Parallel()
	totals := []domain.CategoryTotal{
		{CategoryID: 1, Name: "A", Notes: 5},
		{CategoryID: 2, Name: "B", Notes: 9},
		{CategoryID: 3, Name: "C", Notes: 2},
	}
	top := domain.TopCategories(totals, 2)
	if len(top) != 2 || top[0].Name != "B" || top[1].Name != "A" {
		t.Fatalf("top = %+v, want [B A]", top)
	}
	if got := domain.TopCategories(totals, 0); got != nil {
		t.Fatalf("limit 0 = %v", got)
	}
}

func TestCategoryTotalsGroupsAndSkipsUncategorised(t *testing.T) {
	t.Parallel()
	sessions := []domain.HistoricalSession{
		{CategoryID: 2, CategoryName: "Rust", DurationSeconds: 120, Completed: true},
		{CategoryID: 1, CategoryName: "Go", DurationSeconds: 60, Completed: true},
		{CategoryID: 1, CategoryName: "Go", DurationSeconds: 999, Interrupted: true},
		{CategoryID: 0, DurationSeconds: 30, Completed: true},
	}
	events := append(notesOn(1, 2), domain.NoteEvent{At: day(3, 1)})
	got := domain.CategoryTotals(sessions, events)
	want := []domain.CategoryTotal{
		{CategoryID: 1, Name: "Go", Notes: 2, Seconds: 60, Sessions: 1},
		{CategoryID: 2, Name: "Rust", Seconds: 120, Sessions: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("totals = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("totals[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAveragesWithoutActivityAreZero(t *testing.T) {
	t.Parallel()
	daily := domain.DailyMetrics(nil, nil, day(10, 0), time.UTC, 30)
	avg := domain.ComputeAverages(daily, nil)
	if avg.NotesPerDay != 0 || avg.NotesPerActiveDay != 0 || avg.SecondsPerSession != 0 || avg.SecondsPerActiveDay != 0 {
		t.Fatalf("averages = %+v, want zeros", avg)
	}
	if avg.WindowDays != 30 {
		t.Fatalf("window = %d", avg.WindowDays)
	}
}

func TestAverages(t *testing.T) {
	t.Parallel()
	sessions := []domain.HistoricalSession{
		{StartedAt: day(9, 9), DurationSeconds: 300, Completed: true},
		{StartedAt: day(10, 9), DurationSeconds: 900, Completed: true},
	}
	daily := domain.DailyMetrics(sessions, notesOn(10, 10, 10, 10), day(10, 23), time.UTC, 4)
	avg := domain.ComputeAverages(daily, sessions)
	if avg.NotesPerDay != 1 || avg.NotesPerActiveDay != 4 {
		t.Fatalf("note averages = %+v", avg)
	}
	if avg.SecondsPerDay != 300 || avg.SecondsPerSession != 600 || avg.SecondsPerActiveDay != 600 {
		t.Fatalf("time averages = %+v", avg)
	}
	if avg.NoteDays != 1 || avg.ActiveDays != 2 {
		t.Fatalf("days = %+v", avg)
	}
}

func TestTimeOfDayBreakdownByEndHour(t *testing.T) {
	t.Parallel()
	sessions := []domain.HistoricalSession{
		{StartedAt: day(1, 5), EndedAt: day(1, 7), DurationSeconds: 10, Completed: true},
		{StartedAt: day(1, 3), DurationSeconds: 60, Completed: true},
		{StartedAt: day(1, 13), EndedAt: day(1, 13), DurationSeconds: 20, Completed: true},
		{StartedAt: day(1, 22), EndedAt: day(1, 23), DurationSeconds: 40, Completed: true},
		{StartedAt: day(1, 22), EndedAt: day(1, 23), DurationSeconds: 500},
	}
	got := domain.TimeOfDayBreakdown(sessions, time.UTC)
	want := domain.TimeOfDay{Night: 60, Morning: 10, Afternoon: 20, Evening: 40}
	if got != want {
		t.Fatalf("breakdown = %+v, want %+v", got, want)
	}
	if got.Total() != 130 {
		t.Fatalf("total = %v", got.Total())
	}
}
