// Package domain holds the reading statistics. Every function here is pure:
// the caller supplies "today" and the location, nothing reads the clock.
package domain

import (
	"cmp"
	"slices"
	"time"
)

const (
	DefaultWindowDays     = 30
	DefaultStreakLookback = 365
)

type HistoricalSession struct {
	ID              string
	CategoryID      int64
	CategoryName    string
	StartedAt       time.Time
	EndedAt         time.Time
	DurationSeconds float64
	NoteCount       int
	MediaNoteCount  int
	Completed       bool
	Interrupted     bool
}

type NoteEvent struct {
	At           time.Time
	CategoryID   int64
	CategoryName string
	Media        bool
}

type DailyMetric struct {
	// Date is YYYY-MM-DD in the report location.
	Date     string
	Notes    int
	Seconds  float64
	Sessions int
}

type CategoryTotal struct {
	CategoryID int64
	Name       string
	Notes      int
	Seconds    float64
	Sessions   int
}

func locOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// civilDay returns the calendar day offset days away from t. Noon avoids DST
// gaps landing on the wrong date.
func civilDay(t time.Time, offset int) string {
	return time.Date(t.Year(), t.Month(), t.Day()+offset, 12, 0, 0, 0, t.Location()).Format(time.DateOnly)
}

// Streak counts consecutive days ending today that have at least one note.
// A day without notes breaks the streak even if the user read that day.
// At most lookbackDays days are examined.
func Streak(events []NoteEvent, today time.Time, loc *time.Location, lookbackDays int) int {
	loc = locOrUTC(loc)
	if lookbackDays <= 0 {
		lookbackDays = DefaultStreakLookback
	}
	days := make(map[string]struct{}, len(events))
	for _, e := range events {
		days[dayKey(e.At, loc)] = struct{}{}
	}
	local := today.In(loc)
	streak := 0
	for i := 0; i < lookbackDays; i++ {
		if _, ok := days[civilDay(local, -i)]; !ok {
			break
		}
		streak++
	}
	return streak
}

// DailyMetrics returns one entry per day of the window ending today, oldest
// first. Reading time comes from completed sessions, keyed by start day.
func DailyMetrics(sessions []HistoricalSession, events []NoteEvent, today time.Time, loc *time.Location, days int) []DailyMetric {
	loc = locOrUTC(loc)
	if days <= 0 {
		return nil
	}
	local := today.In(loc)
	out := make([]DailyMetric, days)
	index := make(map[string]int, days)
	for i := range out {
		date := civilDay(local, i-days+1)
		out[i] = DailyMetric{Date: date}
		index[date] = i
	}
	for _, e := range events {
		if i, ok := index[dayKey(e.At, loc)]; ok {
			out[i].Notes++
		}
	}
	for _, s := range sessions {
		if !s.Completed {
			continue
		}
		if i, ok := index[dayKey(s.StartedAt, loc)]; ok {
			out[i].Seconds += s.DurationSeconds
			out[i].Sessions++
		}
	}
	return out
}

// CategoryTotals groups notes and completed reading time by category,
// ordered by category id. Uncategorised records are skipped.
func CategoryTotals(sessions []HistoricalSession, events []NoteEvent) []CategoryTotal {
	byID := map[int64]*CategoryTotal{}
	get := func(id int64, name string) *CategoryTotal {
		t, ok := byID[id]
		if !ok {
			t = &CategoryTotal{CategoryID: id, Name: name}
			byID[id] = t
		}
		if t.Name == "" {
			t.Name = name
		}
		return t
	}
	for _, e := range events {
		if e.CategoryID == 0 {
			continue
		}
		get(e.CategoryID, e.CategoryName).Notes++
	}
	for _, s := range sessions {
		if s.CategoryID == 0 || !s.Completed {
			continue
		}
		t := get(s.CategoryID, s.CategoryName)
		t.Seconds += s.DurationSeconds
		t.Sessions++
	}
	out := make([]CategoryTotal, 0, len(byID))
	for _, t := range byID {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b CategoryTotal) int { return cmp.Compare(a.CategoryID, b.CategoryID) })
	return out
}

// TopCategories returns up to limit categories by descending note count.
// Equal counts keep their input order.
func TopCategories(totals []CategoryTotal, limit int) []CategoryTotal {
	if limit <= 0 {
		return nil
	}
	sorted := slices.Clone(totals)
	slices.SortStableFunc(sorted, func(a, b CategoryTotal) int { return cmp.Compare(b.Notes, a.Notes) })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

type Averages struct {
	NotesPerDay         float64
	NotesPerActiveDay   float64
	SecondsPerDay       float64
	SecondsPerSession   float64
	SecondsPerActiveDay float64
	WindowDays          int
	NoteDays            int
	ActiveDays          int
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// ComputeAverages derives per-day figures over the daily window and the
// mean length of the completed sessions given.
func ComputeAverages(daily []DailyMetric, sessions []HistoricalSession) Averages {
	var (
		notes   int
		seconds float64
		a       = Averages{WindowDays: len(daily)}
	)
	for _, d := range daily {
		notes += d.Notes
		seconds += d.Seconds
		if d.Notes > 0 {
			a.NoteDays++
		}
		if d.Notes > 0 || d.Sessions > 0 {
			a.ActiveDays++
		}
	}
	var sessionSeconds float64
	completed := 0
	for _, s := range sessions {
		if s.Completed && s.DurationSeconds > 0 {
			sessionSeconds += s.DurationSeconds
			completed++
		}
	}
	a.NotesPerDay = ratio(float64(notes), float64(a.WindowDays))
	a.NotesPerActiveDay = ratio(float64(notes), float64(a.NoteDays))
	a.SecondsPerDay = ratio(seconds, float64(a.WindowDays))
	a.SecondsPerActiveDay = ratio(seconds, float64(a.ActiveDays))
	a.SecondsPerSession = ratio(sessionSeconds, float64(completed))
	return a
}

type TimeOfDay struct {
	Night     float64
	Morning   float64
	Afternoon float64
	Evening   float64
}

func (t TimeOfDay) Total() float64 {
	return t.Night + t.Morning + t.Afternoon + t.Evening
}

// TimeOfDayBreakdown sums completed reading time by the hour the session
// ended: night 0-6, morning 6-12, afternoon 12-18, evening 18-24.
func TimeOfDayBreakdown(sessions []HistoricalSession, loc *time.Location) TimeOfDay {
	loc = locOrUTC(loc)
	var out TimeOfDay
	for _, s := range sessions {
		if !s.Completed {
			continue
		}
		at := s.EndedAt
		if at.IsZero() {
			at = s.StartedAt.Add(time.Duration(s.DurationSeconds * float64(time.Second)))
		}
		switch h := at.In(loc).Hour(); {
		case h < 6:
			out.Night += s.DurationSeconds
		case h < 12:
			out.Morning += s.DurationSeconds
		case h < 18:
			out.Afternoon += s.DurationSeconds
		default:
			out.Evening += s.DurationSeconds
		}
	}
	return out
}
