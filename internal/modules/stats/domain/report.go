package domain

import "time"

const DefaultTopCategories = 3

// Lifetime holds all-time counts, which usually cover more history than the
// loaded sessions and notes.
type Lifetime struct {
	Categories int
	Notes      int
	Sessions   int
	Seconds    float64
}

type Input struct {
	Today              time.Time
	Location           *time.Location
	Sessions           []HistoricalSession
	Events             []NoteEvent
	CategoryCount      int
	WindowDays         int
	StreakLookbackDays int
	TopLimit           int
	// Lifetime overrides the totals derived from Sessions and Events.
	Lifetime *Lifetime
}

type Report struct {
	Today        string
	Lifetime     Lifetime
	Streak       int
	Daily        []DailyMetric
	Categories   []CategoryTotal
	Top          []CategoryTotal
	Averages     Averages
	Level        Level
	Achievements []Achievement
	Goal         Goal
	Forecast     Forecast
	TimeOfDay    TimeOfDay
	// BusiestNotesDay and BusiestReadingDay are zero when the window is empty.
	BusiestNotesDay   DailyMetric
	BusiestReadingDay DailyMetric
}

func (r Report) Totals() Totals {
	return Totals{Categories: r.Lifetime.Categories, Notes: r.Lifetime.Notes, Seconds: r.Lifetime.Seconds, Streak: r.Streak}
}

// Compute assembles the full report. Equal inputs give equal reports in any
// input order.
func Compute(in Input) Report {
	loc := locOrUTC(in.Location)
	window := in.WindowDays
	if window <= 0 {
		window = DefaultWindowDays
	}
	topLimit := in.TopLimit
	if topLimit <= 0 {
		topLimit = DefaultTopCategories
	}

	lifetime := deriveLifetime(in)
	if in.Lifetime != nil {
		lifetime = *in.Lifetime
	}

	daily := DailyMetrics(in.Sessions, in.Events, in.Today, loc, window)
	categories := CategoryTotals(in.Sessions, in.Events)
	r := Report{
		Today:      in.Today.In(loc).Format(time.DateOnly),
		Lifetime:   lifetime,
		Streak:     Streak(in.Events, in.Today, loc, in.StreakLookbackDays),
		Daily:      daily,
		Categories: categories,
		Top:        TopCategories(categories, topLimit),
		Averages:   ComputeAverages(daily, in.Sessions),
		Level:      LevelFor(lifetime.Notes),
		Goal:       NextGoal(lifetime.Notes),
		TimeOfDay:  TimeOfDayBreakdown(in.Sessions, loc),
	}
	r.Achievements = Achievements(r.Totals())
	r.Forecast = ForecastFor(r.Goal, r.Level, r.Averages, window)
	r.BusiestNotesDay, r.BusiestReadingDay = busiestDays(daily)
	return r
}

func deriveLifetime(in Input) Lifetime {
	l := Lifetime{Categories: in.CategoryCount, Notes: len(in.Events)}
	for _, s := range in.Sessions {
		if s.Completed && s.DurationSeconds > 0 {
			l.Sessions++
			l.Seconds += s.DurationSeconds
		}
	}
	return l
}

// busiestDays picks the earliest day with the most notes and the earliest
// day with the most reading time.
func busiestDays(daily []DailyMetric) (DailyMetric, DailyMetric) {
	var notes, reading DailyMetric
	for _, d := range daily {
		if d.Notes > notes.Notes {
			notes = d
		}
		if d.Seconds > reading.Seconds {
			reading = d
		}
	}
	return notes, reading
}
