package domain

import (
	"fmt"
	"math"
)

const (
	MaxLevel      = 50
	NotesPerLevel = 5
	levelsPerTier = 5
)

var tierTitles = [...]string{
	"Novice",
	"Reader",
	"Book Lover",
	"Explorer",
	"Thinker",
	"Erudite",
	"Master",
	"Professor",
	"Magister",
	"Legend",
}

type Level struct {
	Number int
	// XP is progress inside the current level, 0..NotesPerLevel-1.
	XP        int
	Title     string
	NextTitle string
	// NextTierAt is the total note count that reaches the next tier.
	NextTierAt int
	Max        bool
}

// LevelFor maps a lifetime note count onto a level: one level per five notes,
// capped at MaxLevel, grouped into tiers of five levels.
func LevelFor(notes int) Level {
	if notes < 0 {
		notes = 0
	}
	number := min(MaxLevel, notes/NotesPerLevel+1)
	tier := (number - 1) / levelsPerTier
	lvl := Level{
		Number: number,
		XP:     notes % NotesPerLevel,
		Title:  tierTitles[tier],
		Max:    number == MaxLevel,
	}
	if tier+1 < len(tierTitles) {
		lvl.NextTitle = tierTitles[tier+1]
		lvl.NextTierAt = (tier + 1) * levelsPerTier * NotesPerLevel
	}
	return lvl
}

// Totals are the cumulative counts achievements and tips are judged on.
type Totals struct {
	Categories int
	Notes      int
	Seconds    float64
	Streak     int
}

type Achievement struct {
	ID    string
	Title string
}

type threshold struct {
	id    string
	title string
	met   func(Totals) bool
}

var achievementTable = []threshold{
	{"category-1", "First category", func(t Totals) bool { return t.Categories >= 1 }},
	{"category-3", "Three books", func(t Totals) bool { return t.Categories >= 3 }},
	{"category-5", "Library", func(t Totals) bool { return t.Categories >= 5 }},
	{"notes-1", "First note", func(t Totals) bool { return t.Notes >= 1 }},
	{"notes-10", "10 notes", func(t Totals) bool { return t.Notes >= 10 }},
	{"notes-25", "25 notes", func(t Totals) bool { return t.Notes >= 25 }},
	{"notes-50", "50 notes", func(t Totals) bool { return t.Notes >= 50 }},
	{"notes-100", "100 notes", func(t Totals) bool { return t.Notes >= 100 }},
	{"time-1h", "1 hour of reading", func(t Totals) bool { return t.Seconds >= 3600 }},
	{"time-2h", "2 hours of reading", func(t Totals) bool { return t.Seconds >= 7200 }},
	{"time-3h", "3 hours of reading", func(t Totals) bool { return t.Seconds >= 10800 }},
	{"time-10h", "10 hours of reading", func(t Totals) bool { return t.Seconds >= 36000 }},
	{"streak-3", "3 days in a row", func(t Totals) bool { return t.Streak >= 3 }},
	{"streak-7", "A week", func(t Totals) bool { return t.Streak >= 7 }},
	{"streak-14", "Two weeks", func(t Totals) bool { return t.Streak >= 14 }},
	{"streak-30", "A month", func(t Totals) bool { return t.Streak >= 30 }},
}

// Achievements lists every unlocked achievement in table order. Raising any
// count never removes one.
func Achievements(t Totals) []Achievement {
	var out []Achievement
	for _, th := range achievementTable {
		if th.met(t) {
			out = append(out, Achievement{ID: th.id, Title: th.title})
		}
	}
	return out
}

var goalLadder = [...]int{10, 25, 50, 100, 250}

type Goal struct {
	Title   string
	Current int
	Target  int
}

// Progress is the completed fraction in [0, 1].
func (g Goal) Progress() float64 {
	if g.Target <= 0 {
		return 0
	}
	return math.Min(1, float64(g.Current)/float64(g.Target))
}

// NextGoal is the smallest note milestone above notes.
func NextGoal(notes int) Goal {
	if notes < 0 {
		notes = 0
	}
	target := 0
	for _, step := range goalLadder {
		if notes < step {
			target = step
			break
		}
	}
	if target == 0 {
		last := goalLadder[len(goalLadder)-1]
		target = (notes/last + 1) * last
	}
	return Goal{Title: fmt.Sprintf("%d notes", target), Current: notes, Target: target}
}

type Forecast struct {
	DaysToGoal      int
	GoalReachable   bool
	DaysToNextLevel int
	LevelReachable  bool
	// Projected figures assume the current pace holds for the next window.
	ProjectedNotes   float64
	ProjectedSeconds float64
}

// ForecastFor estimates how long the current note pace takes to reach the goal
// and the next level. A zero pace makes both unreachable.
func ForecastFor(goal Goal, level Level, avg Averages, windowDays int) Forecast {
	f := Forecast{
		ProjectedNotes:   avg.NotesPerDay * float64(windowDays),
		ProjectedSeconds: avg.SecondsPerDay * float64(windowDays),
	}
	f.DaysToGoal, f.GoalReachable = daysAtPace(goal.Target-goal.Current, avg.NotesPerDay)
	if !level.Max {
		f.DaysToNextLevel, f.LevelReachable = daysAtPace(NotesPerLevel-level.XP, avg.NotesPerDay)
	}
	return f
}

func daysAtPace(remaining int, perDay float64) (int, bool) {
	if remaining <= 0 {
		return 0, true
	}
	if perDay <= 0 {
		return 0, false
	}
	return int(math.Ceil(float64(remaining) / perDay)), true
}
