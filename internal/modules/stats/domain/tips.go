package domain

import (
	"fmt"
	"math/rand/v2"
)

// Tips returns the advice that fits t. A situation that calls for one
// specific nudge yields a single tip; otherwise the general rotation.
func Tips(t Totals) []string {
	switch {
	case t.Streak == 0:
		return []string{"Write a note today to start a streak."}
	case t.Streak == 6:
		return []string{"One more day and your streak is a full week."}
	case t.Streak == 13:
		return []string{"Tomorrow makes two weeks in a row. Keep going."}
	case t.Notes < 10:
		return []string{fmt.Sprintf("%d more notes until the \"10 notes\" achievement.", 10-t.Notes)}
	case t.Seconds < 3600:
		return []string{fmt.Sprintf("%d more minutes until your first hour of reading.", 60-int(t.Seconds/60))}
	case t.Categories == 0:
		return []string{"Create a category to keep your notes organised."}
	}
	return []string{
		"Read at least 20 minutes every day to build the habit.",
		"Set a target of five notes a week.",
		"Run the timer while you read to see your progress.",
		"Photograph interesting pages, it is quicker than typing.",
		fmt.Sprintf("%d days in a row. Great result!", t.Streak),
		"Check your statistics once a week.",
		"Write notes right after reading while it is fresh.",
		"Next milestone: 100 notes.",
	}
}

// TipAt picks a tip deterministically; i wraps around the list.
func TipAt(t Totals, i int) string {
	tips := Tips(t)
	if i < 0 {
		i = -i
	}
	return tips[i%len(tips)]
}

// RandomTip is the "tip of the day" shown to users.
func RandomTip(t Totals) string {
	tips := Tips(t)
	return tips[rand.IntN(len(tips))]
}
