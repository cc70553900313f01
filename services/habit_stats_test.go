package services

import (
	"testing"

	"habitflow/models"

	"github.com/stretchr/testify/assert"
)

func comps(dates ...string) []models.HabitCompletion {
	out := make([]models.HabitCompletion, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.HabitCompletion{HabitID: 1, Date: d, Completed: true})
	}
	return out
}

func TestHabitStatsFromCompletions_Empty(t *testing.T) {
	stats := HabitStatsFromCompletions(1, nil, "2024-06-10")

	assert.Equal(t, 0, stats.TotalDays)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 0, stats.LongestStreak)
	assert.Equal(t, 0.0, stats.CompletionRate)
}

func TestHabitStatsFromCompletions_CurrentStreakFromToday(t *testing.T) {
	stats := HabitStatsFromCompletions(1,
		comps("2024-06-10", "2024-06-09", "2024-06-08"), "2024-06-10")

	assert.Equal(t, 3, stats.CurrentStreak)
	assert.Equal(t, 3, stats.LongestStreak)
}

func TestHabitStatsFromCompletions_TodayNotYetMarked(t *testing.T) {
	// Сегодня ещё не отмечено — серия считается от вчера и не рвётся.
	stats := HabitStatsFromCompletions(1,
		comps("2024-06-09", "2024-06-08"), "2024-06-10")

	assert.Equal(t, 2, stats.CurrentStreak)
}

func TestHabitStatsFromCompletions_GapBreaksStreak(t *testing.T) {
	stats := HabitStatsFromCompletions(1,
		comps("2024-06-10", "2024-06-08", "2024-06-07", "2024-06-06"), "2024-06-10")

	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 3, stats.LongestStreak)
}

func TestHabitStatsFromCompletions_IncompleteEntriesIgnored(t *testing.T) {
	completions := []models.HabitCompletion{
		{HabitID: 1, Date: "2024-06-10", Completed: true},
		{HabitID: 1, Date: "2024-06-09", Completed: false},
		{HabitID: 1, Date: "2024-06-08", Completed: true},
	}

	stats := HabitStatsFromCompletions(1, completions, "2024-06-10")

	assert.Equal(t, 3, stats.TotalDays)
	assert.Equal(t, 2, stats.CompletedDays)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.InDelta(t, 66.66, stats.CompletionRate, 0.1)
}

func TestHabitStatsFromCompletions_MonthBoundary(t *testing.T) {
	stats := HabitStatsFromCompletions(1,
		comps("2024-07-01", "2024-06-30", "2024-06-29"), "2024-07-01")

	assert.Equal(t, 3, stats.CurrentStreak)
}
