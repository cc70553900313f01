package services

import (
	"sort"
	"sync"
	"time"

	"habitflow/cache"
	"habitflow/config"
	"habitflow/db"
	"habitflow/models"

	"go.uber.org/zap"
)

type HabitStats struct {
	HabitID        uint    `json:"habit_id"`
	TotalDays      int     `json:"total_days"`
	CompletedDays  int     `json:"completed_days"`
	CompletionRate float64 `json:"completion_rate"`
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	Error          error   `json:"-"`
}

type UserHabitStats struct {
	UserID         uint          `json:"user_id"`
	TotalHabits    int           `json:"total_habits"`
	ActiveHabits   int           `json:"active_habits"`
	OverallRate    float64       `json:"overall_completion_rate"`
	HabitStats     []HabitStats  `json:"habit_stats"`
	ProcessingTime time.Duration `json:"processing_time_ms"`
}

const dateLayout = "2006-01-02"

// HabitStatsFromCompletions считает метрики одной привычки по её отметкам.
// Чистая функция: серия (streak) — количество подряд идущих календарных дат
// с completed=true, текущая серия отсчитывается назад от today (допускается
// "ещё не отмечено сегодня": тогда от вчерашнего дня).
func HabitStatsFromCompletions(habitID uint, completions []models.HabitCompletion, today string) HabitStats {
	stats := HabitStats{HabitID: habitID}

	completedDates := make(map[string]bool, len(completions))
	for _, c := range completions {
		if c.Completed {
			completedDates[c.Date] = true
		}
	}

	stats.TotalDays = len(completions)
	stats.CompletedDays = len(completedDates)
	if stats.TotalDays > 0 {
		stats.CompletionRate = float64(stats.CompletedDays) / float64(stats.TotalDays) * 100
	}

	stats.CurrentStreak = currentStreak(completedDates, today)
	stats.LongestStreak = longestStreak(completedDates)
	return stats
}

func currentStreak(completed map[string]bool, today string) int {
	day, err := time.Parse(dateLayout, today)
	if err != nil {
		return 0
	}

	// Сегодняшняя отметка может ещё отсутствовать, это не рвёт серию.
	if !completed[today] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for completed[day.Format(dateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func longestStreak(completed map[string]bool) int {
	if len(completed) == 0 {
		return 0
	}

	dates := make([]time.Time, 0, len(completed))
	for d := range completed {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			continue
		}
		dates = append(dates, t)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	longest, run := 0, 0
	for i, d := range dates {
		if i > 0 && dates[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// CalculateUserHabitStats считает статистику всех привычек пользователя
// параллельно: по горутине на привычку, результаты собираются через channel.
// Запросы независимы, shared state нет. Результат кэшируется.
func CalculateUserHabitStats(userID uint, logger *zap.Logger) (*UserHabitStats, error) {
	startTime := time.Now()

	cacheKey := cache.KeyUserStats(userID)
	var cached UserHabitStats
	if err := cache.Default.Get(cacheKey, &cached); err == nil {
		logger.Info("stats_cache_hit", zap.Uint("user_id", userID))
		return &cached, nil
	}

	var habits []models.Habit
	if err := db.DB.Where("user_id = ?", userID).Find(&habits).Error; err != nil {
		return nil, err
	}

	if len(habits) == 0 {
		return &UserHabitStats{UserID: userID}, nil
	}

	today := time.Now().Format(dateLayout)
	statsChan := make(chan HabitStats, len(habits))
	var wg sync.WaitGroup

	for _, habit := range habits {
		wg.Add(1)
		go func(h models.Habit) {
			defer wg.Done()
			statsChan <- loadSingleHabitStats(h.ID, today)
		}(habit)
	}

	go func() {
		wg.Wait()
		close(statsChan)
	}()

	var habitStats []HabitStats
	var totalRate float64

	for stat := range statsChan {
		if stat.Error != nil {
			logger.Warn("habit_stats_error",
				zap.Uint("habit_id", stat.HabitID),
				zap.Error(stat.Error),
			)
			continue
		}
		habitStats = append(habitStats, stat)
		totalRate += stat.CompletionRate
	}

	activeCount := 0
	for _, h := range habits {
		if h.IsActive {
			activeCount++
		}
	}

	overallRate := 0.0
	if len(habitStats) > 0 {
		overallRate = totalRate / float64(len(habitStats))
	}

	result := &UserHabitStats{
		UserID:         userID,
		TotalHabits:    len(habits),
		ActiveHabits:   activeCount,
		OverallRate:    overallRate,
		HabitStats:     habitStats,
		ProcessingTime: time.Since(startTime),
	}

	cache.Default.Set(cacheKey, result, config.Cfg.StatsCacheTTL)

	logger.Info("stats_calculated",
		zap.Uint("user_id", userID),
		zap.Int("habits_count", len(habits)),
		zap.Duration("duration", result.ProcessingTime),
	)

	return result, nil
}

// LoadHabitStats — статистика одной привычки, с кэшем.
func LoadHabitStats(userID, habitID uint) (HabitStats, error) {
	cacheKey := cache.KeyHabitStats(userID, habitID)
	var cached HabitStats
	if err := cache.Default.Get(cacheKey, &cached); err == nil {
		return cached, nil
	}

	stats := loadSingleHabitStats(habitID, time.Now().Format(dateLayout))
	if stats.Error != nil {
		return stats, stats.Error
	}

	cache.Default.Set(cacheKey, stats, config.Cfg.StatsCacheTTL)
	return stats, nil
}

func loadSingleHabitStats(habitID uint, today string) HabitStats {
	var completions []models.HabitCompletion
	if err := db.DB.Where("habit_id = ?", habitID).
		Order("date DESC").
		Find(&completions).Error; err != nil {
		return HabitStats{HabitID: habitID, Error: err}
	}
	return HabitStatsFromCompletions(habitID, completions, today)
}
