package handlers

import (
	"net/http"
	"time"

	"habitflow/cache"
	"habitflow/config"
	"habitflow/db"
	"habitflow/middleware"
	"habitflow/models"
	"habitflow/services"
	"habitflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type taskStatistics struct {
	Total      int                      `json:"total"`
	Completed  int                      `json:"completed"`
	Overdue    int                      `json:"overdue"`
	ByPriority map[string]int           `json:"by_priority"`
	ByUrgency  map[services.Urgency]int `json:"by_urgency"`
}

type overviewStatistics struct {
	Habits       *services.UserHabitStats `json:"habits"`
	Tasks        taskStatistics           `json:"tasks"`
	DailyTotal   int                      `json:"daily_total"`
	DailyDone    int                      `json:"daily_done_today"`
	Achievements int                      `json:"achievements"`
	GeneratedAt  time.Time                `json:"generated_at"`
}

// GetHabitStatistics — GET /api/statistics/habits.
func GetHabitStatistics(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stats, err := services.CalculateUserHabitStats(currentUser.ID, utils.Logger)
	if err != nil {
		utils.Logger.Error("habit_statistics_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при расчёте статистики"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetTaskStatistics — GET /api/statistics/tasks.
func GetTaskStatistics(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stats, err := loadTaskStatistics(currentUser.ID)
	if err != nil {
		utils.Logger.Error("task_statistics_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при расчёте статистики"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetOverview — GET /api/statistics/overview, сводный дашборд.
func GetOverview(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cacheKey := cache.KeyOverview(currentUser.ID)
	var cached overviewStatistics
	if err := cache.Default.Get(cacheKey, &cached); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	habitStats, err := services.CalculateUserHabitStats(currentUser.ID, utils.Logger)
	if err != nil {
		utils.Logger.Error("overview_habits_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при расчёте статистики"})
		return
	}

	taskStats, err := loadTaskStatistics(currentUser.ID)
	if err != nil {
		utils.Logger.Error("overview_tasks_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при расчёте статистики"})
		return
	}

	overview := overviewStatistics{
		Habits:      habitStats,
		Tasks:       taskStats,
		GeneratedAt: time.Now(),
	}

	var dailyTotal int64
	if err := db.DB.Model(&models.DailyTask{}).
		Where("user_id = ? AND archived = ?", currentUser.ID, false).
		Count(&dailyTotal).Error; err != nil {
		utils.Logger.Warn("overview_daily_count_failed", zap.Error(err))
	}
	overview.DailyTotal = int(dailyTotal)

	var dailyDone int64
	if err := db.DB.Model(&models.DailyTaskCompletion{}).
		Joins("JOIN daily_tasks ON daily_tasks.id = daily_task_completions.daily_task_id").
		Where("daily_tasks.user_id = ? AND daily_task_completions.date = ? AND daily_task_completions.completed = ?",
			currentUser.ID, utils.Today(), true).
		Count(&dailyDone).Error; err != nil {
		utils.Logger.Warn("overview_daily_done_count_failed", zap.Error(err))
	}
	overview.DailyDone = int(dailyDone)

	var achievements int64
	if err := db.DB.Model(&models.Achievement{}).
		Where("user_id = ?", currentUser.ID).
		Count(&achievements).Error; err != nil {
		utils.Logger.Warn("overview_achievements_count_failed", zap.Error(err))
	}
	overview.Achievements = int(achievements)

	cache.Default.Set(cacheKey, overview, config.Cfg.StatsCacheTTL)
	c.JSON(http.StatusOK, overview)
}

type userListing struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	HabitsCount int64     `json:"habits_count"`
	TasksCount  int64     `json:"tasks_count"`
}

// GetUserStatistics — GET /api/statistics/users, только для admin.
func GetUserStatistics(c *gin.Context) {
	var users []models.User
	if err := db.DB.Order("id ASC").Find(&users).Error; err != nil {
		utils.Logger.Error("user_statistics_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении пользователей"})
		return
	}

	listings := make([]userListing, 0, len(users))
	for _, u := range users {
		listing := userListing{
			ID:        u.ID,
			Username:  u.Username,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		}
		if err := db.DB.Model(&models.Habit{}).
			Where("user_id = ?", u.ID).
			Count(&listing.HabitsCount).Error; err != nil {
			utils.Logger.Warn("user_habit_count_failed", zap.Uint("user_id", u.ID), zap.Error(err))
		}
		if err := db.DB.Model(&models.Task{}).
			Where("user_id = ?", u.ID).
			Count(&listing.TasksCount).Error; err != nil {
			utils.Logger.Warn("user_task_count_failed", zap.Uint("user_id", u.ID), zap.Error(err))
		}
		listings = append(listings, listing)
	}

	c.JSON(http.StatusOK, listings)
}

func loadTaskStatistics(userID uint) (taskStatistics, error) {
	cacheKey := cache.KeyTaskStats(userID)
	var cached taskStatistics
	if err := cache.Default.Get(cacheKey, &cached); err == nil {
		return cached, nil
	}

	var tasks []models.Task
	if err := db.DB.Where("user_id = ?", userID).Find(&tasks).Error; err != nil {
		return taskStatistics{}, err
	}

	stats := taskStatistics{
		ByPriority: map[string]int{},
		ByUrgency:  map[services.Urgency]int{},
	}

	now := time.Now()
	for _, t := range tasks {
		stats.Total++
		stats.ByPriority[t.Priority]++

		if t.Completed {
			stats.Completed++
			continue
		}
		if t.Deadline == nil {
			continue
		}

		tr := services.CalculateTimeRemaining(now, *t.Deadline)
		stats.ByUrgency[services.UrgencyFor(tr)]++
		if tr.IsOverdue {
			stats.Overdue++
		}
	}

	cache.Default.Set(cacheKey, stats, config.Cfg.StatsCacheTTL)
	return stats, nil
}
