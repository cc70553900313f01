package handlers

import (
	"net/http"
	"strconv"

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

// Completions инициализируется в main при старте.
var Completions *services.CompletionService

type habitInput struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Description  string   `json:"description"`
	Kind         string   `json:"kind" validate:"omitempty,oneof=binary quantitative"`
	TargetValue  *float64 `json:"target_value"`
	TargetUnit   string   `json:"target_unit"`
	ScheduleType string   `json:"schedule_type" validate:"omitempty,oneof=daily weekly weekdays"`
	Frequency    int      `json:"frequency" validate:"min=0,max=7"`
	WeekdayMask  int      `json:"weekday_mask" validate:"min=0,max=127"`
	ReminderTime string   `json:"reminder_time" validate:"omitempty,datetime=15:04"`
	CategoryIDs  []uint   `json:"category_ids"`
}

func GetHabits(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var habits []models.Habit
	query := db.DB.Preload("Categories").Where("user_id = ?", currentUser.ID)

	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	if err := query.Find(&habits).Error; err != nil {
		utils.Logger.Error("get_habits_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении привычек"})
		return
	}

	c.JSON(http.StatusOK, habits)
}

func GetHabit(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	habit, found := ownedHabit(c, currentUser.ID)
	if !found {
		return
	}

	if err := db.DB.Model(&habit).Association("Categories").Find(&habit.Categories); err != nil {
		utils.Logger.Warn("load_habit_categories_failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, habit)
}

func CreateHabit(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input habitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}
	if err := middleware.ValidateStruct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit := models.Habit{
		UserID:       currentUser.ID,
		Name:         input.Name,
		Description:  input.Description,
		Kind:         defaultStr(input.Kind, models.HabitKindBinary),
		TargetValue:  input.TargetValue,
		TargetUnit:   input.TargetUnit,
		ScheduleType: defaultStr(input.ScheduleType, models.ScheduleDaily),
		Frequency:    input.Frequency,
		WeekdayMask:  input.WeekdayMask,
		ReminderTime: input.ReminderTime,
		IsActive:     true,
	}

	if err := db.DB.Create(&habit).Error; err != nil {
		utils.Logger.Error("create_habit_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании привычки"})
		return
	}

	if len(input.CategoryIDs) > 0 {
		attachCategories(c, &habit, currentUser.ID, input.CategoryIDs)
	}

	cache.Default.InvalidateHabits(currentUser.ID, habit.ID)
	c.JSON(http.StatusCreated, gin.H{"habit": habit})
}

func UpdateHabit(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	habit, found := ownedHabit(c, currentUser.ID)
	if !found {
		return
	}

	var input struct {
		Name         *string  `json:"name"`
		Description  *string  `json:"description"`
		Kind         *string  `json:"kind"`
		TargetValue  *float64 `json:"target_value"`
		TargetUnit   *string  `json:"target_unit"`
		ScheduleType *string  `json:"schedule_type"`
		Frequency    *int     `json:"frequency"`
		WeekdayMask  *int     `json:"weekday_mask"`
		ReminderTime *string  `json:"reminder_time"`
		IsActive     *bool    `json:"is_active"`
		CategoryIDs  []uint   `json:"category_ids"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// При частичном обновлении указатели обходят теги структуры — проверяем вручную.
	if input.Kind != nil {
		if err := middleware.ValidateVar(*input.Kind, "oneof=binary quantitative"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Недопустимый тип привычки"})
			return
		}
	}
	if input.ScheduleType != nil {
		if err := middleware.ValidateVar(*input.ScheduleType, "oneof=daily weekly weekdays"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Недопустимый тип расписания"})
			return
		}
	}
	if input.ReminderTime != nil && *input.ReminderTime != "" {
		if err := middleware.ValidateVar(*input.ReminderTime, "datetime=15:04"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Недопустимое время напоминания"})
			return
		}
	}

	if input.Name != nil {
		habit.Name = *input.Name
	}
	if input.Description != nil {
		habit.Description = *input.Description
	}
	if input.Kind != nil {
		habit.Kind = *input.Kind
	}
	if input.TargetValue != nil {
		habit.TargetValue = input.TargetValue
	}
	if input.TargetUnit != nil {
		habit.TargetUnit = *input.TargetUnit
	}
	if input.ScheduleType != nil {
		habit.ScheduleType = *input.ScheduleType
	}
	if input.Frequency != nil {
		habit.Frequency = *input.Frequency
	}
	if input.WeekdayMask != nil {
		habit.WeekdayMask = *input.WeekdayMask
	}
	if input.ReminderTime != nil {
		habit.ReminderTime = *input.ReminderTime
	}
	if input.IsActive != nil {
		habit.IsActive = *input.IsActive
	}

	if err := db.DB.Save(&habit).Error; err != nil {
		utils.Logger.Error("update_habit_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update habit"})
		return
	}

	if input.CategoryIDs != nil {
		attachCategories(c, &habit, currentUser.ID, input.CategoryIDs)
	}

	cache.Default.InvalidateHabits(currentUser.ID, habit.ID)
	c.JSON(http.StatusOK, gin.H{"habit": habit})
}

func DeleteHabit(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	habit, found := ownedHabit(c, currentUser.ID)
	if !found {
		return
	}

	// Снимаем связи с категориями и историю отметок
	if err := db.DB.Exec("DELETE FROM habit_categories WHERE habit_id = ?", habit.ID).Error; err != nil {
		utils.Logger.Warn("clear_habit_links_failed", zap.Error(err))
	}

	if err := db.DB.Where("habit_id = ?", habit.ID).Delete(&models.HabitCompletion{}).Error; err != nil {
		utils.Logger.Error("delete_completions_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete habit"})
		return
	}

	if err := db.DB.Delete(&habit).Error; err != nil {
		utils.Logger.Error("delete_habit_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete habit"})
		return
	}

	cache.Default.InvalidateHabits(currentUser.ID, habit.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Habit deleted"})
}

// CompleteHabit — POST /api/habits/:id/complete. Желаемое состояние за
// сегодня; сериализация и откат — в services.CompletionService.
func CompleteHabit(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	habit, found := ownedHabit(c, currentUser.ID)
	if !found {
		return
	}

	var input struct {
		Completed bool     `json:"completed"`
		Value     *float64 `json:"value"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}

	result, err := Completions.Toggle(currentUser.ID, habit.ID, input.Completed, input.Value)
	if err != nil {
		utils.Logger.Error("complete_habit_failed",
			zap.Uint("habit_id", habit.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении отметки"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHabitCompletions — GET /api/habits/:id/completions?from=&to=.
func GetHabitCompletions(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	habit, found := ownedHabit(c, currentUser.ID)
	if !found {
		return
	}

	query := db.DB.Where("habit_id = ?", habit.ID)
	if from := c.Query("from"); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("date <= ?", to)
	}

	var completions []models.HabitCompletion
	if err := query.Order("date ASC").Find(&completions).Error; err != nil {
		utils.Logger.Error("get_completions_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении отметок"})
		return
	}

	c.JSON(http.StatusOK, completions)
}

func GetHabitStats(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	habit, found := ownedHabit(c, currentUser.ID)
	if !found {
		return
	}

	stats, err := services.LoadHabitStats(currentUser.ID, habit.ID)
	if err != nil {
		utils.Logger.Error("habit_stats_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при расчёте статистики"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func GetHabitStreak(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	habit, found := ownedHabit(c, currentUser.ID)
	if !found {
		return
	}

	stats, err := services.LoadHabitStats(currentUser.ID, habit.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при расчёте серии"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habit_id":       habit.ID,
		"current_streak": stats.CurrentStreak,
		"longest_streak": stats.LongestStreak,
	})
}

// GetTodayCompletions — статус всех привычек за сегодня, из кэша либо из БД.
func GetTodayCompletions(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	date := utils.Today()
	key := cache.KeyTodayCompletions(currentUser.ID, date)

	var statuses []services.CompletionStatus
	if err := cache.Default.Get(key, &statuses); err == nil {
		c.JSON(http.StatusOK, statuses)
		return
	}

	var completions []models.HabitCompletion
	if err := db.DB.
		Joins("JOIN habits ON habits.id = habit_completions.habit_id").
		Where("habits.user_id = ? AND habit_completions.date = ?", currentUser.ID, date).
		Find(&completions).Error; err != nil {
		utils.Logger.Error("today_completions_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении отметок"})
		return
	}

	statuses = make([]services.CompletionStatus, 0, len(completions))
	for _, comp := range completions {
		statuses = append(statuses, services.CompletionStatus{
			HabitID:   comp.HabitID,
			Completed: comp.Completed,
			Date:      comp.Date,
			Value:     comp.Value,
		})
	}

	cache.Default.Set(key, statuses, config.Cfg.ResponseCacheTTL)
	c.JSON(http.StatusOK, statuses)
}

func ownedHabit(c *gin.Context, userID uint) (models.Habit, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid habit id"})
		return models.Habit{}, false
	}

	var habit models.Habit
	if err := db.DB.Where("user_id = ?", userID).First(&habit, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Habit not found"})
		return models.Habit{}, false
	}
	return habit, true
}

func attachCategories(c *gin.Context, habit *models.Habit, userID uint, categoryIDs []uint) {
	var categories []models.Category
	if err := db.DB.Where("user_id = ? AND id IN ?", userID, categoryIDs).Find(&categories).Error; err != nil {
		utils.Logger.Warn("attach_categories_failed", zap.Error(err))
		return
	}
	if err := db.DB.Model(habit).Association("Categories").Replace(categories); err != nil {
		utils.Logger.Warn("replace_categories_failed", zap.Error(err))
		return
	}
	habit.Categories = categories
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
