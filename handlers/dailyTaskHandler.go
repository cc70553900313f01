package handlers

import (
	"net/http"
	"strconv"

	"habitflow/cache"
	"habitflow/db"
	"habitflow/middleware"
	"habitflow/models"
	"habitflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

// dailyTaskView — пункт чек-листа со статусом за сегодня.
type dailyTaskView struct {
	models.DailyTask
	CompletedToday bool `json:"completed_today"`
}

func GetDailyTasks(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	query := db.DB.Where("user_id = ?", currentUser.ID)
	if c.Query("include_archived") != "true" {
		query = query.Where("archived = ?", false)
	}

	var tasks []models.DailyTask
	if err := query.Find(&tasks).Error; err != nil {
		utils.Logger.Error("get_daily_tasks_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении чек-листа"})
		return
	}

	today := utils.Today()
	ids := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}

	completedToday := map[uint]bool{}
	if len(ids) > 0 {
		var marks []models.DailyTaskCompletion
		if err := db.DB.Where("daily_task_id IN ? AND date = ? AND completed = ?", ids, today, true).
			Find(&marks).Error; err == nil {
			for _, m := range marks {
				completedToday[m.DailyTaskID] = true
			}
		}
	}

	views := make([]dailyTaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, dailyTaskView{DailyTask: t, CompletedToday: completedToday[t.ID]})
	}

	c.JSON(http.StatusOK, views)
}

func GetDailyTask(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	task, found := ownedDailyTask(c, currentUser.ID)
	if !found {
		return
	}

	var mark models.DailyTaskCompletion
	completedToday := db.DB.
		Where("daily_task_id = ? AND date = ? AND completed = ?", task.ID, utils.Today(), true).
		First(&mark).Error == nil

	c.JSON(http.StatusOK, dailyTaskView{DailyTask: task, CompletedToday: completedToday})
}

func CreateDailyTask(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}

	task := models.DailyTask{
		UserID: currentUser.ID,
		Title:  input.Title,
	}
	if err := db.DB.Create(&task).Error; err != nil {
		utils.Logger.Error("create_daily_task_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании пункта"})
		return
	}

	cache.Default.InvalidateDailyTasks(currentUser.ID)
	c.JSON(http.StatusCreated, task)
}

func UpdateDailyTask(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	task, found := ownedDailyTask(c, currentUser.ID)
	if !found {
		return
	}

	var input struct {
		Title    *string `json:"title"`
		Archived *bool   `json:"archived"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Archived != nil {
		task.Archived = *input.Archived
	}

	if err := db.DB.Save(&task).Error; err != nil {
		utils.Logger.Error("update_daily_task_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update daily task"})
		return
	}

	cache.Default.InvalidateDailyTasks(currentUser.ID)
	c.JSON(http.StatusOK, task)
}

func DeleteDailyTask(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	task, found := ownedDailyTask(c, currentUser.ID)
	if !found {
		return
	}

	if err := db.DB.Where("daily_task_id = ?", task.ID).Delete(&models.DailyTaskCompletion{}).Error; err != nil {
		utils.Logger.Error("delete_daily_marks_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete daily task"})
		return
	}

	if err := db.DB.Delete(&task).Error; err != nil {
		utils.Logger.Error("delete_daily_task_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete daily task"})
		return
	}

	cache.Default.InvalidateDailyTasks(currentUser.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Daily task deleted"})
}

// MarkDailyTask — POST /api/daily-tasks/:id/mark. Отметка за дату (по
// умолчанию сегодня), идемпотентно по уникальному индексу.
func MarkDailyTask(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	task, found := ownedDailyTask(c, currentUser.ID)
	if !found {
		return
	}

	// Без тела — отметка "выполнено сегодня"
	input := struct {
		Completed *bool  `json:"completed"`
		Date      string `json:"date"`
	}{}
	_ = c.ShouldBindJSON(&input)

	completed := true
	if input.Completed != nil {
		completed = *input.Completed
	}
	if input.Date == "" {
		input.Date = utils.Today()
	}

	mark := models.DailyTaskCompletion{
		DailyTaskID: task.ID,
		Date:        input.Date,
		Completed:   completed,
	}
	if err := db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "daily_task_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed"}),
	}).Create(&mark).Error; err != nil {
		utils.Logger.Error("mark_daily_task_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении отметки"})
		return
	}

	cache.Default.InvalidateDailyTasks(currentUser.ID)
	c.JSON(http.StatusOK, mark)
}

func ownedDailyTask(c *gin.Context, userID uint) (models.DailyTask, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid daily task id"})
		return models.DailyTask{}, false
	}

	var task models.DailyTask
	if err := db.DB.Where("user_id = ?", userID).First(&task, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Daily task not found"})
		return models.DailyTask{}, false
	}
	return task, true
}
