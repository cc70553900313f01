package handlers

import (
	"net/http"
	"strconv"
	"time"

	"habitflow/cache"
	"habitflow/db"
	"habitflow/middleware"
	"habitflow/models"
	"habitflow/services"
	"habitflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type taskInput struct {
	Title      string     `json:"title" validate:"required,max=200"`
	Deadline   *time.Time `json:"deadline"`
	Priority   string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	IsBirthday bool       `json:"is_birthday"`
	PersonName string     `json:"person_name"`
}

// taskView — задача плюс посчитанный на сервере блок срочности.
type taskView struct {
	models.Task
	DeadlineInfo *services.DeadlineInfo `json:"deadline_info,omitempty"`
}

func taskToView(t models.Task, now time.Time) taskView {
	view := taskView{Task: t}
	if t.Deadline != nil && !t.Completed {
		info := services.DeadlineInfoAt(now, *t.Deadline)
		view.DeadlineInfo = &info
	}
	return view
}

func GetTasks(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	query := db.DB.Where("user_id = ?", currentUser.ID)
	if completed := c.Query("completed"); completed != "" {
		query = query.Where("completed = ?", completed == "true")
	}
	if priority := c.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}

	var tasks []models.Task
	if err := query.Order("deadline ASC NULLS LAST").Find(&tasks).Error; err != nil {
		utils.Logger.Error("get_tasks_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении задач"})
		return
	}

	now := time.Now()
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, taskToView(t, now))
	}

	c.JSON(http.StatusOK, views)
}

func GetTask(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	task, found := ownedTask(c, currentUser.ID)
	if !found {
		return
	}

	c.JSON(http.StatusOK, taskToView(task, time.Now()))
}

func CreateTask(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input taskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}
	if err := middleware.ValidateStruct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := models.Task{
		UserID:     currentUser.ID,
		Title:      input.Title,
		Deadline:   input.Deadline,
		Priority:   defaultStr(input.Priority, models.PriorityMedium),
		IsBirthday: input.IsBirthday,
		PersonName: input.PersonName,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		utils.Logger.Error("create_task_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании задачи"})
		return
	}

	cache.Default.InvalidateTasks(currentUser.ID)
	c.JSON(http.StatusCreated, taskToView(task, time.Now()))
}

func UpdateTask(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	task, found := ownedTask(c, currentUser.ID)
	if !found {
		return
	}

	var input struct {
		Title      *string    `json:"title"`
		Deadline   *time.Time `json:"deadline"`
		Priority   *string    `json:"priority"`
		Completed  *bool      `json:"completed"`
		IsBirthday *bool      `json:"is_birthday"`
		PersonName *string    `json:"person_name"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if input.Priority != nil {
		if err := middleware.ValidateVar(*input.Priority, "oneof=low medium high"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Недопустимый приоритет"})
			return
		}
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Deadline != nil {
		task.Deadline = input.Deadline
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	if input.IsBirthday != nil {
		task.IsBirthday = *input.IsBirthday
	}
	if input.PersonName != nil {
		task.PersonName = *input.PersonName
	}

	if err := db.DB.Save(&task).Error; err != nil {
		utils.Logger.Error("update_task_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	cache.Default.InvalidateTasks(currentUser.ID)
	c.JSON(http.StatusOK, taskToView(task, time.Now()))
}

func DeleteTask(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	task, found := ownedTask(c, currentUser.ID)
	if !found {
		return
	}

	if err := db.DB.Delete(&task).Error; err != nil {
		utils.Logger.Error("delete_task_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	cache.Default.InvalidateTasks(currentUser.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// ToggleTaskComplete — PATCH /api/tasks/:id/complete. Без тела — инверсия,
// с телом {"completed": bool} — желаемое состояние.
func ToggleTaskComplete(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	task, found := ownedTask(c, currentUser.ID)
	if !found {
		return
	}

	desired := !task.Completed
	var input struct {
		Completed *bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&input); err == nil && input.Completed != nil {
		desired = *input.Completed
	}

	task.Completed = desired
	if err := db.DB.Save(&task).Error; err != nil {
		utils.Logger.Error("toggle_task_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	cache.Default.InvalidateTasks(currentUser.ID)
	c.JSON(http.StatusOK, taskToView(task, time.Now()))
}

func ownedTask(c *gin.Context, userID uint) (models.Task, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
		return models.Task{}, false
	}

	var task models.Task
	if err := db.DB.Where("user_id = ?", userID).First(&task, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return models.Task{}, false
	}
	return task, true
}
