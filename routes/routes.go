package routes

import (
	"net/http"
	"time"

	"habitflow/config"
	"habitflow/handlers"
	"habitflow/middleware"
	"habitflow/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register вешает все маршруты приложения на router.
func Register(r *gin.Engine) {
	cfg := config.Cfg

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now(),
		})
	})

	// Публичные эндпоинты
	auth := r.Group("/api/auth")
	auth.Use(middleware.RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
	}

	// Защищённые эндпоинты
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/auth/me", handlers.Me)

		// Привычки
		api.GET("/habits", middleware.CacheMiddleware(cfg.ResponseCacheTTL), handlers.GetHabits)
		api.POST("/habits", handlers.CreateHabit)
		api.GET("/habits/:id", handlers.GetHabit)
		api.PUT("/habits/:id", handlers.UpdateHabit)
		api.DELETE("/habits/:id", handlers.DeleteHabit)
		api.POST("/habits/:id/complete", handlers.CompleteHabit)
		api.GET("/habits/:id/completions", handlers.GetHabitCompletions)
		api.GET("/habits/:id/stats", handlers.GetHabitStats)
		api.GET("/habits/:id/streak", handlers.GetHabitStreak)
		api.GET("/completions/today", handlers.GetTodayCompletions)

		// Задачи
		api.GET("/tasks", middleware.CacheMiddleware(cfg.ResponseCacheTTL), handlers.GetTasks)
		api.POST("/tasks", handlers.CreateTask)
		api.GET("/tasks/:id", handlers.GetTask)
		api.PUT("/tasks/:id", handlers.UpdateTask)
		api.DELETE("/tasks/:id", handlers.DeleteTask)
		api.PATCH("/tasks/:id/complete", handlers.ToggleTaskComplete)

		// Категории
		api.GET("/categories", middleware.CacheMiddleware(cfg.ResponseCacheTTL), handlers.GetCategories)
		api.POST("/categories", handlers.CreateCategory)
		api.GET("/categories/:id", handlers.GetCategory)
		api.PUT("/categories/:id", handlers.UpdateCategory)
		api.DELETE("/categories/:id", handlers.DeleteCategory)

		// Ежедневный чек-лист
		api.GET("/daily-tasks", middleware.CacheMiddleware(cfg.ResponseCacheTTL), handlers.GetDailyTasks)
		api.POST("/daily-tasks", handlers.CreateDailyTask)
		api.GET("/daily-tasks/:id", handlers.GetDailyTask)
		api.PUT("/daily-tasks/:id", handlers.UpdateDailyTask)
		api.DELETE("/daily-tasks/:id", handlers.DeleteDailyTask)
		api.POST("/daily-tasks/:id/mark", handlers.MarkDailyTask)

		// Дашборды
		api.GET("/statistics/overview", handlers.GetOverview)
		api.GET("/statistics/habits", handlers.GetHabitStatistics)
		api.GET("/statistics/tasks", handlers.GetTaskStatistics)

		// Админ: сводка по пользователям
		api.GET("/statistics/users", middleware.RoleMiddleware(models.RoleAdmin), handlers.GetUserStatistics)
	}

	// Метрики Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
