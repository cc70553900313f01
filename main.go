package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitflow/cache"
	"habitflow/config"
	"habitflow/db"
	"habitflow/handlers"
	"habitflow/middleware"
	"habitflow/models"
	"habitflow/routes"
	"habitflow/services"
	"habitflow/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Конфиг, логирование, метрики
	config.Load()
	utils.InitLogger()
	defer utils.Logger.Sync()
	utils.InitMetrics()

	utils.Logger.Info("starting_application")

	// Подключение к БД
	db.Connect()
	if err := db.DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Habit{},
		&models.HabitCompletion{},
		&models.Task{},
		&models.DailyTask{},
		&models.DailyTaskCompletion{},
		&models.Achievement{},
	); err != nil {
		utils.Logger.Fatal("migration_failed", zap.Error(err))
	}

	// Redis-кэш
	if err := cache.InitRedis(utils.Logger); err != nil {
		utils.Logger.Fatal("redis_init_failed", zap.Error(err))
	}
	defer cache.Default.Close()

	// Сервис отметок выполнения
	handlers.Completions = services.NewCompletionService(
		cache.Default,
		services.GormToggleStore{},
		utils.Logger,
		config.Cfg.ResponseCacheTTL,
	)

	// Настройка Gin
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Middleware в правильном порядке
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeaders())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.Cfg.FrontendOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Register(r)

	startServer(r)
}

func startServer(router *gin.Engine) {
	port := config.Cfg.ServerPort

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	utils.Logger.Info("starting_http_server", zap.String("port", port))

	fmt.Println("\n🚀 ================================")
	fmt.Println("   HabitFlow Backend Started")
	fmt.Println("   ================================")
	fmt.Printf("   🌐 Server:  http://localhost:%s\n", port)
	fmt.Printf("   📊 Metrics: http://localhost:%s/metrics\n", port)
	fmt.Printf("   ❤️  Health: http://localhost:%s/health\n", port)
	fmt.Println("   ================================")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal("http_server_failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Logger.Info("shutting_down_server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Fatal("server_forced_shutdown", zap.Error(err))
	}

	utils.Logger.Info("server_stopped")
}
