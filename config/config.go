package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// Сервер
	ServerPort  string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// PostgreSQL
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"habitflow_db"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// JWT
	JWTSecret      string `env:"JWT_SECRET" envDefault:"supersecretkey"`
	JWTExpireHours int    `env:"JWT_EXPIRE_HOURS" envDefault:"24"`

	// Кэширование ответов
	ResponseCacheTTL time.Duration `env:"RESPONSE_CACHE_TTL" envDefault:"2m"`
	StatsCacheTTL    time.Duration `env:"STATS_CACHE_TTL" envDefault:"5m"`

	// Rate limiting
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	// Логи
	LogFile string `env:"LOG_FILE" envDefault:"./logs/app.log"`

	// CORS
	FrontendOrigin string `env:"FRONTEND_ORIGIN" envDefault:"http://localhost:3000"`
}

// Load читает .env (если есть) и парсит переменные окружения в Cfg.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}
}
