// cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"habitflow/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// Default — процесс-wide store; инициализируется в InitRedis.
	Default *Store
	ctx     = context.Background()
)

// ErrMiss возвращается при отсутствии ключа.
var ErrMiss = fmt.Errorf("cache miss")

// Store — типизированный сервис кэша поверх Redis. Вся инвалидация идёт
// через конструкторы ключей в keys.go и граф в invalidate.go, а не через
// строковые литералы на местах вызова.
type Store struct {
	client *redis.Client
	logger *zap.Logger
}

func InitRedis(logger *zap.Logger) error {
	cfg := config.Cfg
	addr := fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("redis_connection_failed",
			zap.Error(err),
			zap.String("addr", addr),
		)
		return err
	}

	logger.Info("redis_connected", zap.String("addr", addr))
	Default = &Store{client: client, logger: logger}
	return nil
}

func (s *Store) Set(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return s.client.Set(ctx, key, data, expiration).Err()
}

// Get читает значение и десериализует в dest.
func (s *Store) Get(key string, dest interface{}) error {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrMiss
	} else if err != nil {
		return fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return nil
}

// GetBytes возвращает сырое значение ключа. ok=false при промахе — снимок
// для отката (services.CompletionService) должен различать "ключа не было".
func (s *Store) GetBytes(key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("cache get failed: %w", err)
	}
	return val, true, nil
}

func (s *Store) SetBytes(key string, val []byte, expiration time.Duration) error {
	return s.client.Set(ctx, key, val, expiration).Err()
}

func (s *Store) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// DeletePattern удаляет все ключи по шаблону (например, resp:1:*).
func (s *Store) DeletePattern(pattern string) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete keys failed: %w", err)
			}
		}

		if next == 0 {
			break
		}
		cursor = next
	}
	return nil
}

// IncrementCounter увеличивает счётчик и ставит TTL при первом инкременте.
func (s *Store) IncrementCounter(key string, expiration time.Duration) (int64, error) {
	val, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	if val == 1 {
		if err := s.client.Expire(ctx, key, expiration).Err(); err != nil {
			return val, err
		}
	}

	return val, nil
}

func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
