package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyConstructors(t *testing.T) {
	assert.Equal(t, "completions:1:2024-06-10", KeyTodayCompletions(1, "2024-06-10"))
	assert.Equal(t, "habit_stats:1:42", KeyHabitStats(1, 42))
	assert.Equal(t, "user_stats:1", KeyUserStats(1))
	assert.Equal(t, "task_stats:1", KeyTaskStats(1))
	assert.Equal(t, "overview:1", KeyOverview(1))
	assert.Equal(t, "rate_limit:10.0.0.1", KeyRateLimit("10.0.0.1"))
}

func TestKeyResponse(t *testing.T) {
	key := KeyResponse(7, "/api/habits", "active=true")
	assert.Equal(t, "resp:7:/api/habits?active=true", key)

	// Шаблон инвалидации покрывает ключи под префиксом пути
	assert.Equal(t, "resp:7:/api/habits*", respPattern(7, "/api/habits"))
}
