package cache

import "fmt"

// Конструкторы ключей. Никаких fmt.Sprintf с ключами за пределами пакета.

// KeyTodayCompletions — статус выполнения всех привычек пользователя за дату.
func KeyTodayCompletions(userID uint, date string) string {
	return fmt.Sprintf("completions:%d:%s", userID, date)
}

func KeyHabitStats(userID, habitID uint) string {
	return fmt.Sprintf("habit_stats:%d:%d", userID, habitID)
}

func KeyUserStats(userID uint) string {
	return fmt.Sprintf("user_stats:%d", userID)
}

func KeyTaskStats(userID uint) string {
	return fmt.Sprintf("task_stats:%d", userID)
}

func KeyOverview(userID uint) string {
	return fmt.Sprintf("overview:%d", userID)
}

// KeyResponse — ключ кэша GET-ответов (middleware.CacheMiddleware).
func KeyResponse(userID uint, path, rawQuery string) string {
	return fmt.Sprintf("resp:%d:%s?%s", userID, path, rawQuery)
}

// respPattern покрывает все закэшированные ответы пользователя под префиксом пути.
func respPattern(userID uint, pathPrefix string) string {
	return fmt.Sprintf("resp:%d:%s*", userID, pathPrefix)
}

func KeyRateLimit(clientIP string) string {
	return fmt.Sprintf("rate_limit:%s", clientIP)
}
