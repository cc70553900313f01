package cache

import "go.uber.org/zap"

// Граф инвалидации. Каждая мутация сбрасывает фиксированный набор регионов:
//
//	мутация привычки      -> статистика привычки, сводка
//	отметка выполнения    -> выполнения за дату, статистика привычки, сводка
//	мутация задачи        -> статистика задач, сводка
//	мутация чек-листа     -> сводка
//	мутация категории     -> сводка
//
// Плюс закэшированные GET-ответы (resp:*) затронутых путей; список привычек
// живёт именно там.

func (s *Store) InvalidateHabits(userID uint, habitID uint) {
	s.drop(userID, "habit_mutation",
		KeyHabitStats(userID, habitID),
		KeyUserStats(userID),
		KeyOverview(userID),
	)
	s.dropResponses(userID, "/api/habits", "/api/statistics")
}

func (s *Store) InvalidateCompletions(userID, habitID uint, date string) {
	s.drop(userID, "completion_toggle",
		KeyTodayCompletions(userID, date),
		KeyHabitStats(userID, habitID),
		KeyUserStats(userID),
		KeyOverview(userID),
	)
	s.dropResponses(userID, "/api/habits", "/api/statistics")
}

func (s *Store) InvalidateTasks(userID uint) {
	s.drop(userID, "task_mutation",
		KeyTaskStats(userID),
		KeyOverview(userID),
	)
	s.dropResponses(userID, "/api/tasks", "/api/statistics")
}

func (s *Store) InvalidateDailyTasks(userID uint) {
	s.drop(userID, "daily_task_mutation",
		KeyOverview(userID),
	)
	s.dropResponses(userID, "/api/daily-tasks", "/api/statistics")
}

func (s *Store) InvalidateCategories(userID uint) {
	s.drop(userID, "category_mutation",
		KeyOverview(userID),
	)
	s.dropResponses(userID, "/api/categories", "/api/habits")
}

func (s *Store) drop(userID uint, event string, keys ...string) {
	if err := s.Delete(keys...); err != nil {
		s.logger.Warn("cache_invalidate_failed",
			zap.String("event", event),
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("cache_invalidated",
		zap.String("event", event),
		zap.Uint("user_id", userID),
		zap.Int("keys", len(keys)),
	)
}

func (s *Store) dropResponses(userID uint, pathPrefixes ...string) {
	for _, prefix := range pathPrefixes {
		if err := s.DeletePattern(respPattern(userID, prefix)); err != nil {
			s.logger.Warn("response_cache_invalidate_failed",
				zap.String("prefix", prefix),
				zap.Uint("user_id", userID),
				zap.Error(err),
			)
		}
	}
}
