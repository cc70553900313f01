package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"habitflow/cache"
	"habitflow/models"
	"habitflow/utils"

	"go.uber.org/zap"
)

// CompletionStatus — элемент списка "статус выполнения за день", который
// раздаётся клиентам и спекулятивно правится в кэше до подтверждения БД.
type CompletionStatus struct {
	HabitID   uint     `json:"habit_id"`
	Completed bool     `json:"completed"`
	Date      string   `json:"date"`
	Value     *float64 `json:"value,omitempty"`
}

// ToggleCache — срез кэш-сервиса, нужный переключателю.
type ToggleCache interface {
	GetBytes(key string) ([]byte, bool, error)
	SetBytes(key string, val []byte, ttl time.Duration) error
	Delete(keys ...string) error
	InvalidateCompletions(userID, habitID uint, date string)
}

// ToggleStore — персистентная часть: upsert отметки, чтение истории для
// проверки серии, запись достижения.
type ToggleStore interface {
	UpsertCompletion(c *models.HabitCompletion) error
	CompletionsByHabit(habitID uint) ([]models.HabitCompletion, error)
	SaveAchievement(a *models.Achievement) error
}

// CompletionService переключает отметку выполнения привычки за "сегодня".
//
// Последовательность на один вызов:
//  1. берётся per-habit мьютекс — конкурентные переключения одной привычки
//     сериализуются, разных привычек идут параллельно;
//  2. снимается точный снимок кэшированного списка статусов за дату;
//  3. список спекулятивно патчится (запись перезаписывается или добавляется);
//  4. отметка upsert-ится в БД;
//  5. при ошибке кэш восстанавливается до снимка целиком (отсутствовавший
//     ключ удаляется), частичных слияний нет;
//  6. при успехе зависимые регионы кэша инвалидируются и только после этого
//     проверяется достижение серии. Раньше "празднование" стреляло на
//     спекулятивной записи и оставалось на экране после отката.
type CompletionService struct {
	cache    ToggleCache
	store    ToggleStore
	logger   *zap.Logger
	cacheTTL time.Duration

	locks sync.Map // habitID -> *sync.Mutex
}

// Вехи серии, за которые выдаётся достижение.
var streakMilestones = map[int]string{
	7:   "Неделя без пропусков",
	30:  "Месяц без пропусков",
	100: "100 дней подряд",
}

func NewCompletionService(c ToggleCache, s ToggleStore, logger *zap.Logger, cacheTTL time.Duration) *CompletionService {
	return &CompletionService{
		cache:    c,
		store:    s,
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

// ToggleResult — исход подтверждённого переключения.
type ToggleResult struct {
	Completion  models.HabitCompletion `json:"completion"`
	Streak      int                    `json:"streak"`
	Achievement *models.Achievement    `json:"achievement,omitempty"`
}

// Toggle выставляет отметку привычки за сегодняшнюю (клиентскую) дату в
// желаемое состояние. Возвращает подтверждённую отметку; при ошибке БД кэш
// гарантированно равен снимку до вызова.
func (s *CompletionService) Toggle(userID, habitID uint, completed bool, value *float64) (*ToggleResult, error) {
	date := utils.Today()

	mu := s.habitLock(habitID)
	mu.Lock()
	defer mu.Unlock()

	key := cache.KeyTodayCompletions(userID, date)
	snapshot, existed, err := s.cache.GetBytes(key)
	if err != nil {
		// Кэш недоступен — работаем без спекулятивного шага.
		s.logger.Warn("toggle_cache_read_failed", zap.Error(err))
		return s.persist(userID, habitID, date, completed, value)
	}

	patched, patchErr := patchStatusList(snapshot, existed, CompletionStatus{
		HabitID:   habitID,
		Completed: completed,
		Date:      date,
		Value:     value,
	})
	if patchErr == nil {
		if err := s.cache.SetBytes(key, patched, s.cacheTTL); err != nil {
			s.logger.Warn("toggle_speculative_write_failed", zap.Error(err))
		}
	}

	result, err := s.persist(userID, habitID, date, completed, value)
	if err != nil {
		s.rollback(key, snapshot, existed)
		utils.CompletionToggles.WithLabelValues("rolled_back").Inc()
		s.logger.Warn("toggle_rolled_back",
			zap.Uint("habit_id", habitID),
			zap.String("date", date),
			zap.Error(err),
		)
		return nil, err
	}

	utils.CompletionToggles.WithLabelValues("confirmed").Inc()
	return result, nil
}

func (s *CompletionService) persist(userID, habitID uint, date string, completed bool, value *float64) (*ToggleResult, error) {
	comp := models.HabitCompletion{
		HabitID:   habitID,
		Date:      date,
		Completed: completed,
		Value:     value,
	}
	if err := s.store.UpsertCompletion(&comp); err != nil {
		return nil, fmt.Errorf("save completion: %w", err)
	}

	// Подтверждено: спекулятивное значение будет вытеснено свежим чтением.
	s.cache.InvalidateCompletions(userID, habitID, date)

	result := &ToggleResult{Completion: comp}
	if completed {
		result.Streak, result.Achievement = s.checkMilestone(userID, habitID, date)
	}
	return result, nil
}

// checkMilestone выдаёт достижение, если подтверждённая отметка довела серию
// до вехи. Вызывается строго после успешного сохранения.
func (s *CompletionService) checkMilestone(userID, habitID uint, date string) (int, *models.Achievement) {
	completions, err := s.store.CompletionsByHabit(habitID)
	if err != nil {
		s.logger.Warn("milestone_check_failed", zap.Error(err))
		return 0, nil
	}

	stats := HabitStatsFromCompletions(habitID, completions, date)
	title, ok := streakMilestones[stats.CurrentStreak]
	if !ok {
		return stats.CurrentStreak, nil
	}

	ach := models.Achievement{
		UserID:      userID,
		HabitID:     habitID,
		Title:       title,
		Description: fmt.Sprintf("Серия из %d дней", stats.CurrentStreak),
	}
	if err := s.store.SaveAchievement(&ach); err != nil {
		s.logger.Warn("achievement_save_failed", zap.Error(err))
		return stats.CurrentStreak, nil
	}

	s.logger.Info("streak_milestone",
		zap.Uint("habit_id", habitID),
		zap.Int("streak", stats.CurrentStreak),
	)
	return stats.CurrentStreak, &ach
}

func (s *CompletionService) rollback(key string, snapshot []byte, existed bool) {
	var err error
	if existed {
		err = s.cache.SetBytes(key, snapshot, s.cacheTTL)
	} else {
		err = s.cache.Delete(key)
	}
	if err != nil {
		s.logger.Error("toggle_rollback_failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *CompletionService) habitLock(habitID uint) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(habitID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// patchStatusList правит список статусов на месте: существующая запись
// привычки перезаписывается, отсутствующая добавляется в конец.
func patchStatusList(raw []byte, existed bool, entry CompletionStatus) ([]byte, error) {
	var list []CompletionStatus
	if existed {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode status list: %w", err)
		}
	}

	found := false
	for i := range list {
		if list[i].HabitID == entry.HabitID {
			list[i] = entry
			found = true
			break
		}
	}
	if !found {
		list = append(list, entry)
	}

	return json.Marshal(list)
}
