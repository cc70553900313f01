package services

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"habitflow/cache"
	"habitflow/models"
	"habitflow/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeToggleCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	invalidated int
}

func newFakeCache() *fakeToggleCache {
	return &fakeToggleCache{data: map[string][]byte{}}
}

func (f *fakeToggleCache) GetBytes(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, true, nil
}

func (f *fakeToggleCache) SetBytes(key string, val []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(val))
	copy(cp, val)
	f.data[key] = cp
	return nil
}

func (f *fakeToggleCache) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeToggleCache) InvalidateCompletions(userID, habitID uint, date string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

type fakeToggleStore struct {
	mu          sync.Mutex
	failUpsert  error
	saved       []models.HabitCompletion
	history     []models.HabitCompletion
	achievement []models.Achievement
}

func (f *fakeToggleStore) UpsertCompletion(c *models.HabitCompletion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsert != nil {
		return f.failUpsert
	}
	f.saved = append(f.saved, *c)
	return nil
}

func (f *fakeToggleStore) CompletionsByHabit(habitID uint) ([]models.HabitCompletion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history, nil
}

func (f *fakeToggleStore) SaveAchievement(a *models.Achievement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.achievement = append(f.achievement, *a)
	return nil
}

func newToggleService(c ToggleCache, s ToggleStore) *CompletionService {
	return NewCompletionService(c, s, zap.NewNop(), time.Minute)
}

func todayKey(userID uint) string {
	return cache.KeyTodayCompletions(userID, utils.Today())
}

func decodeList(t *testing.T, raw []byte) []CompletionStatus {
	t.Helper()
	var list []CompletionStatus
	require.NoError(t, json.Unmarshal(raw, &list))
	return list
}

func TestToggle_AppendsMissingEntry(t *testing.T) {
	fc := newFakeCache()
	fs := &fakeToggleStore{}
	svc := newToggleService(fc, fs)

	result, err := svc.Toggle(1, 42, true, nil)
	require.NoError(t, err)

	assert.True(t, result.Completion.Completed)
	assert.Equal(t, utils.Today(), result.Completion.Date)
	require.Len(t, fs.saved, 1)
	assert.Equal(t, uint(42), fs.saved[0].HabitID)
	assert.Equal(t, 1, fc.invalidated)
}

func TestToggle_OverwritesExistingEntry(t *testing.T) {
	fc := newFakeCache()
	fs := &fakeToggleStore{failUpsert: errors.New("db down")}
	svc := newToggleService(fc, fs)

	today := utils.Today()
	seed, _ := json.Marshal([]CompletionStatus{
		{HabitID: 42, Completed: false, Date: today},
		{HabitID: 7, Completed: true, Date: today},
	})
	require.NoError(t, fc.SetBytes(todayKey(1), seed, time.Minute))

	// Сохранение упадёт, но спекулятивный патч успеет перезаписать запись:
	// проверяем сам патч через patchStatusList.
	patched, err := patchStatusList(seed, true, CompletionStatus{
		HabitID: 42, Completed: true, Date: today,
	})
	require.NoError(t, err)

	list := decodeList(t, patched)
	require.Len(t, list, 2)
	assert.True(t, list[0].Completed)
	assert.Equal(t, uint(42), list[0].HabitID)

	_, err = svc.Toggle(1, 42, true, nil)
	require.Error(t, err)
}

func TestToggle_RollbackRestoresExactSnapshot(t *testing.T) {
	fc := newFakeCache()
	fs := &fakeToggleStore{failUpsert: errors.New("db down")}
	svc := newToggleService(fc, fs)

	today := utils.Today()
	seed, _ := json.Marshal([]CompletionStatus{
		{HabitID: 7, Completed: true, Date: today},
	})
	key := todayKey(1)
	require.NoError(t, fc.SetBytes(key, seed, time.Minute))

	_, err := svc.Toggle(1, 42, true, nil)
	require.Error(t, err)

	// Откат — полный возврат к снимку, а не частичный undo
	after, ok, err := fc.GetBytes(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, seed, after)
	assert.Equal(t, 0, fc.invalidated)
}

func TestToggle_RollbackDeletesAbsentKey(t *testing.T) {
	fc := newFakeCache()
	fs := &fakeToggleStore{failUpsert: errors.New("db down")}
	svc := newToggleService(fc, fs)

	_, err := svc.Toggle(1, 42, true, nil)
	require.Error(t, err)

	// Ключа не было до вызова — не должно быть и после отката
	_, ok, err := fc.GetBytes(todayKey(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToggle_MilestoneOnlyOnConfirmedSuccess(t *testing.T) {
	fc := newFakeCache()
	today := utils.Today()

	history := make([]models.HabitCompletion, 0, 7)
	day, _ := time.Parse("2006-01-02", today)
	for i := 0; i < 7; i++ {
		history = append(history, models.HabitCompletion{
			HabitID:   42,
			Date:      day.AddDate(0, 0, -i).Format("2006-01-02"),
			Completed: true,
		})
	}

	fs := &fakeToggleStore{history: history}
	svc := newToggleService(fc, fs)

	result, err := svc.Toggle(1, 42, true, nil)
	require.NoError(t, err)

	assert.Equal(t, 7, result.Streak)
	require.NotNil(t, result.Achievement)
	require.Len(t, fs.achievement, 1)

	// При ошибке сохранения достижение не выдаётся
	fsFail := &fakeToggleStore{history: history, failUpsert: errors.New("db down")}
	svcFail := newToggleService(newFakeCache(), fsFail)

	_, err = svcFail.Toggle(1, 42, true, nil)
	require.Error(t, err)
	assert.Empty(t, fsFail.achievement)
}

func TestToggle_UnmarkDoesNotCelebrate(t *testing.T) {
	fc := newFakeCache()
	fs := &fakeToggleStore{}
	svc := newToggleService(fc, fs)

	result, err := svc.Toggle(1, 42, false, nil)
	require.NoError(t, err)

	assert.Nil(t, result.Achievement)
	assert.Equal(t, 0, result.Streak)
}

func TestToggle_ConcurrentSameHabitSerialized(t *testing.T) {
	fc := newFakeCache()
	fs := &fakeToggleStore{}
	svc := newToggleService(fc, fs)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(completed bool) {
			defer wg.Done()
			_, err := svc.Toggle(1, 42, completed, nil)
			assert.NoError(t, err)
		}(i%2 == 0)
	}
	wg.Wait()

	// Все 20 переключений дошли до стора, список в кэше содержит одну запись
	assert.Len(t, fs.saved, 20)
	raw, ok, err := fc.GetBytes(todayKey(1))
	require.NoError(t, err)
	if ok {
		assert.Len(t, decodeList(t, raw), 1)
	}
}

func TestPatchStatusList_Appends(t *testing.T) {
	patched, err := patchStatusList(nil, false, CompletionStatus{
		HabitID: 1, Completed: true, Date: "2024-06-10",
	})
	require.NoError(t, err)

	list := decodeList(t, patched)
	require.Len(t, list, 1)
	assert.Equal(t, uint(1), list[0].HabitID)
	assert.True(t, list[0].Completed)
}
