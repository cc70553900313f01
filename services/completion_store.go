package services

import (
	"habitflow/db"
	"habitflow/models"

	"gorm.io/gorm/clause"
)

// GormToggleStore — продовая реализация ToggleStore поверх db.DB.
type GormToggleStore struct{}

// UpsertCompletion опирается на уникальный индекс (habit_id, date):
// повторное переключение за ту же дату обновляет существующую запись.
func (GormToggleStore) UpsertCompletion(c *models.HabitCompletion) error {
	return db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "value"}),
	}).Create(c).Error
}

func (GormToggleStore) CompletionsByHabit(habitID uint) ([]models.HabitCompletion, error) {
	var completions []models.HabitCompletion
	err := db.DB.Where("habit_id = ?", habitID).
		Order("date DESC").
		Find(&completions).Error
	return completions, err
}

func (GormToggleStore) SaveAchievement(a *models.Achievement) error {
	return db.DB.Create(a).Error
}
