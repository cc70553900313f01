package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Виды привычек
const (
	HabitKindBinary       = "binary"
	HabitKindQuantitative = "quantitative"
)

// Типы расписания привычки
const (
	ScheduleDaily    = "daily"    // каждый день
	ScheduleWeekly   = "weekly"   // N раз в неделю (Frequency)
	ScheduleWeekdays = "weekdays" // конкретные дни недели (WeekdayMask)
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique" json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `gorm:"default:user" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	Habits       []Habit   `gorm:"foreignKey:UserID" json:"-"`
	Tasks        []Task    `gorm:"foreignKey:UserID" json:"-"`
}

type Habit struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	UserID      uint     `gorm:"index" json:"user_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Kind        string   `gorm:"default:binary" json:"kind"`
	TargetValue *float64 `json:"target_value"`
	TargetUnit  string   `json:"target_unit"`

	// Расписание: daily / weekly (Frequency раз в неделю) / weekdays
	// (битовая маска: бит 0 = воскресенье ... бит 6 = суббота)
	ScheduleType string `gorm:"default:daily" json:"schedule_type"`
	Frequency    int    `gorm:"default:0" json:"frequency"`
	WeekdayMask  int    `gorm:"default:0" json:"weekday_mask"`

	ReminderTime string     `json:"reminder_time"` // "HH:MM", пусто = без напоминания
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	Categories   []Category `gorm:"many2many:habit_categories" json:"categories"`

	Completions []HabitCompletion `gorm:"foreignKey:HabitID" json:"-"`
}

// HabitCompletion — отметка выполнения привычки за конкретную дату.
// Уникальный индекс (habit_id, date) гарантирует не больше одной записи в день.
type HabitCompletion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	HabitID   uint      `gorm:"index;index:idx_habit_date,unique" json:"habit_id"`
	Date      string    `gorm:"index:idx_habit_date,unique" json:"date"` // "YYYY-MM-DD"
	Completed bool      `gorm:"default:false" json:"completed"`
	Value     *float64  `json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Task struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index" json:"user_id"`
	Title     string     `json:"title"`
	Deadline  *time.Time `json:"deadline"`
	Priority  string     `gorm:"default:medium" json:"priority"`
	Completed bool       `gorm:"default:false" json:"completed"`

	// Метаданные дней рождения
	IsBirthday bool   `gorm:"default:false" json:"is_birthday"`
	PersonName string `json:"person_name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;index:idx_user_category,unique" json:"user_id"`
	Name      string    `gorm:"index:idx_user_category,unique" json:"name"`
	Color     string    `gorm:"default:#6366f1" json:"color"`
	Icon      Icon      `gorm:"default:circle" json:"icon"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// DailyTask — повторяющийся пункт ежедневного чек-листа.
type DailyTask struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Title     string    `json:"title"`
	Archived  bool      `gorm:"default:false" json:"archived"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Completions []DailyTaskCompletion `gorm:"foreignKey:DailyTaskID" json:"-"`
}

type DailyTaskCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DailyTaskID uint      `gorm:"index;index:idx_daily_date,unique" json:"daily_task_id"`
	Date        string    `gorm:"index:idx_daily_date,unique" json:"date"` // "YYYY-MM-DD"
	Completed   bool      `gorm:"default:false" json:"completed"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Achievement создаётся только после подтверждённого сервером выполнения,
// см. services.CompletionService.
type Achievement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	HabitID     uint      `json:"habit_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EarnedAt    time.Time `gorm:"autoCreateTime" json:"earned_at"`
}
