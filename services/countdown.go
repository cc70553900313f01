package services

import (
	"fmt"
	"time"
)

// TimeRemaining — целочисленное разложение оставшегося до дедлайна времени.
// Для просроченных дедлайнов все числовые поля равны нулю.
type TimeRemaining struct {
	Days         int  `json:"days"`
	Hours        int  `json:"hours"`
	Minutes      int  `json:"minutes"`
	Seconds      int  `json:"seconds"`
	TotalMinutes int  `json:"total_minutes"`
	IsOverdue    bool `json:"is_overdue"`
}

type Urgency string

const (
	UrgencyOverdue  Urgency = "overdue"
	UrgencyCritical Urgency = "critical" // меньше часа
	UrgencyHigh     Urgency = "high"     // меньше суток
	UrgencyMedium   Urgency = "medium"   // меньше трёх суток
	UrgencyLow      Urgency = "low"
)

// CalculateTimeRemaining детерминирована по паре (now, deadline): никакого
// чтения часов внутри, вызывающий передаёт "сейчас" сам.
func CalculateTimeRemaining(now, deadline time.Time) TimeRemaining {
	if deadline.Before(now) {
		return TimeRemaining{IsOverdue: true}
	}

	totalSeconds := int(deadline.Sub(now) / time.Second)
	totalMinutes := totalSeconds / 60

	return TimeRemaining{
		Days:         totalMinutes / 1440,
		Hours:        (totalMinutes % 1440) / 60,
		Minutes:      totalMinutes % 60,
		Seconds:      totalSeconds % 60,
		TotalMinutes: totalMinutes,
	}
}

// FormatTimeRemaining сводит разложение к короткой строке для бейджа.
// Ровно один день показывается как часы и минуты, не как "1d".
func FormatTimeRemaining(tr TimeRemaining) string {
	switch {
	case tr.IsOverdue:
		return "Overdue"
	case tr.Days == 1:
		return fmt.Sprintf("%dh %dm", tr.Hours, tr.Minutes)
	case tr.Days > 1:
		return fmt.Sprintf("%dd %dh", tr.Days, tr.Hours)
	case tr.Hours >= 1:
		return fmt.Sprintf("%dh %dm", tr.Hours, tr.Minutes)
	case tr.Minutes >= 1:
		return fmt.Sprintf("%dm %ds", tr.Minutes, tr.Seconds)
	default:
		return fmt.Sprintf("%ds", tr.Seconds)
	}
}

// UrgencyFor — ступенчатая функция от TotalMinutes. Пороги включают нижнюю
// границу: ровно 60 минут — ещё critical, ровно 1440 — ещё high.
func UrgencyFor(tr TimeRemaining) Urgency {
	switch {
	case tr.IsOverdue:
		return UrgencyOverdue
	case tr.TotalMinutes <= 60:
		return UrgencyCritical
	case tr.TotalMinutes <= 1440:
		return UrgencyHigh
	case tr.TotalMinutes <= 4320:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// Color — цвет бейджа срочности на дашбордах.
func (u Urgency) Color() string {
	switch u {
	case UrgencyOverdue:
		return "#991b1b"
	case UrgencyCritical:
		return "#ef4444"
	case UrgencyHigh:
		return "#f97316"
	case UrgencyMedium:
		return "#eab308"
	default:
		return "#22c55e"
	}
}

// DeadlineInfo — готовый блок для включения в ответы по задачам.
type DeadlineInfo struct {
	TimeRemaining
	Formatted string  `json:"formatted"`
	Urgency   Urgency `json:"urgency"`
	Color     string  `json:"color"`
}

func DeadlineInfoAt(now, deadline time.Time) DeadlineInfo {
	tr := CalculateTimeRemaining(now, deadline)
	u := UrgencyFor(tr)
	return DeadlineInfo{
		TimeRemaining: tr,
		Formatted:     FormatTimeRemaining(tr),
		Urgency:       u,
		Color:         u.Color(),
	}
}
