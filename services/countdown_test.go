package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestCalculateTimeRemaining_Overdue(t *testing.T) {
	now := mustTime(t, "2024-01-01T10:00:00Z")
	deadline := mustTime(t, "2024-01-01T09:00:00Z")

	tr := CalculateTimeRemaining(now, deadline)

	assert.True(t, tr.IsOverdue)
	assert.Equal(t, 0, tr.Days)
	assert.Equal(t, 0, tr.Hours)
	assert.Equal(t, 0, tr.Minutes)
	assert.Equal(t, 0, tr.Seconds)
	assert.Equal(t, 0, tr.TotalMinutes)
	assert.Equal(t, "Overdue", FormatTimeRemaining(tr))
}

func TestCalculateTimeRemaining_ThirtyMinutes(t *testing.T) {
	now := mustTime(t, "2024-01-01T10:00:00Z")
	deadline := mustTime(t, "2024-01-01T10:30:00Z")

	tr := CalculateTimeRemaining(now, deadline)

	assert.False(t, tr.IsOverdue)
	assert.Equal(t, 30, tr.TotalMinutes)
	assert.Equal(t, "30m 0s", FormatTimeRemaining(tr))
}

func TestCalculateTimeRemaining_OneDayCollapsesToHours(t *testing.T) {
	now := mustTime(t, "2024-01-01T10:00:00Z")
	deadline := mustTime(t, "2024-01-02T12:00:00Z")

	tr := CalculateTimeRemaining(now, deadline)

	assert.Equal(t, 1, tr.Days)
	assert.Equal(t, 2, tr.Hours)
	// Ровно один день не показывается как "1d"
	assert.Equal(t, "2h 0m", FormatTimeRemaining(tr))
}

func TestCalculateTimeRemaining_MultiDay(t *testing.T) {
	now := mustTime(t, "2024-01-01T10:00:00Z")
	deadline := mustTime(t, "2024-01-04T15:30:00Z")

	tr := CalculateTimeRemaining(now, deadline)

	assert.Equal(t, 3, tr.Days)
	assert.Equal(t, 5, tr.Hours)
	assert.Equal(t, 30, tr.Minutes)
	assert.Equal(t, "3d 5h", FormatTimeRemaining(tr))
}

func TestCalculateTimeRemaining_Decomposition(t *testing.T) {
	now := mustTime(t, "2024-01-01T00:00:00Z")

	// Для дедлайна ровно через N минут totalMinutes == N и
	// days*1440 + hours*60 + minutes == N.
	for _, n := range []int{1, 59, 60, 61, 1439, 1440, 1441, 4320, 10000} {
		deadline := now.Add(time.Duration(n) * time.Minute)
		tr := CalculateTimeRemaining(now, deadline)

		assert.Equal(t, n, tr.TotalMinutes, "N=%d", n)
		assert.Equal(t, n, tr.Days*1440+tr.Hours*60+tr.Minutes, "N=%d", n)
		assert.Equal(t, 0, tr.Seconds, "N=%d", n)
	}
}

func TestCalculateTimeRemaining_Seconds(t *testing.T) {
	now := mustTime(t, "2024-01-01T10:00:00Z")
	deadline := mustTime(t, "2024-01-01T10:00:45Z")

	tr := CalculateTimeRemaining(now, deadline)

	assert.Equal(t, 0, tr.TotalMinutes)
	assert.Equal(t, 45, tr.Seconds)
	assert.Equal(t, "45s", FormatTimeRemaining(tr))
}

func TestFormatTimeRemaining_NeverEmpty(t *testing.T) {
	now := mustTime(t, "2024-01-01T00:00:00Z")

	for _, offset := range []time.Duration{
		0, time.Second, 30 * time.Second, time.Minute, 90 * time.Second,
		time.Hour, 25 * time.Hour, 48 * time.Hour, 200 * time.Hour,
	} {
		tr := CalculateTimeRemaining(now, now.Add(offset))
		assert.NotEmpty(t, FormatTimeRemaining(tr), "offset=%s", offset)
	}
}

func TestUrgencyFor_Boundaries(t *testing.T) {
	now := mustTime(t, "2024-01-01T00:00:00Z")

	tests := []struct {
		minutes int
		want    Urgency
	}{
		{1, UrgencyCritical},
		{59, UrgencyCritical},
		{60, UrgencyCritical}, // ровно час — ещё critical
		{61, UrgencyHigh},
		{1439, UrgencyHigh},
		{1440, UrgencyHigh}, // ровно сутки — ещё high
		{1441, UrgencyMedium},
		{4320, UrgencyMedium}, // ровно трое суток — ещё medium
		{4321, UrgencyLow},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dm", tt.minutes), func(t *testing.T) {
			tr := CalculateTimeRemaining(now, now.Add(time.Duration(tt.minutes)*time.Minute))
			assert.Equal(t, tt.want, UrgencyFor(tr))
		})
	}
}

func TestUrgencyFor_Overdue(t *testing.T) {
	now := mustTime(t, "2024-01-01T10:00:00Z")
	tr := CalculateTimeRemaining(now, now.Add(-time.Minute))

	assert.Equal(t, UrgencyOverdue, UrgencyFor(tr))
	assert.NotEmpty(t, UrgencyOverdue.Color())
}

func TestDeadlineInfoAt(t *testing.T) {
	now := mustTime(t, "2024-01-01T10:00:00Z")
	info := DeadlineInfoAt(now, now.Add(30*time.Minute))

	assert.Equal(t, UrgencyCritical, info.Urgency)
	assert.Equal(t, "30m 0s", info.Formatted)
	assert.Equal(t, UrgencyCritical.Color(), info.Color)
}
