package mealplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2026-08-24", "2026-08-24"}, // Monday maps to itself
		{"2026-08-25", "2026-08-24"},
		{"2026-08-28", "2026-08-24"},
		{"2026-08-30", "2026-08-24"}, // Sunday belongs to the preceding Monday
		{"2026-08-31", "2026-08-31"},
	}
	for _, tt := range tests {
		day, err := time.Parse("2006-01-02", tt.day)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, WeekStart(day).Format("2006-01-02"), "WeekStart(%s)", tt.day)
	}
}

func TestWeekStartTruncatesTime(t *testing.T) {
	at := time.Date(2026, 8, 28, 17, 45, 3, 0, time.UTC)
	got := WeekStart(at)
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, 0, got.Minute())
	assert.Equal(t, "2026-08-24", got.Format("2006-01-02"))
}
