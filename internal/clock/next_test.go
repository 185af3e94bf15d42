package clock

import (
	"testing"
	"time"

	"github.com/djlord-it/easy-remind/internal/domain"
)

func TestNextOccurrence_LaterToday(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	got := NextOccurrence(now, domain.TimeOfDay{Hour: 21, Minute: 0})
	want := time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", got, want)
	}
}

func TestNextOccurrence_AlreadyPassed_RollsToTomorrow(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	got := NextOccurrence(now, domain.TimeOfDay{Hour: 8, Minute: 0})
	want := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", got, want)
	}
}

func TestNextOccurrence_ExactBoundary_CountsAsPassed(t *testing.T) {
	// At exactly 08:00 the 08:00 occurrence is "already passed": the next
	// occurrence is tomorrow, keeping the result strictly after now.
	now := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	got := NextOccurrence(now, domain.TimeOfDay{Hour: 8, Minute: 0})
	want := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", got, want)
	}
}

func TestNextOccurrence_StrictlyAfterNowWithin24h(t *testing.T) {
	tods := []domain.TimeOfDay{
		{Hour: 0, Minute: 0},
		{Hour: 8, Minute: 0},
		{Hour: 12, Minute: 30},
		{Hour: 23, Minute: 59},
	}
	nows := []time.Time{
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 8, 0, 30, 0, time.UTC),
		time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), // leap day
		time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC),
	}

	for _, now := range nows {
		for _, tod := range tods {
			got := NextOccurrence(now, tod)
			if !got.After(now) {
				t.Errorf("NextOccurrence(%v, %v) = %v, not strictly after now", now, tod, got)
			}
			if got.Sub(now) > 24*time.Hour {
				t.Errorf("NextOccurrence(%v, %v) = %v, more than 24h ahead", now, tod, got)
			}
		}
	}
}

func TestNextOccurrence_MonthRollover(t *testing.T) {
	now := time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC)
	got := NextOccurrence(now, domain.TimeOfDay{Hour: 9, Minute: 0})
	want := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", got, want)
	}
}

func TestDailyStart_CombinesDateAndTime(t *testing.T) {
	now := time.Date(2024, 1, 15, 3, 12, 45, 0, time.UTC)
	got := DailyStart(now, domain.TimeOfDay{Hour: 8, Minute: 30})
	want := time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DailyStart = %v, want %v", got, want)
	}
}
