package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2025, time.March, 10, hour, min, 0, 0, time.Local)
}

func TestEvaluateGracePeriod(t *testing.T) {
	scheduled := at(8, 0)

	tests := []struct {
		name string
		now  time.Time
		want Decision
	}{
		{"before slot", at(7, 59), DecisionScheduled},
		{"exactly on slot", at(8, 0), DecisionImmediate},
		{"inside grace", at(8, 15), DecisionImmediate},
		{"grace boundary inclusive", at(8, 30), DecisionImmediate},
		{"one past grace", at(8, 31), DecisionMissed},
		{"hours late", at(13, 0), DecisionMissed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateGracePeriod(scheduled, tt.now, DefaultGracePeriod))
		})
	}
}

func TestCalculateFollowupTimeSameDay(t *testing.T) {
	got := CalculateFollowupTime(at(8, 0), 2*time.Hour, 23, 8)
	assert.Equal(t, at(10, 0), got)
}

func TestCalculateFollowupTimeClampsToNextMorning(t *testing.T) {
	got := CalculateFollowupTime(at(21, 59), 2*time.Hour, 23, 8)
	want := time.Date(2025, time.March, 11, 8, 0, 0, 0, time.Local)
	assert.Equal(t, want, got)
}

func TestCalculateFollowupTimeClampsAfterMidnightWrap(t *testing.T) {
	got := CalculateFollowupTime(at(23, 30), 2*time.Hour, 23, 8)
	want := time.Date(2025, time.March, 11, 8, 0, 0, 0, time.Local)
	assert.Equal(t, want, got, "a candidate in the small hours must not fire before morning")
}

func TestCalculateFollowupTimeRollsOverYear(t *testing.T) {
	initial := time.Date(2025, time.December, 31, 22, 0, 0, 0, time.Local)
	got := CalculateFollowupTime(initial, 2*time.Hour, 23, 8)
	want := time.Date(2026, time.January, 1, 8, 0, 0, 0, time.Local)
	assert.Equal(t, want, got)
}

func TestCalculateFollowupTimeRollsOverMonth(t *testing.T) {
	initial := time.Date(2025, time.April, 30, 21, 30, 0, 0, time.Local)
	got := CalculateFollowupTime(initial, 2*time.Hour, 23, 8)
	want := time.Date(2025, time.May, 1, 8, 0, 0, 0, time.Local)
	assert.Equal(t, want, got)
}

func TestSlotOnDay(t *testing.T) {
	day := time.Date(2025, time.March, 10, 14, 22, 51, 0, time.Local)

	got, err := SlotOnDay("08:30", day)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 10, 8, 30, 0, 0, time.Local), got)

	_, err = SlotOnDay("25:00", day)
	assert.Error(t, err)
	_, err = SlotOnDay("", day)
	assert.Error(t, err)
}
