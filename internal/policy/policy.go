// Package policy holds the pure scheduling decisions: whether a slot is
// still worth firing, and when a follow-up may fire. No clocks, no I/O;
// callers pass "now" in.
package policy

import (
	"fmt"
	"time"
)

// Decision is the outcome of evaluating a slot time against "now".
type Decision string

const (
	// DecisionScheduled means the slot is in the future; register it.
	DecisionScheduled Decision = "scheduled"
	// DecisionImmediate means the slot just passed, within the grace
	// period; fire right now.
	DecisionImmediate Decision = "immediate"
	// DecisionMissed means the slot lapsed beyond the grace period; do not
	// fire the primary today.
	DecisionMissed Decision = "missed"
)

// DefaultGracePeriod is the tolerance for a user reopening the app shortly
// after a reminder's intended time.
const DefaultGracePeriod = 30 * time.Minute

// EvaluateGracePeriod decides how to treat a slot relative to now. The
// boundary is inclusive: a slot exactly grace old still fires immediately.
func EvaluateGracePeriod(scheduled, now time.Time, grace time.Duration) Decision {
	if scheduled.After(now) {
		return DecisionScheduled
	}
	if now.Sub(scheduled) <= grace {
		return DecisionImmediate
	}
	return DecisionMissed
}

// CalculateFollowupTime returns when the follow-up for a slot at initial
// may fire. A candidate landing at or after nightCutoffHour is deferred to
// morningHour on the next calendar day; one that already crossed midnight
// into the small hours is held to morningHour on its own day. Month and
// year boundaries roll over through the time package.
func CalculateFollowupTime(initial time.Time, offset time.Duration, nightCutoffHour, morningHour int) time.Time {
	candidate := initial.Add(offset)
	if candidate.Hour() >= nightCutoffHour {
		next := candidate.AddDate(0, 0, 1)
		return time.Date(next.Year(), next.Month(), next.Day(), morningHour, 0, 0, 0, candidate.Location())
	}
	crossedMidnight := candidate.Year() != initial.Year() || candidate.YearDay() != initial.YearDay()
	if crossedMidnight && candidate.Hour() < morningHour {
		return time.Date(candidate.Year(), candidate.Month(), candidate.Day(), morningHour, 0, 0, 0, candidate.Location())
	}
	return candidate
}

// SlotOnDay resolves a "15:04" slot string to an absolute time on the same
// calendar day as day, in day's location.
func SlotOnDay(slot string, day time.Time) (time.Time, error) {
	parsed, err := time.Parse("15:04", slot)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot time %q: %w", slot, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), nil
}
