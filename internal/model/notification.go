package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	KindPrimary        NotificationKind = "primary"
	KindFollowup       NotificationKind = "followup"
	KindSnooze         NotificationKind = "snooze"
	KindInventoryAlert NotificationKind = "inventory_alert"
	KindWeeklySummary  NotificationKind = "weekly_summary"
)

// Managed reports whether entries of this kind are derived from the
// treatment-schedule snapshot and therefore owned by the reconciliation
// diff. Ad-hoc kinds are only ever cancelled explicitly or at rollover.
func (k NotificationKind) Managed() bool {
	return k == KindPrimary || k == KindFollowup
}

// NotificationContent is the opaque payload handed to the delivery
// capability. It must never carry regimen names or dosages; the subject's
// display name, a generic category and the fire timestamp are the only
// fields the renderer gets.
type NotificationContent struct {
	SubjectName string    `json:"subject_name"`
	Category    string    `json:"category"`
	Timestamp   time.Time `json:"timestamp"`
}

// ScheduledNotification is one unit of reminder work for the current day.
type ScheduledNotification struct {
	Identity    int64               `json:"identity"`
	Kind        NotificationKind    `json:"kind"`
	OwnerID     uuid.UUID           `json:"owner_id"`
	SubjectID   uuid.UUID           `json:"subject_id"`
	ScheduleRef *uuid.UUID          `json:"schedule_ref,omitempty"`
	SlotTime    string              `json:"slot_time,omitempty"`
	FireAt      time.Time           `json:"fire_at"`
	Content     NotificationContent `json:"content"`
	GroupKey    string              `json:"group_key"`
}

// GroupKeyFor is the collapsing key used for platform notification grouping.
func GroupKeyFor(subjectID uuid.UUID) string {
	return "reminders." + subjectID.String()
}
