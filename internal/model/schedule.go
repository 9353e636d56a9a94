package model

import (
	"github.com/google/uuid"
)

type ScheduleKind string

const (
	ScheduleFixedInterval ScheduleKind = "fixed_interval"
	ScheduleFluidTherapy  ScheduleKind = "fluid_therapy"
	ScheduleFlexible      ScheduleKind = "flexible"
)

// HasFixedSlots reports whether schedules of this kind fire at fixed
// times of day. Flexible schedules are surfaced in-app only and never
// produce push reminders.
func (k ScheduleKind) HasFixedSlots() bool {
	return k == ScheduleFixedInterval || k == ScheduleFluidTherapy
}

// Subject is the tracked entity a reminder is about. Name and Category are
// the only fields that may leak into notification content.
type Subject struct {
	ID       uuid.UUID `json:"id"`
	OwnerID  uuid.UUID `json:"owner_id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}

// TreatmentSchedule is one active regimen of a subject, as cached from the
// remote store. Slots are local times of day in "15:04" form.
type TreatmentSchedule struct {
	ID        uuid.UUID    `json:"id"`
	SubjectID uuid.UUID    `json:"subject_id"`
	Kind      ScheduleKind `json:"kind"`
	Slots     []string     `json:"slots"`
	Active    bool         `json:"active"`
}

// ScheduleSnapshot is the read-only view of one subject's schedules that a
// reconciliation pass works from. The engine never mutates it and never
// refreshes it mid-pass.
type ScheduleSnapshot struct {
	Subject   Subject              `json:"subject"`
	Schedules []*TreatmentSchedule `json:"schedules"`
}
