package scheduler

import (
	"sort"
	"time"

	"github.com/carebuddy/reminder-engine/internal/identity"
	"github.com/carebuddy/reminder-engine/internal/model"
	"github.com/carebuddy/reminder-engine/internal/policy"
)

// computeTargets turns one subject's snapshot into the complete set of
// notifications that should exist for the remaining day. Pure with respect
// to now; all I/O happens in the apply phase.
func (o *Orchestrator) computeTargets(snap *model.ScheduleSnapshot, now time.Time) []*model.ScheduledNotification {
	var targets []*model.ScheduledNotification

	for _, sched := range snap.Schedules {
		if !sched.Kind.HasFixedSlots() {
			// Flexible schedules are surfaced in-app only, never pushed.
			o.metrics.NotificationsSkipped.WithLabelValues("flexible").Inc()
			continue
		}

		for _, slot := range sched.Slots {
			slotAt, err := policy.SlotOnDay(slot, now)
			if err != nil {
				o.logger.Warn("unparseable slot, skipping",
					"schedule", sched.ID.String(), "slot", slot)
				continue
			}

			switch policy.EvaluateGracePeriod(slotAt, now, o.cfg.GracePeriod()) {
			case policy.DecisionScheduled:
				targets = append(targets, o.primaryEntry(snap, sched, slot, slotAt))

			case policy.DecisionImmediate:
				// The user just opened the app slightly late; fire now.
				targets = append(targets, o.primaryEntry(snap, sched, slot, now))

			case policy.DecisionMissed:
				// The primary lapsed, but it still owes a follow-up keyed
				// off the original slot time.
				o.metrics.NotificationsSkipped.WithLabelValues("missed").Inc()
				if fu := o.followupEntry(snap, sched, slot, slotAt, now); fu != nil {
					targets = append(targets, fu)
				}
			}
		}
	}

	return targets
}

func (o *Orchestrator) primaryEntry(snap *model.ScheduleSnapshot, sched *model.TreatmentSchedule, slot string, fireAt time.Time) *model.ScheduledNotification {
	ref := sched.ID
	return &model.ScheduledNotification{
		Identity:    identity.Derive(o.ownerID, snap.Subject.ID, &ref, slot, model.KindPrimary),
		Kind:        model.KindPrimary,
		OwnerID:     o.ownerID,
		SubjectID:   snap.Subject.ID,
		ScheduleRef: &ref,
		SlotTime:    slot,
		FireAt:      fireAt,
		Content:     contentFor(snap.Subject, fireAt),
		GroupKey:    model.GroupKeyFor(snap.Subject.ID),
	}
}

// followupEntry computes the follow-up for a missed slot. The follow-up
// time itself goes through the grace evaluation: a follow-up that has also
// lapsed is dropped rather than fired hours stale.
func (o *Orchestrator) followupEntry(snap *model.ScheduleSnapshot, sched *model.TreatmentSchedule, slot string, slotAt, now time.Time) *model.ScheduledNotification {
	fireAt := policy.CalculateFollowupTime(slotAt, o.cfg.FollowupOffset(), o.cfg.NightCutoffHour, o.cfg.MorningHour)

	switch policy.EvaluateGracePeriod(fireAt, now, o.cfg.GracePeriod()) {
	case policy.DecisionImmediate:
		fireAt = now
	case policy.DecisionMissed:
		o.metrics.NotificationsSkipped.WithLabelValues("followup_lapsed").Inc()
		return nil
	}

	ref := sched.ID
	return &model.ScheduledNotification{
		Identity:    identity.Derive(o.ownerID, snap.Subject.ID, &ref, slot, model.KindFollowup),
		Kind:        model.KindFollowup,
		OwnerID:     o.ownerID,
		SubjectID:   snap.Subject.ID,
		ScheduleRef: &ref,
		SlotTime:    slot,
		FireAt:      fireAt,
		Content:     contentFor(snap.Subject, fireAt),
		GroupKey:    model.GroupKeyFor(snap.Subject.ID),
	}
}

// contentFor builds the privacy-constrained payload: subject display name,
// generic category and timestamp, nothing else.
func contentFor(subject model.Subject, fireAt time.Time) model.NotificationContent {
	return model.NotificationContent{
		SubjectName: subject.Name,
		Category:    subject.Category,
		Timestamp:   fireAt,
	}
}

func sortedTargets(targets map[int64]*model.ScheduledNotification) []*model.ScheduledNotification {
	out := make([]*model.ScheduledNotification, 0, len(targets))
	for _, t := range targets {
		out = append(out, t)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Identity < out[b].Identity })
	return out
}
