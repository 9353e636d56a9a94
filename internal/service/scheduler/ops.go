package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carebuddy/reminder-engine/internal/identity"
	"github.com/carebuddy/reminder-engine/internal/model"
	pkgerrors "github.com/carebuddy/reminder-engine/pkg/errors"
)

// OnSnoozeRequested replaces one pending notification with a snooze firing
// snoozeOffset from now. The snooze mints its own identity (same semantic
// key, kind=snooze), so repeated snoozes keep hitting the same snooze
// identity while the original primary stays cancelled.
func (o *Orchestrator) OnSnoozeRequested(ctx context.Context, id int64) error {
	o.passMu.Lock()
	defer o.passMu.Unlock()

	allowed, err := o.gate.Allowed(ctx)
	if err != nil {
		return err
	}
	if !allowed {
		o.logger.Info("snooze ignored, notifications not permitted", "identity", id)
		return nil
	}

	if err := o.index.RolloverIfNewDay(ctx, model.DayKeyOf(o.nowFn())); err != nil {
		return err
	}

	entry, ok := o.index.Get(id)
	if !ok {
		return pkgerrors.NotFound("notification", nil)
	}

	o.metrics.SnoozesRequested.Inc()

	if err := o.notifier.Cancel(ctx, id); err != nil {
		o.metrics.DeliveryErrors.WithLabelValues("cancel").Inc()
		return pkgerrors.Delivery("cancel", id, err)
	}
	o.metrics.NotificationsCancelled.Inc()
	if err := o.index.Remove(ctx, id); err != nil {
		return err
	}

	fireAt := o.nowFn().Add(o.cfg.SnoozeOffset())
	snoozed := &model.ScheduledNotification{
		Identity:    identity.Derive(entry.OwnerID, entry.SubjectID, entry.ScheduleRef, entry.SlotTime, model.KindSnooze),
		Kind:        model.KindSnooze,
		OwnerID:     entry.OwnerID,
		SubjectID:   entry.SubjectID,
		ScheduleRef: entry.ScheduleRef,
		SlotTime:    entry.SlotTime,
		FireAt:      fireAt,
		Content: model.NotificationContent{
			SubjectName: entry.Content.SubjectName,
			Category:    entry.Content.Category,
			Timestamp:   fireAt,
		},
		GroupKey: entry.GroupKey,
	}

	if err := o.notifier.Schedule(ctx, snoozed.Identity, snoozed.FireAt, snoozed.Content, snoozed.GroupKey); err != nil {
		o.metrics.DeliveryErrors.WithLabelValues("schedule").Inc()
		return pkgerrors.Delivery("schedule", snoozed.Identity, err)
	}
	o.metrics.NotificationsScheduled.Inc()
	return o.index.Upsert(ctx, snoozed)
}

// OnTreatmentLogged cancels the follow-up paired with a primary the user
// has since completed. Independent of the main reconciliation cycle; the
// next full pass will not resurrect the follow-up because the slot is no
// longer missed-and-unacknowledged only when the snapshot reflects the
// logged treatment, which is the collaborator's responsibility.
func (o *Orchestrator) OnTreatmentLogged(ctx context.Context, scheduleRef uuid.UUID, slotTime string) error {
	o.passMu.Lock()
	defer o.passMu.Unlock()

	if err := o.index.RolloverIfNewDay(ctx, model.DayKeyOf(o.nowFn())); err != nil {
		return err
	}

	for _, e := range o.index.All() {
		if e.Kind != model.KindFollowup || e.ScheduleRef == nil {
			continue
		}
		if *e.ScheduleRef != scheduleRef || e.SlotTime != slotTime {
			continue
		}
		if err := o.notifier.Cancel(ctx, e.Identity); err != nil {
			o.metrics.DeliveryErrors.WithLabelValues("cancel").Inc()
			return pkgerrors.Delivery("cancel", e.Identity, err)
		}
		o.metrics.NotificationsCancelled.Inc()
		if err := o.index.Remove(ctx, e.Identity); err != nil {
			return err
		}
	}
	return nil
}

// ScheduleAdHoc registers a notification that is not derived from any
// treatment schedule: inventory alerts and weekly summaries. These live in
// the index so revocation and rollover cover them, but the reconciliation
// diff never cancels them.
func (o *Orchestrator) ScheduleAdHoc(ctx context.Context, kind model.NotificationKind, subjectID uuid.UUID, content model.NotificationContent, fireAt time.Time) error {
	if kind.Managed() || kind == model.KindSnooze {
		return fmt.Errorf("kind %s is not schedulable ad-hoc", kind)
	}

	o.passMu.Lock()
	defer o.passMu.Unlock()

	allowed, err := o.gate.Allowed(ctx)
	if err != nil {
		return err
	}
	if !allowed {
		o.logger.Info("ad-hoc notification suppressed, notifications not permitted", "kind", string(kind))
		return nil
	}

	if err := o.index.RolloverIfNewDay(ctx, model.DayKeyOf(o.nowFn())); err != nil {
		return err
	}

	entry := &model.ScheduledNotification{
		Identity:  identity.Derive(o.ownerID, subjectID, nil, "", kind),
		Kind:      kind,
		OwnerID:   o.ownerID,
		SubjectID: subjectID,
		FireAt:    fireAt,
		Content:   content,
		GroupKey:  model.GroupKeyFor(subjectID),
	}

	if err := o.notifier.Schedule(ctx, entry.Identity, entry.FireAt, entry.Content, entry.GroupKey); err != nil {
		o.metrics.DeliveryErrors.WithLabelValues("schedule").Inc()
		return pkgerrors.Delivery("schedule", entry.Identity, err)
	}
	o.metrics.NotificationsScheduled.Inc()
	return o.index.Upsert(ctx, entry)
}
