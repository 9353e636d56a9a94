// Package scheduler implements the reconciliation orchestrator: the single
// writer that keeps the platform notification queue, the notification
// index and the cached treatment schedules in agreement.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/carebuddy/reminder-engine/internal/config"
	"github.com/carebuddy/reminder-engine/internal/delivery"
	"github.com/carebuddy/reminder-engine/internal/identity"
	"github.com/carebuddy/reminder-engine/internal/index"
	"github.com/carebuddy/reminder-engine/internal/model"
	"github.com/carebuddy/reminder-engine/internal/schedulecache"
	"github.com/carebuddy/reminder-engine/internal/service/permission"
	"github.com/carebuddy/reminder-engine/pkg/logger"
	"github.com/carebuddy/reminder-engine/pkg/metrics"
)

// Orchestrator runs reconciliation passes on each trigger. Passes are
// serialized: a trigger arriving while one runs waits for it and then runs
// against the freshly persisted state, so near-simultaneous triggers can
// never double-schedule.
type Orchestrator struct {
	ownerID   uuid.UUID
	cfg       config.EngineConfig
	schedules schedulecache.Source
	index     *index.Store
	gate      *permission.Gate
	notifier  delivery.Notifier
	logger    *logger.Logger
	metrics   *metrics.Metrics

	nowFn  func() time.Time
	passMu sync.Mutex
}

func NewOrchestrator(
	ownerID uuid.UUID,
	cfg config.EngineConfig,
	schedules schedulecache.Source,
	idx *index.Store,
	gate *permission.Gate,
	notifier delivery.Notifier,
	lg *logger.Logger,
	m *metrics.Metrics,
) *Orchestrator {
	return &Orchestrator{
		ownerID:   ownerID,
		cfg:       cfg,
		schedules: schedules,
		index:     idx,
		gate:      gate,
		notifier:  notifier,
		logger:    lg.WithComponent("scheduler"),
		metrics:   m,
		nowFn:     time.Now,
	}
}

// Trigger surface. Every entry point runs the same full pass; firing is
// the OS's job once scheduled, so reconciling on resume is mandatory, not
// an optimization.

func (o *Orchestrator) OnAppStart(ctx context.Context) error { return o.Reconcile(ctx) }

func (o *Orchestrator) OnResume(ctx context.Context) error { return o.Reconcile(ctx) }

func (o *Orchestrator) OnScheduleChanged(ctx context.Context) error { return o.Reconcile(ctx) }

// Reconcile runs one diff-and-apply pass over all cached subjects.
func (o *Orchestrator) Reconcile(ctx context.Context) error {
	o.passMu.Lock()
	defer o.passMu.Unlock()

	timer := prometheus.NewTimer(o.metrics.ReconcileLatency)
	defer timer.ObserveDuration()

	passID := ulid.Make().String()
	now := o.nowFn()
	log := o.logger.WithFields(map[string]interface{}{"pass_id": passID})

	allowed, err := o.gate.Allowed(ctx)
	if err != nil {
		o.metrics.ReconcilePasses.WithLabelValues("error").Inc()
		return err
	}
	if !allowed {
		log.Info("notifications not permitted, cancelling everything")
		// Load the index first so the revoke sweep sees what is pending.
		if err := o.index.RolloverIfNewDay(ctx, model.DayKeyOf(now)); err != nil {
			o.metrics.ReconcilePasses.WithLabelValues("error").Inc()
			return err
		}
		err := o.cancelAll(ctx, log)
		o.metrics.ReconcilePasses.WithLabelValues("denied").Inc()
		return err
	}

	if err := o.index.RolloverIfNewDay(ctx, model.DayKeyOf(now)); err != nil {
		o.metrics.ReconcilePasses.WithLabelValues("error").Inc()
		return err
	}

	targets, err := o.computeAllTargets(ctx, now)
	if err != nil {
		o.metrics.ReconcilePasses.WithLabelValues("error").Inc()
		return err
	}

	if err := o.applyDiff(ctx, targets, now, log); err != nil {
		o.metrics.ReconcilePasses.WithLabelValues("error").Inc()
		return err
	}

	o.metrics.ReconcilePasses.WithLabelValues("ok").Inc()
	log.Debug("reconciliation complete", "targets", len(targets))
	return nil
}

// computeAllTargets fans out target computation per subject. Computation is
// pure (snapshot in, entries out) so subjects may run in parallel; the
// apply phase stays sequential.
func (o *Orchestrator) computeAllTargets(ctx context.Context, now time.Time) (map[int64]*model.ScheduledNotification, error) {
	subjects := o.schedules.Subjects()
	results := make([][]*model.ScheduledNotification, len(subjects))

	g, _ := errgroup.WithContext(ctx)
	for i, subjectID := range subjects {
		i, subjectID := i, subjectID
		g.Go(func() error {
			snap := o.schedules.GetActiveSchedules(subjectID)
			if snap == nil {
				return nil
			}
			results[i] = o.computeTargets(snap, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	targets := make(map[int64]*model.ScheduledNotification)
	for _, batch := range results {
		for _, t := range batch {
			targets[t.Identity] = t
		}
	}
	return targets, nil
}

// applyDiff issues the minimal set of cancel/schedule calls to make the
// platform queue match the target set. A failed delivery call is logged
// and the loop continues; a failed index write aborts the pass, and the
// next trigger retries from scratch.
func (o *Orchestrator) applyDiff(ctx context.Context, targets map[int64]*model.ScheduledNotification, now time.Time, log *logger.Logger) error {
	existing := o.index.All()

	for _, e := range existing {
		if _, wanted := targets[e.Identity]; wanted {
			continue
		}
		// Ad-hoc entries are not derivable from the snapshot; the diff
		// never owns them.
		if !e.Kind.Managed() {
			continue
		}
		if err := o.notifier.Cancel(ctx, e.Identity); err != nil {
			o.metrics.DeliveryErrors.WithLabelValues("cancel").Inc()
			log.Error(err, "cancel failed, continuing", "identity", e.Identity)
			continue
		}
		o.metrics.NotificationsCancelled.Inc()
		if err := o.index.Remove(ctx, e.Identity); err != nil {
			return err
		}
	}

	current := make(map[int64]*model.ScheduledNotification, len(existing))
	for _, e := range existing {
		current[e.Identity] = e
	}

	for _, t := range sortedTargets(targets) {
		// A pending snooze replaces its primary until it fires; the diff
		// must not resurrect the primary the user just dismissed.
		if t.Kind == model.KindPrimary {
			snoozeID := identity.Derive(t.OwnerID, t.SubjectID, t.ScheduleRef, t.SlotTime, model.KindSnooze)
			if _, snoozed := current[snoozeID]; snoozed {
				o.metrics.NotificationsSkipped.WithLabelValues("snoozed").Inc()
				continue
			}
		}
		if prev, ok := current[t.Identity]; ok {
			// Unchanged entry: re-scheduling it would be a redundant
			// system call. An entry that already fired (both the indexed
			// and the recomputed fire time are due) must not fire again
			// just because the pass ran later inside the grace window.
			if prev.FireAt.Equal(t.FireAt) ||
				(!prev.FireAt.After(now) && !t.FireAt.After(now)) {
				o.metrics.NotificationsSkipped.WithLabelValues("unchanged").Inc()
				continue
			}
		}
		if err := o.notifier.Schedule(ctx, t.Identity, t.FireAt, t.Content, t.GroupKey); err != nil {
			o.metrics.DeliveryErrors.WithLabelValues("schedule").Inc()
			log.Error(err, "schedule failed, continuing", "identity", t.Identity)
			continue
		}
		o.metrics.NotificationsScheduled.Inc()
		if err := o.index.Upsert(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// cancelAll best-effort cancels every indexed entry, then clears the
// index. Used when the permission gate closes.
func (o *Orchestrator) cancelAll(ctx context.Context, log *logger.Logger) error {
	for _, e := range o.index.All() {
		if err := o.notifier.Cancel(ctx, e.Identity); err != nil {
			o.metrics.DeliveryErrors.WithLabelValues("cancel").Inc()
			log.Error(err, "cancel failed during revoke sweep", "identity", e.Identity)
		} else {
			o.metrics.NotificationsCancelled.Inc()
		}
	}
	return o.index.Clear(ctx)
}
