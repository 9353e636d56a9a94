package delivery

import (
	"context"
	"time"

	"github.com/carebuddy/reminder-engine/internal/model"
	"github.com/carebuddy/reminder-engine/pkg/logger"
)

// LoggingNotifier decorates another Notifier with structured logs. The
// content payload is privacy-safe by construction, so logging it whole is
// fine.
type LoggingNotifier struct {
	next   Notifier
	logger *logger.Logger
}

func NewLoggingNotifier(next Notifier, lg *logger.Logger) *LoggingNotifier {
	return &LoggingNotifier{next: next, logger: lg.WithComponent("delivery")}
}

func (n *LoggingNotifier) Schedule(ctx context.Context, identity int64, fireAt time.Time, content model.NotificationContent, groupKey string) error {
	err := n.next.Schedule(ctx, identity, fireAt, content, groupKey)
	if err != nil {
		n.logger.Error(err, "schedule failed", "identity", identity)
		return err
	}
	n.logger.Debug("scheduled notification",
		"identity", identity,
		"fire_at", fireAt.Format(time.RFC3339),
		"subject", content.SubjectName,
		"group", groupKey)
	return nil
}

func (n *LoggingNotifier) Cancel(ctx context.Context, identity int64) error {
	err := n.next.Cancel(ctx, identity)
	if err != nil {
		n.logger.Error(err, "cancel failed", "identity", identity)
		return err
	}
	n.logger.Debug("cancelled notification", "identity", identity)
	return nil
}
