// Package delivery abstracts the operating system's notification
// primitive. Once a notification is scheduled here the OS owns firing it;
// the engine never runs its own timers.
package delivery

import (
	"context"
	"time"

	"github.com/carebuddy/reminder-engine/internal/model"
)

// Notifier is the delivery capability the orchestrator talks to.
type Notifier interface {
	// Schedule registers a notification for wall-clock time fireAt.
	// Scheduling an identity that already exists replaces it.
	Schedule(ctx context.Context, identity int64, fireAt time.Time, content model.NotificationContent, groupKey string) error

	// Cancel removes a pending notification. Cancelling an unknown
	// identity is not an error.
	Cancel(ctx context.Context, identity int64) error
}
