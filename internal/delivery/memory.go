package delivery

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carebuddy/reminder-engine/internal/model"
)

// Pending is one notification currently registered with a MemoryNotifier.
type Pending struct {
	Identity int64
	FireAt   time.Time
	Content  model.NotificationContent
	GroupKey string
}

// MemoryNotifier is an in-process stand-in for the platform notification
// queue, used by the CLI harness and tests. It records every call so
// callers can assert on exactly what the orchestrator did.
type MemoryNotifier struct {
	mu      sync.Mutex
	pending map[int64]Pending

	ScheduleCalls int
	CancelCalls   int
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{pending: make(map[int64]Pending)}
}

func (n *MemoryNotifier) Schedule(_ context.Context, identity int64, fireAt time.Time, content model.NotificationContent, groupKey string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ScheduleCalls++
	n.pending[identity] = Pending{
		Identity: identity,
		FireAt:   fireAt,
		Content:  content,
		GroupKey: groupKey,
	}
	return nil
}

func (n *MemoryNotifier) Cancel(_ context.Context, identity int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.CancelCalls++
	delete(n.pending, identity)
	return nil
}

// Pending returns the registered notifications ordered by fire time.
func (n *MemoryNotifier) Pending() []Pending {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Pending, 0, len(n.pending))
	for _, p := range n.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].FireAt.Equal(out[b].FireAt) {
			return out[a].Identity < out[b].Identity
		}
		return out[a].FireAt.Before(out[b].FireAt)
	})
	return out
}
