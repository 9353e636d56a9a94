// Package index maintains the day's notification index: the persisted
// record of everything currently scheduled with the platform. The index is
// ground truth for the reconciliation diff, so it is verified on load and
// discarded wholesale when it cannot be trusted.
package index

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/carebuddy/reminder-engine/internal/model"
	"github.com/carebuddy/reminder-engine/internal/repository"
	pkgerrors "github.com/carebuddy/reminder-engine/pkg/errors"
	"github.com/carebuddy/reminder-engine/pkg/logger"
	"github.com/carebuddy/reminder-engine/pkg/metrics"
)

// Store is the sole mutator of the persisted index. Every mutation
// recomputes the checksum and replaces the day's record atomically, so
// entries and checksum never disagree on disk.
type Store struct {
	ownerID uuid.UUID
	repo    repository.IndexRepository
	logger  *logger.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	current *model.NotificationIndex
}

func NewStore(ownerID uuid.UUID, repo repository.IndexRepository, lg *logger.Logger, m *metrics.Metrics) *Store {
	return &Store{
		ownerID: ownerID,
		repo:    repo,
		logger:  lg.WithComponent("index"),
		metrics: m,
	}
}

// RolloverIfNewDay loads the index on first use and discards it wholesale
// when the calendar day has changed. The prior day's row is purged; the
// new day starts empty and is repopulated by the next reconciliation.
func (s *Store) RolloverIfNewDay(ctx context.Context, today string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		idx, err := s.load(ctx, today)
		if err != nil {
			return err
		}
		s.current = idx
	}

	if s.current.DayKey == today {
		return nil
	}

	s.logger.Info("day rolled over, discarding index",
		"previous_day", s.current.DayKey, "today", today)
	s.metrics.IndexRollovers.Inc()

	s.current = model.NewNotificationIndex(s.ownerID, today)
	if err := s.persistLocked(ctx); err != nil {
		return err
	}
	if err := s.repo.PurgeExcept(ctx, s.ownerID, today); err != nil {
		return pkgerrors.Storage("purge", err)
	}
	return nil
}

// load fetches the persisted record and verifies its checksum. Corruption
// is self-healing: the stale record is dropped and an empty index returned,
// which forces a full rebuild on the next pass.
func (s *Store) load(ctx context.Context, dayKey string) (*model.NotificationIndex, error) {
	rec, err := s.repo.Get(ctx, s.ownerID, dayKey)
	if err != nil {
		return nil, pkgerrors.Storage("load", err)
	}
	if rec == nil {
		return model.NewNotificationIndex(s.ownerID, dayKey), nil
	}

	if model.Checksum(rec.Entries) != rec.Checksum {
		s.logger.Warn("index checksum mismatch, rebuilding from scratch",
			"day", dayKey)
		s.metrics.IndexRebuilds.Inc()
		return model.NewNotificationIndex(s.ownerID, dayKey), nil
	}

	var entries []*model.ScheduledNotification
	if err := json.Unmarshal(rec.Entries, &entries); err != nil {
		s.logger.Warn("index entries unreadable, rebuilding from scratch",
			"day", dayKey, "error", err.Error())
		s.metrics.IndexRebuilds.Inc()
		return model.NewNotificationIndex(s.ownerID, dayKey), nil
	}

	idx := model.NewNotificationIndex(s.ownerID, dayKey)
	for _, e := range entries {
		idx.Entries[e.Identity] = e
	}
	return idx, nil
}

// All returns the current day's entries for diffing.
func (s *Store) All() []*model.ScheduledNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.All()
}

// Get looks up a single entry by identity.
func (s *Store) Get(identity int64) (*model.ScheduledNotification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, false
	}
	e, ok := s.current.Entries[identity]
	return e, ok
}

// DayKey returns the calendar date the loaded index covers.
func (s *Store) DayKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.DayKey
}

// Upsert adds or replaces an entry and persists entries+checksum together.
func (s *Store) Upsert(ctx context.Context, n *model.ScheduledNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return pkgerrors.Internal(errNotLoaded)
	}
	s.current.Entries[n.Identity] = n
	return s.persistLocked(ctx)
}

// Remove drops an entry by identity. Removing an unknown identity is not
// an error; the platform cancel it pairs with is idempotent too.
func (s *Store) Remove(ctx context.Context, identity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return pkgerrors.Internal(errNotLoaded)
	}
	if _, ok := s.current.Entries[identity]; !ok {
		return nil
	}
	delete(s.current.Entries, identity)
	return s.persistLocked(ctx)
}

// Clear empties the index, used after a permission revoke cancels
// everything.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	s.current.Entries = make(map[int64]*model.ScheduledNotification)
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	entries, err := s.current.Marshal()
	if err != nil {
		return pkgerrors.Internal(err)
	}
	rec := &model.IndexRecord{
		OwnerID:  s.ownerID,
		DayKey:   s.current.DayKey,
		Entries:  entries,
		Checksum: model.Checksum(entries),
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		return pkgerrors.Storage("persist", err)
	}
	return nil
}

var errNotLoaded = &notLoadedError{}

type notLoadedError struct{}

func (*notLoadedError) Error() string { return "index not loaded, call RolloverIfNewDay first" }
