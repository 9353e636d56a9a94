// Package schedulecache holds the cached treatment-schedule snapshot the
// orchestrator reconciles against. Reads are synchronous and in-memory;
// nothing here may reach the network, which is what keeps a reconciliation
// pass offline-safe.
package schedulecache

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/carebuddy/reminder-engine/internal/model"
)

// Source is the read side consumed by reconciliation.
type Source interface {
	// GetActiveSchedules returns the subject's snapshot with inactive
	// schedules already filtered out, or nil when the subject is unknown.
	GetActiveSchedules(subjectID uuid.UUID) *model.ScheduleSnapshot
	// Subjects lists the subject ids with a cached snapshot.
	Subjects() []uuid.UUID
}

// Cache is a go-cache backed Source. The remote profile store writes
// snapshots in whole-subject units; the engine only ever reads.
type Cache struct {
	c *cache.Cache
}

// New creates a cache. A zero ttl means snapshots never expire; the remote
// sync layer replaces them explicitly.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{c: cache.New(cache.NoExpiration, cache.NoExpiration)}
	}
	return &Cache{c: cache.New(ttl, 2*ttl)}
}

// Put stores a subject's snapshot, replacing any previous one.
func (s *Cache) Put(snap *model.ScheduleSnapshot) {
	s.c.Set(snap.Subject.ID.String(), snap, cache.DefaultExpiration)
}

// Forget drops a subject's snapshot.
func (s *Cache) Forget(subjectID uuid.UUID) {
	s.c.Delete(subjectID.String())
}

func (s *Cache) GetActiveSchedules(subjectID uuid.UUID) *model.ScheduleSnapshot {
	v, ok := s.c.Get(subjectID.String())
	if !ok {
		return nil
	}
	snap := v.(*model.ScheduleSnapshot)

	active := make([]*model.TreatmentSchedule, 0, len(snap.Schedules))
	for _, sched := range snap.Schedules {
		if sched.Active {
			active = append(active, sched)
		}
	}
	return &model.ScheduleSnapshot{Subject: snap.Subject, Schedules: active}
}

func (s *Cache) Subjects() []uuid.UUID {
	items := s.c.Items()
	out := make([]uuid.UUID, 0, len(items))
	for k := range items {
		id, err := uuid.Parse(k)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].String() < out[b].String() })
	return out
}
