package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebuddy/reminder-engine/internal/model"
	"github.com/carebuddy/reminder-engine/internal/repository"
	"github.com/carebuddy/reminder-engine/internal/repository/sqlite"
	"github.com/carebuddy/reminder-engine/pkg/logger"
	"github.com/carebuddy/reminder-engine/pkg/metrics"
)

func newTestStore(t *testing.T, owner uuid.UUID) (*Store, repository.IndexRepository) {
	t.Helper()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewIndexRepository(sqlite.NewBaseRepository(db))
	m := metrics.NewMetricsWith(prometheus.NewRegistry(), "carebuddy", "reminders")
	return NewStore(owner, repo, logger.Nop(), m), repo
}

func entry(owner uuid.UUID, identity int64) *model.ScheduledNotification {
	return &model.ScheduledNotification{
		Identity:  identity,
		Kind:      model.KindPrimary,
		OwnerID:   owner,
		SubjectID: uuid.New(),
		SlotTime:  "08:00",
		FireAt:    time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local),
	}
}

func TestUpsertRemovePersist(t *testing.T) {
	owner := uuid.New()
	store, _ := newTestStore(t, owner)
	ctx := context.Background()
	require.NoError(t, store.RolloverIfNewDay(ctx, "2025-03-10"))

	require.NoError(t, store.Upsert(ctx, entry(owner, 1)))
	require.NoError(t, store.Upsert(ctx, entry(owner, 2)))

	all := store.All()
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].Identity)
	assert.Equal(t, int64(2), all[1].Identity)

	require.NoError(t, store.Remove(ctx, 1))
	require.NoError(t, store.Remove(ctx, 99), "removing unknown identity is a no-op")
	assert.Len(t, store.All(), 1)
}

func TestPersistenceSurvivesRestart(t *testing.T) {
	owner := uuid.New()
	dbPath := filepath.Join(t.TempDir(), "reminders.db")
	ctx := context.Background()

	db, err := sqlite.NewDB(dbPath)
	require.NoError(t, err)
	repo := sqlite.NewIndexRepository(sqlite.NewBaseRepository(db))
	m := metrics.NewMetricsWith(prometheus.NewRegistry(), "carebuddy", "reminders")

	store := NewStore(owner, repo, logger.Nop(), m)
	require.NoError(t, store.RolloverIfNewDay(ctx, "2025-03-10"))
	require.NoError(t, store.Upsert(ctx, entry(owner, 7)))
	require.NoError(t, db.Close())

	db2, err := sqlite.NewDB(dbPath)
	require.NoError(t, err)
	defer db2.Close()
	repo2 := sqlite.NewIndexRepository(sqlite.NewBaseRepository(db2))
	store2 := NewStore(owner, repo2, logger.Nop(), metrics.NewMetricsWith(prometheus.NewRegistry(), "carebuddy", "reminders"))

	require.NoError(t, store2.RolloverIfNewDay(ctx, "2025-03-10"))
	all := store2.All()
	require.Len(t, all, 1)
	assert.Equal(t, int64(7), all[0].Identity)
	assert.Equal(t, model.KindPrimary, all[0].Kind)
}

func TestChecksumMismatchSelfHeals(t *testing.T) {
	owner := uuid.New()
	store, repo := newTestStore(t, owner)
	ctx := context.Background()
	require.NoError(t, store.RolloverIfNewDay(ctx, "2025-03-10"))
	require.NoError(t, store.Upsert(ctx, entry(owner, 5)))

	// Corrupt the persisted entries without touching the checksum.
	rec, err := repo.Get(ctx, owner, "2025-03-10")
	require.NoError(t, err)
	rec.Entries = []byte(`[{"identity":5,"kind":"primary"},{"identity":6,"kind":"primary"}]`)
	require.NoError(t, repo.Put(ctx, rec))

	fresh := NewStore(owner, repo, logger.Nop(), metrics.NewMetricsWith(prometheus.NewRegistry(), "carebuddy", "reminders"))
	require.NoError(t, fresh.RolloverIfNewDay(ctx, "2025-03-10"))
	assert.Empty(t, fresh.All(), "corrupt index loads as empty, not as the stale entries")
}

func TestRolloverDiscardsPriorDay(t *testing.T) {
	owner := uuid.New()
	store, repo := newTestStore(t, owner)
	ctx := context.Background()

	require.NoError(t, store.RolloverIfNewDay(ctx, "2025-03-10"))
	require.NoError(t, store.Upsert(ctx, entry(owner, 11)))
	require.Len(t, store.All(), 1)

	require.NoError(t, store.RolloverIfNewDay(ctx, "2025-03-11"))
	assert.Empty(t, store.All())
	assert.Equal(t, "2025-03-11", store.DayKey())

	stale, err := repo.Get(ctx, owner, "2025-03-10")
	require.NoError(t, err)
	assert.Nil(t, stale, "prior day's row is purged")
}

func TestRolloverSameDayIsNoop(t *testing.T) {
	owner := uuid.New()
	store, _ := newTestStore(t, owner)
	ctx := context.Background()

	require.NoError(t, store.RolloverIfNewDay(ctx, "2025-03-10"))
	require.NoError(t, store.Upsert(ctx, entry(owner, 3)))
	require.NoError(t, store.RolloverIfNewDay(ctx, "2025-03-10"))
	assert.Len(t, store.All(), 1)
}

func TestClearEmptiesIndex(t *testing.T) {
	owner := uuid.New()
	store, _ := newTestStore(t, owner)
	ctx := context.Background()

	require.NoError(t, store.RolloverIfNewDay(ctx, "2025-03-10"))
	require.NoError(t, store.Upsert(ctx, entry(owner, 1)))
	require.NoError(t, store.Upsert(ctx, entry(owner, 2)))
	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, store.All())
}
