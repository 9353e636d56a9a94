// Package cli implements the reminderctl developer harness: it drives the
// engine's trigger surface against fixture schedule data, standing in for
// the mobile shell.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/carebuddy/reminder-engine/internal/config"
	"github.com/carebuddy/reminder-engine/internal/delivery"
	"github.com/carebuddy/reminder-engine/internal/index"
	"github.com/carebuddy/reminder-engine/internal/model"
	"github.com/carebuddy/reminder-engine/internal/repository"
	"github.com/carebuddy/reminder-engine/internal/repository/sqlite"
	"github.com/carebuddy/reminder-engine/internal/schedulecache"
	"github.com/carebuddy/reminder-engine/internal/service/permission"
	"github.com/carebuddy/reminder-engine/internal/service/scheduler"
	"github.com/carebuddy/reminder-engine/pkg/logger"
	"github.com/carebuddy/reminder-engine/pkg/metrics"
)

var (
	dbPath        string
	ownerFlag     string
	schedulesPath string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "reminderctl",
	Short: "Drive the local reminder scheduling engine",
	Long:  "Developer harness for the reminder engine. Loads a treatment-schedule fixture, runs reconciliation triggers and inspects the day's notification index.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: storage.path from config)")
	RootCmd.PersistentFlags().StringVar(&ownerFlag, "owner", "", "Owner account id (default: taken from the fixture)")
	RootCmd.PersistentFlags().StringVarP(&schedulesPath, "schedules", "s", "", "Treatment-schedule fixture file (JSON)")
}

// harness wires one engine instance the way the mobile shell would.
type harness struct {
	cfg      *config.Config
	logger   *logger.Logger
	cache    *schedulecache.Cache
	notifier *delivery.MemoryNotifier
	store    *index.Store
	prefs    repository.PreferenceRepository
	orch     *scheduler.Orchestrator
	close    func() error
}

func openHarness() (*harness, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	lg := newLogger(cfg.Log.Level)

	path := cfg.Storage.Path
	if dbPath != "" {
		path = dbPath
	}
	db, err := sqlite.NewDB(path)
	if err != nil {
		return nil, err
	}

	cache := schedulecache.New(0)
	owner, err := loadFixture(cache)
	if err != nil {
		db.Close()
		return nil, err
	}

	base := sqlite.NewBaseRepository(db)
	prefs := sqlite.NewPreferenceRepository(base)
	m := metrics.NewMetrics("carebuddy", "reminders")
	store := index.NewStore(owner, sqlite.NewIndexRepository(base), lg, m)

	notifier := delivery.NewMemoryNotifier()
	gate := permission.NewGate(permission.NewCachedAuthorizer(prefs), prefs)
	orch := scheduler.NewOrchestrator(owner, cfg.Engine, cache, store, gate,
		delivery.NewLoggingNotifier(notifier, lg), lg, m)

	return &harness{
		cfg:      cfg,
		logger:   lg,
		cache:    cache,
		notifier: notifier,
		store:    store,
		prefs:    prefs,
		orch:     orch,
		close:    db.Close,
	}, nil
}

func newLogger(level string) *logger.Logger {
	lvl := logger.InfoLevel
	switch level {
	case "debug":
		lvl = logger.DebugLevel
	case "warn":
		lvl = logger.WarnLevel
	case "error":
		lvl = logger.ErrorLevel
	}
	return logger.NewLogger(&logger.Config{Level: lvl, TimeFormat: "15:04:05", Output: os.Stderr})
}

// loadFixture reads the --schedules file into the cache and returns the
// owner id, preferring --owner when given.
func loadFixture(cache *schedulecache.Cache) (uuid.UUID, error) {
	var owner uuid.UUID
	if ownerFlag != "" {
		parsed, err := uuid.Parse(ownerFlag)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid --owner: %w", err)
		}
		owner = parsed
	}

	if schedulesPath == "" {
		if owner == uuid.Nil {
			return uuid.Nil, fmt.Errorf("either --schedules or --owner is required")
		}
		return owner, nil
	}

	data, err := os.ReadFile(schedulesPath)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var snapshots []*model.ScheduleSnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if len(snapshots) == 0 {
		return uuid.Nil, fmt.Errorf("fixture contains no subjects")
	}

	for _, snap := range snapshots {
		cache.Put(snap)
	}
	if owner == uuid.Nil {
		owner = snapshots[0].Subject.OwnerID
	}
	return owner, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
