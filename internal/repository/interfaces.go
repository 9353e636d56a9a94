package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/carebuddy/reminder-engine/internal/model"
)

// All repository interfaces in one file
type (
	// IndexRepository persists the day's notification index. One record
	// per (owner, day); Put must replace the record atomically so entries
	// and checksum can never disagree on disk.
	IndexRepository interface {
		Get(ctx context.Context, ownerID uuid.UUID, dayKey string) (*model.IndexRecord, error)
		Put(ctx context.Context, rec *model.IndexRecord) error
		PurgeExcept(ctx context.Context, ownerID uuid.UUID, dayKey string) error
	}

	// PreferenceRepository holds the user's notification preference and
	// the cached platform permission as plain flags.
	PreferenceRepository interface {
		GetFlag(ctx context.Context, key string) (value bool, found bool, err error)
		SetFlag(ctx context.Context, key string, value bool) error
	}
)

// Well-known preference keys.
const (
	PrefNotificationsEnabled = "notifications_enabled"
	PrefPlatformPermission   = "platform_permission"
)
