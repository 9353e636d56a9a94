package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carebuddy/reminder-engine/internal/model"
	"github.com/carebuddy/reminder-engine/internal/repository"
)

type indexRepository struct {
	BaseRepository
}

func NewIndexRepository(base BaseRepository) repository.IndexRepository {
	return &indexRepository{base}
}

func (r *indexRepository) Get(ctx context.Context, ownerID uuid.UUID, dayKey string) (*model.IndexRecord, error) {
	query := `
		SELECT owner_id, day_key, entries, checksum, updated_at
		FROM notification_index
		WHERE owner_id = ? AND day_key = ?
	`

	var row struct {
		OwnerID   string    `db:"owner_id"`
		DayKey    string    `db:"day_key"`
		Entries   []byte    `db:"entries"`
		Checksum  string    `db:"checksum"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	if err := r.GetDB().GetContext(ctx, &row, query, ownerID.String(), dayKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load index for %s: %w", dayKey, err)
	}

	owner, err := uuid.Parse(row.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id in index row: %w", err)
	}

	return &model.IndexRecord{
		OwnerID:   owner,
		DayKey:    row.DayKey,
		Entries:   row.Entries,
		Checksum:  row.Checksum,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// Put replaces the day's record in one statement, so a crash mid-write can
// never leave entries and checksum disagreeing.
func (r *indexRepository) Put(ctx context.Context, rec *model.IndexRecord) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO notification_index (owner_id, day_key, entries, checksum, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (owner_id, day_key) DO UPDATE
			SET entries = excluded.entries,
			    checksum = excluded.checksum,
			    updated_at = excluded.updated_at
		`
		_, err := tx.ExecContext(ctx, query,
			rec.OwnerID.String(), rec.DayKey, rec.Entries, rec.Checksum, time.Now().UTC())
		return err
	})
}

func (r *indexRepository) PurgeExcept(ctx context.Context, ownerID uuid.UUID, dayKey string) error {
	query := `DELETE FROM notification_index WHERE owner_id = ? AND day_key != ?`
	_, err := r.GetDB().ExecContext(ctx, query, ownerID.String(), dayKey)
	if err != nil {
		return fmt.Errorf("failed to purge stale index rows: %w", err)
	}
	return nil
}
