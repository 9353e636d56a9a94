package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carebuddy/reminder-engine/internal/repository"
)

type preferenceRepository struct {
	BaseRepository
}

func NewPreferenceRepository(base BaseRepository) repository.PreferenceRepository {
	return &preferenceRepository{base}
}

func (r *preferenceRepository) GetFlag(ctx context.Context, key string) (bool, bool, error) {
	query := `SELECT value FROM preferences WHERE key = ?`

	var value int
	if err := r.GetDB().GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value != 0, true, nil
}

func (r *preferenceRepository) SetFlag(ctx context.Context, key string, value bool) error {
	query := `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`
	v := 0
	if value {
		v = 1
	}
	if _, err := r.GetDB().ExecContext(ctx, query, key, v); err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}
