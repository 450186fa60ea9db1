package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/udisondev/mcgo/internal/model"
)

// ProfileRepository persists the GameProfile cache backing internal/auth's
// offline authenticator.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a ProfileRepository.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// LoadByName returns the cached profile for name, or ok=false if none is
// cached yet (not an error - first login for a name is expected).
func (r *ProfileRepository) LoadByName(ctx context.Context, name string) (model.GameProfile, bool, error) {
	query := `SELECT uuid, name, properties FROM profiles WHERE name = $1`

	var id uuid.UUID
	var gotName string
	var rawProps []byte

	err := r.db.Pool().QueryRow(ctx, query, name).Scan(&id, &gotName, &rawProps)
	if err == pgx.ErrNoRows {
		return model.GameProfile{}, false, nil
	}
	if err != nil {
		return model.GameProfile{}, false, fmt.Errorf("querying profile %q: %w", name, err)
	}

	var props []model.Property
	if err := json.Unmarshal(rawProps, &props); err != nil {
		return model.GameProfile{}, false, fmt.Errorf("decoding profile properties for %q: %w", name, err)
	}

	return model.GameProfile{UUID: id, Name: gotName, Properties: props}, true, nil
}

// Upsert inserts or replaces the cached profile for profile.Name.
func (r *ProfileRepository) Upsert(ctx context.Context, profile model.GameProfile) error {
	rawProps, err := json.Marshal(profile.Properties)
	if err != nil {
		return fmt.Errorf("encoding profile properties for %q: %w", profile.Name, err)
	}

	query := `
		INSERT INTO profiles (uuid, name, properties)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET uuid = $1, properties = $3
	`
	if _, err := r.db.Pool().Exec(ctx, query, profile.UUID, profile.Name, rawProps); err != nil {
		return fmt.Errorf("upserting profile %q: %w", profile.Name, err)
	}
	return nil
}
