package auth

import (
	"context"
	"crypto/md5"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/udisondev/mcgo/internal/model"
)

// ProfileStore is the persistence collaborator OfflineAuthenticator caches
// profiles through. internal/db.ProfileRepository satisfies it.
type ProfileStore interface {
	LoadByName(ctx context.Context, name string) (model.GameProfile, bool, error)
	Upsert(ctx context.Context, profile model.GameProfile) error
}

// OfflineAuthenticator mints a stable offline-mode GameProfile for any name,
// without a Mojang session-server round trip, and caches it in store. This
// is the "auth subsystem" spec §6 describes as an external collaborator;
// online-mode (Mojang session server) verification is out of scope.
type OfflineAuthenticator struct {
	store ProfileStore
}

// NewOfflineAuthenticator returns an OfflineAuthenticator backed by store.
func NewOfflineAuthenticator(store ProfileStore) *OfflineAuthenticator {
	return &OfflineAuthenticator{store: store}
}

// Authenticate ignores sharedSecret (there is no session server to present
// it to) and resolves name to a stable, cached GameProfile. It fails only
// when loading the cached profile fails, which the connection treats as
// kick("auth failed") per spec §6; a failed Upsert is logged and the minted
// profile is still returned.
func (a *OfflineAuthenticator) Authenticate(ctx context.Context, name string, _ []byte) (model.GameProfile, error) {
	if cached, ok, err := a.store.LoadByName(ctx, name); err != nil {
		return model.GameProfile{}, fmt.Errorf("loading cached profile for %q: %w", name, err)
	} else if ok {
		return cached, nil
	}

	profile := model.GameProfile{
		UUID: offlineUUID(name),
		Name: name,
	}

	if err := a.store.Upsert(ctx, profile); err != nil {
		slog.Warn("failed to cache new offline profile", "name", name, "error", err)
	}

	return profile, nil
}

// offlineUUID reproduces the vanilla offline-mode derivation: a version-3
// (name-based MD5) UUID computed directly over "OfflinePlayer:<name>", with
// no namespace UUID mixed in (unlike RFC 4122's NewMD5, which prepends one).
func offlineUUID(name string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = (sum[6] & 0x0f) | 0x30 // version 3
	sum[8] = (sum[8] & 0x3f) | 0x80 // RFC 4122 variant
	var id uuid.UUID
	copy(id[:], sum[:])
	return id
}
