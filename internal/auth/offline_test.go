package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/mcgo/internal/model"
)

type fakeStore struct {
	profiles map[string]model.GameProfile
	upserts  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[string]model.GameProfile)}
}

func (s *fakeStore) LoadByName(_ context.Context, name string) (model.GameProfile, bool, error) {
	p, ok := s.profiles[name]
	return p, ok, nil
}

func (s *fakeStore) Upsert(_ context.Context, profile model.GameProfile) error {
	s.upserts++
	s.profiles[profile.Name] = profile
	return nil
}

func TestOfflineAuthenticator_FirstLoginCachesProfile(t *testing.T) {
	store := newFakeStore()
	a := NewOfflineAuthenticator(store)

	profile, err := a.Authenticate(context.Background(), "Steve", nil)
	require.NoError(t, err)
	assert.Equal(t, "Steve", profile.Name)
	assert.Equal(t, 1, store.upserts)
}

func TestOfflineAuthenticator_StableUUIDAcrossLogins(t *testing.T) {
	store := newFakeStore()
	a := NewOfflineAuthenticator(store)

	first, err := a.Authenticate(context.Background(), "Steve", nil)
	require.NoError(t, err)
	second, err := a.Authenticate(context.Background(), "Steve", nil)
	require.NoError(t, err)

	assert.Equal(t, first.UUID, second.UUID, "UUID changed across logins")
	assert.Equal(t, 1, store.upserts, "second login should hit cache")
}

func TestOfflineAuthenticator_DifferentNamesDifferentUUIDs(t *testing.T) {
	store := newFakeStore()
	a := NewOfflineAuthenticator(store)

	alex, _ := a.Authenticate(context.Background(), "Alex", nil)
	steve, _ := a.Authenticate(context.Background(), "Steve", nil)
	assert.NotEqual(t, alex.UUID, steve.UUID, "distinct names produced the same UUID")
}

type erroringStore struct{}

func (erroringStore) LoadByName(context.Context, string) (model.GameProfile, bool, error) {
	return model.GameProfile{}, false, errors.New("db unavailable")
}
func (erroringStore) Upsert(context.Context, model.GameProfile) error { return nil }

func TestOfflineAuthenticator_StoreErrorPropagates(t *testing.T) {
	a := NewOfflineAuthenticator(erroringStore{})
	_, err := a.Authenticate(context.Background(), "Steve", nil)
	assert.Error(t, err, "Authenticate() with a failing store returned nil error")
}
