// Package auth is the external auth collaborator referenced in spec §6: it
// turns a decrypted shared secret and a claimed username into a GameProfile,
// or fails the login.
package auth

import (
	"context"
	"errors"

	"github.com/udisondev/mcgo/internal/model"
)

// ErrAuthFailed is the error an Authenticator may return when a login cannot
// be resolved to a profile; OfflineAuthenticator never returns it. The
// connection turns any Authenticate error into a kick whose reason starts
// with "auth failed".
var ErrAuthFailed = errors.New("authentication failed")

// Authenticator resolves a login attempt into a GameProfile.
type Authenticator interface {
	// Authenticate validates the given shared secret for name (mediated by
	// whatever session-server round trip the implementation performs) and
	// returns the resulting profile, minting and caching one on first login.
	Authenticate(ctx context.Context, name string, sharedSecret []byte) (model.GameProfile, error)
}
