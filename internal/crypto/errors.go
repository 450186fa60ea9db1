package crypto

import "errors"

// EncryptionError wraps the login-handshake cryptographic failures the
// Connection state machine converts into a kick (spec §7).
var (
	// ErrRSADecryptFailed means the server could not decrypt the shared
	// secret or verify token with its own private key.
	ErrRSADecryptFailed = errors.New("failed to decrypt shared secret")

	// ErrSharedSecretWrongLength means the decrypted shared secret was not
	// exactly 16 bytes (spec §4.C EncryptionError.SharedWrongLength).
	ErrSharedSecretWrongLength = errors.New("shared secret has the wrong length")
)
