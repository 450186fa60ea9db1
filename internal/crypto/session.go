package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/udisondev/mcgo/internal/constants"
)

// Session holds the paired encrypt/decrypt streams for one connection, keyed
// by the shared secret established during login (spec §4.A). Vanilla
// Minecraft uses the shared secret as both the AES key and the CFB-8 IV.
type Session struct {
	Encrypt cipher.Stream
	Decrypt cipher.Stream
}

// NewSession builds a Session from the shared secret decrypted out of the
// client's EncryptionResponse packet.
func NewSession(sharedSecret []byte) (*Session, error) {
	if len(sharedSecret) != constants.AESKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSharedSecretWrongLength, len(sharedSecret), constants.AESKeySize)
	}

	encBlock, err := aes.NewCipher(sharedSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize encryption cipher: %w", err)
	}
	decBlock, err := aes.NewCipher(sharedSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize decryption cipher: %w", err)
	}

	return &Session{
		Encrypt: NewCFB8Encrypter(encBlock, sharedSecret),
		Decrypt: NewCFB8Decrypter(decBlock, sharedSecret),
	}, nil
}
