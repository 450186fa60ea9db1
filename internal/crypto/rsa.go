package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	"github.com/udisondev/mcgo/internal/constants"
)

// KeyPair holds the server's RSA login keypair, precomputed for fast
// decryption, plus the ASN.1 DER encoding of the public half sent verbatim
// in EncryptionRequest.
type KeyPair struct {
	PrivateKey      *rsa.PrivateKey
	PublicKeyDER []byte
}

// GenerateKeyPair generates the server's RSA keypair with exponent 65537
// (F4), pre-computing CRT values for faster EncryptionResponse decryption.
func GenerateKeyPair() (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, constants.RSAKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generating RSA key: %w", err)
	}
	privateKey.Precompute()

	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshaling public key: %w", err)
	}

	return &KeyPair{PrivateKey: privateKey, PublicKeyDER: der}, nil
}

// DecryptPKCS1v15 decrypts a PKCS#1v1.5-padded ciphertext (the shared secret
// or the verify token from EncryptionResponse) with the server's private
// key.
func (k *KeyPair) DecryptPKCS1v15(ciphertext []byte) ([]byte, error) {
	plaintext, err := rsa.DecryptPKCS1v15(rand.Reader, k.PrivateKey, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRSADecryptFailed, err)
	}
	return plaintext, nil
}
