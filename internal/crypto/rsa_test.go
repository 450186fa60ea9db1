package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	assert.Equal(t, 1024, kp.PrivateKey.N.BitLen())

	pub, err := x509.ParsePKIXPublicKey(kp.PublicKeyDER)
	require.NoError(t, err, "PublicKeyDER does not parse as PKIX")

	rsaPub, ok := pub.(*rsa.PublicKey)
	require.True(t, ok, "parsed public key is %T, want *rsa.PublicKey", pub)
	assert.Zero(t, rsaPub.N.Cmp(kp.PrivateKey.N), "DER-encoded modulus does not match private key modulus")
}

func TestKeyPair_DecryptPKCS1v15_RoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	sharedSecret := make([]byte, 16)
	_, err = rand.Read(sharedSecret)
	require.NoError(t, err)

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, &kp.PrivateKey.PublicKey, sharedSecret)
	require.NoError(t, err)

	plaintext, err := kp.DecryptPKCS1v15(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, sharedSecret, plaintext)
}

func TestKeyPair_DecryptPKCS1v15_Garbage(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	garbage := make([]byte, 128)
	_, err = rand.Read(garbage)
	require.NoError(t, err)

	_, err = kp.DecryptPKCS1v15(garbage)
	assert.Error(t, err, "DecryptPKCS1v15() on garbage ciphertext succeeded, want error")
}
