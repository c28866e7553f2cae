package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerJWKSRoundTrip(t *testing.T) {
	key, _ := testKeys(t)
	signer := newTestSigner(t, key, "dev", newTestClock())

	raw, err := signer.JWKS()
	require.NoError(t, err)
	keys, err := parseJWKS(raw)
	require.NoError(t, err)
	require.Contains(t, keys, "dev")
	assert.Equal(t, key.PublicKey.N, keys["dev"].N)
	assert.Equal(t, key.PublicKey.E, keys["dev"].E)
}

func TestSignerWithoutKey(t *testing.T) {
	signer := NewSigner(nil, "dev", testIssuer, testAudience, 0)
	_, _, err := signer.GenerateToken("x", nil)
	assert.Error(t, err)
}

func TestPEMRoundTrip(t *testing.T) {
	key, _ := testKeys(t)
	dir := t.TempDir()

	privPEM, err := EncodePrivateKeyPEM(key)
	require.NoError(t, err)
	privPath := filepath.Join(dir, "private.pem")
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubPEM, err := EncodePublicKeyPEM(&key.PublicKey)
	require.NoError(t, err)
	pubPath := filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o644))

	loaded, err := LoadPrivateKeyPEM(privPath)
	require.NoError(t, err)
	assert.True(t, key.Equal(loaded))

	for _, path := range []string{privPath, pubPath} {
		pub, err := LoadPublicKeyPEM(path)
		require.NoError(t, err)
		assert.True(t, key.PublicKey.Equal(pub))
	}

	_, err = StaticKeys{"dev": &key.PublicKey}.PublicKey(context.Background(), "other")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
