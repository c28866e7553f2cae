package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	jose "github.com/go-jose/go-jose/v4"
)

// ErrKeyNotFound is returned when no verification key matches a token's kid.
var ErrKeyNotFound = errors.New("signing key not found")

// KeyProvider resolves the RSA public key for a key identifier.
type KeyProvider interface {
	PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// StaticKeys is a fixed kid → key set, used with a locally configured PEM key.
type StaticKeys map[string]*rsa.PublicKey

// PublicKey implements KeyProvider.
func (s StaticKeys) PublicKey(_ context.Context, kid string) (*rsa.PublicKey, error) {
	key, ok := s[kid]
	if !ok {
		return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
	}
	return key, nil
}

// GenerateKey creates a new RSA key suitable for RS256.
func GenerateKey() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, 2048)
}

// LoadPrivateKeyPEM reads a PKCS#1 or PKCS#8 RSA private key.
func LoadPrivateKeyPEM(path string) (*rsa.PrivateKey, error) {
	block, err := readPEM(path)
	if err != nil {
		return nil, err
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return key, nil
}

// LoadPublicKeyPEM reads a PKIX public key, a PKCS#1 public key, or derives
// the public half of a private key file.
func LoadPublicKeyPEM(path string) (*rsa.PublicKey, error) {
	block, err := readPEM(path)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "PUBLIC KEY":
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		key, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("public key is not RSA")
		}
		return key, nil
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	default:
		priv, err := LoadPrivateKeyPEM(path)
		if err != nil {
			return nil, err
		}
		return &priv.PublicKey, nil
	}
}

// EncodePrivateKeyPEM serialises key as a PKCS#8 PEM block.
func EncodePrivateKeyPEM(key *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

func readPEM(path string) (*pem.Block, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("invalid PEM")
	}
	return block, nil
}

// publicJWK describes key as a signing JWK for the RS256 algorithm.
func publicJWK(kid string, key *rsa.PublicKey) jose.JSONWebKey {
	return jose.JSONWebKey{
		Key:       key,
		KeyID:     kid,
		Algorithm: string(jose.RS256),
		Use:       "sig",
	}
}

// rsaSigningKey extracts the RSA key from a JWK usable for signature checks.
func rsaSigningKey(key jose.JSONWebKey) (*rsa.PublicKey, bool) {
	if key.KeyID == "" || (key.Use != "" && key.Use != "sig") {
		return nil, false
	}
	pub, ok := key.Key.(*rsa.PublicKey)
	return pub, ok
}

// EncodePublicKeyPEM serialises key as a PKIX "PUBLIC KEY" block.
func EncodePublicKeyPEM(key *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}
