package auth

import (
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://casting.eu.auth0.com/"
	testAudience = "casting"
)

var (
	keyOnce  sync.Once
	keyPair  [2]*rsa.PrivateKey
	keyError error
)

// testKeys returns two RSA keys shared across the package tests.
func testKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keyOnce.Do(func() {
		for i := range keyPair {
			keyPair[i], keyError = GenerateKey()
			if keyError != nil {
				return
			}
		}
	})
	require.NoError(t, keyError)
	return keyPair[0], keyPair[1]
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestSigner(t *testing.T, key *rsa.PrivateKey, kid string, clock *testClock) *Signer {
	t.Helper()
	signer := NewSigner(key, kid, testIssuer, testAudience, time.Hour)
	signer.now = clock.Now
	return signer
}
