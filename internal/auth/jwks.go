package auth

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"go.uber.org/zap"
)

const (
	defaultJWKSCacheTTL       = 10 * time.Minute
	defaultJWKSMaxStale       = 30 * time.Minute
	defaultJWKSFetchTimeout   = 5 * time.Second
	defaultJWKSRetryAttempts  = 3
	defaultJWKSRetryBase      = 200 * time.Millisecond
	defaultJWKSRetryMax       = 2 * time.Second
	defaultMinRefreshInterval = 30 * time.Second
	maxJWKSBodyBytes          = 1 << 20
)

// DocumentCache is a shared store for the raw JWKS document so that several
// service instances do not all hit the identity provider.
type DocumentCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type keyState int

const (
	keyMissing keyState = iota
	keyFresh
	keyStale
)

// JWKSCache resolves signing keys from a remote JWKS endpoint. Keys are
// cached for a TTL and may be served stale for a bounded window while a
// background refresh runs. An unknown kid forces a refresh so rotated keys
// are picked up without waiting for the TTL.
type JWKSCache struct {
	url                string
	httpClient         *http.Client
	docs               DocumentCache
	docsKey            string
	ttl                time.Duration
	maxStale           time.Duration
	fetchTimeout       time.Duration
	retryBase          time.Duration
	retryMax           time.Duration
	minRefreshInterval time.Duration
	logger             *zap.Logger
	now                func() time.Time

	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	expiresAt   time.Time
	staleUntil  time.Time
	lastFetched time.Time

	refreshMu sync.Mutex
	refreshCh chan struct{}
	lastErr   error
}

// JWKSOption customises a JWKSCache.
type JWKSOption func(*JWKSCache)

// WithHTTPClient sets the client used to fetch the JWKS document.
func WithHTTPClient(client *http.Client) JWKSOption {
	return func(c *JWKSCache) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCacheTTL sets how long fetched keys stay fresh.
func WithCacheTTL(ttl time.Duration) JWKSOption {
	return func(c *JWKSCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxStale sets how long keys may be served after the TTL while refreshing.
func WithMaxStale(window time.Duration) JWKSOption {
	return func(c *JWKSCache) {
		if window >= 0 {
			c.maxStale = window
		}
	}
}

// WithMinRefreshInterval bounds how often an unknown kid may trigger a fetch.
func WithMinRefreshInterval(interval time.Duration) JWKSOption {
	return func(c *JWKSCache) {
		if interval >= 0 {
			c.minRefreshInterval = interval
		}
	}
}

// WithDocumentCache shares fetched documents through cache.
func WithDocumentCache(cache DocumentCache) JWKSOption {
	return func(c *JWKSCache) {
		c.docs = cache
	}
}

// WithLogger sets the logger used for background refresh failures.
func WithLogger(logger *zap.Logger) JWKSOption {
	return func(c *JWKSCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewJWKSCache builds a cache for the JWKS document at url.
func NewJWKSCache(url string, opts ...JWKSOption) *JWKSCache {
	sum := sha256.Sum256([]byte(url))
	c := &JWKSCache{
		url:                url,
		httpClient:         &http.Client{Timeout: defaultJWKSFetchTimeout},
		docsKey:            "casting:jwks:" + hex.EncodeToString(sum[:]),
		ttl:                defaultJWKSCacheTTL,
		maxStale:           defaultJWKSMaxStale,
		fetchTimeout:       defaultJWKSFetchTimeout,
		retryBase:          defaultJWKSRetryBase,
		retryMax:           defaultJWKSRetryMax,
		minRefreshInterval: defaultMinRefreshInterval,
		logger:             zap.NewNop(),
		now:                time.Now,
		keys:               map[string]*rsa.PublicKey{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PublicKey implements KeyProvider.
func (c *JWKSCache) PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, fmt.Errorf("%w: empty kid", ErrKeyNotFound)
	}
	now := c.now()
	key, state := c.lookup(kid, now)
	switch state {
	case keyFresh:
		return key, nil
	case keyStale:
		c.refreshAsync()
		return key, nil
	}

	if c.throttled(now) {
		return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
	}
	if err := c.refresh(ctx, kid); err != nil {
		return nil, err
	}
	if key, _ := c.lookup(kid, c.now()); key != nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
}

func (c *JWKSCache) lookup(kid string, now time.Time) (*rsa.PublicKey, keyState) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.keys[kid]
	if !ok {
		return nil, keyMissing
	}
	if now.Before(c.expiresAt) {
		return key, keyFresh
	}
	if !c.staleUntil.IsZero() && now.Before(c.staleUntil) {
		return key, keyStale
	}
	return nil, keyMissing
}

// throttled reports whether a kid miss arrived too soon after a successful
// fetch of a still-fresh key set.
func (c *JWKSCache) throttled(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastFetched.IsZero() || !now.Before(c.expiresAt) {
		return false
	}
	return now.Sub(c.lastFetched) < c.minRefreshInterval
}

func (c *JWKSCache) refreshAsync() {
	ctx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
	go func() {
		defer cancel()
		if err := c.refresh(ctx, ""); err != nil {
			c.logger.Warn("background jwks refresh failed", zap.String("url", c.url), zap.Error(err))
		}
	}()
}

func (c *JWKSCache) refresh(ctx context.Context, kid string) error {
	ch, leader := c.beginRefresh()
	if !leader {
		return c.waitRefresh(ctx, ch)
	}

	err := c.doRefresh(ctx, kid)
	c.finishRefresh(err, ch)
	return err
}

func (c *JWKSCache) beginRefresh() (chan struct{}, bool) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	if c.refreshCh != nil {
		return c.refreshCh, false
	}
	ch := make(chan struct{})
	c.refreshCh = ch
	return ch, true
}

func (c *JWKSCache) waitRefresh(ctx context.Context, ch chan struct{}) error {
	select {
	case <-ch:
		c.refreshMu.Lock()
		defer c.refreshMu.Unlock()
		return c.lastErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *JWKSCache) finishRefresh(err error, ch chan struct{}) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	c.lastErr = err
	close(ch)
	c.refreshCh = nil
}

func (c *JWKSCache) doRefresh(ctx context.Context, kid string) error {
	if kid != "" {
		if _, state := c.lookup(kid, c.now()); state == keyFresh {
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	if keys, ok := c.loadShared(ctx, kid); ok {
		c.install(keys)
		return nil
	}

	raw, keys, err := c.fetchWithRetry(ctx)
	if err != nil {
		return err
	}
	c.install(keys)
	c.storeShared(ctx, raw)
	return nil
}

func (c *JWKSCache) install(keys map[string]*rsa.PublicKey) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = keys
	c.lastFetched = now
	c.expiresAt = now.Add(c.ttl)
	c.staleUntil = c.expiresAt.Add(c.maxStale)
}

// loadShared returns the shared document's keys when it holds the wanted kid.
// A kid that the shared copy lacks means it is older than the rotation.
func (c *JWKSCache) loadShared(ctx context.Context, kid string) (map[string]*rsa.PublicKey, bool) {
	if c.docs == nil {
		return nil, false
	}
	raw, ok, err := c.docs.Get(ctx, c.docsKey)
	if err != nil {
		c.logger.Debug("shared jwks lookup failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	keys, err := parseJWKS(raw)
	if err != nil {
		return nil, false
	}
	if _, found := keys[kid]; kid != "" && !found {
		return nil, false
	}
	return keys, true
}

func (c *JWKSCache) storeShared(ctx context.Context, raw []byte) {
	if c.docs == nil {
		return
	}
	if err := c.docs.Set(ctx, c.docsKey, raw, c.ttl); err != nil {
		c.logger.Debug("shared jwks store failed", zap.Error(err))
	}
}

func (c *JWKSCache) fetchWithRetry(ctx context.Context) ([]byte, map[string]*rsa.PublicKey, error) {
	delay := c.retryBase
	var lastErr error
	for attempt := 0; attempt < defaultJWKSRetryAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(ctx, delay); err != nil {
				return nil, nil, err
			}
			delay *= 2
			if delay > c.retryMax {
				delay = c.retryMax
			}
		}
		raw, keys, err := c.fetchOnce(ctx)
		if err == nil {
			return raw, keys, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
	}
	return nil, nil, fmt.Errorf("fetch jwks: %w", lastErr)
}

func (c *JWKSCache) fetchOnce(ctx context.Context) ([]byte, map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSBodyBytes))
	if err != nil {
		return nil, nil, err
	}
	keys, err := parseJWKS(raw)
	if err != nil {
		return nil, nil, err
	}
	return raw, keys, nil
}

// parseJWKS decodes each entry on its own so one malformed or foreign key
// does not hide the usable ones.
func parseJWKS(raw []byte) (map[string]*rsa.PublicKey, error) {
	var payload struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	keys := make(map[string]*rsa.PublicKey, len(payload.Keys))
	for _, entry := range payload.Keys {
		var jwk jose.JSONWebKey
		if err := jwk.UnmarshalJSON(entry); err != nil {
			continue
		}
		if pub, ok := rsaSigningKey(jwk); ok {
			keys[jwk.KeyID] = pub
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("jwks contains no usable keys")
	}
	return keys, nil
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
