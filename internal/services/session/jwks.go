package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// DefaultJWKSTTL is how long a fetched key set is reused.
const DefaultJWKSTTL = time.Hour

// maxJWKSBytes bounds a key set response.
const maxJWKSBytes = 1 << 20

// JWKSManager fetches and caches the provider key set
type JWKSManager struct {
	url     string
	client  *http.Client
	ttl     time.Duration
	mu      sync.RWMutex
	keys    jwk.Set
	expires time.Time
}

// NewJWKSManager creates a JWKS manager for jwksURL. A nil client uses a
// 10 second timeout client.
func NewJWKSManager(jwksURL string, client *http.Client) *JWKSManager {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWKSManager{
		url:    jwksURL,
		client: client,
		ttl:    DefaultJWKSTTL,
	}
}

// URL returns the key set location.
func (m *JWKSManager) URL() string { return m.url }

// GetJWKS returns the cached key set, fetching it when missing or expired.
func (m *JWKSManager) GetJWKS(ctx context.Context) (jwk.Set, error) {
	m.mu.RLock()
	if m.keys != nil && time.Now().Before(m.expires) {
		keys := m.keys
		m.mu.RUnlock()
		return keys, nil
	}
	m.mu.RUnlock()

	return m.Refresh(ctx)
}

// Refresh fetches the key set unconditionally and replaces the cache.
func (m *JWKSManager) Refresh(ctx context.Context) (jwk.Set, error) {
	keys, err := m.fetchJWKS(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	m.mu.Lock()
	m.keys = keys
	m.expires = time.Now().Add(m.ttl)
	m.mu.Unlock()

	return keys, nil
}

func (m *JWKSManager) fetchJWKS(ctx context.Context) (jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read JWKS response: %w", err)
	}

	keys, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}
	if keys.Len() == 0 {
		return nil, fmt.Errorf("JWKS contains no keys")
	}

	return keys, nil
}
