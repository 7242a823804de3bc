package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"amfb-directdebit/internal/adapters/cache"
	"amfb-directdebit/internal/config"
	"amfb-directdebit/internal/core/domain"
)

// tokenCacheKey is the fixed cache key for the NIBSS API token
const tokenCacheKey = "nibss:api:token"

// TokenService owns acquisition, caching and expiry of the NIBSS bearer
// token. The cached lifetime is the provider-reported lifetime minus a safety
// margin (floored), so a token handed to a caller always has usable validity
// left. Concurrent callers on a cache miss may each fetch their own token;
// the token endpoint is idempotent so this costs an extra round trip, not
// correctness, and no single-flight lock is taken.
type TokenService struct {
	cache  cache.Store
	cfg    config.NIBSSConfig
	client *http.Client
}

// NewTokenService creates a new token service
func NewTokenService(store cache.Store, cfg config.NIBSSConfig) *TokenService {
	return &TokenService{
		cache:  store,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// tokenResponse is the token endpoint payload
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Acquire returns a cached API token, fetching a fresh one when the cache is
// empty or the stored token is within the safety margin of expiry. Failures
// are never retried here; every failure maps to ErrCredentialUnavailable.
func (s *TokenService) Acquire(ctx context.Context) (string, error) {
	if token, ok, err := s.cache.Get(ctx, tokenCacheKey); err == nil && ok {
		return token, nil
	} else if err != nil {
		// Cache read failures degrade to a fresh fetch
		log.Printf("⚠️ Token cache read failed: %v", err)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_Id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("scope", s.cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCredentialUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("apikey", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("❌ API token request failed: %v", err)
		return "", fmt.Errorf("%w: %v", domain.ErrCredentialUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCredentialUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("❌ HTTP error fetching API token: %s", string(body))
		return "", fmt.Errorf("%w: token endpoint returned %d: %s",
			domain.ErrCredentialUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("%w: malformed token response: %v", domain.ErrCredentialUnavailable, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned no access token", domain.ErrCredentialUnavailable)
	}

	ttl := s.cacheLifetime(tr.ExpiresIn)
	if err := s.cache.Set(ctx, tokenCacheKey, tr.AccessToken, ttl); err != nil {
		// A token we cannot cache is still a usable token
		log.Printf("⚠️ Token cache write failed: %v", err)
	}

	log.Printf("🔑 New API token obtained, cached for %s", ttl)
	return tr.AccessToken, nil
}

// cacheLifetime computes how long a token may be served from cache: provider
// lifetime minus the safety margin, never below the floor.
func (s *TokenService) cacheLifetime(expiresIn int) time.Duration {
	lifetime := time.Duration(expiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	ttl := lifetime - s.cfg.TokenMargin
	if ttl < s.cfg.TokenFloor {
		ttl = s.cfg.TokenFloor
	}
	return ttl
}
