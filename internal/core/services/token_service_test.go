package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"amfb-directdebit/internal/adapters/cache"
	"amfb-directdebit/internal/config"
	"amfb-directdebit/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNIBSSConfig(tokenURL string) config.NIBSSConfig {
	return config.NIBSSConfig{
		TokenURL:     tokenURL,
		APIKey:       "test-api-key",
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Scope:        "profile",
		Timeout:      5 * time.Second,
		TokenMargin:  300 * time.Second,
		TokenFloor:   60 * time.Second,
	}
}

// missStore always misses on read, so every Acquire goes to the endpoint
type missStore struct {
	sets int
}

func (s *missStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (s *missStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.sets++
	return nil
}

func (s *missStore) Delete(ctx context.Context, key string) error { return nil }

func TestTokenServiceAcquireFetchesAndCaches(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-api-key", r.Header.Get("apikey"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostFormValue("grant_type"))
		assert.Equal(t, "test-client", r.PostFormValue("client_Id"))
		assert.Equal(t, "test-secret", r.PostFormValue("client_secret"))
		assert.Equal(t, "profile", r.PostFormValue("scope"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	defer server.Close()

	svc := NewTokenService(cache.NewMemoryStore(), testNIBSSConfig(server.URL))

	token, err := svc.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// Second acquire must come from the cache
	token, err = svc.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, 1, calls)
}

func TestTokenServiceRefetchesOnCacheMiss(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"access_token":"tok-fresh","expires_in":3600}`))
	}))
	defer server.Close()

	store := &missStore{}
	svc := NewTokenService(store, testNIBSSConfig(server.URL))

	for i := 0; i < 3; i++ {
		token, err := svc.Acquire(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-fresh", token)
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, store.sets)
}

func TestTokenServiceAcquireEndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer server.Close()

	svc := NewTokenService(cache.NewMemoryStore(), testNIBSSConfig(server.URL))

	_, err := svc.Acquire(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCredentialUnavailable)
}

func TestTokenServiceAcquireMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	svc := NewTokenService(cache.NewMemoryStore(), testNIBSSConfig(server.URL))

	_, err := svc.Acquire(context.Background())
	assert.ErrorIs(t, err, domain.ErrCredentialUnavailable)
}

func TestTokenServiceAcquireEmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"","expires_in":3600}`))
	}))
	defer server.Close()

	svc := NewTokenService(cache.NewMemoryStore(), testNIBSSConfig(server.URL))

	_, err := svc.Acquire(context.Background())
	assert.ErrorIs(t, err, domain.ErrCredentialUnavailable)
}

func TestTokenServiceAcquireUnreachableEndpoint(t *testing.T) {
	svc := NewTokenService(cache.NewMemoryStore(), testNIBSSConfig("http://127.0.0.1:1"))

	_, err := svc.Acquire(context.Background())
	assert.ErrorIs(t, err, domain.ErrCredentialUnavailable)
}

func TestTokenServiceCacheLifetime(t *testing.T) {
	svc := NewTokenService(cache.NewMemoryStore(), testNIBSSConfig("http://unused"))

	tests := []struct {
		name      string
		expiresIn int
		want      time.Duration
	}{
		{"margin subtracted", 3600, 3300 * time.Second},
		{"floored when inside margin", 310, 60 * time.Second},
		{"floored when below margin", 120, 60 * time.Second},
		{"zero defaults to an hour", 0, 3300 * time.Second},
		{"negative defaults to an hour", -10, 3300 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.cacheLifetime(tt.expiresIn))
		})
	}
}
