package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"amfb-directdebit/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTokens is a canned TokenProvider
type stubTokens struct {
	token string
	err   error
}

func (s stubTokens) Acquire(ctx context.Context) (string, error) {
	return s.token, s.err
}

func gatewayConfig(baseURL string, timeout time.Duration) config.NIBSSConfig {
	return config.NIBSSConfig{BaseURL: baseURL, Timeout: timeout}
}

func TestNIBSSServiceCallSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/ndd/api/MandateRequest/CreateEmandate", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"billerId":"455"}`, string(body))

		w.Write([]byte(`{"data":{"mandateCode":"RC/2024/001"}}`))
	}))
	defer server.Close()

	svc := NewNIBSSService(stubTokens{token: "tok"}, gatewayConfig(server.URL, 5*time.Second))

	result := svc.Call(context.Background(), http.MethodPost, "ndd/api/MandateRequest/CreateEmandate",
		map[string]any{"billerId": "455"}, nil, nil)

	assert.True(t, result.OK())
	assert.Equal(t, ResultSuccess, result.Kind)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, string(result.Body), "RC/2024/001")
}

func TestNIBSSServiceCallClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid account number"}`))
	}))
	defer server.Close()

	svc := NewNIBSSService(stubTokens{token: "tok"}, gatewayConfig(server.URL, 5*time.Second))

	result := svc.Call(context.Background(), http.MethodPost, "ndd/api/x", nil, nil, nil)

	assert.Equal(t, ResultClientError, result.Kind)
	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
	assert.Equal(t, "Invalid account number", result.Message)
}

func TestNIBSSServiceCallServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	svc := NewNIBSSService(stubTokens{token: "tok"}, gatewayConfig(server.URL, 5*time.Second))

	result := svc.Call(context.Background(), http.MethodGet, "ndd/api/x", nil, nil, nil)

	assert.Equal(t, ResultServerUnavailable, result.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
	assert.Equal(t, "upstream down", result.Message)
}

func TestNIBSSServiceCallEmptyErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewNIBSSService(stubTokens{token: "tok"}, gatewayConfig(server.URL, 5*time.Second))

	result := svc.Call(context.Background(), http.MethodGet, "ndd/api/x", nil, nil, nil)

	assert.Equal(t, ResultServerUnavailable, result.Kind)
	assert.Equal(t, "HTTP error", result.Message)
}

func TestNIBSSServiceCallTokenFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server must not be reached without a token")
	}))
	defer server.Close()

	svc := NewNIBSSService(
		stubTokens{err: errors.New("token endpoint returned 401")},
		gatewayConfig(server.URL, 5*time.Second))

	result := svc.Call(context.Background(), http.MethodPost, "ndd/api/x", nil, nil, nil)

	assert.Equal(t, ResultServerUnavailable, result.Kind)
	assert.Equal(t, http.StatusBadGateway, result.StatusCode)
	assert.Contains(t, result.Message, "token endpoint returned 401")
}

func TestNIBSSServiceCallTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	svc := NewNIBSSService(stubTokens{token: "tok"}, gatewayConfig(server.URL, 20*time.Millisecond))

	result := svc.Call(context.Background(), http.MethodGet, "ndd/api/x", nil, nil, nil)

	assert.Equal(t, ResultTimeout, result.Kind)
	assert.Equal(t, http.StatusGatewayTimeout, result.StatusCode)
	assert.Equal(t, "Request timed out", result.Message)
}

func TestNIBSSServiceCallTransportFailure(t *testing.T) {
	svc := NewNIBSSService(stubTokens{token: "tok"}, gatewayConfig("http://127.0.0.1:1", 5*time.Second))

	result := svc.Call(context.Background(), http.MethodGet, "ndd/api/x", nil, nil, nil)

	assert.Equal(t, ResultTransportFailure, result.Kind)
	assert.NotEmpty(t, result.Message)
}

func TestNIBSSServiceCallQueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "RC/2024/001", r.URL.Query().Get("MandateCode"))
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	svc := NewNIBSSService(stubTokens{token: "tok"}, gatewayConfig(server.URL, 5*time.Second))

	params := url.Values{}
	params.Set("MandateCode", "RC/2024/001")
	result := svc.Call(context.Background(), http.MethodPost, "ndd/api/MandateRequest/MandateStatus", nil, params, nil)

	assert.True(t, result.OK())
}

func TestNIBSSServiceCallMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "455", r.FormValue("billerId"))
		assert.Equal(t, "0123456789", r.FormValue("accountNumber"))

		file, header, err := r.FormFile("mandateImageFile")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "mandate.jpg", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), content)

		w.Write([]byte(`{"data":{"mandateCode":"RC/2024/002"}}`))
	}))
	defer server.Close()

	svc := NewNIBSSService(stubTokens{token: "tok"}, gatewayConfig(server.URL, 5*time.Second))

	fields := map[string]string{"billerId": "455", "accountNumber": "0123456789"}
	files := []FileUpload{{
		Field:       "mandateImageFile",
		Name:        "mandate.jpg",
		ContentType: "image/jpeg",
		Content:     []byte("jpeg-bytes"),
	}}

	result := svc.Call(context.Background(), http.MethodPost, "ndd/api/MandateRequest/CreateMandateDirectDebit", fields, nil, files)

	assert.True(t, result.OK())
}

func TestNIBSSServiceCallUnsupportedMethodPanics(t *testing.T) {
	svc := NewNIBSSService(stubTokens{token: "tok"}, gatewayConfig("http://unused", 5*time.Second))

	assert.Panics(t, func() {
		svc.Call(context.Background(), http.MethodDelete, "ndd/api/x", nil, nil, nil)
	})
}
