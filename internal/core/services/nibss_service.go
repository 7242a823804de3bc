package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"

	"amfb-directdebit/internal/config"
)

// ResultKind classifies the outcome of a call to the NIBSS API
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultClientError
	ResultServerUnavailable
	ResultTimeout
	ResultTransportFailure
)

// APIResult is the normalized outcome of one NIBSS API call. Constructed only
// by the gateway; callers branch on Kind instead of handling transport errors.
type APIResult struct {
	Kind       ResultKind
	StatusCode int
	Body       []byte
	Message    string
}

// OK reports whether the call reached NIBSS and returned a 2xx
func (r APIResult) OK() bool {
	return r.Kind == ResultSuccess
}

// FileUpload is a file part for multipart NIBSS requests
type FileUpload struct {
	Field       string
	Name        string
	ContentType string
	Content     []byte
}

// TokenProvider supplies a bearer token for NIBSS calls
type TokenProvider interface {
	Acquire(ctx context.Context) (string, error)
}

// NIBSSService is the authenticated HTTP gateway to the NIBSS direct debit
// API. It owns outcome normalization (APIResult) and performs no retries;
// retry policy belongs to callers.
type NIBSSService struct {
	tokens  TokenProvider
	baseURL string
	client  *http.Client
}

// NewNIBSSService creates a new NIBSS gateway
func NewNIBSSService(tokens TokenProvider, cfg config.NIBSSConfig) *NIBSSService {
	return &NIBSSService{
		tokens:  tokens,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Call performs an authenticated request against the NIBSS API.
//
// payload is JSON-encoded for ordinary requests. When files are supplied the
// request is multipart form encoded and payload must be a map[string]string
// of form fields. Only GET, POST and PUT are supported; any other method is a
// programmer error and panics.
//
// A failed token acquisition is reported as ResultServerUnavailable carrying
// the credential error so callers surface a clean gateway failure.
func (s *NIBSSService) Call(ctx context.Context, method, endpoint string, payload any, params url.Values, files []FileUpload) APIResult {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut:
	default:
		panic(fmt.Sprintf("nibss: unsupported HTTP method %q", method))
	}

	token, err := s.tokens.Acquire(ctx)
	if err != nil {
		log.Printf("❌ API call aborted, no token: %v", err)
		return APIResult{
			Kind:       ResultServerUnavailable,
			StatusCode: http.StatusBadGateway,
			Message:    err.Error(),
		}
	}

	fullURL := s.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var body io.Reader
	contentType := ""
	if len(files) > 0 {
		fields, _ := payload.(map[string]string)
		encoded, ct, err := encodeMultipart(fields, files)
		if err != nil {
			return APIResult{Kind: ResultTransportFailure, Message: fmt.Sprintf("encode multipart body: %v", err)}
		}
		body = encoded
		contentType = ct
	} else if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return APIResult{Kind: ResultTransportFailure, Message: fmt.Sprintf("encode request body: %v", err)}
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return APIResult{Kind: ResultTransportFailure, Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	log.Printf("🌐 NIBSS request: %s %s", method, fullURL)

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			log.Printf("❌ NIBSS request timed out: %s %s", method, fullURL)
			return APIResult{Kind: ResultTimeout, StatusCode: http.StatusGatewayTimeout, Message: "Request timed out"}
		}
		log.Printf("❌ NIBSS request failed: %v", err)
		return APIResult{Kind: ResultTransportFailure, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return APIResult{Kind: ResultTransportFailure, Message: fmt.Sprintf("read response body: %v", err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return APIResult{Kind: ResultSuccess, StatusCode: resp.StatusCode, Body: respBody}
	}

	message := extractErrorMessage(respBody)
	log.Printf("❌ NIBSS request rejected [%d]: %s", resp.StatusCode, message)

	kind := ResultServerUnavailable
	if resp.StatusCode < 500 {
		kind = ResultClientError
	}
	return APIResult{Kind: kind, StatusCode: resp.StatusCode, Body: respBody, Message: message}
}

// encodeMultipart builds a multipart body from form fields and file parts
func encodeMultipart(fields map[string]string, files []FileUpload) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}

// extractErrorMessage pulls the message field from a JSON error body, falling
// back to the raw response text
func extractErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "HTTP error"
	}
	return text
}

// isTimeout reports whether a transport error was a timeout
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
