package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestServer(cfg Config) *Server {
	cfg.RateLimitPerMinute = 0
	return NewServer(cfg, Dependencies{})
}

func TestMiddlewareChain_SetsSecurityAndRequestIDHeaders(t *testing.T) {
	s := newTestServer(DefaultConfig())

	h := s.buildMiddlewareChain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMiddlewareChain_RejectsOversizedBody(t *testing.T) {
	s := newTestServer(DefaultConfig())

	h := s.buildMiddlewareChain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/achievements", strings.NewReader("x"))
	req.ContentLength = maxRequestBodyBytes + 1

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRequireAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKeys = []string{"secret"}
	s := newTestServer(cfg)

	h := s.requireAPIKey(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	// Missing key
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/v1/achievements", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong key
	req := httptest.NewRequest(http.MethodPost, "/api/v1/achievements", nil)
	req.Header.Set(cfg.APIKeyHeader, "wrong")
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid key
	req = httptest.NewRequest(http.MethodPost, "/api/v1/achievements", nil)
	req.Header.Set(cfg.APIKeyHeader, "secret")
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRequireAPIKey_OpenWithoutConfiguredKeys(t *testing.T) {
	s := newTestServer(DefaultConfig())

	h := s.requireAPIKey(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/v1/achievements", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
