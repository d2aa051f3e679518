package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		requestOrigin  string
		method         string
		preflight      bool
		wantStatus     int
		wantHeader     string
	}{
		{
			name:           "no origins configured blocks all",
			allowedOrigins: []string{},
			requestOrigin:  "https://example.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
		},
		{
			name:           "default frontend origin allowed",
			allowedOrigins: DefaultCORSConfig().AllowedOrigins,
			requestOrigin:  "http://localhost:5173",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "http://localhost:5173",
		},
		{
			name:           "disallowed origin blocked on preflight",
			allowedOrigins: []string{"https://example.com"},
			requestOrigin:  "https://evil.com",
			method:         http.MethodOptions,
			preflight:      true,
			wantStatus:     http.StatusForbidden,
		},
		{
			name:           "preflight returns no content",
			allowedOrigins: []string{"https://example.com"},
			requestOrigin:  "https://example.com",
			method:         http.MethodOptions,
			preflight:      true,
			wantStatus:     http.StatusNoContent,
			wantHeader:     "https://example.com",
		},
		{
			name:           "case insensitive origin match",
			allowedOrigins: []string{"HTTPS://EXAMPLE.COM"},
			requestOrigin:  "https://example.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "https://example.com",
		},
		{
			name:           "wildcard ignores origin with port",
			allowedOrigins: []string{"*.notes.test"},
			requestOrigin:  "http://acme.notes.test:5173",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "",
		},
		{
			name:           "wildcard matches tenant subdomain without port",
			allowedOrigins: []string{"*.notes.test"},
			requestOrigin:  "http://acme.notes.test",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "http://acme.notes.test",
		},
		{
			name:           "wildcard does not match lookalike domain",
			allowedOrigins: []string{"*.notes.test"},
			requestOrigin:  "http://evilnotes.test",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
		},
		{
			name:           "no origin header skips CORS",
			allowedOrigins: []string{"https://example.com"},
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowedOrigins = tt.allowedOrigins

			handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.requestOrigin != "" {
				req.Header.Set("Origin", tt.requestOrigin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestCORSPreflightHeaders(t *testing.T) {
	handler := CORS(DefaultCORSConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/notes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	for _, h := range []string{"Access-Control-Allow-Methods", "Access-Control-Allow-Headers", "Access-Control-Max-Age"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("%s not set on preflight", h)
		}
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
	}
}
