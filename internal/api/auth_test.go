package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testAPIKey = "0123456789abcdef0123456789abcdef"

func TestValidateAuthConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AuthConfig
		wantErr bool
	}{
		{"disabled", AuthConfig{Enabled: false}, false},
		{"enabled with key", AuthConfig{Enabled: true, APIKey: testAPIKey}, false},
		{"enabled without key", AuthConfig{Enabled: true}, true},
		{"enabled short key", AuthConfig{Enabled: true, APIKey: "short"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAuthConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAuthConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(AuthConfig{Enabled: true, APIKey: testAPIKey}, next)

	tests := []struct {
		name   string
		path   string
		key    string
		status int
	}{
		{"missing key", "/sessions", "", http.StatusUnauthorized},
		{"wrong key", "/sessions", "wrong-key-wrong-key", http.StatusUnauthorized},
		{"valid key", "/sessions", testAPIKey, http.StatusOK},
		{"health bypasses auth", "/health", "", http.StatusOK},
		{"root bypasses auth", "/", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestAuthDisabledAllowsAll(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(AuthConfig{Enabled: false}, next)

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestUnauthorizedResponseIsJSON(t *testing.T) {
	handler := AuthMiddleware(AuthConfig{Enabled: true, APIKey: testAPIKey},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), "UNAUTHORIZED") {
		t.Errorf("body = %q, want UNAUTHORIZED code", rec.Body.String())
	}
}
