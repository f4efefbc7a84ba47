// Package api provides the pastemark REST API server.
package api

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pastemark/pastemark/core/cache"
	"github.com/pastemark/pastemark/core/match"
	"github.com/pastemark/pastemark/core/reconcile"
	"github.com/pastemark/pastemark/internal/logging"
	"github.com/pastemark/pastemark/internal/session"
)

const version = "0.1.0"

// Server wires the session store, reconciliation engine, and WebSocket hub
// behind the HTTP API.
type Server struct {
	cfg     Config
	store   *session.Store
	engine  *reconcile.Engine
	results *cache.ResultCache
	hub     *Hub
	start   time.Time
}

// New creates a server from configuration, opening the session store.
func New(cfg Config) (*Server, error) {
	if err := ValidateAuthConfig(cfg.Auth); err != nil {
		return nil, fmt.Errorf("invalid auth config: %w", err)
	}
	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
			return nil, fmt.Errorf("TLS enabled but cert or key file not specified")
		}
		if _, err := os.Stat(cfg.TLS.CertFile); err != nil {
			return nil, fmt.Errorf("TLS cert file not found: %w", err)
		}
		if _, err := os.Stat(cfg.TLS.KeyFile); err != nil {
			return nil, fmt.Errorf("TLS key file not found: %w", err)
		}
	}

	store, err := session.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:     cfg,
		store:   store,
		engine:  reconcile.New(match.DefaultConfig()),
		results: cache.NewDefaultResultCache(),
		hub:     NewHub(),
		start:   time.Now(),
	}, nil
}

// Close releases the server's resources.
func (s *Server) Close() error {
	return s.store.Close()
}

// Handler builds the full middleware chain around the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/reconcile", s.handleReconcile)
	mux.HandleFunc("/verify", s.handleVerify)
	mux.HandleFunc("/sessions", s.handleSessions)
	mux.HandleFunc("/sessions/", s.handleSessionByID)
	mux.HandleFunc("/ws", s.handleWebSocket)

	var handler http.Handler = mux

	if s.cfg.Auth.Enabled {
		handler = AuthMiddleware(s.cfg.Auth, handler)
		logging.SecurityEvent("authentication_configured", "api",
			"enabled", true,
			"note", "API key required")
	} else {
		logging.SecurityEvent("authentication_configured", "api",
			"enabled", false,
			"note", "all requests allowed")
	}

	if s.cfg.RateLimitRequests > 0 {
		rlCfg := RateLimiterConfig{
			RequestsPerMinute: s.cfg.RateLimitRequests,
			BurstSize:         s.cfg.RateLimitBurst,
		}
		if rlCfg.BurstSize == 0 {
			rlCfg.BurstSize = 10
		}
		handler = NewRateLimiter(rlCfg).Middleware(handler)
		logging.Info("rate limiting enabled",
			"requests_per_minute", rlCfg.RequestsPerMinute,
			"burst_size", rlCfg.BurstSize)
	}

	handler = corsMiddleware(s.cfg.AllowedOrigins, handler)
	handler = logging.CombinedMiddleware(handler)
	return handler
}

// Start runs the hub and serves the API until the listener fails.
func (s *Server) Start() error {
	go s.hub.Run()

	protocol := "http"
	if s.cfg.TLS.Enabled {
		protocol = "https"
		logging.Info("TLS enabled", "cert_file", s.cfg.TLS.CertFile)
	} else {
		logging.Warn("TLS disabled - using plain HTTP",
			"recommendation", "consider using TLS or reverse proxy for production")
	}
	logging.ServerStartup("rest_api", protocol, s.cfg.Port,
		"database", s.cfg.DatabasePath)

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	handler := s.Handler()
	if s.cfg.TLS.Enabled {
		return http.ListenAndServeTLS(addr, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile, handler)
	}
	return http.ListenAndServe(addr, handler)
}

// corsMiddleware applies origin checks. An empty allow-list permits all
// origins.
func corsMiddleware(allowed []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if len(allowed) == 0 {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				for _, a := range allowed {
					if a == origin {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						w.Header().Set("Vary", "Origin")
						break
					}
				}
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
