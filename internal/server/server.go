package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AutmateStudio/Anonimiser/internal/anonymize"
	"github.com/AutmateStudio/Anonimiser/internal/audit"
	"github.com/AutmateStudio/Anonimiser/internal/otel"
)

const defaultTimeout = 30 * time.Second

// Server holds all dependencies for the HTTP API.
type Server struct {
	router      *chi.Mux
	anonymizer  *anonymize.Anonymizer
	auditStore  *audit.Store
	auditGen    *audit.Generator
	limiter     *RateLimiter
	apiKeys     map[string]string
	corsOrigins []string
	maxTextKB   int
	nerEnabled  bool
	startTime   time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithAuditStore enables the signed audit trail.
func WithAuditStore(store *audit.Store) Option {
	return func(s *Server) {
		s.auditStore = store
		s.auditGen = audit.NewGenerator(store)
	}
}

// WithRateLimiter sets the per-caller request rate limiter.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) { s.limiter = rl }
}

// WithCORSOrigins sets allowed CORS origins (e.g. ["*"] for any).
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithMaxTextKB caps the request text size in KB.
func WithMaxTextKB(kb int) Option {
	return func(s *Server) { s.maxTextKB = kb }
}

// WithNEREnabled marks the NER detector as configured, for health reporting.
func WithNEREnabled(enabled bool) Option {
	return func(s *Server) { s.nerEnabled = enabled }
}

// NewServer builds a Server with the required dependencies and optional
// Option(s). apiKeys maps API key -> caller name.
func NewServer(anonymizer *anonymize.Anonymizer, apiKeys map[string]string, opts ...Option) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		anonymizer:  anonymizer,
		apiKeys:     apiKeys,
		corsOrigins: []string{"*"},
		maxTextKB:   64,
		startTime:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.apiKeys == nil {
		s.apiKeys = make(map[string]string)
	}
	return s
}

// Routes returns the configured http.Handler (chi router with all middleware
// and routes).
func (s *Server) Routes() http.Handler {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(otel.Middleware())
	r.Use(CORSMiddleware(s.corsOrigins))

	// Unauthenticated
	r.Get("/health", s.handleHealth)
	r.Get("/v1/health", s.handleHealth)

	// Authenticated API group
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.apiKeys))
		r.Use(RateLimitMiddleware(s.limiter))
		r.Use(middleware.Timeout(defaultTimeout))

		r.Post("/v1/redact", s.handleRedact)
		r.Post("/v1/restore", s.handleRestore)

		r.Get("/v1/audit", s.handleAuditList)
		r.Get("/v1/audit/{id}", s.handleAuditGet)
		r.Get("/v1/audit/{id}/verify", s.handleAuditVerify)
	})

	return r
}
