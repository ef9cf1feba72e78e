// Package api is the HTTP surface: a chi router over the two engines, the
// response cache, and the health check. The endpoint set is closed; the
// Prometheus scrape listener lives on its own port (cmd/chairview) so nothing
// is added here beyond the contract.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pdclabs/chairview/internal/credentialing"
	"github.com/pdclabs/chairview/internal/filters"
	"github.com/pdclabs/chairview/internal/pivot"
	"github.com/pdclabs/chairview/internal/respcache"
)

// PivotRunner runs the fee-strategy engine for one normalized filter.
type PivotRunner interface {
	Run(ctx context.Context, f filters.PivotFilter) (*pivot.Result, error)
}

// CredentialingRunner runs the credentialing engine for one normalized filter.
type CredentialingRunner interface {
	Run(ctx context.Context, f filters.CredentialingFilter) (*credentialing.Result, error)
}

// HealthChecker is the slice of the store adapter the health endpoint needs.
type HealthChecker interface {
	Ping(ctx context.Context) error
	CheckLayout(ctx context.Context) error
}

// Server holds the handler dependencies.
type Server struct {
	pivot          PivotRunner
	credentialing  CredentialingRunner
	health         HealthChecker
	cache          *respcache.Cache
	queryTimeout   time.Duration
	allowedOrigins []string

	now func() time.Time
}

// Config wires the server's collaborators.
type Config struct {
	Pivot          PivotRunner
	Credentialing  CredentialingRunner
	Health         HealthChecker
	Cache          *respcache.Cache
	QueryTimeout   time.Duration
	AllowedOrigins []string
}

func NewServer(cfg Config) *Server {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		pivot:          cfg.Pivot,
		credentialing:  cfg.Credentialing,
		health:         cfg.Health,
		cache:          cfg.Cache,
		queryTimeout:   cfg.QueryTimeout,
		allowedOrigins: origins,
		now:            time.Now,
	}
}

// Routes builds the router. The set of endpoints is contractual; unknown
// routes 404 and wrong methods 405, both with the JSON error body.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(requestLogMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Cache", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/fee-strategy/pivot", s.handlePivot)
		r.Get("/fee-strategy/pivot.csv", s.handlePivotCSV)
		r.Get("/credentialing/status", s.handleCredentialingStatus)
		r.Get("/credentialing/export.csv", s.handleCredentialingCSV)
	})

	// Legacy dashboard path; re-normalizes the query string and bounces to
	// the API route.
	r.Get("/fee-strategy/pivot-data", s.handlePivotRedirect)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// queryContext bounds one engine run. A zero timeout inherits the request
// deadline unchanged.
func (s *Server) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}
