package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/cranelabs/landing-api/internal/http/middleware"
	"github.com/cranelabs/landing-api/internal/leads"
	"github.com/cranelabs/landing-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	IntakeHandler      *leads.IntakeHandler
	AdminHandler       *leads.AdminHandler
	AdminJWTSecret     string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// The intake handler owns its method dispatch and CORS headers so the
	// serverless entrypoint can reuse it verbatim.
	if cfg.IntakeHandler != nil {
		r.HandleFunc("/leads", cfg.IntakeHandler.Submit)
	}

	// Admin leads API (protected by HMAC JWT)
	if cfg.AdminHandler != nil && cfg.AdminJWTSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			if len(cfg.CORSAllowedOrigins) > 0 {
				admin.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
			}
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
			admin.Route("/leads", func(r chi.Router) {
				r.Get("/", cfg.AdminHandler.List)
				r.Get("/{id}", cfg.AdminHandler.Get)
				r.Patch("/{id}/status", cfg.AdminHandler.UpdateStatus)
			})
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
