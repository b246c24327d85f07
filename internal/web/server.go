// Package web provides the JSON HTTP API of the toy shop.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/JonMunkholm/leopold/internal/core"
	mw "github.com/JonMunkholm/leopold/internal/web/middleware"
)

// Options configure the HTTP server. Zero values select defaults.
type Options struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration // per-request middleware timeout

	TrustedProxies     []string // CIDRs allowed to set X-Real-IP / X-Forwarded-For
	CORSAllowedOrigins []string // storefront origins; empty or "*" allows any

	RateLimitEnabled   bool
	RequestsPerMinute  int // per IP, all routes
	Burst              int
	AssistantPerMinute int // per IP, AI routes
}

// Server is the HTTP server for the shop API.
type Server struct {
	service *core.Service
	opts    Options
	router  *chi.Mux
	server  *http.Server

	limiters []*mw.RateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 75 * time.Second
	}
	s := &Server{
		service: service,
		opts:    opts,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.opts.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.opts.RequestTimeout))
	s.router.Use(securityHeaders)
	s.router.Use(s.corsHandler().Handler)

	if s.opts.RateLimitEnabled {
		s.router.Use(s.newLimiter(s.opts.RequestsPerMinute, s.opts.Burst).Handler)
	}
}

func (s *Server) corsHandler() *cors.Cors {
	origins := s.opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "Retry-After"},
		MaxAge:         600,
	})
}

func (s *Server) newLimiter(perMinute, burst int) *mw.RateLimiter {
	rl := mw.NewRateLimiter(perMinute, burst)
	s.limiters = append(s.limiters, rl)
	return rl
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Storefront
		r.Get("/categories", s.handleListCategories)
		r.Get("/toys", s.handleListToys)
		r.Get("/toys/{id}", s.handleGetToy)
		r.Get("/toy-of-the-day", s.handleToyOfTheDay)
		r.Post("/orders", s.handlePlaceOrder)

		// AI assistant, with its own tighter limit
		r.Group(func(r chi.Router) {
			if s.opts.RateLimitEnabled {
				r.Use(s.newLimiter(s.opts.AssistantPerMinute, 1).Handler)
			}
			r.Get("/toys/{id}/story", s.handleStory)
			r.Post("/assistant/recommendations", s.handleRecommend)
			r.Post("/assistant/speech", s.handleSpeech)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleLogin)

			r.Group(func(r chi.Router) {
				r.Use(mw.AdminAuth(s.service))

				r.Post("/logout", s.handleLogout)

				// Catalog
				r.Post("/toys", s.handleCreateToy)
				r.Put("/toys/{id}", s.handleUpdateToy)
				r.Delete("/toys/{id}", s.handleDeleteToy)
				r.Put("/toy-of-the-day", s.handleSetToyOfTheDay)
				r.Post("/categories", s.handleCreateCategory)
				r.Delete("/categories/{id}", s.handleDeleteCategory)
				r.Get("/export", s.handleExportCatalog)

				// Orders
				r.Get("/orders", s.handleListOrders)
				r.Delete("/orders/{id}", s.handleRemoveOrder)
				r.Post("/orders/{id}/toggle", s.handleToggleOrder)

				// Settings
				r.Get("/settings", s.handleGetSettings)
				r.Put("/settings", s.handleSaveSettings)
				r.Post("/settings/test", s.handleTestBot)

				// Syncs
				r.Get("/sync", s.handleSyncStatus)
				r.Post("/sync/sheet", s.handleSyncSheet)
				r.Post("/sync/orders", s.handleSyncOrders)
			})
		})
	})
}

// Start begins listening for HTTP requests. Rate limiter cleanup runs
// until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	for _, rl := range s.limiters {
		go rl.Run(ctx)
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
