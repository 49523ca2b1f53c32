// Package web provides the HTTP server and handlers for the dowry case dashboard.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/auth"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/charts"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/config"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/core"
	mw "github.com/sidhushesank/ethical-dowry-analyser/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Deps are the collaborators a Server needs.
type Deps struct {
	Config   *config.Config
	Sessions *scs.SessionManager
	Auth     auth.Provider
	Resolver *core.Resolver
	Loader   *core.Loader
	Uploads  *core.UploadStore
	Activity core.ActivityLog
	Charts   *charts.Renderer
}

// Server is the HTTP server for the dashboard.
type Server struct {
	cfg      *config.Config
	sessions *scs.SessionManager
	auth     auth.Provider
	resolver *core.Resolver
	loader   *core.Loader
	uploads  *core.UploadStore
	activity core.ActivityLog
	charts   *charts.Renderer

	router   *chi.Mux
	server   *http.Server
	limiters []*rateLimiter
}

// NewServer creates a Server with middleware and routes installed.
func NewServer(d Deps) (*Server, error) {
	switch {
	case d.Config == nil:
		return nil, errors.New("web: config is required")
	case d.Sessions == nil:
		return nil, errors.New("web: session manager is required")
	case d.Auth == nil:
		return nil, errors.New("web: auth provider is required")
	case d.Resolver == nil || d.Loader == nil || d.Uploads == nil:
		return nil, errors.New("web: resolver, loader and upload store are required")
	}
	if d.Activity == nil {
		d.Activity = core.NewMemoryActivityLog(0)
	}
	if d.Charts == nil {
		d.Charts = charts.NewRenderer(d.Config.Charts.Width, d.Config.Charts.Height)
	}

	s := &Server{
		cfg:      d.Config,
		sessions: d.Sessions,
		auth:     d.Auth,
		resolver: d.Resolver,
		loader:   d.Loader,
		uploads:  d.Uploads,
		activity: d.Activity,
		charts:   d.Charts,
		router:   chi.NewRouter(),
	}
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	s.setupMiddleware()
	if err := s.setupRoutes(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.RequestMetadata)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(s.routeLimit(s.cfg.Rate.RequestsPerMinute))
	s.router.Use(s.sessions.LoadAndSave)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("static files: %w", err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)

	requestTimeout := middleware.Timeout(s.cfg.Server.RequestTimeout)

	// Authentication
	s.router.Group(func(r chi.Router) {
		r.Use(requestTimeout)
		r.Get("/login", s.handleLoginForm)
		r.With(s.routeLimit(s.cfg.Rate.LoginLimit)).Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
	})

	// Pages
	s.router.Group(func(r chi.Router) {
		r.Use(mw.RequireLogin(s.signedIn, "/login"))

		// Uploads get their own deadline.
		r.With(middleware.Timeout(s.cfg.Upload.Timeout), s.routeLimit(s.cfg.Rate.UploadLimit)).
			Post("/upload", s.handleUpload)

		r.Group(func(r chi.Router) {
			r.Use(requestTimeout)

			r.Get("/", s.handleDashboard)
			r.Get("/trends", s.handleTrends)
			r.Get("/hotspots", s.handleHotspots)
			r.Get("/hotspots-map", s.handleHotspotsMap)

			r.Get("/cases", s.handleCases)
			r.Get("/cases/download", s.handleDownload)

			r.Get("/upload", s.handleUploadForm)
			r.Post("/reset-data", s.handleReset)
		})
	})

	// JSON API
	s.router.Route("/api", func(r chi.Router) {
		r.Use(requestTimeout)
		r.Use(mw.APIKeyAuth(s.cfg.Security.APIKeys, s.signedIn))

		r.Get("/summary", s.handleAPISummary)
		r.Get("/hotspots", s.handleAPIHotspots)
		r.With(mw.RequireAdmin(s.isAdmin)).Get("/activity", s.handleAPIActivity)
		r.Get("/uploads/status", s.handleUploadQueueStatus)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, fmt.Errorf("page not found: %s", r.URL.Path), http.StatusNotFound)
	})
	return nil
}

// routeLimit returns a per-route limiter, or a pass-through when rate
// limiting is disabled.
func (s *Server) routeLimit(perMinute int) func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.newRateLimiter(perMinute, time.Minute).middleware
}

// Start listens for HTTP requests until Shutdown. It returns
// http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight uploads to finish
// and releases background resources.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.Close()
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	if err := s.uploads.Limiter().WaitForDrain(ctx); err != nil {
		return fmt.Errorf("waiting for uploads: %w", err)
	}
	return nil
}

// Close stops the rate limiter cleanup goroutines.
func (s *Server) Close() {
	for _, rl := range s.limiters {
		rl.stop()
	}
	s.limiters = nil
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

const contentSecurityPolicy = "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:; font-src 'self'; form-action 'self'; frame-ancestors 'none'"

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// Charts are inlined as data: URIs.
				w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter is a fixed-window request counter per client IP.
type rateLimiter struct {
	server *Server

	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a limiter owned by s and starts its cleanup loop.
func (s *Server) newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		server:   s,
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	s.limiters = append(s.limiters, rl)
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every window until stopped.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if rl.now().Sub(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists || now.Sub(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// errRateLimited is mapped to RATE001.
var errRateLimited = errors.New("rate limit exceeded")

// middleware rate limits by client IP. RemoteAddr has already been
// rewritten by TrustedRealIP when the request came through a trusted proxy.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(core.GetIPAddressFromContext(r.Context())) {
			w.Header().Set("Retry-After", fmt.Sprint(int(rl.window.Seconds())))
			rl.server.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		reqLogger(r).Error("json encode error", "error", err)
	}
}
