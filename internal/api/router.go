package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/chronomate/chronomate/internal/middleware"
)

const readinessTimeout = 3 * time.Second

// HandlerSet holds handlers injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Auth
	Register http.HandlerFunc
	Login    http.HandlerFunc
	Refresh  http.HandlerFunc
	Logout   http.HandlerFunc

	// Account
	Me        http.HandlerFunc
	LinkJID   http.HandlerFunc
	UnlinkJID http.HandlerFunc

	// Chat and planner resources mount their own routes.
	ChatRoutes    func(chi.Router)
	PlannerRoutes func(chi.Router)

	GetQuota     http.HandlerFunc
	ListActivity http.HandlerFunc

	AuthMiddleware func(http.Handler) http.Handler
}

// ReadinessCheck reports whether one dependency is usable.
type ReadinessCheck struct {
	Name string
	// Optional checks only mark the service degraded; they never fail readiness.
	Optional bool
	Check    func(ctx context.Context) error
}

type RouterConfig struct {
	CORSAllowedOrigins []string
	AuthRateLimiter    func(http.Handler) http.Handler
	Readiness          []ReadinessCheck
}

func NewRouter(cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness: always 200, no dependency checks.
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	ready := readinessHandler(cfg.Readiness)
	r.Get("/health/ready", ready)
	r.Get("/health", ready)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthRateLimiter != nil {
				r.Use(cfg.AuthRateLimiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Post("/logout", h.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", h.Me)
				r.Put("/jid", h.LinkJID)
				r.Delete("/jid", h.UnlinkJID)
			})

			if h.ChatRoutes != nil {
				h.ChatRoutes(r)
			}
			if h.PlannerRoutes != nil {
				h.PlannerRoutes(r)
			}

			r.Get("/quota", h.GetQuota)
			if h.ListActivity != nil {
				r.Get("/activity", h.ListActivity)
			}
		})
	})

	return r
}

func readinessHandler(checks []ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		health := map[string]string{"status": "healthy"}
		status := http.StatusOK

		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				health[c.Name] = "unhealthy"
				health["status"] = "degraded"
				if !c.Optional {
					status = http.StatusServiceUnavailable
				}
				continue
			}
			health[c.Name] = "healthy"
		}

		JSON(w, status, health)
	}
}
