package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/starsign-web/starsign/internal/config"
	"github.com/starsign-web/starsign/internal/feed"
	"github.com/starsign-web/starsign/internal/observability"
	"github.com/starsign-web/starsign/internal/submissions"
)

// Server wires the HTTP surface: the submission API, the live feed
// socket, the embedded UI, and the operational endpoints.
type Server struct {
	cfg       config.Config
	store     submissions.Store
	storeMode string
	hub       *feed.Hub
	metrics   *observability.Metrics
	upgrader  websocket.Upgrader
	static    http.Handler

	// Overridable in tests for deterministic IDs and clock.
	newID func() string
	now   func() time.Time
}

func New(cfg config.Config, store submissions.Store, storeMode string, hub *feed.Hub, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		storeMode: storeMode,
		hub:       hub,
		metrics:   metrics,
		static:    newStaticHandler(),
		newID:     uuid.NewString,
		now:       time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only allow browser websocket connections from
				// the same origin, so other sites cannot attach to the
				// feed if the service is exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				if strings.EqualFold(u.Host, r.Host) {
					return true
				}
				for _, allowed := range cfg.CORSAllowedOrigins {
					if strings.EqualFold(strings.TrimRight(allowed, "/"), origin) {
						return true
					}
				}
				return false
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(secureHeaders)
	if s.cfg.AllowAnyOrigin || len(s.cfg.CORSAllowedOrigins) > 0 {
		allowed := s.cfg.CORSAllowedOrigins
		if s.cfg.AllowAnyOrigin {
			allowed = []string{"*"}
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowed,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Get("/ui", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Handle("/ui/*", http.StripPrefix("/ui/", s.static))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.cfg.SubmitRateLimit, s.cfg.SubmitRateWindow))
		r.Post("/v1/submissions", s.handleCreateSubmission)
	})
	r.Get("/v1/submissions/recent", s.handleRecentSubmissions)
	r.Get("/v1/submissions/ws", s.handleFeedWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"store_backend": s.storeMode,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Readiness exercises the store so a dead database flips the probe.
	if _, err := s.store.Recent(r.Context(), 1); err != nil {
		s.metrics.StoreErrors.WithLabelValues("recent").Inc()
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":        "unavailable",
			"store_backend": s.storeMode,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ready",
		"store_backend": s.storeMode,
	})
}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondErrors(w http.ResponseWriter, status int, msgs ...string) {
	respondJSON(w, status, errorResponse{Success: false, Errors: msgs})
}
