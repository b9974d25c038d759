package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clearpaw/vetclinic-platform/internal/directory"
	httpmiddleware "github.com/clearpaw/vetclinic-platform/internal/http/middleware"
	"github.com/clearpaw/vetclinic-platform/internal/waitinglist"
	"github.com/clearpaw/vetclinic-platform/internal/whiteboard"
	"github.com/clearpaw/vetclinic-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	BoardHandler       *waitinglist.Handler
	WhiteboardHandler  *whiteboard.Handler
	DirectoryHandler   *directory.Handler
	MetricsHandler     http.Handler
	StaffJWTSecret     string
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
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Clinic-scoped API routes
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(requireClinicID)
		if cfg.StaffJWTSecret != "" {
			api.Use(httpmiddleware.StaffJWT(cfg.StaffJWTSecret))
		}

		api.Route("/board", func(board chi.Router) {
			if cfg.WhiteboardHandler != nil {
				board.Get("/", cfg.WhiteboardHandler.GetBoard)
			}
			if cfg.BoardHandler != nil {
				board.Post("/entries", cfg.BoardHandler.CheckIn)
				board.Route("/entries/{entryID}", func(entry chi.Router) {
					entry.Put("/status", cfg.BoardHandler.UpdateStatus)
					entry.Put("/priority", cfg.BoardHandler.UpdatePriority)
					entry.Delete("/", cfg.BoardHandler.Remove)
					entry.Get("/events", cfg.BoardHandler.Events)
				})
			}
		})

		if cfg.DirectoryHandler != nil {
			api.Get("/patients/search", cfg.DirectoryHandler.SearchPatients)
		}
	})

	return r
}
