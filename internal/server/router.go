package server

import (
	"net/http"

	"github.com/cloo-solutions/storelens/internal/api"
	"github.com/cloo-solutions/storelens/internal/api/handlers"
	"github.com/cloo-solutions/storelens/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

// BodyLimits sizes request bodies. Snapshot covers routes that upload storage
// records (snapshot create and scan); Request covers everything else.
type BodyLimits struct {
	Request  int64
	Snapshot int64
}

const (
	DefaultRequestBodyLimit  int64 = 1 << 20
	DefaultSnapshotBodyLimit int64 = 16 << 20
)

func (l BodyLimits) withDefaults() BodyLimits {
	if l.Request == 0 {
		l.Request = DefaultRequestBodyLimit
	}
	if l.Snapshot == 0 {
		l.Snapshot = DefaultSnapshotBodyLimit
	}
	return l
}

type RouterConfig struct {
	BodyLimits         BodyLimits
	AuthValidator      middleware.AuthValidator
	AuthHandler        *handlers.AuthHandler
	SearchHandler      *handlers.SearchHandler
	ScanHandler        *handlers.ScanHandler
	SnapshotHandler    *handlers.SnapshotHandler
	SavedSearchHandler *handlers.SavedSearchHandler
	ExportHandler      *handlers.ExportHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	limits := cfg.BodyLimits.withDefaults()

	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	r.Use(middleware.AccessLog)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

		r.Group(func(r chi.Router) {
			r.Use(middleware.BodyLimit(limits.Snapshot))

			r.Post("/scan", cfg.ScanHandler.Scan)

			r.Route("/snapshots", func(r chi.Router) {
				r.Post("/", cfg.SnapshotHandler.Create)
				r.Get("/", cfg.SnapshotHandler.List)
				r.Get("/{id}", cfg.SnapshotHandler.Get)
				r.Delete("/{id}", cfg.SnapshotHandler.Delete)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.BodyLimit(limits.Request))

			r.Route("/search", func(r chi.Router) {
				r.Post("/", cfg.SearchHandler.Search)
				r.Post("/validate", cfg.SearchHandler.Validate)
				r.Post("/suggest", cfg.SearchHandler.Suggest)
				r.Post("/stats", cfg.SearchHandler.Stats)
			})

			r.Get("/history", cfg.SearchHandler.History)
			r.Delete("/history", cfg.SearchHandler.ClearHistory)

			r.Route("/saved-searches", func(r chi.Router) {
				r.Post("/", cfg.SavedSearchHandler.Save)
				r.Get("/", cfg.SavedSearchHandler.List)
				r.Get("/{name}", cfg.SavedSearchHandler.Get)
				r.Delete("/{name}", cfg.SavedSearchHandler.Delete)
				r.Post("/{name}/run", cfg.SavedSearchHandler.Run)
			})

			r.Get("/apikeys", cfg.AuthHandler.ListAPIKeys)
			r.Delete("/apikeys/{id}", cfg.AuthHandler.RevokeAPIKey)

			r.Route("/exports", func(r chi.Router) {
				r.Post("/", cfg.ExportHandler.Request)
				r.Get("/{id}", cfg.ExportHandler.Get)
				r.Get("/{id}/download", cfg.ExportHandler.Download)
			})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BodyLimit(limits.Request))

		r.Post("/workspaces", cfg.AuthHandler.CreateWorkspace)
		r.Post("/apikeys", cfg.AuthHandler.CreateAPIKey)
	})

	return r
}
