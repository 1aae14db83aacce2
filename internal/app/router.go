package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gescom-app/gescom/internal/auth"
	"github.com/gescom-app/gescom/internal/caisse"
	"github.com/gescom-app/gescom/internal/catalog"
	"github.com/gescom-app/gescom/internal/fournisseurs"
	"github.com/gescom-app/gescom/internal/observability"
	"github.com/gescom-app/gescom/internal/orders"
	"github.com/gescom-app/gescom/internal/shared"
	"github.com/gescom-app/gescom/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	Metrics        *observability.Metrics

	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	CatalogHandler     *catalog.Handler
	FournisseurHandler *fournisseurs.Handler
	OrdersHandler      *orders.Handler
	CaisseHandler      *caisse.Handler
}

// NewRouter constructs the chi.Router with Gescom defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/categories", params.CatalogHandler.MountCategoryRoutes)
			r.Route("/products", params.CatalogHandler.MountProductRoutes)
			r.Route("/fournisseurs", params.FournisseurHandler.MountRoutes)
			r.Route("/orders", params.OrdersHandler.MountRoutes)
			r.Route("/caisse", params.CaisseHandler.MountRoutes)
		})
	})

	return r
}
