package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/demus23/myus-delivery-app-sub002/internal/auth"
	"github.com/demus23/myus-delivery-app-sub002/internal/carriers"
	"github.com/demus23/myus-delivery-app-sub002/internal/invoices"
	"github.com/demus23/myus-delivery-app-sub002/internal/observability"
	"github.com/demus23/myus-delivery-app-sub002/internal/packages"
	"github.com/demus23/myus-delivery-app-sub002/internal/quotes"
	"github.com/demus23/myus-delivery-app-sub002/internal/users"
	"github.com/demus23/myus-delivery-app-sub002/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthService     *auth.Service
	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	CarriersHandler *carriers.Handler
	QuotesHandler   *quotes.Handler
	PackagesHandler *packages.Handler
	InvoicesHandler *invoices.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router for the API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Signed-link invoice views carry their own authorization in the
	// token, so they sit outside the bearer-auth tree.
	r.Route("/invoices/view", params.InvoicesHandler.MountPublicRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.AuthService.RequireUser)

		r.Route("/quotes", params.QuotesHandler.MountRoutes)
		r.Route("/packages", params.PackagesHandler.MountRoutes)
		r.Route("/invoices", params.InvoicesHandler.MountRoutes)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/carriers", params.CarriersHandler.MountRoutes)
			r.Route("/packages", params.PackagesHandler.MountAdminRoutes)
			r.Route("/invoices", params.InvoicesHandler.MountAdminRoutes)
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
