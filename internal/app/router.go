package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/flick-business/flick-business/internal/auth"
	"github.com/flick-business/flick-business/internal/catalog/categories"
	"github.com/flick-business/flick-business/internal/catalog/products"
	"github.com/flick-business/flick-business/internal/catalog/providers"
	"github.com/flick-business/flick-business/internal/customers"
	"github.com/flick-business/flick-business/internal/expenses"
	"github.com/flick-business/flick-business/internal/payments"
	"github.com/flick-business/flick-business/internal/reports"
	"github.com/flick-business/flick-business/internal/sales"
	"github.com/flick-business/flick-business/internal/settings"
	"github.com/flick-business/flick-business/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	Tokens *auth.TokenIssuer

	AuthHandler       *auth.Handler
	SettingsHandler   *settings.Handler
	CategoriesHandler *categories.Handler
	ProvidersHandler  *providers.Handler
	ProductsHandler   *products.Handler
	CustomersHandler  *customers.Handler
	SalesHandler      *sales.Handler
	ExpensesHandler   *expenses.Handler
	PaymentsHandler   *payments.Handler
	ReportsHandler    *reports.Handler
	JobsHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(LoginRateLimit())
			params.AuthHandler.MountPublicRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(params.Tokens))

			params.AuthHandler.MountProtectedRoutes(r)
			params.SettingsHandler.MountRoutes(r)
			params.CategoriesHandler.MountRoutes(r)
			params.ProvidersHandler.MountRoutes(r)
			params.ProductsHandler.MountRoutes(r)
			params.CustomersHandler.MountRoutes(r)
			params.SalesHandler.MountRoutes(r)
			params.ExpensesHandler.MountRoutes(r)
			params.PaymentsHandler.MountRoutes(r)
			params.ReportsHandler.MountRoutes(r)
		})
	})

	return r
}
