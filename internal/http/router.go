package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/http/booking"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/deal"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/export"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/importcsv"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/matching"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/middleware"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/party"
	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
)

type Handlers struct {
	Bookings *booking.Handler
	Invoices *invoice.Handler
	Deals    *deal.Handler
	Parties  *party.Handler
	Import   *importcsv.Handler
	Matching *matching.Handler
	Export   *export.Handler
}

type Options struct {
	AllowedOrigins []string
	Auth           *middleware.Authenticator
	// Idempotency guards payment application.
	Idempotency func(http.Handler) http.Handler
	Log         *zap.Logger
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestLogger(opts.Log))
	router.Use(chimw.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	idempotent := opts.Idempotency
	if idempotent == nil {
		idempotent = func(next http.Handler) http.Handler { return next }
	}

	admin := middleware.RequireRole(middleware.RoleAdmin)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(opts.Auth.Authenticate)

		r.Route("/bookings", func(r chi.Router) {
			r.Use(chimw.AllowContentType("application/json"))
			h.Bookings.Routes(r)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Use(chimw.AllowContentType("application/json"))
			h.Invoices.Routes(r, idempotent)
		})

		r.Route("/deals", h.Deals.Routes)
		r.Route("/customers", h.Parties.CustomerRoutes)
		r.Route("/contractors", h.Parties.ContractorRoutes)

		r.Route("/import", func(r chi.Router) {
			r.Use(admin)
			h.Import.Routes(r)
		})

		r.Route("/matching", func(r chi.Router) {
			r.Use(admin)
			h.Matching.Routes(r)
		})

		r.Route("/export", func(r chi.Router) {
			r.Use(admin)
			r.Use(chimw.AllowContentType("application/json"))
			h.Export.Routes(r)
		})
	})

	return router
}
