package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/AdamBeresnev/koe-contest/internal/api"
	"github.com/AdamBeresnev/koe-contest/internal/handler"
	"github.com/AdamBeresnev/koe-contest/internal/httputil"
	"github.com/AdamBeresnev/koe-contest/internal/logging"
	"github.com/AdamBeresnev/koe-contest/internal/middleware"
	users "github.com/AdamBeresnev/koe-contest/internal/user"
)

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(a.cfg.RequestTimeout))
	r.Use(logging.RequestLogger(a.logger))
	r.Use(middleware.Authenticate(a.authService))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.NotFound(w, r, "no route for "+r.URL.Path)
	})

	r.Get("/health", handler.Health(a.db))
	r.Get("/openapi.json", api.Handler(a.spec))
	r.Get("/dashboard", a.statistics.Dashboard)

	if a.mediaDir != "" {
		fileServer := http.FileServer(http.Dir(a.mediaDir))
		r.Handle(mediaURLPrefix+"/*", http.StripPrefix(mediaURLPrefix+"/", fileServer))
	}

	// Multipart uploads are checked by the handlers.
	r.Post("/registrations/{id}/proof", a.media.UploadProof)
	r.Post("/registrations/{id}/video", a.media.UploadVideo)

	r.Group(func(r chi.Router) {
		if a.cfg.OpenAPIValidation {
			r.Use(api.Validator(a.spec))
		}

		r.Post("/registrations", a.registrations.Create)
		r.Post("/registrations/{id}/video-link", a.media.AttachVideoLink)
		r.Get("/statistics", a.statistics.Get)
		r.Post("/auth/login", a.auth.Login)
		r.With(middleware.RequireRoles(users.AnyRole...)).Get("/auth/me", a.auth.Me)

		r.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(users.Staff...))

				r.Get("/registrations", a.registrations.List)
				r.Get("/registrations/{id}", a.registrations.Get)
				r.Get("/registrations/{id}/proof", a.media.PaymentProof)
				r.Get("/videos", a.media.ListVideos)
				r.Get("/venues", a.venues.List)
				r.Get("/rounds", a.rounds.List)
				r.Get("/results", a.results.List)
				r.Get("/statistics", a.statistics.Get)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(users.AdminOnly...))

				r.Post("/registrations", a.registrations.Create)
				r.Put("/registrations/{id}", a.registrations.Update)
				r.Put("/registrations/{id}/status", a.registrations.SetStatus)
				r.Put("/videos/{id}/review", a.media.ReviewVideo)

				r.Post("/venues", a.venues.Create)
				r.Put("/venues/{id}", a.venues.Update)
				r.Delete("/venues/{id}", a.venues.Delete)

				r.Post("/rounds", a.rounds.Create)
				r.Put("/rounds/{id}", a.rounds.Update)

				r.Post("/results", a.results.Submit)
				r.Post("/results/bulk", a.results.SubmitBulk)

				r.Get("/audit-events", a.audit.List)
				r.Post("/users", a.auth.CreateUser)
			})
		})
	})

	return r
}
