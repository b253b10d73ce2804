package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/gatehouse/internal/api"
	"github.com/phrazzld/gatehouse/internal/api/errorhandler"
	apiMiddleware "github.com/phrazzld/gatehouse/internal/api/middleware"
	"github.com/phrazzld/gatehouse/internal/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/phrazzld/gatehouse/docs" // Swagger docs
)

const documentationIndex = "/documentation/index.html"

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(observability.MetricsMiddleware)
	r.Use(errorhandler.Track)
	r.Use(app.funnel.Recover)

	r.NotFound(app.funnel.NotFound)
	r.MethodNotAllowed(app.funnel.MethodNotAllowed)

	authHandler := api.NewAuthHandler(app.jwtService, app.config.Server.BodyLimitBytes)
	guard := apiMiddleware.NewAuthMiddleware(app.jwtService, app.funnel.Handle)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", app.funnel.Wrap(authHandler.Login))
		r.Post("/refresh", app.funnel.Wrap(authHandler.Refresh))
		r.Post("/logout", app.funnel.Wrap(authHandler.Logout))

		r.With(guard.Authenticate).Get("/me", app.funnel.Wrap(authHandler.Me))
	})

	var probe api.DatabaseProbe
	if app.db != nil {
		probe = app.db
	}
	r.Get("/health", app.funnel.Wrap(api.NewHealthHandler(probe).Health))

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/documentation", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, documentationIndex, http.StatusMovedPermanently)
	})
	r.Get("/documentation/*", httpSwagger.Handler(
		httpSwagger.URL("/documentation/doc.json"),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DeepLinking(false),
	))

	return r
}
