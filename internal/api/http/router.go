package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/casting-service/internal/api/http/handlers"
	"github.com/spec-kit/casting-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Movies *handlers.MoviesHandler
	Actors *handlers.ActorsHandler
	Guard  *auth.Guard
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Index)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	guard := cfg.Guard

	app.Get("/actors", guard.Wrap(auth.PermGetActors, cfg.Actors.List))
	app.Post("/actors", guard.Wrap(auth.PermPostActors, cfg.Actors.Create))
	app.Patch("/actors/:id", guard.Wrap(auth.PermPatchActors, cfg.Actors.Patch))
	app.Delete("/actors/:id", guard.Wrap(auth.PermDeleteActors, cfg.Actors.Delete))

	app.Get("/movies", guard.Wrap(auth.PermGetMovies, cfg.Movies.List))
	app.Post("/movies", guard.Wrap(auth.PermPostMovies, cfg.Movies.Create))
	app.Patch("/movies/:id", guard.Wrap(auth.PermPatchMovies, cfg.Movies.Patch))
	app.Delete("/movies/:id", guard.Wrap(auth.PermDeleteMovies, cfg.Movies.Delete))
}
