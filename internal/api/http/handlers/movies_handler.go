package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/casting-service/internal/api/dto"
	"github.com/spec-kit/casting-service/internal/service"
)

const movieResource = "movie"

// MoviesHandler serves the /movies endpoints.
type MoviesHandler struct {
	service *service.MovieService
}

// NewMoviesHandler constructs handler.
func NewMoviesHandler(movieService *service.MovieService) *MoviesHandler {
	return &MoviesHandler{service: movieService}
}

// List GET /movies.
func (h *MoviesHandler) List(c *fiber.Ctx) error {
	movies, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "movies": dto.NewMovieList(movies)})
}

// Create POST /movies.
func (h *MoviesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateMovieRequest
	if err := parseBody(c, &req, false); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	movie, err := h.service.Create(c.UserContext(), req.Input())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "new_movie": dto.NewMovieResponse(movie)})
}

// Patch PATCH /movies/:id.
func (h *MoviesHandler) Patch(c *fiber.Ctx) error {
	id, err := parseID(c, movieResource)
	if err != nil {
		return err
	}
	var req dto.PatchMovieRequest
	if err := parseBody(c, &req, true); err != nil {
		return err
	}
	movie, err := h.service.Patch(c.UserContext(), id, req.Input())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "modified_movie": dto.NewMovieResponse(movie)})
}

// Delete DELETE /movies/:id.
func (h *MoviesHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, movieResource)
	if err != nil {
		return err
	}
	movie, err := h.service.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "deleted_movie": dto.NewMovieResponse(movie)})
}
