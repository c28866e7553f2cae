package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/casting-service/internal/api/dto"
	"github.com/spec-kit/casting-service/internal/service"
)

const actorResource = "actor"

// ActorsHandler serves the /actors endpoints.
type ActorsHandler struct {
	service *service.ActorService
}

// NewActorsHandler constructs handler.
func NewActorsHandler(actorService *service.ActorService) *ActorsHandler {
	return &ActorsHandler{service: actorService}
}

// List GET /actors.
func (h *ActorsHandler) List(c *fiber.Ctx) error {
	actors, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "actors": dto.NewActorList(actors)})
}

// Create POST /actors.
func (h *ActorsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateActorRequest
	if err := parseBody(c, &req, false); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	actor, err := h.service.Create(c.UserContext(), req.Input())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "new_actor": dto.NewActorResponse(actor)})
}

// Patch PATCH /actors/:id.
func (h *ActorsHandler) Patch(c *fiber.Ctx) error {
	id, err := parseID(c, actorResource)
	if err != nil {
		return err
	}
	var req dto.PatchActorRequest
	if err := parseBody(c, &req, true); err != nil {
		return err
	}
	actor, err := h.service.Patch(c.UserContext(), id, req.Input())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "modified_actor": dto.NewActorResponse(actor)})
}

// Delete DELETE /actors/:id.
func (h *ActorsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, actorResource)
	if err != nil {
		return err
	}
	actor, err := h.service.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "deleted_actor": dto.NewActorResponse(actor)})
}
