package dto

import (
	"github.com/spec-kit/casting-service/internal/domain"
	"github.com/spec-kit/casting-service/internal/service"
)

// CreateActorRequest payload.
type CreateActorRequest struct {
	Name   string `json:"name" validate:"required"`
	Age    int    `json:"age" validate:"required,gt=0,lte=150"`
	Gender string `json:"gender" validate:"required"`
}

// Input converts the request for the service layer.
func (r CreateActorRequest) Input() service.ActorCreateInput {
	return service.ActorCreateInput{Name: r.Name, Age: r.Age, Gender: r.Gender}
}

// PatchActorRequest payload. Absent, empty and zero fields are ignored.
type PatchActorRequest struct {
	Name   *string `json:"name"`
	Age    *int    `json:"age"`
	Gender *string `json:"gender"`
}

// Input converts the request for the service layer.
func (r PatchActorRequest) Input() service.ActorPatchInput {
	return service.ActorPatchInput{Name: r.Name, Age: r.Age, Gender: r.Gender}
}

// ActorResponse is the wire form of an actor.
type ActorResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// NewActorResponse formats an actor.
func NewActorResponse(actor *domain.Actor) ActorResponse {
	return ActorResponse{ID: actor.ID, Name: actor.Name, Age: actor.Age, Gender: actor.Gender}
}

// NewActorList formats actors, never returning nil.
func NewActorList(actors []domain.Actor) []ActorResponse {
	out := make([]ActorResponse, 0, len(actors))
	for i := range actors {
		out = append(out, NewActorResponse(&actors[i]))
	}
	return out
}
