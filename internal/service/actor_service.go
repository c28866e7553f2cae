package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/casting-service/internal/domain"
	"github.com/spec-kit/casting-service/internal/events"
	"github.com/spec-kit/casting-service/internal/repository"
	apperrors "github.com/spec-kit/casting-service/pkg/util"
)

const actorResource = "actor"

// ActorCreateInput describes a new actor.
type ActorCreateInput struct {
	Name   string
	Age    int
	Gender string
}

// ActorPatchInput carries the fields of a sparse update.
type ActorPatchInput struct {
	Name   *string
	Age    *int
	Gender *string
}

// ActorService coordinates actor workflows.
type ActorService struct {
	actors repository.ActorRepository
	publisher
}

// NewActorService constructs the service.
func NewActorService(actors repository.ActorRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ActorService {
	return &ActorService{actors: actors, publisher: newPublisher(dispatcher, logger)}
}

// List returns every actor ordered by id.
func (s *ActorService) List(ctx context.Context) ([]domain.Actor, error) {
	actors, err := s.actors.List(ctx)
	if err != nil {
		return nil, translateStoreError(err, actorResource, 0)
	}
	return actors, nil
}

// Create stores a new actor.
func (s *ActorService) Create(ctx context.Context, input ActorCreateInput) (*domain.Actor, error) {
	actor := &domain.Actor{
		Name:   strings.TrimSpace(input.Name),
		Age:    input.Age,
		Gender: strings.TrimSpace(input.Gender),
	}
	if details := validateActor(actor); details != nil {
		return nil, apperrors.NewUnprocessable(details, nil)
	}
	if err := s.actors.Create(ctx, actor); err != nil {
		return nil, translateStoreError(err, actorResource, 0)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventActorCreated,
		EntityID: actor.ID,
		Payload:  actorPayload(actor, nil),
	})
	return actor, nil
}

// Patch applies the supplied fields to the stored actor.
func (s *ActorService) Patch(ctx context.Context, id int64, input ActorPatchInput) (*domain.Actor, error) {
	actor, err := s.actors.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, actorResource, id)
	}

	var changed []string
	if name, ok := stringPatch(input.Name); ok {
		actor.Name = name
		changed = append(changed, "name")
	}
	if age, ok := intPatch(input.Age); ok {
		actor.Age = age
		changed = append(changed, "age")
	}
	if gender, ok := stringPatch(input.Gender); ok {
		actor.Gender = gender
		changed = append(changed, "gender")
	}
	if details := validateActor(actor); details != nil {
		return nil, apperrors.NewUnprocessable(details, nil)
	}

	if err := s.actors.Update(ctx, actor); err != nil {
		return nil, translateStoreError(err, actorResource, id)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventActorUpdated,
		EntityID: actor.ID,
		Payload:  actorPayload(actor, changed),
	})
	return actor, nil
}

// Delete removes an actor and returns it as it was stored.
func (s *ActorService) Delete(ctx context.Context, id int64) (*domain.Actor, error) {
	actor, err := s.actors.Delete(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, actorResource, id)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventActorDeleted,
		EntityID: actor.ID,
		Payload:  actorPayload(actor, nil),
	})
	return actor, nil
}

func validateActor(actor *domain.Actor) map[string]any {
	details := map[string]any{}
	if actor.Name == "" {
		details["name"] = "required"
	}
	switch {
	case actor.Age <= 0:
		details["age"] = "must be positive"
	case actor.Age > domain.MaxActorAge:
		details["age"] = "too large"
	}
	if actor.Gender == "" {
		details["gender"] = "required"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func actorPayload(actor *domain.Actor, changed []string) events.ActorPayload {
	return events.ActorPayload{
		Name:    actor.Name,
		Age:     actor.Age,
		Gender:  actor.Gender,
		Changed: changed,
	}
}
