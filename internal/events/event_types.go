package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventMovieCreated EventType = "movie_created"
	EventMovieUpdated EventType = "movie_updated"
	EventMovieDeleted EventType = "movie_deleted"
	EventActorCreated EventType = "actor_created"
	EventActorUpdated EventType = "actor_updated"
	EventActorDeleted EventType = "actor_deleted"
)

// AllTypes lists every event type, in declaration order.
func AllTypes() []EventType {
	return []EventType{
		EventMovieCreated, EventMovieUpdated, EventMovieDeleted,
		EventActorCreated, EventActorUpdated, EventActorDeleted,
	}
}

// Event represents a change to a movie or actor.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	EntityID  int64     `json:"entity_id"`
	Subject   string    `json:"subject,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// MoviePayload snapshots a movie after the change.
type MoviePayload struct {
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date"`
	Changed     []string `json:"changed,omitempty"`
}

// ActorPayload snapshots an actor after the change.
type ActorPayload struct {
	Name    string   `json:"name"`
	Age     int      `json:"age"`
	Gender  string   `json:"gender"`
	Changed []string `json:"changed,omitempty"`
}
