package domain

import "time"

// MaxActorAge bounds an actor's age. Kept in step with the dto validate tag.
const MaxActorAge = 150

// Actor is a performer available for casting.
type Actor struct {
	ID        int64
	Name      string
	Age       int
	Gender    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
