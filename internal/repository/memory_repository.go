package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/casting-service/internal/domain"
)

// MemoryStore keeps movies and actors in process. It backs the "memory"
// storage driver and the HTTP tests.
type MemoryStore struct {
	mu sync.RWMutex

	movies   map[int64]domain.Movie
	actors   map[int64]domain.Actor
	movieSeq int64
	actorSeq int64
	now      func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		movies: make(map[int64]domain.Movie),
		actors: make(map[int64]domain.Actor),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Movies exposes the store through MovieRepository.
func (s *MemoryStore) Movies() MovieRepository { return memoryMovies{s} }

// Actors exposes the store through ActorRepository.
func (s *MemoryStore) Actors() ActorRepository { return memoryActors{s} }

type memoryMovies struct{ s *MemoryStore }

func (r memoryMovies) List(ctx context.Context) ([]domain.Movie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.Movie, 0, len(r.s.movies))
	for _, movie := range r.s.movies {
		result = append(result, movie)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r memoryMovies) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	movie, ok := r.s.movies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &movie, nil
}

func (r memoryMovies) Create(ctx context.Context, movie *domain.Movie) error {
	if movie.Title == "" {
		return ErrConstraint
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movieSeq++
	now := r.s.now()
	movie.ID = r.s.movieSeq
	movie.CreatedAt = now
	movie.UpdatedAt = now
	r.s.movies[movie.ID] = *movie
	return nil
}

func (r memoryMovies) Update(ctx context.Context, movie *domain.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.movies[movie.ID]
	if !ok {
		return ErrNotFound
	}
	movie.CreatedAt = stored.CreatedAt
	movie.UpdatedAt = r.s.now()
	r.s.movies[movie.ID] = *movie
	return nil
}

func (r memoryMovies) Delete(ctx context.Context, id int64) (*domain.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	movie, ok := r.s.movies[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.s.movies, id)
	return &movie, nil
}

type memoryActors struct{ s *MemoryStore }

func (r memoryActors) List(ctx context.Context) ([]domain.Actor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.Actor, 0, len(r.s.actors))
	for _, actor := range r.s.actors {
		result = append(result, actor)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r memoryActors) GetByID(ctx context.Context, id int64) (*domain.Actor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	actor, ok := r.s.actors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &actor, nil
}

func (r memoryActors) Create(ctx context.Context, actor *domain.Actor) error {
	if actor.Name == "" || actor.Age <= 0 || actor.Gender == "" {
		return ErrConstraint
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.actorSeq++
	now := r.s.now()
	actor.ID = r.s.actorSeq
	actor.CreatedAt = now
	actor.UpdatedAt = now
	r.s.actors[actor.ID] = *actor
	return nil
}

func (r memoryActors) Update(ctx context.Context, actor *domain.Actor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.actors[actor.ID]
	if !ok {
		return ErrNotFound
	}
	actor.CreatedAt = stored.CreatedAt
	actor.UpdatedAt = r.s.now()
	r.s.actors[actor.ID] = *actor
	return nil
}

func (r memoryActors) Delete(ctx context.Context, id int64) (*domain.Actor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	actor, ok := r.s.actors[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.s.actors, id)
	return &actor, nil
}
