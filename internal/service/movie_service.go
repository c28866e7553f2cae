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

const movieResource = "movie"

// MovieCreateInput describes a new movie.
type MovieCreateInput struct {
	Title string
	Year  int
	Month int
	Day   int
}

// MoviePatchInput carries the fields of a sparse update. Nil, empty and zero
// values leave the stored field untouched.
type MoviePatchInput struct {
	Title *string
	Year  *int
	Month *int
	Day   *int
}

// MovieService coordinates movie workflows.
type MovieService struct {
	movies repository.MovieRepository
	publisher
}

// NewMovieService constructs the service.
func NewMovieService(movies repository.MovieRepository, dispatcher events.Dispatcher, logger *zap.Logger) *MovieService {
	return &MovieService{movies: movies, publisher: newPublisher(dispatcher, logger)}
}

// List returns every movie ordered by id.
func (s *MovieService) List(ctx context.Context) ([]domain.Movie, error) {
	movies, err := s.movies.List(ctx)
	if err != nil {
		return nil, translateStoreError(err, movieResource, 0)
	}
	return movies, nil
}

// Create stores a new movie.
func (s *MovieService) Create(ctx context.Context, input MovieCreateInput) (*domain.Movie, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewUnprocessable(map[string]any{"title": "required"}, nil)
	}
	releaseDate, err := domain.NewReleaseDate(input.Year, input.Month, input.Day)
	if err != nil {
		return nil, apperrors.NewUnprocessable(map[string]any{"release_date": "invalid date"}, err)
	}

	movie := &domain.Movie{Title: title, ReleaseDate: releaseDate}
	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, translateStoreError(err, movieResource, 0)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventMovieCreated,
		EntityID: movie.ID,
		Payload:  moviePayload(movie, nil),
	})
	return movie, nil
}

// Patch applies the supplied fields to the stored movie. Date parts not
// supplied keep their stored values; the combined date must be a real day.
func (s *MovieService) Patch(ctx context.Context, id int64, input MoviePatchInput) (*domain.Movie, error) {
	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, movieResource, id)
	}

	var changed []string
	if title, ok := stringPatch(input.Title); ok {
		movie.Title = title
		changed = append(changed, "title")
	}
	year, hasYear := intPatch(input.Year)
	month, hasMonth := intPatch(input.Month)
	day, hasDay := intPatch(input.Day)
	if hasYear || hasMonth || hasDay {
		releaseDate, err := domain.ReplaceDateParts(movie.ReleaseDate, year, month, day)
		if err != nil {
			return nil, apperrors.NewUnprocessable(map[string]any{"release_date": "invalid date"}, err)
		}
		movie.ReleaseDate = releaseDate
		changed = append(changed, "release_date")
	}

	if err := s.movies.Update(ctx, movie); err != nil {
		return nil, translateStoreError(err, movieResource, id)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventMovieUpdated,
		EntityID: movie.ID,
		Payload:  moviePayload(movie, changed),
	})
	return movie, nil
}

// Delete removes a movie and returns it as it was stored.
func (s *MovieService) Delete(ctx context.Context, id int64) (*domain.Movie, error) {
	movie, err := s.movies.Delete(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, movieResource, id)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventMovieDeleted,
		EntityID: movie.ID,
		Payload:  moviePayload(movie, nil),
	})
	return movie, nil
}

func moviePayload(movie *domain.Movie, changed []string) events.MoviePayload {
	return events.MoviePayload{
		Title:       movie.Title,
		ReleaseDate: movie.ReleaseDate.Format(domain.ReleaseDateLayout),
		Changed:     changed,
	}
}
