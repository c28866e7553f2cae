package dto

import (
	"github.com/spec-kit/casting-service/internal/domain"
	"github.com/spec-kit/casting-service/internal/service"
)

// CreateMovieRequest payload.
type CreateMovieRequest struct {
	Title string `json:"title" validate:"required"`
	Year  int    `json:"year" validate:"required,gt=0,lte=9999"`
	Month int    `json:"month" validate:"required,min=1,max=12"`
	Day   int    `json:"day" validate:"required,min=1,max=31"`
}

// Input converts the request for the service layer.
func (r CreateMovieRequest) Input() service.MovieCreateInput {
	return service.MovieCreateInput{Title: r.Title, Year: r.Year, Month: r.Month, Day: r.Day}
}

// PatchMovieRequest payload. Absent, empty and zero fields are ignored.
type PatchMovieRequest struct {
	Title *string `json:"title"`
	Year  *int    `json:"year"`
	Month *int    `json:"month"`
	Day   *int    `json:"day"`
}

// Input converts the request for the service layer.
func (r PatchMovieRequest) Input() service.MoviePatchInput {
	return service.MoviePatchInput{Title: r.Title, Year: r.Year, Month: r.Month, Day: r.Day}
}

// MovieResponse is the wire form of a movie.
type MovieResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// NewMovieResponse formats a movie.
func NewMovieResponse(movie *domain.Movie) MovieResponse {
	return MovieResponse{
		ID:          movie.ID,
		Title:       movie.Title,
		ReleaseDate: movie.ReleaseDate.Format(domain.ReleaseDateLayout),
	}
}

// NewMovieList formats movies, never returning nil.
func NewMovieList(movies []domain.Movie) []MovieResponse {
	out := make([]MovieResponse, 0, len(movies))
	for i := range movies {
		out = append(out, NewMovieResponse(&movies[i]))
	}
	return out
}
