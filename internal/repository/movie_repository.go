package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/casting-service/internal/domain"
)

// MovieRepository defines persistence access for movies.
type MovieRepository interface {
	List(ctx context.Context) ([]domain.Movie, error)
	GetByID(ctx context.Context, id int64) (*domain.Movie, error)
	Create(ctx context.Context, movie *domain.Movie) error
	Update(ctx context.Context, movie *domain.Movie) error
	Delete(ctx context.Context, id int64) (*domain.Movie, error)
}

type movieRepository struct {
	pool *pgxpool.Pool
}

// NewMovieRepository returns a Postgres-backed implementation.
func NewMovieRepository(pool *pgxpool.Pool) MovieRepository {
	return &movieRepository{pool: pool}
}

func (r *movieRepository) List(ctx context.Context) ([]domain.Movie, error) {
	const query = `
        SELECT id, title, release_date, created_at, updated_at
        FROM movies ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMovies(rows)
}

func (r *movieRepository) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	const query = `
        SELECT id, title, release_date, created_at, updated_at
        FROM movies WHERE id=$1`

	var movie domain.Movie
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.ReleaseDate,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	); err != nil {
		return nil, translatePgError(err)
	}
	return &movie, nil
}

func (r *movieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	const query = `
        INSERT INTO movies (title, release_date)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		movie.Title,
		movie.ReleaseDate,
	).Scan(&movie.ID, &movie.CreatedAt, &movie.UpdatedAt)
	return translatePgError(err)
}

func (r *movieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	const query = `
        UPDATE movies SET title=$1, release_date=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		movie.Title,
		movie.ReleaseDate,
		movie.ID,
	).Scan(&movie.UpdatedAt)
	return translatePgError(err)
}

func (r *movieRepository) Delete(ctx context.Context, id int64) (*domain.Movie, error) {
	const query = `
        DELETE FROM movies WHERE id=$1
        RETURNING id, title, release_date, created_at, updated_at`

	var movie domain.Movie
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.ReleaseDate,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	); err != nil {
		return nil, translatePgError(err)
	}
	return &movie, nil
}

func scanMovies(rows pgx.Rows) ([]domain.Movie, error) {
	result := []domain.Movie{}
	for rows.Next() {
		var movie domain.Movie
		if err := rows.Scan(
			&movie.ID,
			&movie.Title,
			&movie.ReleaseDate,
			&movie.CreatedAt,
			&movie.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, movie)
	}
	return result, rows.Err()
}
