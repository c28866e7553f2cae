package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/casting-service/internal/domain"
)

// ActorRepository defines persistence access for actors.
type ActorRepository interface {
	List(ctx context.Context) ([]domain.Actor, error)
	GetByID(ctx context.Context, id int64) (*domain.Actor, error)
	Create(ctx context.Context, actor *domain.Actor) error
	Update(ctx context.Context, actor *domain.Actor) error
	Delete(ctx context.Context, id int64) (*domain.Actor, error)
}

type actorRepository struct {
	pool *pgxpool.Pool
}

// NewActorRepository returns a Postgres-backed implementation.
func NewActorRepository(pool *pgxpool.Pool) ActorRepository {
	return &actorRepository{pool: pool}
}

func (r *actorRepository) List(ctx context.Context) ([]domain.Actor, error) {
	const query = `
        SELECT id, name, age, gender, created_at, updated_at
        FROM actors ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActors(rows)
}

func (r *actorRepository) GetByID(ctx context.Context, id int64) (*domain.Actor, error) {
	const query = `
        SELECT id, name, age, gender, created_at, updated_at
        FROM actors WHERE id=$1`

	var actor domain.Actor
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&actor.ID,
		&actor.Name,
		&actor.Age,
		&actor.Gender,
		&actor.CreatedAt,
		&actor.UpdatedAt,
	); err != nil {
		return nil, translatePgError(err)
	}
	return &actor, nil
}

func (r *actorRepository) Create(ctx context.Context, actor *domain.Actor) error {
	const query = `
        INSERT INTO actors (name, age, gender)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		actor.Name,
		actor.Age,
		actor.Gender,
	).Scan(&actor.ID, &actor.CreatedAt, &actor.UpdatedAt)
	return translatePgError(err)
}

func (r *actorRepository) Update(ctx context.Context, actor *domain.Actor) error {
	const query = `
        UPDATE actors SET name=$1, age=$2, gender=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		actor.Name,
		actor.Age,
		actor.Gender,
		actor.ID,
	).Scan(&actor.UpdatedAt)
	return translatePgError(err)
}

func (r *actorRepository) Delete(ctx context.Context, id int64) (*domain.Actor, error) {
	const query = `
        DELETE FROM actors WHERE id=$1
        RETURNING id, name, age, gender, created_at, updated_at`

	var actor domain.Actor
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&actor.ID,
		&actor.Name,
		&actor.Age,
		&actor.Gender,
		&actor.CreatedAt,
		&actor.UpdatedAt,
	); err != nil {
		return nil, translatePgError(err)
	}
	return &actor, nil
}

func scanActors(rows pgx.Rows) ([]domain.Actor, error) {
	result := []domain.Actor{}
	for rows.Next() {
		var actor domain.Actor
		if err := rows.Scan(
			&actor.ID,
			&actor.Name,
			&actor.Age,
			&actor.Gender,
			&actor.CreatedAt,
			&actor.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, actor)
	}
	return result, rows.Err()
}
