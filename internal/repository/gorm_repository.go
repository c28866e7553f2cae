package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/spec-kit/casting-service/internal/domain"
)

type movieModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"not null;check:title <> ''"`
	ReleaseDate time.Time `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (movieModel) TableName() string { return "movies" }

type actorModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"not null;check:name <> ''"`
	Age       int    `gorm:"not null;check:age > 0"`
	Gender    string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (actorModel) TableName() string { return "actors" }

// AutoMigrate creates or updates the movie and actor tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&movieModel{}, &actorModel{})
}

type gormMovieRepository struct {
	db *gorm.DB
}

// NewGormMovieRepository returns a gorm-backed implementation.
func NewGormMovieRepository(db *gorm.DB) MovieRepository {
	return &gormMovieRepository{db: db}
}

func (r *gormMovieRepository) List(ctx context.Context) ([]domain.Movie, error) {
	var rows []movieModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Movie, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

func (r *gormMovieRepository) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	var row movieModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	movie := row.toDomain()
	return &movie, nil
}

func (r *gormMovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	row := movieModel{Title: movie.Title, ReleaseDate: movie.ReleaseDate}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateGormError(err)
	}
	*movie = row.toDomain()
	return nil
}

func (r *gormMovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&movieModel{}).Where("id = ?", movie.ID).Updates(map[string]any{
		"title":        movie.Title,
		"release_date": movie.ReleaseDate,
		"updated_at":   now,
	})
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	movie.UpdatedAt = now
	return nil
}

func (r *gormMovieRepository) Delete(ctx context.Context, id int64) (*domain.Movie, error) {
	var deleted domain.Movie
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row movieModel
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&movieModel{}, id).Error; err != nil {
			return err
		}
		deleted = row.toDomain()
		return nil
	})
	if err != nil {
		return nil, translateGormError(err)
	}
	return &deleted, nil
}

func (m movieModel) toDomain() domain.Movie {
	return domain.Movie{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseDate: m.ReleaseDate.UTC(),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type gormActorRepository struct {
	db *gorm.DB
}

// NewGormActorRepository returns a gorm-backed implementation.
func NewGormActorRepository(db *gorm.DB) ActorRepository {
	return &gormActorRepository{db: db}
}

func (r *gormActorRepository) List(ctx context.Context) ([]domain.Actor, error) {
	var rows []actorModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Actor, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

func (r *gormActorRepository) GetByID(ctx context.Context, id int64) (*domain.Actor, error) {
	var row actorModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	actor := row.toDomain()
	return &actor, nil
}

func (r *gormActorRepository) Create(ctx context.Context, actor *domain.Actor) error {
	row := actorModel{Name: actor.Name, Age: actor.Age, Gender: actor.Gender}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateGormError(err)
	}
	*actor = row.toDomain()
	return nil
}

func (r *gormActorRepository) Update(ctx context.Context, actor *domain.Actor) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&actorModel{}).Where("id = ?", actor.ID).Updates(map[string]any{
		"name":       actor.Name,
		"age":        actor.Age,
		"gender":     actor.Gender,
		"updated_at": now,
	})
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	actor.UpdatedAt = now
	return nil
}

func (r *gormActorRepository) Delete(ctx context.Context, id int64) (*domain.Actor, error) {
	var deleted domain.Actor
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row actorModel
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&actorModel{}, id).Error; err != nil {
			return err
		}
		deleted = row.toDomain()
		return nil
	})
	if err != nil {
		return nil, translateGormError(err)
	}
	return &deleted, nil
}

func (m actorModel) toDomain() domain.Actor {
	return domain.Actor{
		ID:        m.ID,
		Name:      m.Name,
		Age:       m.Age,
		Gender:    m.Gender,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func translateGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrCheckConstraintViolated),
		errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Join(ErrConstraint, err)
	default:
		return err
	}
}
