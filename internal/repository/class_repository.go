package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-quiz/internal/model"
)

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classes (name, code, owner_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		c.Name, c.Code, c.OwnerID,
	).Scan(&c.ID, &c.CreatedAt)
	return translate(err)
}

// CodeExists reports whether a class already uses code.
func (r *ClassRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	return exists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM classes WHERE code = $1)`, code)
}

// Exists reports whether a class with the given ID exists.
func (r *ClassRepository) Exists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM classes WHERE id = $1)`, id)
}

func exists(ctx context.Context, pool *pgxpool.Pool, query string, arg any) (bool, error) {
	var ok bool
	err := pool.QueryRow(ctx, query, arg).Scan(&ok)
	return ok, err
}
