package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-quiz/internal/model"
)

// RoomRepository handles room data access.
type RoomRepository struct {
	pool *pgxpool.Pool
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// Create inserts a new room.
func (r *RoomRepository) Create(ctx context.Context, room *model.Room) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO rooms (name, code, owner_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		room.Name, room.Code, room.OwnerID,
	).Scan(&room.ID, &room.CreatedAt)
	return translate(err)
}

// CodeExists reports whether a room already uses code.
func (r *RoomRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	return exists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM rooms WHERE code = $1)`, code)
}

// Exists reports whether a room with the given ID exists.
func (r *RoomRepository) Exists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`, id)
}
