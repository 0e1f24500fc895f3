package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-quiz/internal/model"
)

// AssignmentRepository handles class-exam and room-exam assignments.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// Create inserts a new assignment. A second assignment of the same exam to
// the same group returns ErrDuplicate.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_assignments (kind, owner_id, exam_id, start_at, end_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		a.Kind, a.OwnerID, a.ExamID, a.StartAt, a.EndAt,
	).Scan(&a.ID, &a.CreatedAt)
	return translate(err)
}

// Get retrieves the assignment identified by ref.
func (r *AssignmentRepository) Get(ctx context.Context, ref model.AssignmentRef) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, kind, owner_id, exam_id, start_at, end_at, created_at
		 FROM exam_assignments
		 WHERE kind = $1 AND owner_id = $2 AND exam_id = $3`,
		ref.Kind, ref.OwnerID, ref.ExamID,
	).Scan(&a.ID, &a.Kind, &a.OwnerID, &a.ExamID, &a.StartAt, &a.EndAt, &a.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}
