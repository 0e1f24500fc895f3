package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-quiz/internal/model"
)

// ExamCodeRepository handles exam code (shuffled variant) data access.
type ExamCodeRepository struct {
	pool *pgxpool.Pool
}

// NewExamCodeRepository creates a new ExamCodeRepository.
func NewExamCodeRepository(pool *pgxpool.Pool) *ExamCodeRepository {
	return &ExamCodeRepository{pool: pool}
}

// ListByExam returns every code of an exam ordered by code.
func (r *ExamCodeRepository) ListByExam(ctx context.Context, examID int) ([]model.ExamCode, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, code, question_order, created_at
		 FROM exam_codes WHERE exam_id = $1
		 ORDER BY code`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := []model.ExamCode{}
	for rows.Next() {
		var (
			c   model.ExamCode
			raw []byte
		)
		if err := rows.Scan(&c.ID, &c.ExamID, &c.Code, &raw, &c.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &c.QuestionOrder); err != nil {
			return nil, fmt.Errorf("decode question order of %s: %w", c.Code, err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// InsertBatch adds a batch of codes to the exam in one transaction. Earlier codes
// are left untouched. IDs and timestamps are written back into codes.
func (r *ExamCodeRepository) InsertBatch(ctx context.Context, examID int, codes []model.ExamCode) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range codes {
			order, err := json.Marshal(codes[i].QuestionOrder)
			if err != nil {
				return fmt.Errorf("encode question order: %w", err)
			}
			c := &codes[i]
			batch.Queue(
				`INSERT INTO exam_codes (exam_id, code, question_order)
				 VALUES ($1, $2, $3)
				 RETURNING id, created_at`,
				examID, c.Code, order,
			).QueryRow(func(row pgx.Row) error {
				c.ExamID = examID
				return row.Scan(&c.ID, &c.CreatedAt)
			})
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert exam codes: %w", translate(err))
		}
		return nil
	})
}

// DeleteByExam removes every code of an exam and returns how many were deleted.
func (r *ExamCodeRepository) DeleteByExam(ctx context.Context, examID int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exam_codes WHERE exam_id = $1`, examID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PrefixExists reports whether any code starts with prefix.
func (r *ExamCodeRepository) PrefixExists(ctx context.Context, prefix string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM exam_codes WHERE code LIKE $1 || '%')`, prefix,
	).Scan(&exists)
	return exists, err
}
