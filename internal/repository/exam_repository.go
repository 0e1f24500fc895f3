package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-quiz/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam by its ID.
func (r *ExamRepository) GetByID(ctx context.Context, id int) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, author_id, duration_minutes, max_score, created_at, updated_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.AuthorID, &e.DurationMinutes, &e.MaxScore, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return e, nil
}

// ListByAuthorPaginated retrieves exams filtered by author with pagination.
// Pass authorID=0 to list all exams.
func (r *ExamRepository) ListByAuthorPaginated(ctx context.Context, authorID, limit, offset int) ([]model.Exam, int, error) {
	where := ""
	var args []any
	if authorID > 0 {
		where = ` WHERE author_id = $1`
		args = append(args, authorID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exams`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, name, author_id, duration_minutes, max_score, created_at, updated_at
	          FROM exams` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	exams := []model.Exam{}
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Name, &e.AuthorID, &e.DurationMinutes, &e.MaxScore, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		exams = append(exams, e)
	}
	return exams, total, rows.Err()
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (name, author_id, duration_minutes, max_score)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		e.Name, e.AuthorID, e.DurationMinutes, e.MaxScore,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// QuestionIDs returns the exam's question ids in position order.
func (r *ExamRepository) QuestionIDs(ctx context.Context, examID int) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id FROM exam_questions WHERE exam_id = $1 ORDER BY position`, examID)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetContent loads the exam with its ordered questions and every answer,
// including the correctness flags.
func (r *ExamRepository) GetContent(ctx context.Context, examID int) (*model.ExamContent, error) {
	exam, err := r.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.content, eq.score
		 FROM exam_questions eq
		 JOIN questions q ON q.id = eq.question_id
		 WHERE eq.exam_id = $1
		 ORDER BY eq.position`, examID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	content := &model.ExamContent{Exam: *exam, Questions: []model.ContentQuestion{}}
	index := make(map[int]int)
	ids := []int{}
	for rows.Next() {
		var q model.ContentQuestion
		if err := rows.Scan(&q.ID, &q.Content, &q.Score); err != nil {
			return nil, err
		}
		q.Answers = []model.Answer{}
		index[q.ID] = len(content.Questions)
		ids = append(ids, q.ID)
		content.Questions = append(content.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return content, nil
	}

	answerRows, err := r.pool.Query(ctx,
		`SELECT id, question_id, content, is_correct
		 FROM answers
		 WHERE question_id = ANY($1)
		 ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer answerRows.Close()

	for answerRows.Next() {
		var a model.Answer
		if err := answerRows.Scan(&a.ID, &a.QuestionID, &a.Content, &a.IsCorrect); err != nil {
			return nil, err
		}
		i := index[a.QuestionID]
		content.Questions[i].Answers = append(content.Questions[i].Answers, a)
	}
	return content, answerRows.Err()
}

// ReplaceQuestions rewrites the exam's ordered question list and drops every
// exam code of the exam in the same transaction.
func (r *ExamRepository) ReplaceQuestions(ctx context.Context, examID int, questions []model.ExamQuestion) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM exam_questions WHERE exam_id = $1`, examID); err != nil {
			return fmt.Errorf("delete exam questions: %w", err)
		}

		rows := make([][]any, len(questions))
		for i, q := range questions {
			rows[i] = []any{examID, q.QuestionID, i + 1, q.Score}
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"exam_questions"},
			[]string{"exam_id", "question_id", "position", "score"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("insert exam questions: %w", translate(err))
		}

		if _, err := tx.Exec(ctx, `DELETE FROM exam_codes WHERE exam_id = $1`, examID); err != nil {
			return fmt.Errorf("delete exam codes: %w", err)
		}

		_, err := tx.Exec(ctx, `UPDATE exams SET updated_at = NOW() WHERE id = $1`, examID)
		return err
	})
}
