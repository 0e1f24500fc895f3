package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-quiz/internal/model"
)

// ExamResultRepository handles attempt data access.
type ExamResultRepository struct {
	pool *pgxpool.Pool
}

// NewExamResultRepository creates a new ExamResultRepository.
func NewExamResultRepository(pool *pgxpool.Pool) *ExamResultRepository {
	return &ExamResultRepository{pool: pool}
}

const resultColumns = `id, user_id, assignment_kind, assignment_id, exam_id, exam_code_id,
	started_at, submitted_at, score, max_score, answers, correct_answers`

// GetByUserAndAssignment retrieves the attempt of a user for an assignment.
func (r *ExamResultRepository) GetByUserAndAssignment(ctx context.Context, userID int, ref model.AssignmentRef) (*model.ExamResult, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+`
		 FROM exam_results
		 WHERE user_id = $1 AND assignment_kind = $2 AND assignment_id = $3 AND exam_id = $4`,
		userID, ref.Kind, ref.OwnerID, ref.ExamID)
	return scanResult(row)
}

func scanResult(row pgx.Row) (*model.ExamResult, error) {
	var (
		res              model.ExamResult
		answers, correct []byte
	)
	err := row.Scan(&res.ID, &res.UserID, &res.AssignmentKind, &res.AssignmentID, &res.ExamID, &res.ExamCodeID,
		&res.StartedAt, &res.SubmittedAt, &res.Score, &res.MaxScore, &answers, &correct)
	if err != nil {
		return nil, translate(err)
	}
	if res.Answers, err = decodeAnswerSets(answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if res.CorrectAnswers, err = decodeAnswerSets(correct); err != nil {
		return nil, fmt.Errorf("decode correct answers: %w", err)
	}
	return &res, nil
}

// Create inserts a new in-progress attempt. The unique attempt constraint
// turns a second start into ErrDuplicate, including under concurrent inserts.
func (r *ExamResultRepository) Create(ctx context.Context, res *model.ExamResult) error {
	answers, err := encodeAnswerSets(res.Answers)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO exam_results
		   (user_id, assignment_kind, assignment_id, exam_id, exam_code_id, started_at, score, max_score, answers, correct_answers)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '[]'::jsonb)
		 ON CONFLICT ON CONSTRAINT uq_exam_results_attempt DO NOTHING
		 RETURNING id`,
		res.UserID, res.AssignmentKind, res.AssignmentID, res.ExamID, res.ExamCodeID,
		res.StartedAt, res.Score, res.MaxScore, answers,
	).Scan(&res.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicate
	}
	return translate(err)
}

// Submit stores the score and answers of an attempt that has not been
// submitted yet. ErrConditionFailed means someone else submitted first.
func (r *ExamResultRepository) Submit(ctx context.Context, res *model.ExamResult) error {
	answers, err := encodeAnswerSets(res.Answers)
	if err != nil {
		return err
	}
	correct, err := encodeAnswerSets(res.CorrectAnswers)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_results
		 SET submitted_at = $1, score = $2, answers = $3, correct_answers = $4
		 WHERE id = $5 AND submitted_at IS NULL`,
		res.SubmittedAt, res.Score, answers, correct, res.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConditionFailed
	}
	return nil
}

// ListByAssignment returns one page of attempts for an assignment plus the
// total number of attempts matching the filter.
func (r *ExamResultRepository) ListByAssignment(ctx context.Context, ref model.AssignmentRef, filter model.ResultFilter, limit, offset int) ([]model.ResultSummary, int, error) {
	where, args := buildResultWhere(ref, filter)

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_results er JOIN users u ON u.id = er.user_id `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count results: %w", err)
	}

	query := `SELECT er.id, er.user_id, u.name, ec.code, er.score, er.max_score, er.started_at, er.submitted_at,
	                 FLOOR(EXTRACT(EPOCH FROM (er.submitted_at - er.started_at)))::BIGINT AS duration_seconds
	          FROM exam_results er
	          JOIN users u ON u.id = er.user_id
	          LEFT JOIN exam_codes ec ON ec.id = er.exam_code_id
	          ` + where + `
	          ORDER BY ` + resultOrderBy(filter) +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	results := []model.ResultSummary{}
	for rows.Next() {
		var s model.ResultSummary
		if err := rows.Scan(&s.ID, &s.UserID, &s.StudentName, &s.ExamCode, &s.Score, &s.MaxScore,
			&s.StartedAt, &s.SubmittedAt, &s.DurationSeconds); err != nil {
			return nil, 0, err
		}
		s.Status = model.ResultStatusInProgress
		if s.SubmittedAt != nil {
			s.Status = model.ResultStatusSubmitted
		}
		results = append(results, s)
	}
	return results, total, rows.Err()
}

func buildResultWhere(ref model.AssignmentRef, filter model.ResultFilter) (string, []any) {
	where := `WHERE er.assignment_kind = $1 AND er.assignment_id = $2 AND er.exam_id = $3`
	args := []any{ref.Kind, ref.OwnerID, ref.ExamID}

	if name := strings.TrimSpace(filter.StudentName); name != "" {
		args = append(args, "%"+escapeLike(name)+"%")
		where += fmt.Sprintf(` AND u.name ILIKE $%d ESCAPE '\'`, len(args))
	}
	return where, args
}

// resultOrderBy builds the ORDER BY list. Unsubmitted attempts have a NULL
// duration and stay at the end in both directions.
func resultOrderBy(filter model.ResultFilter) string {
	var keys []string
	switch filter.ScoreSort {
	case model.SortAsc:
		keys = append(keys, "er.score ASC")
	case model.SortDesc:
		keys = append(keys, "er.score DESC")
	}
	switch filter.DurationSort {
	case model.SortAsc:
		keys = append(keys, "duration_seconds ASC NULLS LAST")
	case model.SortDesc:
		keys = append(keys, "duration_seconds DESC NULLS LAST")
	}
	keys = append(keys, "er.started_at DESC", "er.id DESC")
	return strings.Join(keys, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func encodeAnswerSets(sets []model.AnswerSet) ([]byte, error) {
	b, err := json.Marshal(model.NormalizeAnswerSets(sets))
	if err != nil {
		return nil, fmt.Errorf("encode answer sets: %w", err)
	}
	return b, nil
}

func decodeAnswerSets(raw []byte) ([]model.AnswerSet, error) {
	sets := []model.AnswerSet{}
	if len(raw) == 0 {
		return sets, nil
	}
	if err := json.Unmarshal(raw, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}
