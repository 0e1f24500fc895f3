package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/repository"
	"github.com/stemsi/exstem-quiz/internal/scoring"
)

// ExamSessionService runs the attempt lifecycle: start, submit, and lookup.
// At most one attempt exists per student and assignment.
type ExamSessionService struct {
	resultRepo     ExamResultStore
	assignmentRepo AssignmentStore
	codeRepo       ExamCodeStore
	content        ExamContentSource
	now            func() time.Time
	intn           func(int) int
	log            zerolog.Logger
}

// NewExamSessionService creates a new ExamSessionService.
func NewExamSessionService(
	resultRepo ExamResultStore,
	assignmentRepo AssignmentStore,
	codeRepo ExamCodeStore,
	content ExamContentSource,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		resultRepo:     resultRepo,
		assignmentRepo: assignmentRepo,
		codeRepo:       codeRepo,
		content:        content,
		now:            time.Now,
		intn:           rand.IntN,
		log:            log.With().Str("component", "exam_session_service").Logger(),
	}
}

// Start opens the single attempt of userID for the assignment and returns
// the student's view of the exam. The view never carries answer keys.
func (s *ExamSessionService) Start(ctx context.Context, userID int, ref model.AssignmentRef) (*model.SessionView, error) {
	if !ref.Kind.Valid() {
		return nil, ErrInvalidAssignmentKind
	}

	if _, err := s.resultRepo.GetByUserAndAssignment(ctx, userID, ref); err == nil {
		return nil, ErrAlreadyAttempted
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check existing attempt: %w", err)
	}

	assignment, err := s.assignmentRepo.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}

	content, err := s.content.Content(ctx, ref.ExamID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := AssertWithinWindow(*assignment, now); err != nil {
		return nil, err
	}

	codes, err := s.codeRepo.ListByExam(ctx, ref.ExamID)
	if err != nil {
		return nil, fmt.Errorf("list exam codes: %w", err)
	}
	var variant *model.ExamCode
	if len(codes) > 0 {
		variant = &codes[s.intn(len(codes))]
	}

	result := &model.ExamResult{
		UserID:         userID,
		AssignmentKind: ref.Kind,
		AssignmentID:   ref.OwnerID,
		ExamID:         ref.ExamID,
		StartedAt:      now,
		MaxScore:       content.Exam.MaxScore,
		Answers:        []model.AnswerSet{},
		CorrectAnswers: []model.AnswerSet{},
	}
	if variant != nil {
		result.ExamCodeID = &variant.ID
	}

	if err := s.resultRepo.Create(ctx, result); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyAttempted
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	view := buildSessionView(content, variant)
	view.ResultID = result.ID
	view.StartedAt = result.StartedAt

	ev := s.log.Info().Int("user_id", userID).Str("assignment", ref.String()).Int("result_id", result.ID)
	if variant != nil {
		ev = ev.Str("code", variant.Code)
	}
	ev.Msg("Exam started")

	return view, nil
}

// Submit scores the in-progress attempt of userID. A lost race against a
// concurrent submit returns ErrAlreadySubmitted and leaves the stored score alone.
func (s *ExamSessionService) Submit(ctx context.Context, userID int, ref model.AssignmentRef, answers []model.AnswerSet) (*model.ExamResult, error) {
	if !ref.Kind.Valid() {
		return nil, ErrInvalidAssignmentKind
	}

	result, err := s.resultRepo.GetByUserAndAssignment(ctx, userID, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if result.Submitted() {
		return nil, ErrAlreadySubmitted
	}

	content, err := s.content.Content(ctx, ref.ExamID)
	if err != nil {
		return nil, err
	}

	scored := scoring.Score(content.Questions, answers)
	submittedAt := s.now()

	result.Answers = model.NormalizeAnswerSets(answers)
	result.CorrectAnswers = scored.CorrectAnswers
	result.Score = scored.Total
	result.SubmittedAt = &submittedAt

	if err := s.resultRepo.Submit(ctx, result); err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return nil, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("submit attempt: %w", err)
	}

	s.log.Info().
		Int("user_id", userID).
		Str("assignment", ref.String()).
		Int("result_id", result.ID).
		Float64("score", result.Score).
		Int("correct", scored.CorrectCount).
		Msg("Exam submitted")
	return result, nil
}

// GetAttempt returns the attempt of userID. Answer keys are withheld until
// the attempt is submitted.
func (s *ExamSessionService) GetAttempt(ctx context.Context, userID int, ref model.AssignmentRef) (*model.ExamResult, error) {
	if !ref.Kind.Valid() {
		return nil, ErrInvalidAssignmentKind
	}
	result, err := s.resultRepo.GetByUserAndAssignment(ctx, userID, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if !result.Submitted() {
		result.CorrectAnswers = []model.AnswerSet{}
	}
	return result, nil
}

// buildSessionView lays the questions out in the variant's order, or the
// exam's own order without a variant, and strips correctness flags.
func buildSessionView(content *model.ExamContent, variant *model.ExamCode) *model.SessionView {
	view := &model.SessionView{
		ExamID:          content.Exam.ID,
		Name:            content.Exam.Name,
		DurationMinutes: content.Exam.DurationMinutes,
		MaxScore:        content.Exam.MaxScore,
		Questions:       make([]model.SessionQuestion, 0, len(content.Questions)),
	}

	ordered := content.Questions
	if variant != nil {
		view.Code = variant.Code
		ordered = orderQuestions(content.Questions, variant.QuestionOrder)
	}

	for _, q := range ordered {
		sq := model.SessionQuestion{
			ID:      q.ID,
			Content: q.Content,
			Type:    q.Type(),
			Score:   q.Score,
			Answers: make([]model.SessionAnswer, len(q.Answers)),
		}
		for i, a := range q.Answers {
			sq.Answers[i] = model.SessionAnswer{ID: a.ID, Content: a.Content}
		}
		view.Questions = append(view.Questions, sq)
	}
	return view
}

// orderQuestions applies order to questions. Ids in order that are not exam
// questions are dropped; exam questions missing from order keep native order
// at the end.
func orderQuestions(questions []model.ContentQuestion, order []int) []model.ContentQuestion {
	byID := make(map[int]model.ContentQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	out := make([]model.ContentQuestion, 0, len(questions))
	for _, id := range order {
		if q, ok := byID[id]; ok {
			out = append(out, q)
			delete(byID, id)
		}
	}
	for _, q := range questions {
		if _, ok := byID[q.ID]; ok {
			out = append(out, q)
		}
	}
	return out
}
