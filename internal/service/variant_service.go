package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/codegen"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/repository"
)

// VariantService builds and manages the shuffled exam codes of an exam.
type VariantService struct {
	examRepo    ExamStore
	codeRepo    ExamCodeStore
	gen         *codegen.Generator
	maxPerBatch int
	intn        func(int) int
	log         zerolog.Logger
}

// NewVariantService creates a new VariantService.
func NewVariantService(examRepo ExamStore, codeRepo ExamCodeStore, gen *codegen.Generator, maxPerBatch int, log zerolog.Logger) *VariantService {
	return &VariantService{
		examRepo:    examRepo,
		codeRepo:    codeRepo,
		gen:         gen,
		maxPerBatch: maxPerBatch,
		intn:        rand.IntN,
		log:         log.With().Str("component", "variant_service").Logger(),
	}
}

// Shuffle returns a Fisher-Yates permutation of a copy of ids. intn must
// return a uniform value in [0, n).
func Shuffle(ids []int, intn func(int) int) []int {
	out := slices.Clone(ids)
	for i := len(out) - 1; i > 0; i-- {
		j := intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// BuildVariants generates count shuffled codes for an exam and adds them next to
// any codes generated earlier. Codes share one random prefix per batch. Earlier
// codes stay valid because attempts may already reference them; they are only
// removed by DeleteVariants or when the exam's question set is replaced.
func (s *VariantService) BuildVariants(ctx context.Context, examID, count int) ([]model.ExamCode, error) {
	limit := min(s.maxPerBatch, codegen.MaxSequence)
	if count < 1 || count > limit {
		return nil, fmt.Errorf("%w: must be between 1 and %d", ErrInvalidVariantCount, limit)
	}

	if _, err := s.examRepo.GetByID(ctx, examID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	ids, err := s.examRepo.QuestionIDs(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list question ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	prefix, err := s.gen.Generate(ctx, s.codeRepo.PrefixExists)
	if err != nil {
		return nil, fmt.Errorf("generate code prefix: %w", err)
	}

	codes := make([]model.ExamCode, count)
	for i := range codes {
		codes[i] = model.ExamCode{
			ExamID:        examID,
			Code:          codegen.Sequential(prefix, i+1),
			QuestionOrder: Shuffle(ids, s.intn),
		}
	}

	if err := s.codeRepo.InsertBatch(ctx, examID, codes); err != nil {
		return nil, fmt.Errorf("store exam codes: %w", err)
	}

	s.log.Info().
		Int("exam_id", examID).
		Str("prefix", prefix).
		Int("count", count).
		Msg("Exam codes generated")
	return codes, nil
}

// ListVariants returns every code of an exam.
func (s *VariantService) ListVariants(ctx context.Context, examID int) ([]model.ExamCode, error) {
	codes, err := s.codeRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list exam codes: %w", err)
	}
	return codes, nil
}

// DeleteVariants removes every code of an exam. Attempts keep their scores
// but lose the code reference.
func (s *VariantService) DeleteVariants(ctx context.Context, examID int) (int64, error) {
	n, err := s.codeRepo.DeleteByExam(ctx, examID)
	if err != nil {
		return 0, fmt.Errorf("delete exam codes: %w", err)
	}
	s.log.Info().Int("exam_id", examID).Int64("deleted", n).Msg("Exam codes deleted")
	return n, nil
}
