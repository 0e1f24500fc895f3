package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/repository"
)

// ResultService lists and exports the attempts of an assignment.
type ResultService struct {
	resultRepo     ExamResultStore
	assignmentRepo AssignmentStore
	exportMaxRows  int
	log            zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(resultRepo ExamResultStore, assignmentRepo AssignmentStore, exportMaxRows int, log zerolog.Logger) *ResultService {
	return &ResultService{
		resultRepo:     resultRepo,
		assignmentRepo: assignmentRepo,
		exportMaxRows:  exportMaxRows,
		log:            log.With().Str("component", "result_service").Logger(),
	}
}

// ListResults returns one page of attempts. page defaults to 1 and limit to
// 10; limit is capped at 100.
func (s *ResultService) ListResults(ctx context.Context, ref model.AssignmentRef, filter model.ResultFilter, page, limit int) (*model.ResultPage, error) {
	if err := s.assertAssignment(ctx, ref); err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit)

	results, total, err := s.resultRepo.ListByAssignment(ctx, ref, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	if results == nil {
		results = []model.ResultSummary{}
	}

	return &model.ResultPage{
		Results:    results,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *ResultService) assertAssignment(ctx context.Context, ref model.AssignmentRef) error {
	if !ref.Kind.Valid() {
		return ErrInvalidAssignmentKind
	}
	if _, err := s.assignmentRepo.Get(ctx, ref); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("get assignment: %w", err)
	}
	return nil
}
