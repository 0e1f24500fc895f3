package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/repository"
)

// AssignmentService assigns exams to classes and rooms.
type AssignmentService struct {
	assignmentRepo AssignmentStore
	examRepo       ExamStore
	groups         *GroupService
	log            zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(assignmentRepo AssignmentStore, examRepo ExamStore, groups *GroupService, log zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		examRepo:       examRepo,
		groups:         groups,
		log:            log.With().Str("component", "assignment_service").Logger(),
	}
}

// AssignExam links an exam to a class or room with a start/end window.
func (s *AssignmentService) AssignExam(ctx context.Context, kind model.AssignmentKind, ownerID int, req model.CreateAssignmentRequest) (*model.Assignment, error) {
	if !kind.Valid() {
		return nil, ErrInvalidAssignmentKind
	}
	if !req.StartAt.Before(req.EndAt) {
		return nil, ErrInvalidWindow
	}

	ok, err := s.groups.GroupExists(ctx, kind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", kind, err)
	}
	if !ok {
		return nil, ErrGroupNotFound
	}

	if _, err := s.examRepo.GetByID(ctx, req.ExamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	a := &model.Assignment{
		Kind:    kind,
		OwnerID: ownerID,
		ExamID:  req.ExamID,
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
	}
	if err := s.assignmentRepo.Create(ctx, a); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrAssignmentExists
		case errors.Is(err, repository.ErrForeignKey):
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	s.log.Info().Str("assignment", a.Ref().String()).Int("assignment_id", a.ID).Msg("Exam assigned")
	return a, nil
}

// Get retrieves an assignment.
func (s *AssignmentService) Get(ctx context.Context, ref model.AssignmentRef) (*model.Assignment, error) {
	if !ref.Kind.Valid() {
		return nil, ErrInvalidAssignmentKind
	}
	a, err := s.assignmentRepo.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}
