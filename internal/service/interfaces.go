package service

import (
	"context"

	"github.com/stemsi/exstem-quiz/internal/model"
)

// ExamStore persists exams and their ordered question lists.
type ExamStore interface {
	Create(ctx context.Context, e *model.Exam) error
	GetByID(ctx context.Context, id int) (*model.Exam, error)
	ListByAuthorPaginated(ctx context.Context, authorID, limit, offset int) ([]model.Exam, int, error)
	QuestionIDs(ctx context.Context, examID int) ([]int, error)
	GetContent(ctx context.Context, examID int) (*model.ExamContent, error)
	ReplaceQuestions(ctx context.Context, examID int, questions []model.ExamQuestion) error
}

// ExamCodeStore persists exam codes.
type ExamCodeStore interface {
	ListByExam(ctx context.Context, examID int) ([]model.ExamCode, error)
	InsertBatch(ctx context.Context, examID int, codes []model.ExamCode) error
	DeleteByExam(ctx context.Context, examID int) (int64, error)
	PrefixExists(ctx context.Context, prefix string) (bool, error)
}

// AssignmentStore persists class and room assignments.
type AssignmentStore interface {
	Create(ctx context.Context, a *model.Assignment) error
	Get(ctx context.Context, ref model.AssignmentRef) (*model.Assignment, error)
}

// ExamResultStore persists attempts.
type ExamResultStore interface {
	GetByUserAndAssignment(ctx context.Context, userID int, ref model.AssignmentRef) (*model.ExamResult, error)
	Create(ctx context.Context, res *model.ExamResult) error
	Submit(ctx context.Context, res *model.ExamResult) error
	ListByAssignment(ctx context.Context, ref model.AssignmentRef, filter model.ResultFilter, limit, offset int) ([]model.ResultSummary, int, error)
}

// GroupStore is the part shared by class and room storage.
type GroupStore interface {
	CodeExists(ctx context.Context, code string) (bool, error)
	Exists(ctx context.Context, id int) (bool, error)
}

// ClassStore persists classes.
type ClassStore interface {
	GroupStore
	Create(ctx context.Context, c *model.Class) error
}

// RoomStore persists rooms.
type RoomStore interface {
	GroupStore
	Create(ctx context.Context, r *model.Room) error
}

// ExamContentSource resolves an exam with questions and answer keys.
type ExamContentSource interface {
	Content(ctx context.Context, examID int) (*model.ExamContent, error)
}
