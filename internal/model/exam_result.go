package model

import (
	"slices"
	"time"
)

// ResultStatus is the lifecycle state of an attempt.
type ResultStatus string

const (
	ResultStatusInProgress ResultStatus = "IN_PROGRESS"
	ResultStatusSubmitted  ResultStatus = "SUBMITTED"
)

// AnswerSet is the set of answer ids chosen (or correct) for one question.
type AnswerSet struct {
	QuestionID int   `json:"question_id" binding:"required,min=1"`
	AnswerIDs  []int `json:"answer_ids" binding:"dive,min=1"`
}

// NormalizeAnswerIDs returns the ids sorted ascending without duplicates.
func NormalizeAnswerIDs(ids []int) []int {
	out := slices.Clone(ids)
	if out == nil {
		out = []int{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// NormalizeAnswerSets normalizes the ids of every set.
func NormalizeAnswerSets(sets []AnswerSet) []AnswerSet {
	out := make([]AnswerSet, len(sets))
	for i, s := range sets {
		out[i] = AnswerSet{QuestionID: s.QuestionID, AnswerIDs: NormalizeAnswerIDs(s.AnswerIDs)}
	}
	return out
}

// ExamResult is a student's single attempt at an assigned exam.
type ExamResult struct {
	ID             int            `json:"id"`
	UserID         int            `json:"user_id"`
	AssignmentKind AssignmentKind `json:"assignment_kind"`
	AssignmentID   int            `json:"assignment_id"`
	ExamID         int            `json:"exam_id"`
	ExamCodeID     *int           `json:"exam_code_id,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
	SubmittedAt    *time.Time     `json:"submitted_at,omitempty"`
	Score          float64        `json:"score"`
	MaxScore       float64        `json:"max_score"`
	Answers        []AnswerSet    `json:"answers"`
	CorrectAnswers []AnswerSet    `json:"correct_answers"`
}

// Submitted reports whether the attempt has been scored.
func (r *ExamResult) Submitted() bool {
	return r.SubmittedAt != nil
}

// Status returns the lifecycle state of the attempt.
func (r *ExamResult) Status() ResultStatus {
	if r.Submitted() {
		return ResultStatusSubmitted
	}
	return ResultStatusInProgress
}

// Ref returns the assignment this attempt belongs to.
func (r *ExamResult) Ref() AssignmentRef {
	return AssignmentRef{Kind: r.AssignmentKind, OwnerID: r.AssignmentID, ExamID: r.ExamID}
}

// SessionView is what a student sees when starting an exam. It carries no
// correctness information.
type SessionView struct {
	ResultID        int               `json:"result_id"`
	ExamID          int               `json:"exam_id"`
	Name            string            `json:"name"`
	Code            string            `json:"code,omitempty"`
	DurationMinutes int               `json:"duration_minutes"`
	MaxScore        float64           `json:"max_score"`
	StartedAt       time.Time         `json:"started_at"`
	Questions       []SessionQuestion `json:"questions"`
}

// SessionQuestion is a question as presented during an attempt.
type SessionQuestion struct {
	ID      int             `json:"id"`
	Content string          `json:"content"`
	Type    QuestionType    `json:"type"`
	Score   float64         `json:"score"`
	Answers []SessionAnswer `json:"answers"`
}

// SessionAnswer is an answer without its correctness flag.
type SessionAnswer struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
}

// SubmitExamRequest is the payload for submitting an attempt.
type SubmitExamRequest struct {
	Answers []AnswerSet `json:"answers" binding:"dive"`
}

// SortDirection orders a result listing key. The empty value means no sort.
type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection maps a query value to a SortDirection; "none" and "" map to SortNone.
func ParseSortDirection(v string) (SortDirection, bool) {
	switch v {
	case "", "none":
		return SortNone, true
	case "asc", "ASC":
		return SortAsc, true
	case "desc", "DESC":
		return SortDesc, true
	}
	return SortNone, false
}

// ResultFilter narrows and orders a result listing.
type ResultFilter struct {
	StudentName  string
	ScoreSort    SortDirection
	DurationSort SortDirection
}

// ListResultsQuery binds the query string of the results endpoint.
type ListResultsQuery struct {
	StudentName  string `form:"student_name" json:"student_name" binding:"omitempty,max=100"`
	ScoreSort    string `form:"score_sort" json:"score_sort" binding:"omitempty,oneof=asc desc none"`
	DurationSort string `form:"duration_sort" json:"duration_sort" binding:"omitempty,oneof=asc desc none"`
	Page         int    `form:"page" json:"page" binding:"omitempty,min=1"`
	Limit        int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"`
}

// ResultSummary is one row of a result listing.
type ResultSummary struct {
	ID              int          `json:"id"`
	UserID          int          `json:"user_id"`
	StudentName     string       `json:"student_name"`
	ExamCode        *string      `json:"exam_code,omitempty"`
	Score           float64      `json:"score"`
	MaxScore        float64      `json:"max_score"`
	Status          ResultStatus `json:"status"`
	StartedAt       time.Time    `json:"started_at"`
	SubmittedAt     *time.Time   `json:"submitted_at"`
	DurationSeconds *int64       `json:"duration_seconds"`
}

// ResultPage is one page of results plus paging totals.
type ResultPage struct {
	Results    []ResultSummary `json:"results"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}
