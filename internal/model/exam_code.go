package model

import "time"

// ExamCode is a shuffled variant of an exam. QuestionOrder is a permutation
// of the exam's question ids at the time the code was generated.
type ExamCode struct {
	ID            int       `json:"id"`
	ExamID        int       `json:"exam_id"`
	Code          string    `json:"code"`
	QuestionOrder []int     `json:"question_order"`
	CreatedAt     time.Time `json:"created_at"`
}

// GenerateExamCodesRequest is the payload for generating exam codes.
type GenerateExamCodesRequest struct {
	Count int `json:"count" binding:"required,min=1"`
}
