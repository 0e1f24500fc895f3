package model

// QuestionType is derived from the answer data, never stored.
type QuestionType string

const (
	QuestionTypeSingle   QuestionType = "single"
	QuestionTypeMultiple QuestionType = "multiple"
)

// Answer is one selectable answer of a question.
type Answer struct {
	ID         int    `json:"id"`
	QuestionID int    `json:"question_id"`
	Content    string `json:"content"`
	IsCorrect  bool   `json:"is_correct"`
}
