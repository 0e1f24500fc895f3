package model

import "time"

// Exam represents an exam definition owned by a teacher.
type Exam struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	AuthorID        int       `json:"author_id"`
	DurationMinutes int       `json:"duration_minutes"`
	MaxScore        float64   `json:"max_score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ExamQuestion links a question to an exam at a position with a point value.
type ExamQuestion struct {
	QuestionID int     `json:"question_id" binding:"required,min=1"`
	Score      float64 `json:"score" binding:"gte=0"`
}

// ExamContent is the full exam with questions and answer keys.
// It never leaves the server; students receive a SessionView instead.
type ExamContent struct {
	Exam      Exam              `json:"exam"`
	Questions []ContentQuestion `json:"questions"`
}

// QuestionIDs returns the question ids in native exam order.
func (c *ExamContent) QuestionIDs() []int {
	ids := make([]int, len(c.Questions))
	for i, q := range c.Questions {
		ids[i] = q.ID
	}
	return ids
}

// ContentQuestion is a question of an exam together with all of its answers.
type ContentQuestion struct {
	ID      int      `json:"id"`
	Content string   `json:"content"`
	Score   float64  `json:"score"`
	Answers []Answer `json:"answers"`
}

// CorrectAnswerIDs returns the ids of the correct-flagged answers, ascending.
func (q ContentQuestion) CorrectAnswerIDs() []int {
	ids := make([]int, 0, len(q.Answers))
	for _, a := range q.Answers {
		if a.IsCorrect {
			ids = append(ids, a.ID)
		}
	}
	return NormalizeAnswerIDs(ids)
}

// Type derives the interaction type from the number of correct answers.
func (q ContentQuestion) Type() QuestionType {
	correct := 0
	for _, a := range q.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	if correct > 1 {
		return QuestionTypeMultiple
	}
	return QuestionTypeSingle
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Name            string  `json:"name" binding:"required,min=3,max=255"`
	DurationMinutes int     `json:"duration_minutes" binding:"required,min=1,max=480"`
	MaxScore        float64 `json:"max_score" binding:"required,gt=0"`
}

// ReplaceQuestionsRequest replaces the ordered question list of an exam.
type ReplaceQuestionsRequest struct {
	Questions []ExamQuestion `json:"questions" binding:"required,dive"`
}
