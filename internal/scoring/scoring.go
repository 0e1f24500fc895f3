// Package scoring grades submitted answer sets against an exam's answer key.
package scoring

import (
	"slices"

	"github.com/stemsi/exstem-quiz/internal/model"
)

// Result is the outcome of scoring one submission.
type Result struct {
	Total          float64
	CorrectCount   int
	CorrectAnswers []model.AnswerSet
}

// Score compares every submitted answer set with the correct set of its
// question. A question scores its full point value only when both sets are
// equal; submissions for questions outside the exam are ignored, and a
// question is scored at most once. CorrectAnswers lists every exam question
// in exam order.
func Score(questions []model.ContentQuestion, submitted []model.AnswerSet) Result {
	byID := make(map[int]model.ContentQuestion, len(questions))
	res := Result{CorrectAnswers: make([]model.AnswerSet, 0, len(questions))}
	for _, q := range questions {
		byID[q.ID] = q
		res.CorrectAnswers = append(res.CorrectAnswers, model.AnswerSet{
			QuestionID: q.ID,
			AnswerIDs:  q.CorrectAnswerIDs(),
		})
	}

	scored := make(map[int]bool, len(submitted))
	for _, s := range submitted {
		q, ok := byID[s.QuestionID]
		if !ok || scored[s.QuestionID] {
			continue
		}
		scored[s.QuestionID] = true

		if slices.Equal(q.CorrectAnswerIDs(), model.NormalizeAnswerIDs(s.AnswerIDs)) {
			res.Total += q.Score
			res.CorrectCount++
		}
	}
	return res
}
