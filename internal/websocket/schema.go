package websocket

import "github.com/stemsi/exstem-quiz/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload is every message a client may send. Answers is only read
// for ActionSubmit.
type RequestPayload struct {
	Action  Action            `json:"action"`
	Answers []model.AnswerSet `json:"answers" binding:"dive"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventGraded Event = "graded"
	EventPong   Event = "pong"
)

// GradedResponse is sent once an attempt has been scored.
type GradedResponse struct {
	Event          Event              `json:"event"`
	Status         model.ResultStatus `json:"status"`
	Score          float64            `json:"score"`
	MaxScore       float64            `json:"max_score"`
	CorrectAnswers []model.AnswerSet  `json:"correct_answers"`
}

// ErrorResponse carries a machine-readable code and a message.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
