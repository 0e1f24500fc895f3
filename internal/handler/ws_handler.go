package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/middleware"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/stemsi/exstem-quiz/internal/validator"
	ws "github.com/stemsi/exstem-quiz/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// Submitter scores an attempt.
type Submitter interface {
	Submit(ctx context.Context, userID int, ref model.AssignmentRef, answers []model.AnswerSet) (*model.ExamResult, error)
}

// WSHandler handles the realtime exam stream.
type WSHandler struct {
	sessions Submitter
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions Submitter, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// ExamWebSocketStream godoc
// WS /ws/v1/student/assignments/:kind/:assignment_id/exams/:exam_id/stream
// Upgrades to WebSocket so a student can submit and receive the grade in place.
func (h *WSHandler) ExamWebSocketStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	ref, ok := examAssignmentRef(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	if !ref.Kind.Valid() {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidAssignmentKind)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("user_id", claims.UserID).
		Str("assignment", ref.String()).
		Logger()

	wsLog.Info().Msg("Student connected")

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionSubmit:
			h.handleSubmit(c.Request.Context(), conn, wsLog, claims.UserID, ref, &msg)
		case ws.ActionPing:
			h.write(conn, wsLog, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			h.writeError(conn, wsLog, response.ErrUnknownWSAction, "unknown action: "+string(msg.Action))
		}
	}
}

// handleSubmit scores the attempt and replies with the graded event.
func (h *WSHandler) handleSubmit(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, userID int, ref model.AssignmentRef, msg *ws.RequestPayload) {
	if fields := validator.Struct(msg); fields != nil {
		h.writeError(conn, wsLog, response.ErrValidation, response.GetMessage(response.ErrValidation))
		return
	}

	result, err := h.sessions.Submit(ctx, userID, ref, msg.Answers)
	if err != nil {
		code := codeOf(err)
		if service.KindOf(err) == service.KindInternal {
			wsLog.Error().Err(err).Msg("Submit failed")
		}
		h.writeError(conn, wsLog, code, response.GetMessage(code))
		return
	}

	h.write(conn, wsLog, ws.GradedResponse{
		Event:          ws.EventGraded,
		Status:         result.Status(),
		Score:          result.Score,
		MaxScore:       result.MaxScore,
		CorrectAnswers: result.CorrectAnswers,
	})
}

func (h *WSHandler) write(conn *websocket.Conn, wsLog zerolog.Logger, v any) {
	if err := ws.WriteTyped(conn, v); err != nil {
		wsLog.Debug().Err(err).Msg("WebSocket write failed")
	}
}

func (h *WSHandler) writeError(conn *websocket.Conn, wsLog zerolog.Logger, code response.ErrCode, msg string) {
	if err := ws.WriteError(conn, string(code), msg); err != nil {
		wsLog.Debug().Err(err).Msg("WebSocket write failed")
	}
}
