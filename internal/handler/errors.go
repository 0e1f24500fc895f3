package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/service"
)

// errorCodes maps domain sentinels to their API error codes.
var errorCodes = []struct {
	err  error
	code response.ErrCode
}{
	{service.ErrInvalidAssignmentKind, response.ErrInvalidAssignmentKind},
	{service.ErrInvalidWindow, response.ErrInvalidWindow},
	{service.ErrInvalidVariantCount, response.ErrInvalidVariantCount},
	{service.ErrScoreExceedsMax, response.ErrScoreExceedsMax},
	{service.ErrEmptyQuestionSet, response.ErrNoQuestions},
	{service.ErrDuplicateQuestion, response.ErrDuplicateQuestion},
	{service.ErrUnknownQuestion, response.ErrUnknownQuestion},
	{service.ErrAlreadyAttempted, response.ErrAlreadyAttempted},
	{service.ErrAlreadySubmitted, response.ErrAlreadySubmitted},
	{service.ErrAssignmentExists, response.ErrAssignmentExists},
	{service.ErrAssignmentNotFound, response.ErrAssignmentNotFound},
	{service.ErrExamNotFound, response.ErrExamNotFound},
	{service.ErrAttemptNotFound, response.ErrAttemptNotFound},
	{service.ErrGroupNotFound, response.ErrGroupNotFound},
	{service.ErrNotYetOpen, response.ErrExamNotOpen},
	{service.ErrClosed, response.ErrExamClosed},
}

// statusOf returns the HTTP status for an error's domain kind.
func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindWindow:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// codeOf returns the API error code for err, falling back to a generic code
// for the error's kind.
func codeOf(err error) response.ErrCode {
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	switch service.KindOf(err) {
	case service.KindValidation:
		return response.ErrValidation
	case service.KindConflict:
		return response.ErrConflict
	case service.KindNotFound:
		return response.ErrNotFound
	default:
		return response.ErrInternal
	}
}

// writeServiceError writes the error envelope for a service error. Internal
// errors are logged, domain errors are not.
func writeServiceError(c *gin.Context, log zerolog.Logger, err error) {
	kind := service.KindOf(err)
	if kind == service.KindInternal {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	response.Fail(c, statusOf(kind), codeOf(err))
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// assignmentRef builds an AssignmentRef from the :kind and :assignment_id
// path parameters plus the given exam id. The kind is validated by the
// services so the caller gets the domain error code for it.
func assignmentRef(c *gin.Context, examID int) (model.AssignmentRef, bool) {
	ownerID, ok := paramID(c, "assignment_id")
	if !ok {
		return model.AssignmentRef{}, false
	}
	return model.AssignmentRef{
		Kind:    model.AssignmentKind(c.Param("kind")),
		OwnerID: ownerID,
		ExamID:  examID,
	}, true
}

// examAssignmentRef parses :kind, :assignment_id and :exam_id.
func examAssignmentRef(c *gin.Context) (model.AssignmentRef, bool) {
	examID, ok := paramID(c, "exam_id")
	if !ok {
		return model.AssignmentRef{}, false
	}
	return assignmentRef(c, examID)
}
