package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/middleware"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/stemsi/exstem-quiz/internal/validator"
)

// GroupHandler creates classes and rooms and assigns exams to them.
type GroupHandler struct {
	groupService      *service.GroupService
	assignmentService *service.AssignmentService
	log               zerolog.Logger
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService *service.GroupService, assignmentService *service.AssignmentService, log zerolog.Logger) *GroupHandler {
	return &GroupHandler{
		groupService:      groupService,
		assignmentService: assignmentService,
		log:               log.With().Str("component", "group_handler").Logger(),
	}
}

// CreateClass godoc
// POST /api/v1/admin/classes
// Creates a class with a generated join code.
func (h *GroupHandler) CreateClass(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateGroupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.groupService.CreateClass(c.Request.Context(), claims.UserID, req)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"class": class})
}

// CreateRoom godoc
// POST /api/v1/admin/rooms
// Creates an exam room with a generated join code.
func (h *GroupHandler) CreateRoom(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateGroupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	room, err := h.groupService.CreateRoom(c.Request.Context(), claims.UserID, req)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"room": room})
}

// AssignExam godoc
// POST /api/v1/admin/assignments/:kind/:assignment_id/exams
// Assigns an exam to a class or room for a start/end window.
func (h *GroupHandler) AssignExam(c *gin.Context) {
	ref, ok := assignmentRef(c, 0)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignment, err := h.assignmentService.AssignExam(c.Request.Context(), ref.Kind, ref.OwnerID, req)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"assignment": assignment})
}
