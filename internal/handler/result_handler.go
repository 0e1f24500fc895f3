package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/stemsi/exstem-quiz/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ResultHandler serves attempt listings for teachers.
type ResultHandler struct {
	resultService *service.ResultService
	log           zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		resultService: resultService,
		log:           log.With().Str("component", "result_handler").Logger(),
	}
}

// ListResults godoc
// GET /api/v1/admin/assignments/:kind/:assignment_id/exams/:exam_id/results
// Lists attempts with optional name filter and score/duration sorting.
func (h *ResultHandler) ListResults(c *gin.Context) {
	ref, ok := examAssignmentRef(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var q model.ListResultsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	filter, ok := toFilter(q)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	}

	page, err := h.resultService.ListResults(c.Request.Context(), ref, filter, q.Page, q.Limit)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK,
		gin.H{"results": page.Results},
		response.NewPagination(page.Page, page.Limit, page.Total),
	)
}

// ExportResults godoc
// GET /api/v1/admin/assignments/:kind/:assignment_id/exams/:exam_id/results/export
// Downloads the filtered attempts as an XLSX workbook.
func (h *ResultHandler) ExportResults(c *gin.Context) {
	ref, ok := examAssignmentRef(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var q model.ListResultsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	filter, ok := toFilter(q)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	}

	body, err := h.resultService.ExportResults(c.Request.Context(), ref, filter)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	filename := fmt.Sprintf("results-%s-%d-exam-%d.xlsx", ref.Kind, ref.OwnerID, ref.ExamID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, body)
}

func toFilter(q model.ListResultsQuery) (model.ResultFilter, bool) {
	scoreSort, ok := model.ParseSortDirection(q.ScoreSort)
	if !ok {
		return model.ResultFilter{}, false
	}
	durationSort, ok := model.ParseSortDirection(q.DurationSort)
	if !ok {
		return model.ResultFilter{}, false
	}
	return model.ResultFilter{
		StudentName:  q.StudentName,
		ScoreSort:    scoreSort,
		DurationSort: durationSort,
	}, true
}
