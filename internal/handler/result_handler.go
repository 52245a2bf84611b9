package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/prepiq/quiz-backend/internal/repository"
	"github.com/prepiq/quiz-backend/internal/response"
	"github.com/prepiq/quiz-backend/internal/service"
)

// ResultHandler serves scored results to the results/performance pages.
type ResultHandler struct {
	sessions *service.SessionService
	results  *repository.ResultRepository
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(sessions *service.SessionService, results *repository.ResultRepository) *ResultHandler {
	return &ResultHandler{sessions: sessions, results: results}
}

// GetSessionResult godoc
// GET /api/v1/sessions/:session_id/result
// Returns the ResultRecord for a submitted session. Prefers the live
// engine's copy; falls back to the archive once the process has let the
// session go.
func (h *ResultHandler) GetSessionResult(c *gin.Context) {
	sessionID := c.Param("session_id")

	if eng, err := h.sessions.Get(sessionID); err == nil {
		if rec := eng.Result(); rec != nil {
			response.Success(c, http.StatusOK, rec)
			return
		}
		response.Fail(c, http.StatusConflict, response.ErrResultNotReady)
		return
	}

	archived, err := h.results.GetBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, archived)
}

// ListResults godoc
// GET /api/v1/results?page=&per_page=
// Returns archived results, newest first.
func (h *ResultHandler) ListResults(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	results, total, err := h.results.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if results == nil {
		results = []repository.ArchivedResult{}
	}

	totalPages := int(total) / perPage
	if int(total)%perPage != 0 {
		totalPages++
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}
