package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prepiq/quiz-backend/internal/model"
	"github.com/prepiq/quiz-backend/internal/quiz"
	"github.com/prepiq/quiz-backend/internal/response"
	"github.com/prepiq/quiz-backend/internal/service"
	"github.com/prepiq/quiz-backend/internal/validator"
)

// SessionHandler exposes the quiz session engine to the exam page.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// StartSession godoc
// POST /api/v1/sessions
// Boots a session from a question set and time limit; resumes the
// autosaved snapshot when the session ID is already known.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.sessions.Start(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, quiz.ErrNoQuestions) {
			response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, view)
}

// GetState godoc
// GET /api/v1/sessions/:session_id
// Returns the session view: answers, statuses, bookmarks, pointer,
// remaining time. This endpoint covers the page reload.
func (h *SessionHandler) GetState(c *gin.Context) {
	eng, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}

	response.Success(c, http.StatusOK, eng.View())
}

// GetQuestion godoc
// GET /api/v1/sessions/:session_id/questions/:index
// Returns one question's prompt and options for rendering.
func (h *SessionHandler) GetQuestion(c *gin.Context) {
	eng, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}

	idx, ok := parseIndex(c.Param("index"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionRange)
		return
	}

	q, err := eng.Question(idx)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionRange)
		return
	}

	// The answer key never leaves the server mid-session.
	response.Success(c, http.StatusOK, gin.H{
		"index":   q.Index,
		"prompt":  q.Prompt,
		"options": q.Options,
	})
}

// SelectAnswer godoc
// POST /api/v1/sessions/:session_id/answers
// Records an answer for one question.
func (h *SessionHandler) SelectAnswer(c *gin.Context) {
	eng, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}

	var req model.SelectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := eng.SelectAnswer(c.Request.Context(), *req.QuestionIndex, req.Option); err != nil {
		failEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, eng.View())
}

// MarkForReview godoc
// POST /api/v1/sessions/:session_id/review
// Flags a question for revisiting (idempotent).
func (h *SessionHandler) MarkForReview(c *gin.Context) {
	eng, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}

	var req model.QuestionIndexRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := eng.MarkForReview(c.Request.Context(), *req.QuestionIndex); err != nil {
		failEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, eng.View())
}

// ToggleBookmark godoc
// POST /api/v1/sessions/:session_id/bookmarks
// Flips a question's bookmark and reports the new value so the page can
// show the matching notification.
func (h *SessionHandler) ToggleBookmark(c *gin.Context) {
	eng, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}

	var req model.QuestionIndexRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bookmarked, err := eng.ToggleBookmark(c.Request.Context(), *req.QuestionIndex)
	if err != nil {
		failEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"question_index": *req.QuestionIndex,
		"bookmarked":     bookmarked,
	})
}

// Navigate godoc
// POST /api/v1/sessions/:session_id/position
// Moves the current question pointer to an explicit index.
func (h *SessionHandler) Navigate(c *gin.Context) {
	eng, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}

	var req model.QuestionIndexRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := eng.GoTo(c.Request.Context(), *req.QuestionIndex); err != nil {
		failEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, eng.View())
}

// Next godoc
// POST /api/v1/sessions/:session_id/next
// Advances the pointer; a no-op past the last question.
func (h *SessionHandler) Next(c *gin.Context) {
	h.step(c, func(eng *quiz.Engine) error {
		return eng.Next(c.Request.Context())
	})
}

// Previous godoc
// POST /api/v1/sessions/:session_id/previous
// Moves the pointer back; a no-op before the first question.
func (h *SessionHandler) Previous(c *gin.Context) {
	h.step(c, func(eng *quiz.Engine) error {
		return eng.Previous(c.Request.Context())
	})
}

func (h *SessionHandler) step(c *gin.Context, move func(*quiz.Engine) error) {
	eng, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}

	if err := move(eng); err != nil {
		failEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, eng.View())
}

// Submit godoc
// POST /api/v1/sessions/:session_id/submit
// User-initiated submission. Racing the timer is safe: the duplicate
// trigger gets the already computed result with a conflict status.
func (h *SessionHandler) Submit(c *gin.Context) {
	rec, err := h.sessions.Submit(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
			return
		}
		if errors.Is(err, quiz.ErrAlreadySubmitted) {
			response.FailWithData(c, http.StatusConflict, response.ErrSessionSubmitted, rec)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, rec)
}

// failEngine maps engine errors onto API error codes.
func failEngine(c *gin.Context, err error) {
	switch {
	case errors.Is(err, quiz.ErrOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionRange)
	case errors.Is(err, quiz.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrSessionSubmitted)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func parseIndex(raw string) (int, bool) {
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
