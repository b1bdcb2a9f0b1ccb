package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/examroom/internal/editor"
	"github.com/stemsi/examroom/internal/response"
	"github.com/stemsi/examroom/internal/service"
)

// classify maps a service error to an HTTP status and error code.
func classify(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, response.ErrInvalidCredentials
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict, response.ErrUserExists
	case errors.Is(err, service.ErrSessionInvalidated):
		return http.StatusUnauthorized, response.ErrSessionInvalidated

	case errors.Is(err, service.ErrExamNotFound):
		return http.StatusNotFound, response.ErrExamNotFound
	case errors.Is(err, service.ErrExamNotAvailable):
		return http.StatusConflict, response.ErrExamNotAvailable
	case errors.Is(err, service.ErrExamNotDraft):
		return http.StatusConflict, response.ErrExamNotDraft
	case errors.Is(err, service.ErrExamPublished):
		return http.StatusConflict, response.ErrActionForbidden
	case errors.Is(err, service.ErrNoQuestions):
		return http.StatusUnprocessableEntity, response.ErrNoQuestions
	case errors.Is(err, service.ErrInvalidQuestion), errors.Is(err, editor.ErrUnknownAction):
		return http.StatusUnprocessableEntity, response.ErrInvalidPayload
	case errors.Is(err, service.ErrQuestionNotFound):
		return http.StatusNotFound, response.ErrQuestionNotFound

	case errors.Is(err, service.ErrSessionNotStarted):
		return http.StatusConflict, response.ErrSessionNotStarted
	case errors.Is(err, service.ErrSessionCompleted):
		return http.StatusConflict, response.ErrSessionCompleted
	case errors.Is(err, service.ErrAnswerRejected):
		return http.StatusUnprocessableEntity, response.ErrAnswerRejected
	case errors.Is(err, service.ErrResultNotFound):
		return http.StatusNotFound, response.ErrResultNotFound
	case errors.Is(err, service.ErrResultsHidden):
		return http.StatusForbidden, response.ErrResultsHidden
	case errors.Is(err, service.ErrNotEssay):
		return http.StatusUnprocessableEntity, response.ErrNotEssay
	case errors.Is(err, service.ErrShuttingDown):
		return http.StatusServiceUnavailable, response.ErrShuttingDown

	case errors.Is(err, service.ErrQuestionBankNotFound):
		return http.StatusNotFound, response.ErrQuestionBankNotFound

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, response.ErrInternal
	}
	return http.StatusInternalServerError, response.ErrInternal
}

// fail answers with the mapped error. Unmapped errors are attached to the
// context so the request logger records them.
func fail(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	response.Fail(c, status, code)
}

func examIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func bankIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("bank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
