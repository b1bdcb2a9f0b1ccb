package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/examroom/internal/editor"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/response"
	"github.com/stemsi/examroom/internal/service"
	"github.com/stemsi/examroom/internal/validator"
)

// QuestionHandler handles question authoring endpoints.
type QuestionHandler struct {
	examService *service.ExamService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(examService *service.ExamService) *QuestionHandler {
	return &QuestionHandler{examService: examService}
}

// ListQuestions godoc
// GET /api/v1/admin/exams/:exam_id/questions
// Lists all questions of an exam in order.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		fail(c, err)
		return
	}

	questions := exam.Questions
	if questions == nil {
		questions = []model.Question{}
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// UpsertQuestion godoc
// PUT /api/v1/admin/exams/:exam_id/questions
// Adds a question to a draft, or replaces the question with the same id.
// The question is normalised before it is stored.
func (h *QuestionHandler) UpsertQuestion(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	var req model.UpsertQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.examService.UpsertQuestion(c.Request.Context(), examID, req.ToQuestion())
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/exams/:exam_id/questions/:question_id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	if err := h.examService.RemoveQuestion(c.Request.Context(), examID, c.Param("question_id")); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question removed"})
}

// EditQuestion godoc
// POST /api/v1/admin/editor/question
// Applies editing actions to a question without storing it, so clients share
// the server's rules for option handling and type changes.
func (h *QuestionHandler) EditQuestion(c *gin.Context) {
	var req editor.EditQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q := editor.NewQuestion()
	if req.Question != nil {
		q = req.Question.Clone()
	}

	q, err := editor.ApplyAll(q, req.Actions)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"question": q,
		"valid":    editor.Validate(editor.Normalize(q)) == nil,
	})
}
