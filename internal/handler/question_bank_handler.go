package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/examroom/internal/middleware"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/response"
	"github.com/stemsi/examroom/internal/service"
	"github.com/stemsi/examroom/internal/validator"
)

// QuestionBankHandler handles question bank endpoints.
type QuestionBankHandler struct {
	bankService *service.QuestionBankService
}

// NewQuestionBankHandler creates a new QuestionBankHandler.
func NewQuestionBankHandler(bankService *service.QuestionBankService) *QuestionBankHandler {
	return &QuestionBankHandler{bankService: bankService}
}

// ListQuestionBanks godoc
// GET /api/v1/admin/question-banks?search=&category=&page=&per_page=
func (h *QuestionBankHandler) ListQuestionBanks(c *gin.Context) {
	var q model.ListQuestionBanksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	banks, pagination, err := h.bankService.List(c.Request.Context(), model.QuestionBankFilter{
		Search:   q.Search,
		Category: q.Category,
		Page:     q.Page,
		PerPage:  q.PerPage,
	})
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"question_banks": banks}, pagination)
}

// ListCategories godoc
// GET /api/v1/admin/question-banks/categories
func (h *QuestionBankHandler) ListCategories(c *gin.Context) {
	categories, err := h.bankService.Categories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"categories": categories})
}

// SearchQuestions godoc
// GET /api/v1/admin/question-banks/questions?search=&category=
// Finds bank questions by their text.
func (h *QuestionBankHandler) SearchQuestions(c *gin.Context) {
	var q model.SearchBankQuestionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	questions, err := h.bankService.SearchQuestions(c.Request.Context(), q.Search, q.Category)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// CreateQuestionBank godoc
// POST /api/v1/admin/question-banks
func (h *QuestionBankHandler) CreateQuestionBank(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateQuestionBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank, err := h.bankService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question_bank": bank})
}

// GetQuestionBank godoc
// GET /api/v1/admin/question-banks/:bank_id
// Returns the bank with its questions and answer keys.
func (h *QuestionBankHandler) GetQuestionBank(c *gin.Context) {
	bankID, ok := bankIDParam(c)
	if !ok {
		return
	}

	bank, err := h.bankService.Get(c.Request.Context(), bankID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question_bank": bank})
}

// UpdateQuestionBank godoc
// PUT /api/v1/admin/question-banks/:bank_id
func (h *QuestionBankHandler) UpdateQuestionBank(c *gin.Context) {
	bankID, ok := bankIDParam(c)
	if !ok {
		return
	}

	var req model.UpdateQuestionBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank, err := h.bankService.Update(c.Request.Context(), bankID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question_bank": bank})
}

// DeleteQuestionBank godoc
// DELETE /api/v1/admin/question-banks/:bank_id
func (h *QuestionBankHandler) DeleteQuestionBank(c *gin.Context) {
	bankID, ok := bankIDParam(c)
	if !ok {
		return
	}

	if err := h.bankService.Delete(c.Request.Context(), bankID); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question bank deleted"})
}

// UpsertBankQuestion godoc
// PUT /api/v1/admin/question-banks/:bank_id/questions
// Adds a question to the bank, or replaces the question with the same id.
func (h *QuestionBankHandler) UpsertBankQuestion(c *gin.Context) {
	bankID, ok := bankIDParam(c)
	if !ok {
		return
	}

	var req model.UpsertQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.bankService.UpsertQuestion(c.Request.Context(), bankID, req.ToQuestion())
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// DeleteBankQuestion godoc
// DELETE /api/v1/admin/question-banks/:bank_id/questions/:question_id
func (h *QuestionBankHandler) DeleteBankQuestion(c *gin.Context) {
	bankID, ok := bankIDParam(c)
	if !ok {
		return
	}

	if err := h.bankService.RemoveQuestion(c.Request.Context(), bankID, c.Param("question_id")); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question removed"})
}

// AddToExam godoc
// POST /api/v1/admin/exams/:exam_id/questions/import
// Copies selected bank questions into a draft exam.
func (h *QuestionBankHandler) AddToExam(c *gin.Context) {
	examID, ok := examIDParam(c)
	if !ok {
		return
	}

	var req model.ImportQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.bankService.AddToExam(c.Request.Context(), examID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": exam.Questions})
}
