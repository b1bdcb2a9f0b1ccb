package handler

import (
	"net/http"
	"testing"

	"github.com/stemsi/examroom/internal/demo"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/response"
)

func TestQuestionBankLifecycle(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodPost, "/admin/question-banks", env.adminToken, map[string]any{
		"name": "Go Basics", "category": "Go",
	})
	expectStatus(t, w, http.StatusCreated)
	var created struct {
		Bank model.QuestionBank `json:"question_bank"`
	}
	decode(t, body.Data, &created)
	path := "/admin/question-banks/" + created.Bank.ID.String()

	w, body = env.do(t, http.MethodPut, path+"/questions", env.adminToken, map[string]any{
		"text": "Go has generics.", "type": "true-false", "points": 1,
		"options": []map[string]any{{"id": "y", "text": "Yes", "is_correct": true}, {"id": "n", "text": "No"}},
	})
	expectStatus(t, w, http.StatusOK)
	var upserted struct {
		Question model.Question `json:"question"`
	}
	decode(t, body.Data, &upserted)
	if !upserted.Question.Options[0].IsCorrect {
		t.Fatalf("answer key lost: %+v", upserted.Question.Options)
	}

	w, body = env.do(t, http.MethodPut, path+"/questions", env.adminToken, map[string]any{
		"text": "No key", "type": "true-false",
	})
	expectStatus(t, w, http.StatusUnprocessableEntity)
	expectCode(t, body, response.ErrInvalidPayload)

	w, body = env.do(t, http.MethodPut, path, env.adminToken, map[string]any{"description": "Language basics"})
	expectStatus(t, w, http.StatusOK)
	var updated struct {
		Bank model.QuestionBank `json:"question_bank"`
	}
	decode(t, body.Data, &updated)
	if updated.Bank.Description != "Language basics" || len(updated.Bank.Questions) != 1 {
		t.Fatalf("unexpected bank: %+v", updated.Bank)
	}

	w, _ = env.do(t, http.MethodDelete, path+"/questions/"+upserted.Question.ID, env.adminToken, nil)
	expectStatus(t, w, http.StatusOK)

	w, _ = env.do(t, http.MethodDelete, path, env.adminToken, nil)
	expectStatus(t, w, http.StatusOK)

	w, body = env.do(t, http.MethodGet, path, env.adminToken, nil)
	expectStatus(t, w, http.StatusNotFound)
	expectCode(t, body, response.ErrQuestionBankNotFound)
}

func TestListQuestionBanks(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/admin/question-banks?per_page=1&page=2", env.adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	var list struct {
		Banks []model.QuestionBankSummary `json:"question_banks"`
	}
	decode(t, body.Data, &list)
	if len(list.Banks) != 1 || body.Pagination == nil || body.Pagination.TotalItems != 2 || body.Pagination.Page != 2 {
		t.Fatalf("unexpected page: %+v %+v", list.Banks, body.Pagination)
	}

	w, body = env.do(t, http.MethodGet, "/admin/question-banks/categories", env.adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	var cats struct {
		Categories []model.CategoryCount `json:"categories"`
	}
	decode(t, body.Data, &cats)
	if len(cats.Categories) != 2 {
		t.Fatalf("unexpected categories: %+v", cats.Categories)
	}

	w, body = env.do(t, http.MethodGet, "/admin/question-banks?per_page=500", env.adminToken, nil)
	expectStatus(t, w, http.StatusBadRequest)
	expectCode(t, body, response.ErrValidation)

	w, body = env.do(t, http.MethodGet, "/admin/question-banks/not-a-uuid", env.adminToken, nil)
	expectStatus(t, w, http.StatusBadRequest)
	expectCode(t, body, response.ErrInvalidID)
}

func TestSearchBankQuestions(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/admin/question-banks/questions?search=typeof", env.adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	var out struct {
		Questions []model.BankQuestion `json:"questions"`
	}
	decode(t, body.Data, &out)
	if len(out.Questions) != 1 || out.Questions[0].Question.ID != "4" || out.Questions[0].BankID != demo.BankID {
		t.Fatalf("unexpected hits: %+v", out.Questions)
	}
}

func TestAddBankQuestionsToExamHandler(t *testing.T) {
	env := newTestEnv(t)
	exam := createExam(t, env)
	path := "/admin/exams/" + exam.ID.String() + "/questions/import"

	w, body := env.do(t, http.MethodPost, path, env.adminToken, map[string]any{
		"bank_id": demo.BankID, "question_ids": []string{"1", "2"},
	})
	expectStatus(t, w, http.StatusOK)
	var out struct {
		Questions []model.Question `json:"questions"`
	}
	decode(t, body.Data, &out)
	if len(out.Questions) != 2 || out.Questions[0].ID != "1" {
		t.Fatalf("unexpected questions: %+v", out.Questions)
	}

	w, body = env.do(t, http.MethodPost, path, env.adminToken, map[string]any{
		"bank_id": demo.BankID, "question_ids": []string{},
	})
	expectStatus(t, w, http.StatusBadRequest)
	expectCode(t, body, response.ErrValidation)

	w, body = env.do(t, http.MethodPost, path, env.adminToken, map[string]any{
		"bank_id": demo.BankID, "question_ids": []string{"missing"},
	})
	expectStatus(t, w, http.StatusNotFound)
	expectCode(t, body, response.ErrQuestionNotFound)

	w, body = env.do(t, http.MethodPost, "/admin/exams/"+demo.ExamID.String()+"/questions/import", env.adminToken, map[string]any{
		"bank_id": demo.BankID, "question_ids": []string{"1"},
	})
	expectStatus(t, w, http.StatusConflict)
	expectCode(t, body, response.ErrExamNotDraft)
}
