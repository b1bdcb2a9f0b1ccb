package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/examroom/internal/editor"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/repository"
	"github.com/stemsi/examroom/internal/response"
)

// QuestionBankService handles the reusable question pool and copying bank
// questions into exams.
type QuestionBankService struct {
	banks QuestionBankStore
	exams *ExamService
	log   zerolog.Logger
}

// NewQuestionBankService creates a new QuestionBankService.
func NewQuestionBankService(banks QuestionBankStore, exams *ExamService, log zerolog.Logger) *QuestionBankService {
	return &QuestionBankService{
		banks: banks,
		exams: exams,
		log:   log.With().Str("component", "question_bank_service").Logger(),
	}
}

// List retrieves question banks with pagination.
func (s *QuestionBankService) List(ctx context.Context, f model.QuestionBankFilter) ([]model.QuestionBankSummary, *response.Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Category = strings.TrimSpace(f.Category)

	banks, total, err := s.banks.List(ctx, f)
	if err != nil {
		return nil, nil, fmt.Errorf("list question banks: %w", err)
	}
	return banks, response.NewPagination(f.Page, f.PerPage, total), nil
}

// Categories returns the category sidebar with bank and question counts.
func (s *QuestionBankService) Categories(ctx context.Context) ([]model.CategoryCount, error) {
	categories, err := s.banks.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Get retrieves a bank with its questions.
func (s *QuestionBankService) Get(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	b, err := s.banks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionBankNotFound
		}
		return nil, fmt.Errorf("get question bank: %w", err)
	}
	return b, nil
}

// Create inserts an empty bank.
func (s *QuestionBankService) Create(ctx context.Context, authorID int, req *model.CreateQuestionBankRequest) (*model.QuestionBank, error) {
	b := &model.QuestionBank{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		Questions:   []model.Question{},
	}
	if err := s.banks.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create question bank: %w", err)
	}
	s.log.Info().Str("bank_id", b.ID.String()).Str("category", b.Category).Msg("Question bank created")
	return b, nil
}

// Update renames, recategorises or redescribes a bank.
func (s *QuestionBankService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionBankRequest) (*model.QuestionBank, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		b.Name = strings.TrimSpace(req.Name)
	}
	if req.Category != "" {
		b.Category = strings.TrimSpace(req.Category)
	}
	if req.Description != nil {
		b.Description = *req.Description
	}

	if err := s.banks.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update question bank: %w", err)
	}
	return b, nil
}

// Delete removes a bank.
func (s *QuestionBankService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.banks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuestionBankNotFound
		}
		return fmt.Errorf("delete question bank: %w", err)
	}
	return nil
}

// UpsertQuestion normalises q and adds it to a bank, replacing the question
// with the same id.
func (s *QuestionBankService) UpsertQuestion(ctx context.Context, bankID uuid.UUID, q model.Question) (*model.Question, error) {
	b, err := s.Get(ctx, bankID)
	if err != nil {
		return nil, err
	}

	q = editor.Normalize(q)
	if err := editor.Validate(q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}

	if err := s.banks.Update(ctx, editor.UpsertBankQuestion(b, q)); err != nil {
		return nil, fmt.Errorf("update question bank: %w", err)
	}
	return &q, nil
}

// RemoveQuestion deletes a question from a bank.
func (s *QuestionBankService) RemoveQuestion(ctx context.Context, bankID uuid.UUID, questionID string) error {
	b, err := s.Get(ctx, bankID)
	if err != nil {
		return err
	}
	if b.Question(questionID) == nil {
		return ErrQuestionNotFound
	}

	if err := s.banks.Update(ctx, editor.RemoveBankQuestion(b, questionID)); err != nil {
		return fmt.Errorf("update question bank: %w", err)
	}
	return nil
}

// SearchQuestions finds bank questions whose text contains search, optionally
// within one category.
func (s *QuestionBankService) SearchQuestions(ctx context.Context, search, category string) ([]model.BankQuestion, error) {
	banks, err := s.banks.ListByCategory(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, fmt.Errorf("list question banks: %w", err)
	}
	return editor.SearchQuestions(banks, search), nil
}

// AddToExam copies the selected questions of a bank into a draft exam. A
// question already copied from the bank is replaced, not duplicated.
func (s *QuestionBankService) AddToExam(ctx context.Context, examID uuid.UUID, req *model.ImportQuestionsRequest) (*model.Exam, error) {
	b, err := s.Get(ctx, req.BankID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(req.QuestionIDs))
	selected := make([]model.Question, 0, len(req.QuestionIDs))
	for _, id := range req.QuestionIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		q := b.Question(id)
		if q == nil {
			return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
		}
		selected = append(selected, q.Clone())
	}

	return s.exams.ImportQuestions(ctx, examID, selected)
}
