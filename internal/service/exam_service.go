package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/examroom/internal/cache"
	"github.com/stemsi/examroom/internal/editor"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/repository"
)

// ExamService handles exam authoring, the publish lifecycle and the definition cache.
type ExamService struct {
	exams ExamStore
	cache ExamCache
	log   zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams ExamStore, cache ExamCache, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams: exams,
		cache: cache,
		log:   log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves an exam straight from the database.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return e, nil
}

// GetDefinition returns the full definition of an exam, reading Redis first and
// falling back to PostgreSQL. A miss is healed for published exams.
func (s *ExamService) GetDefinition(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e, err := s.cache.GetExam(ctx, id)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn().Err(err).Str("exam_id", id.String()).Msg("Exam cache read failed, using database")
	}

	e, err = s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == model.ExamStatusPublished {
		if err := s.cache.SetExam(ctx, e); err != nil {
			s.log.Warn().Err(err).Str("exam_id", id.String()).Msg("Failed to heal exam cache")
		}
	}
	return e, nil
}

// List returns exam summaries narrowed by search text and status ("all" for any).
func (s *ExamService) List(ctx context.Context, f model.ExamFilter) ([]model.ExamSummary, error) {
	exams, err := s.exams.List(ctx, model.ExamFilter{AuthorID: f.AuthorID})
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return editor.Filter(exams, f.Search, f.Status), nil
}

// ListPublished returns every published exam.
func (s *ExamService) ListPublished(ctx context.Context) ([]model.Exam, error) {
	return s.exams.ListPublished(ctx)
}

// Create inserts a new exam as DRAFT.
func (s *ExamService) Create(ctx context.Context, authorID int, req *model.CreateExamRequest) (*model.Exam, error) {
	e := &model.Exam{
		Title:              strings.TrimSpace(req.Title),
		Description:        req.Description,
		TimeLimitMinutes:   req.TimeLimitMinutes,
		PassingScore:       model.DefaultPassingScore,
		RandomizeQuestions: req.RandomizeQuestions,
		ShowResults:        true,
		Status:             model.ExamStatusDraft,
		AuthorID:           authorID,
		Questions:          []model.Question{},
	}
	if req.PassingScore != nil {
		e.PassingScore = *req.PassingScore
	}
	if req.ShowResults != nil {
		e.ShowResults = *req.ShowResults
	}

	if err := s.exams.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	s.log.Info().Str("exam_id", e.ID.String()).Int("author_id", authorID).Msg("Exam created")
	return e, nil
}

// Update changes the settings of a draft exam.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	e, err := s.draft(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		e.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.TimeLimitMinutes > 0 {
		e.TimeLimitMinutes = req.TimeLimitMinutes
	}
	if req.PassingScore != nil {
		e.PassingScore = *req.PassingScore
	}
	if req.RandomizeQuestions != nil {
		e.RandomizeQuestions = *req.RandomizeQuestions
	}
	if req.ShowResults != nil {
		e.ShowResults = *req.ShowResults
	}

	if err := s.exams.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}
	return e, nil
}

// Delete removes an exam that is not currently published.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.Status == model.ExamStatusPublished {
		return ErrExamPublished
	}
	if err := s.exams.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	if err := s.cache.DeleteExam(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("exam_id", id.String()).Msg("Failed to evict exam cache")
	}
	return nil
}

// UpsertQuestion normalises q and adds it to a draft exam, replacing the
// question with the same id.
func (s *ExamService) UpsertQuestion(ctx context.Context, examID uuid.UUID, q model.Question) (*model.Question, error) {
	e, err := s.draft(ctx, examID)
	if err != nil {
		return nil, err
	}

	q = editor.Normalize(q)
	if err := editor.Validate(q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}

	e = editor.UpsertQuestion(e, q)
	if err := s.exams.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}
	return &q, nil
}

// ImportQuestions normalises qs and upserts them into a draft exam in order.
// Nothing is stored when any question is invalid.
func (s *ExamService) ImportQuestions(ctx context.Context, examID uuid.UUID, qs []model.Question) (*model.Exam, error) {
	e, err := s.draft(ctx, examID)
	if err != nil {
		return nil, err
	}

	for _, q := range qs {
		q = editor.Normalize(q)
		if err := editor.Validate(q); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
		}
		e = editor.UpsertQuestion(e, q)
	}

	if err := s.exams.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}
	s.log.Info().Str("exam_id", examID.String()).Int("count", len(qs)).Msg("Questions imported")
	return e, nil
}

// RemoveQuestion deletes a question from a draft exam.
func (s *ExamService) RemoveQuestion(ctx context.Context, examID uuid.UUID, questionID string) error {
	e, err := s.draft(ctx, examID)
	if err != nil {
		return err
	}
	if e.Question(questionID) == nil {
		return ErrQuestionNotFound
	}

	if err := s.exams.Update(ctx, editor.RemoveQuestion(e, questionID)); err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	return nil
}

// Publish opens a draft exam to students and warms its cache.
func (s *ExamService) Publish(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e, err := s.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(e.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	for _, q := range e.Questions {
		if err := editor.Validate(q); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
		}
	}

	if err := s.exams.UpdateStatus(ctx, id, model.ExamStatusPublished); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	e.Status = model.ExamStatusPublished

	if err := s.cache.SetExam(ctx, e); err != nil {
		s.log.Warn().Err(err).Str("exam_id", id.String()).Msg("Failed to warm exam cache")
	}
	s.log.Info().Str("exam_id", id.String()).Int("questions", len(e.Questions)).Msg("Exam published")
	return e, nil
}

// Expire closes a published exam to new attempts. Running attempts finish normally.
func (s *ExamService) Expire(ctx context.Context, id uuid.UUID) error {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.Status != model.ExamStatusPublished {
		return ErrExamNotAvailable
	}
	if err := s.exams.UpdateStatus(ctx, id, model.ExamStatusExpired); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if err := s.cache.DeleteExam(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("exam_id", id.String()).Msg("Failed to evict exam cache")
	}
	s.log.Info().Str("exam_id", id.String()).Msg("Exam expired")
	return nil
}

// Duplicate copies an exam into a new draft owned by authorID.
func (s *ExamService) Duplicate(ctx context.Context, id uuid.UUID, authorID int) (*model.Exam, error) {
	src, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dup := editor.Duplicate(src)
	dup.AuthorID = authorID
	if err := s.exams.Create(ctx, dup); err != nil {
		return nil, fmt.Errorf("create duplicate: %w", err)
	}
	return dup, nil
}

// PrewarmAllCaches loads every published exam into Redis. Called on startup.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) error {
	exams, err := s.exams.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published: %w", err)
	}

	for i := range exams {
		if err := s.cache.SetExam(ctx, &exams[i]); err != nil {
			s.log.Error().Err(err).Str("exam_id", exams[i].ID.String()).Msg("Failed to prewarm cache")
		}
	}

	s.log.Info().Int("count", len(exams)).Msg("Cache prewarming complete")
	return nil
}

func (s *ExamService) draft(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status != model.ExamStatusDraft {
		return nil, ErrExamNotDraft
	}
	return e, nil
}
