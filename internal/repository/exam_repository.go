package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/examroom/internal/model"
)

// ExamRepository handles exam data access. Questions live in a JSONB column
// so a definition is always read and written whole.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, title, description, time_limit_minutes, passing_score,
	randomize_questions, show_results, status, author_id, questions, created_at, updated_at`

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	var questions []byte
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.TimeLimitMinutes, &e.PassingScore,
		&e.RandomizeQuestions, &e.ShowResults, &e.Status, &e.AuthorID, &questions, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if err := json.Unmarshal(questions, &e.Questions); err != nil {
		return nil, fmt.Errorf("decode questions of exam %s: %w", e.ID, err)
	}
	return e, nil
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx, `SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// Create inserts a new exam. A zero ID is generated by the database.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	questions, err := json.Marshal(nonNil(e.Questions))
	if err != nil {
		return err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO exams (id, title, description, time_limit_minutes, passing_score,
		                    randomize_questions, show_results, status, author_id, questions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at, updated_at`,
		e.ID, e.Title, e.Description, e.TimeLimitMinutes, e.PassingScore,
		e.RandomizeQuestions, e.ShowResults, e.Status, e.AuthorID, questions,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	return translate(err)
}

// Update overwrites every mutable column of an exam.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	questions, err := json.Marshal(nonNil(e.Questions))
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx,
		`UPDATE exams
		 SET title = $1, description = $2, time_limit_minutes = $3, passing_score = $4,
		     randomize_questions = $5, show_results = $6, status = $7, questions = $8,
		     updated_at = NOW()
		 WHERE id = $9
		 RETURNING updated_at`,
		e.Title, e.Description, e.TimeLimitMinutes, e.PassingScore,
		e.RandomizeQuestions, e.ShowResults, e.Status, questions, e.ID,
	).Scan(&e.UpdatedAt)
	return translate(err)
}

// UpdateStatus updates an exam's status.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ExamStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an exam and, by cascade, its sessions.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns exam summaries with attempt statistics, newest first.
// Only the author filter is applied here.
func (r *ExamRepository) List(ctx context.Context, f model.ExamFilter) ([]model.ExamSummary, error) {
	query := `
		SELECT e.id, e.title, e.description, e.status,
		       jsonb_array_length(e.questions),
		       COALESCE((SELECT SUM((q->>'points')::int) FROM jsonb_array_elements(e.questions) q), 0),
		       e.time_limit_minutes, e.created_at,
		       COUNT(s.id) FILTER (WHERE s.status = 'COMPLETED'),
		       COALESCE(AVG(s.final_score) FILTER (WHERE s.status = 'COMPLETED'), 0)
		FROM exams e
		LEFT JOIN exam_sessions s ON s.exam_id = e.id`
	var args []any

	if f.AuthorID > 0 {
		args = append(args, f.AuthorID)
		query += ` WHERE e.author_id = $1`
	}
	query += ` GROUP BY e.id ORDER BY e.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exams := []model.ExamSummary{}
	for rows.Next() {
		var e model.ExamSummary
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Status, &e.QuestionCount, &e.TotalPoints,
			&e.TimeLimitMinutes, &e.CreatedAt, &e.Attempts, &e.AvgScore); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// ListPublished returns all exams with PUBLISHED status.
// Used for cache prewarming and the student lobby.
func (r *ExamRepository) ListPublished(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams WHERE status = $1 ORDER BY created_at DESC`,
		model.ExamStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exams := []model.Exam{}
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *e)
	}
	return exams, rows.Err()
}

func nonNil(qs []model.Question) []model.Question {
	if qs == nil {
		return []model.Question{}
	}
	return qs
}
