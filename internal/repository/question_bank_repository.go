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

// QuestionBankRepository handles question bank data access. Like exams, a bank
// keeps its questions in one JSONB column.
type QuestionBankRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionBankRepository creates a new QuestionBankRepository.
func NewQuestionBankRepository(pool *pgxpool.Pool) *QuestionBankRepository {
	return &QuestionBankRepository{pool: pool}
}

const bankColumns = `id, author_id, name, category, description, questions, created_at, updated_at`

func scanBank(row pgx.Row) (*model.QuestionBank, error) {
	b := &model.QuestionBank{}
	var questions []byte
	err := row.Scan(&b.ID, &b.AuthorID, &b.Name, &b.Category, &b.Description, &questions, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if err := json.Unmarshal(questions, &b.Questions); err != nil {
		return nil, fmt.Errorf("decode questions of bank %s: %w", b.ID, err)
	}
	return b, nil
}

// GetByID retrieves a bank with its questions.
func (r *QuestionBankRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	return scanBank(r.pool.QueryRow(ctx, `SELECT `+bankColumns+` FROM question_banks WHERE id = $1`, id))
}

// Create inserts a new bank.
func (r *QuestionBankRepository) Create(ctx context.Context, b *model.QuestionBank) error {
	questions, err := json.Marshal(nonNil(b.Questions))
	if err != nil {
		return err
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO question_banks (id, author_id, name, category, description, questions)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		b.ID, b.AuthorID, b.Name, b.Category, b.Description, questions,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	return translate(err)
}

// Update overwrites the name, category, description and questions of a bank.
func (r *QuestionBankRepository) Update(ctx context.Context, b *model.QuestionBank) error {
	questions, err := json.Marshal(nonNil(b.Questions))
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx,
		`UPDATE question_banks
		 SET name = $1, category = $2, description = $3, questions = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING updated_at`,
		b.Name, b.Category, b.Description, questions, b.ID,
	).Scan(&b.UpdatedAt)
	return translate(err)
}

// Delete removes a bank. Exams keep the questions copied from it.
func (r *QuestionBankRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM question_banks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of bank summaries, most recently updated first, and
// the total number of matching banks.
func (r *QuestionBankRepository) List(ctx context.Context, f model.QuestionBankFilter) ([]model.QuestionBankSummary, int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, category, description, jsonb_array_length(questions), updated_at,
		        COUNT(*) OVER ()
		 FROM question_banks
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR lower(category) = lower($2))
		 ORDER BY updated_at DESC
		 LIMIT $3 OFFSET $4`,
		f.Search, f.Category, f.PerPage, (f.Page-1)*f.PerPage,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	banks := []model.QuestionBankSummary{}
	total := 0
	for rows.Next() {
		var b model.QuestionBankSummary
		if err := rows.Scan(&b.ID, &b.Name, &b.Category, &b.Description, &b.QuestionCount, &b.UpdatedAt, &total); err != nil {
			return nil, 0, err
		}
		banks = append(banks, b)
	}
	return banks, total, rows.Err()
}

// ListByCategory returns every bank with its questions, optionally limited to
// one category. Used by the question search.
func (r *QuestionBankRepository) ListByCategory(ctx context.Context, category string) ([]model.QuestionBank, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bankColumns+` FROM question_banks
		 WHERE $1 = '' OR lower(category) = lower($1)
		 ORDER BY category, name`,
		category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	banks := []model.QuestionBank{}
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		banks = append(banks, *b)
	}
	return banks, rows.Err()
}

// Categories returns every category with its bank and question counts.
func (r *QuestionBankRepository) Categories(ctx context.Context) ([]model.CategoryCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT category, COUNT(*), COALESCE(SUM(jsonb_array_length(questions)), 0)
		 FROM question_banks
		 GROUP BY category
		 ORDER BY category`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []model.CategoryCount{}
	for rows.Next() {
		var c model.CategoryCount
		if err := rows.Scan(&c.Category, &c.Banks, &c.QuestionCount); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
