package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/examroom/internal/model"
)

// ExamSessionRepository handles exam attempts, their answers and graded results.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

const sessionColumns = `id, exam_id, user_id, started_at, finished_at, status, final_score, question_order`

func scanSession(row pgx.Row) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	var order []byte
	if err := row.Scan(&s.ID, &s.ExamID, &s.UserID, &s.StartedAt, &s.FinishedAt,
		&s.Status, &s.FinalScore, &order); err != nil {
		return nil, translate(err)
	}
	if len(order) > 0 {
		if err := json.Unmarshal(order, &s.QuestionOrder); err != nil {
			return nil, fmt.Errorf("decode question order: %w", err)
		}
	}
	return s, nil
}

// GetByExamAndUser retrieves the attempt of one user at one exam.
func (r *ExamSessionRepository) GetByExamAndUser(ctx context.Context, examID uuid.UUID, userID int) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE exam_id = $1 AND user_id = $2`,
		examID, userID))
}

// Create inserts a new attempt. A concurrent insert for the same exam and user
// yields ErrDuplicate; the caller re-reads the winner.
func (r *ExamSessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	var order []byte
	if s.QuestionOrder != nil {
		var err error
		if order, err = json.Marshal(s.QuestionOrder); err != nil {
			return err
		}
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions (exam_id, user_id, status, question_order)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, user_id) DO NOTHING
		 RETURNING id, started_at`,
		s.ExamID, s.UserID, model.SessionStatusInProgress, order,
	).Scan(&s.ID, &s.StartedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicate
	}
	if err != nil {
		return translate(err)
	}
	s.Status = model.SessionStatusInProgress
	return nil
}

// ListByUser retrieves all attempts of a user, newest first.
func (r *ExamSessionRepository) ListByUser(ctx context.Context, userID int) ([]model.ExamSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE user_id = $1 ORDER BY started_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []model.ExamSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// ListAnswers returns the persisted answers of one attempt.
func (r *ExamSessionRepository) ListAnswers(ctx context.Context, sessionID uuid.UUID) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, kind, option_id, text FROM session_answers WHERE session_id = $1`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []model.Answer{}
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.QuestionID, &a.Kind, &a.OptionID, &a.Text); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// UpsertAnswer creates or replaces one answer of an attempt.
func (r *ExamSessionRepository) UpsertAnswer(ctx context.Context, sessionID uuid.UUID, a model.Answer) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO session_answers (session_id, question_id, kind, option_id, text)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET kind = EXCLUDED.kind, option_id = EXCLUDED.option_id,
		     text = EXCLUDED.text, updated_at = NOW()`,
		sessionID, a.QuestionID, a.Kind, a.OptionID, a.Text)
	return err
}

// SetQuestionOrder stores the randomised order of an attempt.
func (r *ExamSessionRepository) SetQuestionOrder(ctx context.Context, sessionID uuid.UUID, order []string) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE exam_sessions SET question_order = $1 WHERE id = $2`, raw, sessionID)
	return err
}

// SetQuestionOrders stores many attempt orders in one statement.
func (r *ExamSessionRepository) SetQuestionOrders(ctx context.Context, orders []model.QuestionOrder) error {
	ids := make([]uuid.UUID, 0, len(orders))
	payloads := make([]string, 0, len(orders))
	for _, o := range orders {
		raw, err := json.Marshal(o.Order)
		if err != nil {
			return err
		}
		ids = append(ids, o.SessionID)
		payloads = append(payloads, string(raw))
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE exam_sessions AS s
		SET question_order = t.qo::jsonb
		FROM UNNEST($1::uuid[], $2::text[]) AS t (id, qo)
		WHERE s.id = t.id`,
		ids, payloads)
	return err
}

// GetResult returns the graded result stored on a completed attempt.
// ErrNotFound means the attempt has no stored result yet.
func (r *ExamSessionRepository) GetResult(ctx context.Context, examID uuid.UUID, userID int) (*model.ExamResult, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT result FROM exam_sessions
		 WHERE exam_id = $1 AND user_id = $2 AND result IS NOT NULL`,
		examID, userID,
	).Scan(&raw)
	if err != nil {
		return nil, translate(err)
	}
	var res model.ExamResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &res, nil
}

// SaveResult marks an attempt completed with its graded result.
func (r *ExamSessionRepository) SaveResult(ctx context.Context, res *model.ExamResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1, final_score = $2, finished_at = $3, result = $4
		 WHERE id = $5`,
		model.SessionStatusCompleted, res.Score, res.SubmittedAt, raw, res.SessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveResults marks many attempts completed in one statement.
func (r *ExamSessionRepository) SaveResults(ctx context.Context, results []*model.ExamResult) error {
	n := len(results)
	ids := make([]uuid.UUID, 0, n)
	scores := make([]float64, 0, n)
	finishedAts := make([]time.Time, 0, n)
	payloads := make([]string, 0, n)

	for _, res := range results {
		raw, err := json.Marshal(res)
		if err != nil {
			return err
		}
		ids = append(ids, res.SessionID)
		scores = append(scores, res.Score)
		finishedAts = append(finishedAts, res.SubmittedAt)
		payloads = append(payloads, string(raw))
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE exam_sessions AS s
		SET status = 'COMPLETED',
		    final_score = t.score,
		    finished_at = t.finished_at,
		    result = t.result::jsonb
		FROM UNNEST(
			$1::uuid[],
			$2::float8[],
			$3::timestamptz[],
			$4::text[]
		) AS t (id, score, finished_at, result)
		WHERE s.id = t.id`,
		ids, scores, finishedAts, payloads)
	return err
}

// ListResultsByExam returns one page of attempts at an exam with the taker's name.
func (r *ExamSessionRepository) ListResultsByExam(ctx context.Context, examID uuid.UUID, page, perPage int) ([]model.ResultSummary, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_sessions WHERE exam_id = $1`, examID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, es.final_score, es.status, es.started_at, es.finished_at
		 FROM exam_sessions es
		 JOIN users u ON u.id = es.user_id
		 WHERE es.exam_id = $1
		 ORDER BY u.name ASC
		 LIMIT $2 OFFSET $3`,
		examID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := []model.ResultSummary{}
	for rows.Next() {
		var rs model.ResultSummary
		if err := rows.Scan(&rs.UserID, &rs.Name, &rs.Email, &rs.FinalScore,
			&rs.Status, &rs.StartedAt, &rs.FinishedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, rs)
	}
	return results, total, rows.Err()
}
