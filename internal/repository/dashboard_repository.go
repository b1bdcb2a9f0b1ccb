package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/examroom/internal/model"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the headline counts in one round trip.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (model.DashboardSummary, error) {
	var s model.DashboardSummary
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users WHERE role = $1),
			(SELECT COUNT(*) FROM exams),
			(SELECT COUNT(*) FROM question_banks),
			(SELECT COALESCE(SUM(jsonb_array_length(questions)), 0) FROM question_banks),
			(SELECT COUNT(*) FROM exam_sessions WHERE status = $2),
			(SELECT COUNT(*) FROM exam_sessions WHERE status = $3),
			(SELECT COUNT(*) FROM exam_sessions s JOIN exams e ON e.id = s.exam_id
			  WHERE s.status = $3 AND s.final_score >= e.passing_score)`,
		model.RoleStudent, model.SessionStatusInProgress, model.SessionStatusCompleted,
	).Scan(&s.TotalStudents, &s.TotalExams, &s.TotalQuestionBanks, &s.TotalBankQuestions,
		&s.InProgressAttempts, &s.CompletedAttempts, &s.PassedAttempts)
	return s, err
}

// GetExamStatusCounts retrieves the distribution of exams by status.
func (r *DashboardRepository) GetExamStatusCounts(ctx context.Context) (map[model.ExamStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM exams GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.ExamStatus]int)
	for rows.Next() {
		var status model.ExamStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// GetOpenExams retrieves the most recently updated published exams with
// their participant counts.
func (r *DashboardRepository) GetOpenExams(ctx context.Context, limit int) ([]model.OpenExam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.title, e.time_limit_minutes, jsonb_array_length(e.questions),
		        (SELECT COUNT(*) FROM exam_sessions s WHERE s.exam_id = e.id)
		 FROM exams e
		 WHERE e.status = $1
		 ORDER BY e.updated_at DESC LIMIT $2`,
		model.ExamStatusPublished, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exams := []model.OpenExam{}
	for rows.Next() {
		var e model.OpenExam
		if err := rows.Scan(&e.ID, &e.Title, &e.TimeLimitMinutes, &e.QuestionCount, &e.Participants); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// GetRecentAttempts retrieves the latest completed attempts.
func (r *DashboardRepository) GetRecentAttempts(ctx context.Context, limit int) ([]model.RecentAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.exam_id, e.title, s.user_id, u.name,
		        COALESCE(s.final_score, 0), COALESCE(s.final_score, 0) >= e.passing_score, s.finished_at
		 FROM exam_sessions s
		 JOIN exams e ON e.id = s.exam_id
		 JOIN users u ON u.id = s.user_id
		 WHERE s.status = $1 AND s.finished_at IS NOT NULL
		 ORDER BY s.finished_at DESC LIMIT $2`,
		model.SessionStatusCompleted, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []model.RecentAttempt{}
	for rows.Next() {
		var a model.RecentAttempt
		if err := rows.Scan(&a.ExamID, &a.ExamTitle, &a.UserID, &a.UserName, &a.Score, &a.Passed, &a.FinishedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
