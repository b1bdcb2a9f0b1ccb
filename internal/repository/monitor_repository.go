package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/examroom/internal/model"
)

// MonitorRepository provides data access for the live exam monitor.
type MonitorRepository struct {
	pool *pgxpool.Pool
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(pool *pgxpool.Pool) *MonitorRepository {
	return &MonitorRepository{pool: pool}
}

// ListParticipants returns every user who has started the given exam.
func (r *MonitorRepository) ListParticipants(ctx context.Context, examID uuid.UUID) ([]model.Participant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, es.status, es.final_score, es.started_at
		 FROM exam_sessions es
		 JOIN users u ON u.id = es.user_id
		 WHERE es.exam_id = $1
		 ORDER BY u.name`,
		examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []model.Participant{}
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.UserID, &p.Name, &p.Status, &p.Score, &p.StartedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// GetAnsweredCounts returns the number of answered questions per user for the
// given exam. Empty answers do not count.
func (r *MonitorRepository) GetAnsweredCounts(ctx context.Context, examID uuid.UUID) (map[int]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT es.user_id, COUNT(*)
		 FROM session_answers sa
		 JOIN exam_sessions es ON es.id = sa.session_id
		 WHERE es.exam_id = $1
		   AND (sa.option_id <> '' OR btrim(sa.text) <> '')
		 GROUP BY es.user_id`,
		examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var uid, count int
		if err := rows.Scan(&uid, &count); err != nil {
			return nil, err
		}
		counts[uid] = count
	}
	return counts, rows.Err()
}
