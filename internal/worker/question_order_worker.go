package worker

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/examroom/internal/config"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/repository"
)

// OrderStore persists the randomised question order of attempts.
type OrderStore interface {
	SetQuestionOrders(ctx context.Context, orders []model.QuestionOrder) error
	SetQuestionOrder(ctx context.Context, sessionID uuid.UUID, order []string) error
}

// QuestionOrderWorker consumes the question order queue in batches.
type QuestionOrderWorker struct {
	store OrderStore
	queue Queue
	log   zerolog.Logger
}

func NewQuestionOrderWorker(store OrderStore, queue Queue, log zerolog.Logger) *QuestionOrderWorker {
	return &QuestionOrderWorker{
		store: store,
		queue: queue,
		log:   log.With().Str("component", "question_order_worker").Logger(),
	}
}

func (w *QuestionOrderWorker) Start(ctx context.Context) {
	w.log.Info().Msg("QuestionOrderWorker started")
	runBatches(ctx, w.queue, config.WorkerKey.PersistQuestionOrderQueue, w.log, w.flush)
}

func (w *QuestionOrderWorker) flush(ctx context.Context, batch []job[model.QuestionOrder]) {
	if len(batch) == 0 {
		return
	}

	orders := make([]model.QuestionOrder, len(batch))
	for i, j := range batch {
		orders[i] = j.v
	}
	err := w.store.SetQuestionOrders(ctx, orders)
	if err == nil {
		return
	}
	w.log.Warn().Err(err).Msg("bulk question order update failed, using fallback")

	var failed []job[model.QuestionOrder]
	for _, j := range batch {
		err := w.store.SetQuestionOrder(ctx, j.v.SessionID, j.v.Order)
		if err == nil || errors.Is(err, repository.ErrNotFound) {
			continue
		}
		w.log.Error().Err(err).Str("session_id", j.v.SessionID.String()).Msg("SetQuestionOrder failed, requeueing")
		failed = append(failed, j)
	}
	requeue(context.WithoutCancel(ctx), w.queue, config.WorkerKey.PersistQuestionOrderQueue, w.log, failed)
}
