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

// ResultStore persists graded results and completes their attempts.
type ResultStore interface {
	SaveResults(ctx context.Context, results []*model.ExamResult) error
	SaveResult(ctx context.Context, res *model.ExamResult) error
}

// AnswerCache drops the hot answers of finished attempts.
type AnswerCache interface {
	ClearAnswers(ctx context.Context, examID uuid.UUID, userID int) error
}

// ResultWorker consumes the results queue in batches.
type ResultWorker struct {
	store   ResultStore
	answers AnswerCache
	queue   Queue
	log     zerolog.Logger
}

// NewResultWorker creates a new ResultWorker.
func NewResultWorker(store ResultStore, answers AnswerCache, queue Queue, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		store:   store,
		answers: answers,
		queue:   queue,
		log:     log.With().Str("component", "result_worker").Logger(),
	}
}

// Start runs the batch loop until ctx ends. Call in a goroutine.
func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")
	runBatches(ctx, w.queue, config.WorkerKey.PersistResultsQueue, w.log, w.flush)
}

// ─── Batch write with single-row fallback ─────────────────────────────────

func (w *ResultWorker) flush(ctx context.Context, batch []job[model.ExamResult]) {
	if len(batch) == 0 {
		return
	}

	results := make([]*model.ExamResult, len(batch))
	for i := range batch {
		results[i] = &batch[i].v
	}

	err := w.store.SaveResults(ctx, results)
	if err == nil {
		w.clearAnswers(ctx, results)
		w.log.Debug().Int("count", len(results)).Msg("Results persisted")
		return
	}
	w.log.Warn().Err(err).Int("count", len(results)).Msg("Bulk result update failed, using fallback")

	var saved []*model.ExamResult
	var failed []job[model.ExamResult]
	for i, res := range results {
		err := w.store.SaveResult(ctx, res)
		switch {
		case err == nil:
			saved = append(saved, res)
		case errors.Is(err, repository.ErrNotFound):
			w.log.Error().Str("session_id", res.SessionID.String()).Msg("Result for unknown session, dropping")
		default:
			w.log.Error().Err(err).Str("session_id", res.SessionID.String()).Msg("SaveResult failed, requeueing")
			failed = append(failed, batch[i])
		}
	}
	w.clearAnswers(ctx, saved)
	requeue(context.WithoutCancel(ctx), w.queue, config.WorkerKey.PersistResultsQueue, w.log, failed)
}

// clearAnswers drops the hot answers of attempts whose result is stored.
func (w *ResultWorker) clearAnswers(ctx context.Context, results []*model.ExamResult) {
	for _, res := range results {
		if err := w.answers.ClearAnswers(ctx, res.ExamID, res.UserID); err != nil {
			w.log.Warn().Err(err).Str("session_id", res.SessionID.String()).Msg("Failed to clear cached answers")
		}
	}
}
