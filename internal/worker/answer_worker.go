package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/examroom/internal/cache"
	"github.com/stemsi/examroom/internal/config"
	"github.com/stemsi/examroom/internal/model"
)

// AnswerStore persists single answers.
type AnswerStore interface {
	UpsertAnswer(ctx context.Context, sessionID uuid.UUID, a model.Answer) error
}

// AnswerWorker consumes the answers queue and UPSERTs answers one at a time so
// a later answer to the same question always lands after an earlier one.
type AnswerWorker struct {
	store      AnswerStore
	queue      Queue
	log        zerolog.Logger
	retryDelay time.Duration
}

// NewAnswerWorker creates a new AnswerWorker.
func NewAnswerWorker(store AnswerStore, queue Queue, log zerolog.Logger) *AnswerWorker {
	return &AnswerWorker{
		store:      store,
		queue:      queue,
		log:        log.With().Str("component", "answer_worker").Logger(),
		retryDelay: 5 * time.Second,
	}
}

type answerPayload struct {
	SessionID uuid.UUID    `json:"session_id"`
	Answer    model.Answer `json:"answer"`
}

// Start runs the worker loop until ctx ends, then drains what is left.
// Call in a goroutine.
func (w *AnswerWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			w.drain(dctx)
			cancel()
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AnswerWorker) processNext(ctx context.Context) {
	raw, err := w.queue.Pop(ctx, config.WorkerKey.PersistAnswersQueue, PollTimeout)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Pop error")
			sleep(ctx, time.Second)
		}
		return
	}

	var p answerPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		w.log.Error().Err(err).Str("payload", raw).Msg("Unmarshal error, dropping")
		return
	}

	if err := w.store.UpsertAnswer(ctx, p.SessionID, p.Answer); err != nil {
		w.log.Error().Err(err).
			Str("session_id", p.SessionID.String()).
			Str("question_id", p.Answer.QuestionID).
			Dur("retry_in", w.retryDelay).
			Msg("Persist error, requeueing")
		if err := w.queue.Push(context.WithoutCancel(ctx), config.WorkerKey.PersistAnswersQueue, raw); err != nil {
			w.log.Error().Err(err).Msg("Requeue failed, answer lost")
		}
		sleep(ctx, w.retryDelay)
	}
}

// drain persists everything still queued. It stops at the first failure and
// leaves the rest in the queue for the next run.
func (w *AnswerWorker) drain(ctx context.Context) {
	drained := 0
	defer func() {
		if drained > 0 {
			w.log.Info().Int("count", drained).Msg("Drained remaining items")
		}
	}()

	for ctx.Err() == nil {
		raw, err := w.queue.Pop(ctx, config.WorkerKey.PersistAnswersQueue, PollTimeout)
		if err != nil {
			return
		}

		var p answerPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.store.UpsertAnswer(ctx, p.SessionID, p.Answer); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			_ = w.queue.Push(context.WithoutCancel(ctx), config.WorkerKey.PersistAnswersQueue, raw)
			return
		}
		drained++
	}
}
