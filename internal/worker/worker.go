// Package worker moves queued writes from Redis into PostgreSQL off the
// request path.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/examroom/internal/cache"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second

	// shutdownTimeout bounds the final flush after the worker context ends.
	shutdownTimeout = 10 * time.Second
)

// Queue is the list side of the cache the workers consume.
// Pop returns cache.ErrMiss when nothing arrived within timeout.
type Queue interface {
	Pop(ctx context.Context, queue string, timeout time.Duration) (string, error)
	Push(ctx context.Context, queue, raw string) error
}

// job is one decoded payload plus its raw form for requeueing.
type job[T any] struct {
	raw string
	v   T
}

// runBatches pops payloads from queue and hands them to flush in batches of
// BatchSize, or whatever has accumulated after BatchTimeout. The pending
// batch is flushed once more when ctx ends.
func runBatches[T any](ctx context.Context, q Queue, queue string, log zerolog.Logger, flush func(context.Context, []job[T])) {
	batch := make([]job[T], 0, BatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= BatchSize || time.Since(lastFlush) >= BatchTimeout) {
			flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			if len(batch) > 0 {
				fctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				flush(fctx, batch)
				cancel()
			}
			log.Info().Msg("Worker stopped")
			return
		default:
		}

		raw, err := q.Pop(ctx, queue, PollTimeout)
		if err != nil {
			if !errors.Is(err, cache.ErrMiss) && ctx.Err() == nil {
				log.Error().Err(err).Msg("Pop error")
				sleep(ctx, time.Second)
			}
			continue
		}

		var v T
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			log.Error().Err(err).Str("payload", raw).Msg("Invalid JSON payload, dropping")
			continue
		}
		if len(batch) == 0 {
			lastFlush = time.Now()
		}
		batch = append(batch, job[T]{raw: raw, v: v})
	}
}

// requeue pushes failed jobs back to the tail of queue.
func requeue[T any](ctx context.Context, q Queue, queue string, log zerolog.Logger, jobs []job[T]) {
	for _, j := range jobs {
		if err := q.Push(ctx, queue, j.raw); err != nil {
			log.Error().Err(err).Str("payload", j.raw).Msg("Requeue failed, payload lost")
		}
	}
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
