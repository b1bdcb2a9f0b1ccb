package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	connectAttempts = 5
	connectBackoff  = time.Second
)

// waitReady calls ping until it succeeds, doubling the wait between attempts.
func waitReady(ctx context.Context, log zerolog.Logger, name string, ping func(context.Context) error) error {
	return retry(ctx, log, name, connectAttempts, connectBackoff, ping)
}

func retry(ctx context.Context, log zerolog.Logger, name string, attempts int, backoff time.Duration, ping func(context.Context) error) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		log.Warn().Err(err).
			Str("target", name).
			Int("attempt", i).
			Dur("retry_in", backoff).
			Msg("Not ready, retrying")

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		backoff *= 2
	}
	return err
}
