package worker

// retry_cron.go — re-enqueues failed outbound email Mensajes.
// Runs every 30s, picks rows whose next_retry_at has passed, and pushes them
// back onto jobs:email. After MaxMensajeRetries the row is left in estado
// "error" permanently and a DLQ entry is written for manual follow-up.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryInterval = 30 * time.Second
	retryBatch    = 50

	// MaxMensajeRetries is the total number of send attempts before a mensaje
	// is abandoned to the DLQ.
	MaxMensajeRetries = 5

	baseBackoff = time.Minute
	maxBackoff  = 30 * time.Minute
)

// RetryBackoff returns the delay before attempt n (1-based): 1m, 2m, 4m, 8m…
// capped at maxBackoff.
func RetryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := baseBackoff << (attempt - 1)
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}

// StartRetryCron blocks until ctx is cancelled; run it in its own goroutine.
func StartRetryCron(ctx context.Context, rdb *redis.Client, mensajeRepo repository.MensajeRepository, dispatcher *Dispatcher) {
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	log.Info().Msg("retry cron started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("retry cron shutting down")
			return
		case <-ticker.C:
			runRetryPass(ctx, rdb, mensajeRepo, dispatcher)
		}
	}
}

func runRetryPass(ctx context.Context, rdb *redis.Client, mensajeRepo repository.MensajeRepository, dispatcher *Dispatcher) {
	pending, err := mensajeRepo.ListPendingRetries(ctx, time.Now(), retryBatch)
	if err != nil {
		log.Error().Err(err).Msg("retry cron: failed to list pending retries")
		return
	}
	if len(pending) == 0 {
		return
	}

	for i := range pending {
		m := &pending[i]

		if m.RetryCount >= MaxMensajeRetries {
			reason := "reintentos agotados"
			if m.LastError != nil {
				reason += ": " + *m.LastError
			}
			payload, _ := json.Marshal(EmailJobPayload{MensajeID: m.ID})
			SendToDLQ(ctx, rdb, QueueEmail, "email", payload, reason, m.RetryCount)

			// Terminal — clear the schedule so the cron stops picking it up
			m.NextRetryAt = nil
			if err := mensajeRepo.Update(ctx, m); err != nil {
				log.Error().Err(err).Str("mensaje_id", m.ID.String()).Msg("retry cron: failed to finalize mensaje")
			}
			continue
		}

		if err := dispatcher.EnqueueEmail(ctx, EmailJobPayload{MensajeID: m.ID}); err != nil {
			log.Error().Err(err).Str("mensaje_id", m.ID.String()).Msg("retry cron: failed to re-enqueue mensaje")
			continue
		}

		// Push next_retry_at forward so the next pass doesn't double-enqueue
		// while the worker is still on it
		next := time.Now().Add(RetryBackoff(m.RetryCount + 1))
		m.NextRetryAt = &next
		if err := mensajeRepo.Update(ctx, m); err != nil {
			log.Error().Err(err).Str("mensaje_id", m.ID.String()).Msg("retry cron: failed to reschedule mensaje")
		}

		log.Info().
			Str("mensaje_id", m.ID.String()).
			Int("retry_count", m.RetryCount).
			Msg("retry cron: mensaje re-enqueued")
	}
}
