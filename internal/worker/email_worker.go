package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/infra"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EmailJobPayload carries a pending Mensaje through the outbound email queue.
// PDFPath is filled by the PDF worker when the mail includes an attachment.
type EmailJobPayload struct {
	MensajeID uuid.UUID `json:"mensaje_id"`
	To        string    `json:"to,omitempty"`
	PDFPath   string    `json:"pdf_path,omitempty"`
}

// Mailer sends a quote email with an optional PDF attachment.
// Satisfied by *infra.Mailer.
type Mailer interface {
	SendPresupuesto(to, subject, body, pdfPath string) error
}

// EmailWorker delivers outbound email Mensajes over SMTP and reports the
// outcome to the webhook notifier (circuit-breaker guarded).
type EmailWorker struct {
	mailer      Mailer
	mensajeRepo repository.MensajeRepository
	clienteRepo repository.ClienteRepository
	notifier    *infra.Notifier
	cb          *infra.CircuitBreaker
}

func NewEmailWorker(mailer Mailer, mensajeRepo repository.MensajeRepository, clienteRepo repository.ClienteRepository, notifier *infra.Notifier, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{
		mailer:      mailer,
		mensajeRepo: mensajeRepo,
		clienteRepo: clienteRepo,
		notifier:    notifier,
		cb:          cb,
	}
}

// Process sends the email and records the result on the Mensaje row.
// Failures are not retried inline — the retry cron picks them up via
// next_retry_at with exponential backoff.
func (w *EmailWorker) Process(ctx context.Context, payload json.RawMessage) {
	var job EmailJobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		log.Error().Err(err).Msg("email worker: invalid payload")
		return
	}

	m, err := w.mensajeRepo.FindByID(ctx, job.MensajeID)
	if err != nil {
		log.Error().Err(err).Str("mensaje_id", job.MensajeID.String()).Msg("email worker: mensaje not found")
		return
	}

	to := job.To
	if to == "" && m.Destinatario != nil {
		to = *m.Destinatario
	}
	if to == "" {
		cliente, err := w.clienteRepo.FindByID(ctx, m.ClienteID)
		if err != nil {
			w.markFailed(ctx, m, errors.New("cliente no encontrado para el mensaje"))
			return
		}
		to = cliente.Email
	}

	asunto := ""
	if m.Asunto != nil {
		asunto = *m.Asunto
	}
	pdfPath := job.PDFPath
	if pdfPath == "" && m.AdjuntoPath != nil {
		pdfPath = *m.AdjuntoPath
	}

	// Stamp the resolved recipient and attachment on the row before the send
	// attempt: retries carry only the mensaje id, so everything they need must
	// survive a failure.
	m.Destinatario = &to
	if pdfPath != "" {
		m.AdjuntoPath = &pdfPath
	}

	if err := w.mailer.SendPresupuesto(to, asunto, m.Cuerpo, pdfPath); err != nil {
		log.Error().Err(err).Str("mensaje_id", m.ID.String()).Msg("email worker: send failed")
		w.markFailed(ctx, m, err)
		return
	}

	m.Estado = "enviado"
	m.LastError = nil
	m.NextRetryAt = nil
	if err := w.mensajeRepo.Update(ctx, m); err != nil {
		log.Error().Err(err).Str("mensaje_id", m.ID.String()).Msg("email worker: failed to mark mensaje enviado")
		return
	}

	log.Info().Str("mensaje_id", m.ID.String()).Str("to", to).Msg("email worker: mensaje delivered")
	w.emitEvent(ctx, m.ID.String(), to)
}

// markFailed stores the error and schedules the next retry attempt.
// The actual backoff math lives in the retry cron; here we only stamp the
// first retry one minute out so the cron picks the row up.
func (w *EmailWorker) markFailed(ctx context.Context, m *model.Mensaje, sendErr error) {
	msg := sendErr.Error()
	next := time.Now().Add(RetryBackoff(m.RetryCount + 1))

	m.Estado = "error"
	m.LastError = &msg
	m.RetryCount++
	m.NextRetryAt = &next

	if err := w.mensajeRepo.Update(ctx, m); err != nil {
		log.Error().Err(err).Str("mensaje_id", m.ID.String()).Msg("email worker: failed to mark mensaje error")
	}
}

// emitEvent notifies the webhook that a mensaje was delivered. A tripped
// breaker or nil notifier just drops the event — delivery already succeeded.
func (w *EmailWorker) emitEvent(ctx context.Context, mensajeID, to string) {
	if w.notifier == nil {
		return
	}
	err := w.cb.Execute(func() error {
		return w.notifier.Notify(ctx, infra.Event{
			Tipo:      "mensaje.enviado",
			RecursoID: mensajeID,
			Payload:   map[string]any{"destinatario": to},
		})
	})
	if err != nil {
		if errors.Is(err, infra.ErrCircuitOpen) {
			log.Warn().Msg("email worker: notifier circuit open, event dropped")
			return
		}
		log.Error().Err(err).Msg("email worker: webhook notify failed")
	}
}
