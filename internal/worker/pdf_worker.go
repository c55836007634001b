package worker

import (
	"context"
	"encoding/json"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/infra"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// PDFJobPayload is what the presupuesto service enqueues when a quote has to
// be rendered. MensajeID is set when the render is part of an envío — the
// worker chains an email job once the file is on disk.
type PDFJobPayload struct {
	PresupuestoID uuid.UUID  `json:"presupuesto_id"`
	MensajeID     *uuid.UUID `json:"mensaje_id,omitempty"`
	// Destino overrides the cliente email when the sender typed another address
	Destino string `json:"destino,omitempty"`
}

// PDFWorker renders presupuesto PDFs in the background.
type PDFWorker struct {
	presupuestoRepo repository.PresupuestoRepository
	dispatcher      *Dispatcher
	rdb             *redis.Client
	storagePath     string
}

func NewPDFWorker(presupuestoRepo repository.PresupuestoRepository, dispatcher *Dispatcher, rdb *redis.Client, storagePath string) *PDFWorker {
	return &PDFWorker{
		presupuestoRepo: presupuestoRepo,
		dispatcher:      dispatcher,
		rdb:             rdb,
		storagePath:     storagePath,
	}
}

// Process renders the PDF, persists its path, and chains the email job when
// the payload carries a mensaje. Render failures go straight to the DLQ —
// the renderer is deterministic, so retrying the same input is pointless.
func (w *PDFWorker) Process(ctx context.Context, payload json.RawMessage) {
	var job PDFJobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		log.Error().Err(err).Msg("pdf worker: invalid payload")
		SendToDLQ(ctx, w.rdb, QueuePDF, "pdf", payload, "payload inválido: "+err.Error(), 0)
		return
	}

	p, err := w.presupuestoRepo.FindByID(ctx, job.PresupuestoID)
	if err != nil {
		log.Error().Err(err).Str("presupuesto_id", job.PresupuestoID.String()).Msg("pdf worker: presupuesto not found")
		SendToDLQ(ctx, w.rdb, QueuePDF, "pdf", payload, "presupuesto no encontrado: "+err.Error(), 0)
		return
	}

	path, err := infra.GeneratePresupuestoPDF(p, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("numero", p.Numero).Msg("pdf worker: render failed")
		SendToDLQ(ctx, w.rdb, QueuePDF, "pdf", payload, err.Error(), 1)
		return
	}

	if err := w.presupuestoRepo.UpdatePDFPath(ctx, p.ID, path); err != nil {
		log.Error().Err(err).Str("numero", p.Numero).Msg("pdf worker: failed to persist pdf path")
		SendToDLQ(ctx, w.rdb, QueuePDF, "pdf", payload, "no se pudo guardar pdf_path: "+err.Error(), 1)
		return
	}

	log.Info().Str("numero", p.Numero).Str("path", path).Msg("pdf worker: presupuesto rendered")

	if job.MensajeID != nil {
		emailJob := EmailJobPayload{MensajeID: *job.MensajeID, To: job.Destino, PDFPath: path}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Error().Err(err).Str("mensaje_id", job.MensajeID.String()).Msg("pdf worker: failed to chain email job")
		}
	}
}
