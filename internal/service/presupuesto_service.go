package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/infra"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/quote"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/repository"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// validezDefault is how long a new presupuesto stays valid when the request
// does not set fecha_validez.
const validezDefault = 30 * 24 * time.Hour

type PresupuestoService interface {
	Crear(ctx context.Context, req dto.CrearPresupuestoRequest) (*dto.PresupuestoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.PresupuestoResponse, error)
	Listar(ctx context.Context, filter dto.PresupuestoFilter) (*dto.PresupuestoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarPresupuestoRequest) (*dto.PresupuestoResponse, error)
	CambiarEstado(ctx context.Context, id uuid.UUID, estado string) (*dto.PresupuestoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	Duplicar(ctx context.Context, id uuid.UUID) (*dto.PresupuestoResponse, error)
	// GenerarPDF renders synchronously and returns the file path for download.
	GenerarPDF(ctx context.Context, id uuid.UUID) (string, error)
	// Enviar records an outbound email Mensaje and queues the render + send
	// pipeline; the presupuesto moves to "enviado" immediately.
	Enviar(ctx context.Context, id uuid.UUID, req dto.EnviarPresupuestoRequest) (*dto.PresupuestoResponse, error)
	Facturar(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error)
}

type presupuestoService struct {
	repo        repository.PresupuestoRepository
	clienteRepo repository.ClienteRepository
	facturaRepo repository.FacturaRepository
	mensajeRepo repository.MensajeRepository
	dispatcher  *worker.Dispatcher
	notifier    *infra.Notifier
	cb          *infra.CircuitBreaker
	storagePath string

	// rendering tracks presupuestos with a synchronous render in flight so two
	// concurrent requests for the same quote don't race on the output file.
	renderMu  sync.Mutex
	rendering map[uuid.UUID]struct{}
}

func NewPresupuestoService(
	repo repository.PresupuestoRepository,
	clienteRepo repository.ClienteRepository,
	facturaRepo repository.FacturaRepository,
	mensajeRepo repository.MensajeRepository,
	dispatcher *worker.Dispatcher,
	notifier *infra.Notifier,
	cb *infra.CircuitBreaker,
	storagePath string,
) PresupuestoService {
	return &presupuestoService{
		repo:        repo,
		clienteRepo: clienteRepo,
		facturaRepo: facturaRepo,
		mensajeRepo: mensajeRepo,
		dispatcher:  dispatcher,
		notifier:    notifier,
		cb:          cb,
		storagePath: storagePath,
		rendering:   make(map[uuid.UUID]struct{}),
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// Snapshot the cliente, compute the totals block, take the next numero from
// the sequence and persist everything in one transaction.

func (s *presupuestoService) Crear(ctx context.Context, req dto.CrearPresupuestoRequest) (*dto.PresupuestoResponse, error) {
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("cliente_id inválido: %w", err)
	}
	cliente, err := s.clienteRepo.FindByID(ctx, clienteID)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}

	fecha := time.Now().Truncate(24 * time.Hour)
	if req.Fecha != "" {
		fecha, _ = time.Parse("2006-01-02", req.Fecha)
	}
	validez := fecha.Add(validezDefault)
	if req.FechaValidez != "" {
		validez, _ = time.Parse("2006-01-02", req.FechaValidez)
	}

	sitio := req.SitioWeb
	if sitio == "" {
		sitio = cliente.SitioWeb
	}

	totals := quote.ComputeTotals(itemsToLineItems(req.Items), req.Descuento)

	p := model.Presupuesto{
		ClienteID:      cliente.ID,
		ClienteNombre:  cliente.Nombre,
		ClienteEmpresa: cliente.Empresa,
		ClienteEmail:   cliente.Email,
		SitioWeb:       sitio,
		Fecha:          fecha,
		FechaValidez:   validez,
		Estado:         "borrador",
		Subtotal:       totals.Subtotal,
		Descuento:      totals.DescuentoPct,
		Impuestos:      totals.Impuestos,
		Total:          totals.Total,
		Notas:          req.Notas,
		Items:          buildItems(req.Items),
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		num, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		p.Numero = fmt.Sprintf("P-%06d", num)
		return s.repo.Create(ctx, tx, &p)
	})
	if txErr != nil {
		return nil, txErr
	}

	return presupuestoToResponse(&p), nil
}

func (s *presupuestoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.PresupuestoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("presupuesto no encontrado")
	}
	return presupuestoToResponse(p), nil
}

func (s *presupuestoService) Listar(ctx context.Context, filter dto.PresupuestoFilter) (*dto.PresupuestoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	presupuestos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PresupuestoResponse, len(presupuestos))
	for i := range presupuestos {
		data[i] = *presupuestoToResponse(&presupuestos[i])
	}
	return &dto.PresupuestoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// Items and discount are replaced wholesale and the totals block is recomputed
// from scratch — the stored totals are never edited field by field.

func (s *presupuestoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarPresupuestoRequest) (*dto.PresupuestoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("presupuesto no encontrado")
	}

	totals := quote.ComputeTotals(itemsToLineItems(req.Items), req.Descuento)

	if req.SitioWeb != nil {
		p.SitioWeb = *req.SitioWeb
	}
	if req.FechaValidez != nil {
		if v, err := time.Parse("2006-01-02", *req.FechaValidez); err == nil {
			p.FechaValidez = v
		}
	}
	if req.Notas != nil {
		p.Notas = req.Notas
	}
	p.Subtotal = totals.Subtotal
	p.Descuento = totals.DescuentoPct
	p.Impuestos = totals.Impuestos
	p.Total = totals.Total

	items := buildItems(req.Items)
	for i := range items {
		items[i].PresupuestoID = p.ID
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Save(ctx, tx, p); err != nil {
			return err
		}
		return s.repo.ReplaceItems(ctx, tx, p.ID, items)
	})
	if txErr != nil {
		return nil, txErr
	}

	p.Items = items
	return presupuestoToResponse(p), nil
}

// CambiarEstado sets the estado directly. There is no enforced state machine:
// a rejected quote may be reopened, an accepted one sent again.
func (s *presupuestoService) CambiarEstado(ctx context.Context, id uuid.UUID, estado string) (*dto.PresupuestoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("presupuesto no encontrado")
	}
	if err := s.repo.UpdateEstado(ctx, id, estado); err != nil {
		return nil, err
	}
	p.Estado = estado
	return presupuestoToResponse(p), nil
}

func (s *presupuestoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("presupuesto no encontrado")
	}
	return s.repo.Delete(ctx, id)
}

// Duplicar copies everything except numero, estado and the rendered PDF. The
// copy starts over as a borrador dated today.
func (s *presupuestoService) Duplicar(ctx context.Context, id uuid.UUID) (*dto.PresupuestoResponse, error) {
	orig, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("presupuesto no encontrado")
	}

	fecha := time.Now().Truncate(24 * time.Hour)
	copia := model.Presupuesto{
		ClienteID:      orig.ClienteID,
		ClienteNombre:  orig.ClienteNombre,
		ClienteEmpresa: orig.ClienteEmpresa,
		ClienteEmail:   orig.ClienteEmail,
		SitioWeb:       orig.SitioWeb,
		Fecha:          fecha,
		FechaValidez:   fecha.Add(validezDefault),
		Estado:         "borrador",
		Subtotal:       orig.Subtotal,
		Descuento:      orig.Descuento,
		Impuestos:      orig.Impuestos,
		Total:          orig.Total,
		Notas:          orig.Notas,
	}
	for _, it := range orig.Items {
		copia.Items = append(copia.Items, model.PresupuestoItem{
			Orden:          it.Orden,
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			LineaTotal:     it.LineaTotal,
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		num, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		copia.Numero = fmt.Sprintf("P-%06d", num)
		return s.repo.Create(ctx, tx, &copia)
	})
	if txErr != nil {
		return nil, txErr
	}
	return presupuestoToResponse(&copia), nil
}

// ── GenerarPDF ────────────────────────────────────────────────────────────────

var errRenderEnCurso = errors.New("ya hay una generación de PDF en curso para este presupuesto")

func (s *presupuestoService) GenerarPDF(ctx context.Context, id uuid.UUID) (string, error) {
	s.renderMu.Lock()
	if _, busy := s.rendering[id]; busy {
		s.renderMu.Unlock()
		return "", errRenderEnCurso
	}
	s.rendering[id] = struct{}{}
	s.renderMu.Unlock()

	defer func() {
		s.renderMu.Lock()
		delete(s.rendering, id)
		s.renderMu.Unlock()
	}()

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", errors.New("presupuesto no encontrado")
	}

	path, err := infra.GeneratePresupuestoPDF(p, s.storagePath)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdatePDFPath(ctx, id, path); err != nil {
		return "", err
	}
	return path, nil
}

// ── Enviar ────────────────────────────────────────────────────────────────────
// Creates the outbound Mensaje in estado "pendiente" and enqueues the render
// job; the PDF worker chains the email job once the file exists. The estado
// flips to "enviado" right away — delivery status lives on the Mensaje.

func (s *presupuestoService) Enviar(ctx context.Context, id uuid.UUID, req dto.EnviarPresupuestoRequest) (*dto.PresupuestoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("presupuesto no encontrado")
	}

	destino := p.ClienteEmail
	if req.Email != nil && *req.Email != "" {
		destino = *req.Email
	}
	asunto := fmt.Sprintf("Presupuesto %s", p.Numero)
	if req.Asunto != nil && *req.Asunto != "" {
		asunto = *req.Asunto
	}
	cuerpo := fmt.Sprintf("Adjuntamos el presupuesto %s por un total de %s €.", p.Numero, p.Total.StringFixed(2))
	if req.Cuerpo != nil && *req.Cuerpo != "" {
		cuerpo = *req.Cuerpo
	}

	mensaje := &model.Mensaje{
		ClienteID:    p.ClienteID,
		Canal:        "email",
		Direccion:    "salida",
		Asunto:       &asunto,
		Cuerpo:       cuerpo,
		Estado:       "pendiente",
		Destinatario: &destino,
	}
	if err := s.mensajeRepo.Create(ctx, mensaje); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		job := worker.PDFJobPayload{PresupuestoID: p.ID, MensajeID: &mensaje.ID, Destino: destino}
		if err := s.dispatcher.EnqueuePDF(ctx, job); err != nil {
			return nil, fmt.Errorf("no se pudo encolar el envío: %w", err)
		}
	}

	if err := s.repo.UpdateEstado(ctx, id, "enviado"); err != nil {
		return nil, err
	}
	p.Estado = "enviado"

	s.emitEvent(ctx, "presupuesto.enviado", p.ID.String(), map[string]any{
		"numero":  p.Numero,
		"destino": destino,
	})
	return presupuestoToResponse(p), nil
}

// ── Facturar ──────────────────────────────────────────────────────────────────
// Only accepted quotes become invoices. Idempotent: re-invoicing returns the
// factura already linked to the presupuesto.

func (s *presupuestoService) Facturar(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("presupuesto no encontrado")
	}

	if existing, err := s.facturaRepo.FindByPresupuestoID(ctx, id); err == nil {
		return facturaToResponse(existing), nil
	}

	if p.Estado != "aceptado" {
		return nil, errors.New("solo un presupuesto aceptado puede facturarse")
	}

	f := model.Factura{
		PresupuestoID:  &p.ID,
		ClienteID:      p.ClienteID,
		ClienteNombre:  p.ClienteNombre,
		ClienteEmpresa: p.ClienteEmpresa,
		ClienteEmail:   p.ClienteEmail,
		Fecha:          time.Now().Truncate(24 * time.Hour),
		Subtotal:       p.Subtotal,
		Descuento:      p.Descuento,
		Impuestos:      p.Impuestos,
		Total:          p.Total,
		Estado:         "emitida",
	}

	txErr := runTx(ctx, s.facturaRepo.DB(), func(tx *gorm.DB) error {
		num, err := s.facturaRepo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		f.Numero = fmt.Sprintf("F-%06d", num)
		return s.facturaRepo.Create(ctx, tx, &f)
	})
	if txErr != nil {
		return nil, txErr
	}

	if err := s.repo.UpdateEstado(ctx, id, "facturado"); err != nil {
		return nil, err
	}

	s.emitEvent(ctx, "factura.emitida", f.ID.String(), map[string]any{
		"numero":         f.Numero,
		"presupuesto_id": p.ID.String(),
	})
	return facturaToResponse(&f), nil
}

func (s *presupuestoService) emitEvent(ctx context.Context, tipo, recursoID string, payload map[string]any) {
	if s.notifier == nil {
		return
	}
	_ = s.cb.Execute(func() error {
		return s.notifier.Notify(ctx, infra.Event{Tipo: tipo, RecursoID: recursoID, Payload: payload})
	})
}

// ── Mapping helpers ───────────────────────────────────────────────────────────

func itemsToLineItems(items []dto.ItemPresupuestoRequest) []quote.LineItem {
	out := make([]quote.LineItem, len(items))
	for i, it := range items {
		out[i] = quote.LineItem{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
		}
	}
	return out
}

func buildItems(items []dto.ItemPresupuestoRequest) []model.PresupuestoItem {
	out := make([]model.PresupuestoItem, len(items))
	for i, it := range items {
		li := quote.LineItem{Descripcion: it.Descripcion, Cantidad: it.Cantidad, PrecioUnitario: it.PrecioUnitario}
		out[i] = model.PresupuestoItem{
			Orden:          i,
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			LineaTotal:     li.LineaTotal(),
		}
	}
	return out
}

func presupuestoToResponse(p *model.Presupuesto) *dto.PresupuestoResponse {
	items := make([]dto.ItemPresupuestoResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, dto.ItemPresupuestoResponse{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			LineaTotal:     it.LineaTotal,
		})
	}
	return &dto.PresupuestoResponse{
		ID:             p.ID.String(),
		Numero:         p.Numero,
		ClienteID:      p.ClienteID.String(),
		ClienteNombre:  p.ClienteNombre,
		ClienteEmpresa: p.ClienteEmpresa,
		ClienteEmail:   p.ClienteEmail,
		SitioWeb:       p.SitioWeb,
		Fecha:          p.Fecha.Format("2006-01-02"),
		FechaValidez:   p.FechaValidez.Format("2006-01-02"),
		Vencido:        p.Vencido(time.Now()),
		Estado:         p.Estado,
		Items:          items,
		Subtotal:       p.Subtotal,
		Descuento:      p.Descuento,
		Impuestos:      p.Impuestos,
		Total:          p.Total,
		Notas:          p.Notas,
		CreatedAt:      p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
