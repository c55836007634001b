package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stubs ────────────────────────────────────────────────────────────────────

type stubMensajeRepo struct {
	mensajes map[uuid.UUID]*model.Mensaje
}

func newStubMensajeRepo() *stubMensajeRepo {
	return &stubMensajeRepo{mensajes: make(map[uuid.UUID]*model.Mensaje)}
}

func (r *stubMensajeRepo) Create(_ context.Context, m *model.Mensaje) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	r.mensajes[m.ID] = &cp
	return nil
}

func (r *stubMensajeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Mensaje, error) {
	m, ok := r.mensajes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *m
	return &cp, nil
}

func (r *stubMensajeRepo) ListByCliente(_ context.Context, _ uuid.UUID, _ dto.MensajeFilter) ([]model.Mensaje, int64, error) {
	return nil, 0, nil
}

func (r *stubMensajeRepo) Update(_ context.Context, m *model.Mensaje) error {
	cp := *m
	r.mensajes[m.ID] = &cp
	return nil
}

func (r *stubMensajeRepo) ListPendingRetries(_ context.Context, now time.Time, limit int) ([]model.Mensaje, error) {
	var out []model.Mensaje
	for _, m := range r.mensajes {
		if m.Estado == "error" && m.NextRetryAt != nil && !m.NextRetryAt.After(now) {
			out = append(out, *m)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *stubClienteRepo) List(_ context.Context, _ dto.ClienteFilter) ([]model.Cliente, int64, error) {
	return nil, 0, nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	if c, ok := r.clientes[id]; ok {
		c.Activo = activo
	}
	return nil
}

type sentMail struct {
	to, asunto, cuerpo, pdfPath string
}

type stubMailer struct {
	fail bool
	sent []sentMail
}

func (m *stubMailer) SendPresupuesto(to, subject, body, pdfPath string) error {
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, sentMail{to: to, asunto: subject, cuerpo: body, pdfPath: pdfPath})
	return nil
}

// ── Tests ────────────────────────────────────────────────────────────────────

func emailEnv(t *testing.T) (*stubMensajeRepo, *stubClienteRepo, *stubMailer, *EmailWorker, *model.Mensaje) {
	t.Helper()
	mensajeRepo := newStubMensajeRepo()
	clienteRepo := newStubClienteRepo()
	mailer := &stubMailer{}
	w := NewEmailWorker(mailer, mensajeRepo, clienteRepo, nil, nil)

	cliente := &model.Cliente{Nombre: "Laura Gómez", Email: "laura@promopack.example", Activo: true}
	require.NoError(t, clienteRepo.Create(context.Background(), cliente))

	asunto := "Presupuesto P-000001"
	m := &model.Mensaje{
		ClienteID: cliente.ID,
		Canal:     "email",
		Direccion: "salida",
		Asunto:    &asunto,
		Cuerpo:    "Adjuntamos el presupuesto P-000001.",
		Estado:    "pendiente",
	}
	require.NoError(t, mensajeRepo.Create(context.Background(), m))
	return mensajeRepo, clienteRepo, mailer, w, m
}

func payload(t *testing.T, job EmailJobPayload) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestEmailWorker_EnvioCorrecto(t *testing.T) {
	mensajeRepo, _, mailer, w, m := emailEnv(t)

	w.Process(context.Background(), payload(t, EmailJobPayload{
		MensajeID: m.ID, To: "laura@promopack.example", PDFPath: "/srv/pdfs/Presupuesto_P-000001.pdf",
	}))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "laura@promopack.example", mailer.sent[0].to)
	assert.Equal(t, "/srv/pdfs/Presupuesto_P-000001.pdf", mailer.sent[0].pdfPath)

	stored, err := mensajeRepo.FindByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "enviado", stored.Estado)
	assert.Nil(t, stored.NextRetryAt)
	assert.Nil(t, stored.LastError)
}

func TestEmailWorker_FalloConservaAdjuntoYDestinatario(t *testing.T) {
	mensajeRepo, _, mailer, w, m := emailEnv(t)
	mailer.fail = true

	w.Process(context.Background(), payload(t, EmailJobPayload{
		MensajeID: m.ID, To: "override@empresa.es", PDFPath: "/srv/pdfs/Presupuesto_P-000001.pdf",
	}))

	stored, err := mensajeRepo.FindByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "error", stored.Estado)
	assert.Equal(t, 1, stored.RetryCount)
	require.NotNil(t, stored.NextRetryAt)
	require.NotNil(t, stored.LastError)

	// The resolved recipient and attachment must survive the failure: the
	// retry cron re-enqueues only the mensaje id.
	require.NotNil(t, stored.Destinatario)
	assert.Equal(t, "override@empresa.es", *stored.Destinatario)
	require.NotNil(t, stored.AdjuntoPath)
	assert.Equal(t, "/srv/pdfs/Presupuesto_P-000001.pdf", *stored.AdjuntoPath)
}

func TestEmailWorker_ReintentoRecuperaAdjuntoYDestinatario(t *testing.T) {
	mensajeRepo, _, mailer, w, m := emailEnv(t)

	// First attempt fails with an override recipient and a rendered PDF
	mailer.fail = true
	w.Process(context.Background(), payload(t, EmailJobPayload{
		MensajeID: m.ID, To: "override@empresa.es", PDFPath: "/srv/pdfs/Presupuesto_P-000001.pdf",
	}))

	// The cron re-enqueues with the mensaje id alone
	mailer.fail = false
	w.Process(context.Background(), payload(t, EmailJobPayload{MensajeID: m.ID}))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "override@empresa.es", mailer.sent[0].to)
	assert.Equal(t, "/srv/pdfs/Presupuesto_P-000001.pdf", mailer.sent[0].pdfPath)

	stored, err := mensajeRepo.FindByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "enviado", stored.Estado)
	assert.Nil(t, stored.NextRetryAt)
}

func TestEmailWorker_SinOverrideUsaEmailDelCliente(t *testing.T) {
	_, _, mailer, w, m := emailEnv(t)

	w.Process(context.Background(), payload(t, EmailJobPayload{MensajeID: m.ID}))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "laura@promopack.example", mailer.sent[0].to)
	assert.Empty(t, mailer.sent[0].pdfPath)
}
