package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory Repository Stubs ────────────────────────────────────────────────

type stubPresupuestoRepo struct {
	presupuestos map[uuid.UUID]*model.Presupuesto
	nextNum      int
}

func newStubPresupuestoRepo() *stubPresupuestoRepo {
	return &stubPresupuestoRepo{presupuestos: make(map[uuid.UUID]*model.Presupuesto)}
}

func (r *stubPresupuestoRepo) Create(_ context.Context, _ *gorm.DB, p *model.Presupuesto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Items {
		p.Items[i].PresupuestoID = p.ID
	}
	cp := *p
	r.presupuestos[p.ID] = &cp
	return nil
}

func (r *stubPresupuestoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Presupuesto, error) {
	p, ok := r.presupuestos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *p
	return &cp, nil
}

func (r *stubPresupuestoRepo) List(_ context.Context, _ dto.PresupuestoFilter) ([]model.Presupuesto, int64, error) {
	out := make([]model.Presupuesto, 0, len(r.presupuestos))
	for _, p := range r.presupuestos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPresupuestoRepo) ReplaceItems(_ context.Context, _ *gorm.DB, id uuid.UUID, items []model.PresupuestoItem) error {
	p, ok := r.presupuestos[id]
	if !ok {
		return errors.New("not found")
	}
	p.Items = items
	return nil
}

func (r *stubPresupuestoRepo) Save(_ context.Context, _ *gorm.DB, p *model.Presupuesto) error {
	existing, ok := r.presupuestos[p.ID]
	if !ok {
		return errors.New("not found")
	}
	items := existing.Items
	cp := *p
	cp.Items = items
	r.presupuestos[p.ID] = &cp
	return nil
}

func (r *stubPresupuestoRepo) UpdateEstado(_ context.Context, id uuid.UUID, estado string) error {
	p, ok := r.presupuestos[id]
	if !ok {
		return errors.New("not found")
	}
	p.Estado = estado
	return nil
}

func (r *stubPresupuestoRepo) UpdatePDFPath(_ context.Context, id uuid.UUID, path string) error {
	p, ok := r.presupuestos[id]
	if !ok {
		return errors.New("not found")
	}
	p.PDFPath = &path
	return nil
}

func (r *stubPresupuestoRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.presupuestos, id)
	return nil
}

func (r *stubPresupuestoRepo) NextNumero(_ context.Context, _ *gorm.DB) (int, error) {
	r.nextNum++
	return r.nextNum, nil
}

func (r *stubPresupuestoRepo) DB() *gorm.DB { return nil }

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
	out := make([]model.Cliente, 0, len(r.clientes))
	for _, c := range r.clientes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	c, ok := r.clientes[id]
	if !ok {
		return errors.New("not found")
	}
	c.Activo = activo
	return nil
}

type stubFacturaRepo struct {
	facturas map[uuid.UUID]*model.Factura
	nextNum  int
}

func newStubFacturaRepo() *stubFacturaRepo {
	return &stubFacturaRepo{facturas: make(map[uuid.UUID]*model.Factura)}
}

func (r *stubFacturaRepo) Create(_ context.Context, _ *gorm.DB, f *model.Factura) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	cp := *f
	r.facturas[f.ID] = &cp
	return nil
}

func (r *stubFacturaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Factura, error) {
	f, ok := r.facturas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return f, nil
}

func (r *stubFacturaRepo) FindByPresupuestoID(_ context.Context, presupuestoID uuid.UUID) (*model.Factura, error) {
	for _, f := range r.facturas {
		if f.PresupuestoID != nil && *f.PresupuestoID == presupuestoID {
			return f, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubFacturaRepo) List(_ context.Context, _ dto.FacturaFilter) ([]model.Factura, int64, error) {
	out := make([]model.Factura, 0, len(r.facturas))
	for _, f := range r.facturas {
		out = append(out, *f)
	}
	return out, int64(len(out)), nil
}

func (r *stubFacturaRepo) Update(_ context.Context, f *model.Factura) error {
	r.facturas[f.ID] = f
	return nil
}

func (r *stubFacturaRepo) NextNumero(_ context.Context, _ *gorm.DB) (int, error) {
	r.nextNum++
	return r.nextNum, nil
}

func (r *stubFacturaRepo) DB() *gorm.DB { return nil }

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
	r.mensajes[m.ID] = m
	return nil
}

func (r *stubMensajeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Mensaje, error) {
	m, ok := r.mensajes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return m, nil
}

func (r *stubMensajeRepo) ListByCliente(_ context.Context, clienteID uuid.UUID, _ dto.MensajeFilter) ([]model.Mensaje, int64, error) {
	var out []model.Mensaje
	for _, m := range r.mensajes {
		if m.ClienteID == clienteID {
			out = append(out, *m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubMensajeRepo) Update(_ context.Context, m *model.Mensaje) error {
	r.mensajes[m.ID] = m
	return nil
}

func (r *stubMensajeRepo) ListPendingRetries(_ context.Context, now time.Time, _ int) ([]model.Mensaje, error) {
	var out []model.Mensaje
	for _, m := range r.mensajes {
		if m.Estado == "error" && m.NextRetryAt != nil && !m.NextRetryAt.After(now) {
			out = append(out, *m)
		}
	}
	return out, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

type presupuestoEnv struct {
	svc         PresupuestoService
	repo        *stubPresupuestoRepo
	clienteRepo *stubClienteRepo
	facturaRepo *stubFacturaRepo
	mensajeRepo *stubMensajeRepo
	clienteID   uuid.UUID
	storagePath string
}

func newPresupuestoEnv(t *testing.T) *presupuestoEnv {
	t.Helper()
	repo := newStubPresupuestoRepo()
	clienteRepo := newStubClienteRepo()
	facturaRepo := newStubFacturaRepo()
	mensajeRepo := newStubMensajeRepo()

	empresa := "Promo SL"
	cliente := &model.Cliente{
		Nombre:   "Laura Gómez",
		Empresa:  &empresa,
		Email:    "laura@promo.example",
		SitioWeb: "promopack",
		Activo:   true,
	}
	require.NoError(t, clienteRepo.Create(context.Background(), cliente))

	svc := NewPresupuestoService(repo, clienteRepo, facturaRepo, mensajeRepo, nil, nil, nil, t.TempDir())
	return &presupuestoEnv{
		svc:         svc,
		repo:        repo,
		clienteRepo: clienteRepo,
		facturaRepo: facturaRepo,
		mensajeRepo: mensajeRepo,
		clienteID:   cliente.ID,
		storagePath: t.TempDir(),
	}
}

func item(desc string, cantidad int, precio string) dto.ItemPresupuestoRequest {
	return dto.ItemPresupuestoRequest{
		Descripcion:    desc,
		Cantidad:       cantidad,
		PrecioUnitario: decimal.RequireFromString(precio),
	}
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func TestCrearPresupuesto_CalculaTotalesYNumero(t *testing.T) {
	env := newPresupuestoEnv(t)

	resp, err := env.svc.Crear(context.Background(), dto.CrearPresupuestoRequest{
		ClienteID: env.clienteID.String(),
		Items:     []dto.ItemPresupuestoRequest{item("Bolígrafos serigrafiados", 10, "5.00")},
		Descuento: decimal.Zero,
	})
	require.NoError(t, err)

	assert.Equal(t, "P-000001", resp.Numero)
	assert.Equal(t, "borrador", resp.Estado)
	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("50.00")), "subtotal: %s", resp.Subtotal)
	assert.True(t, resp.Impuestos.Equal(decimal.RequireFromString("10.50")), "impuestos: %s", resp.Impuestos)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("60.50")), "total: %s", resp.Total)

	// Cliente snapshot copied onto the quote
	assert.Equal(t, "Laura Gómez", resp.ClienteNombre)
	assert.Equal(t, "laura@promo.example", resp.ClienteEmail)
	assert.Equal(t, "promopack", resp.SitioWeb)
}

func TestCrearPresupuesto_FilaEnBlancoNoSuma(t *testing.T) {
	env := newPresupuestoEnv(t)

	resp, err := env.svc.Crear(context.Background(), dto.CrearPresupuestoRequest{
		ClienteID: env.clienteID.String(),
		Items: []dto.ItemPresupuestoRequest{
			item("Tazas personalizadas", 4, "3.25"),
			item("   ", 2, "100.00"), // blank row stays on the list but adds nothing
		},
		Descuento: decimal.RequireFromString("10"),
	})
	require.NoError(t, err)

	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("13.00")), "subtotal: %s", resp.Subtotal)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("14.157")), "total: %s", resp.Total)
	// Both rows are preserved for editing
	assert.Len(t, resp.Items, 2)
}

func TestCrearPresupuesto_ClienteInexistente(t *testing.T) {
	env := newPresupuestoEnv(t)

	_, err := env.svc.Crear(context.Background(), dto.CrearPresupuestoRequest{
		ClienteID: uuid.NewString(),
		Items:     []dto.ItemPresupuestoRequest{item("Algo", 1, "1.00")},
	})
	assert.EqualError(t, err, "cliente no encontrado")
}

func TestCrearPresupuesto_NumerosSecuenciales(t *testing.T) {
	env := newPresupuestoEnv(t)

	first, err := env.svc.Crear(context.Background(), dto.CrearPresupuestoRequest{
		ClienteID: env.clienteID.String(),
		Items:     []dto.ItemPresupuestoRequest{item("Camisetas", 5, "8.00")},
	})
	require.NoError(t, err)
	second, err := env.svc.Crear(context.Background(), dto.CrearPresupuestoRequest{
		ClienteID: env.clienteID.String(),
		Items:     []dto.ItemPresupuestoRequest{item("Gorras", 3, "6.50")},
	})
	require.NoError(t, err)

	assert.Equal(t, "P-000001", first.Numero)
	assert.Equal(t, "P-000002", second.Numero)
}

// ── Actualizar ────────────────────────────────────────────────────────────────

func TestActualizarPresupuesto_RecalculaTodoElBloque(t *testing.T) {
	env := newPresupuestoEnv(t)

	created, err := env.svc.Crear(context.Background(), dto.CrearPresupuestoRequest{
		ClienteID: env.clienteID.String(),
		Items:     []dto.ItemPresupuestoRequest{item("Llaveros", 10, "2.00")},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	updated, err := env.svc.Actualizar(context.Background(), id, dto.ActualizarPresupuestoRequest{
		Items:     []dto.ItemPresupuestoRequest{item("Llaveros metálicos", 10, "5.00")},
		Descuento: decimal.Zero,
	})
	require.NoError(t, err)

	assert.True(t, updated.Subtotal.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, updated.Total.Equal(decimal.RequireFromString("60.50")))
	assert.Len(t, updated.Items, 1)
	assert.Equal(t, "Llaveros metálicos", updated.Items[0].Descripcion)

	// Numero never changes on edit
	assert.Equal(t, created.Numero, updated.Numero)
}

// ── Duplicar ──────────────────────────────────────────────────────────────────

func TestDuplicarPresupuesto_NuevoNumeroYBorrador(t *testing.T) {
	env := newPresupuestoEnv(t)

	orig, err := env.svc.Crear(context.Background(), dto.CrearPresupuestoRequest{
		ClienteID: env.clienteID.String(),
		Items:     []dto.ItemPresupuestoRequest{item("Mochilas", 2, "15.00")},
		Descuento: decimal.RequireFromString("5"),
	})
	require.NoError(t, err)
	origID := uuid.MustParse(orig.ID)

	_, err = env.svc.CambiarEstado(context.Background(), origID, "aceptado")
	require.NoError(t, err)

	dup, err := env.svc.Duplicar(context.Background(), origID)
	require.NoError(t, err)

	assert.NotEqual(t, orig.ID, dup.ID)
	assert.NotEqual(t, orig.Numero, dup.Numero)
	assert.Equal(t, "borrador", dup.Estado)
	assert.True(t, dup.Total.Equal(orig.Total))
	assert.Len(t, dup.Items, 1)
}

// ── Facturar ──────────────────────────────────────────────────────────────────

func TestFacturar_SoloPresupuestoAceptado(t *testing.T) {
	env := newPresupuestoEnv(t)

	created, err := env.svc.Crear(context.Background(), dto.CrearPresupuestoRequest{
		ClienteID: env.clienteID.String(),
		Items:     []dto.ItemPresupuestoRequest{item("Agendas", 20, "4.00")},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	_, err = env.svc.Facturar(context.Background(), id)
	assert.EqualError(t, err, "solo un presupuesto aceptado puede facturarse")

	_, err = env.svc.CambiarEstado(context.Background(), id, "aceptado")
	require.NoError(t, err)

	factura, err := env.svc.Facturar(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "F-000001", factura.Numero)
	assert.Equal(t, "emitida", factura.Estado)
	assert.True(t, factura.Total.Equal(created.Total))
	assert.Equal(t, created.ID, *factura.PresupuestoID)

	// The quote moves to facturado
	p, err := env.svc.Obtener(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "facturado", p.Estado)
}

func TestFacturar_IdempotentePorPresupuesto(t *testing.T) {
	env := newPresupuestoEnv(t)

	created, err := env.svc.Crear(context.Background(), dto.CrearPresupuestoRequest{
		ClienteID: env.clienteID.String(),
		Items:     []dto.ItemPresupuestoRequest{item("Paraguas", 6, "9.00")},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	_, err = env.svc.CambiarEstado(context.Background(), id, "aceptado")
	require.NoError(t, err)

	first, err := env.svc.Facturar(context.Background(), id)
	require.NoError(t, err)
	second, err := env.svc.Facturar(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Numero, second.Numero)
	assert.Len(t, env.facturaRepo.facturas, 1)
}

// ── Enviar ────────────────────────────────────────────────────────────────────

func TestEnviar_CreaMensajeYMarcaEnviado(t *testing.T) {
	env := newPresupuestoEnv(t)

	created, err := env.svc.Crear(context.Background(), dto.CrearPresupuestoRequest{
		ClienteID: env.clienteID.String(),
		Items:     []dto.ItemPresupuestoRequest{item("Pendrives grabados", 50, "3.10")},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	resp, err := env.svc.Enviar(context.Background(), id, dto.EnviarPresupuestoRequest{})
	require.NoError(t, err)
	assert.Equal(t, "enviado", resp.Estado)

	// One pending outbound email on the cliente history, with the resolved
	// recipient stored for the retry path
	require.Len(t, env.mensajeRepo.mensajes, 1)
	for _, m := range env.mensajeRepo.mensajes {
		assert.Equal(t, "email", m.Canal)
		assert.Equal(t, "salida", m.Direccion)
		assert.Equal(t, "pendiente", m.Estado)
		assert.Equal(t, env.clienteID, m.ClienteID)
		require.NotNil(t, m.Destinatario)
		assert.Equal(t, "laura@promo.example", *m.Destinatario)
	}
}

func TestEnviar_GuardaDestinatarioOverride(t *testing.T) {
	env := newPresupuestoEnv(t)

	created, err := env.svc.Crear(context.Background(), dto.CrearPresupuestoRequest{
		ClienteID: env.clienteID.String(),
		Items:     []dto.ItemPresupuestoRequest{item("Pendrives grabados", 50, "3.10")},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	otro := "compras@empresa.es"
	_, err = env.svc.Enviar(context.Background(), id, dto.EnviarPresupuestoRequest{Email: &otro})
	require.NoError(t, err)

	require.Len(t, env.mensajeRepo.mensajes, 1)
	for _, m := range env.mensajeRepo.mensajes {
		require.NotNil(t, m.Destinatario)
		assert.Equal(t, "compras@empresa.es", *m.Destinatario)
	}
}

// ── CambiarEstado / Eliminar ──────────────────────────────────────────────────

func TestCambiarEstado_TransicionesLibres(t *testing.T) {
	env := newPresupuestoEnv(t)

	created, err := env.svc.Crear(context.Background(), dto.CrearPresupuestoRequest{
		ClienteID: env.clienteID.String(),
		Items:     []dto.ItemPresupuestoRequest{item("Calendarios", 100, "1.20")},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	// No state machine: rechazado puede volver a borrador
	for _, estado := range []string{"enviado", "rechazado", "borrador", "aceptado"} {
		resp, err := env.svc.CambiarEstado(context.Background(), id, estado)
		require.NoError(t, err)
		assert.Equal(t, estado, resp.Estado)
	}
}

func TestEliminarPresupuesto(t *testing.T) {
	env := newPresupuestoEnv(t)

	created, err := env.svc.Crear(context.Background(), dto.CrearPresupuestoRequest{
		ClienteID: env.clienteID.String(),
		Items:     []dto.ItemPresupuestoRequest{item("Imanes", 200, "0.45")},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, env.svc.Eliminar(context.Background(), id))
	_, err = env.svc.Obtener(context.Background(), id)
	assert.EqualError(t, err, "presupuesto no encontrado")
}
