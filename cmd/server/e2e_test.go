//go:build integration

package main

// e2e_test.go
// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./cmd/server/... -v
//
// Covered flows:
//   - Login → crear cliente → crear presupuesto (totales IVA 21%) → aceptar → facturar → descargar PDF
//   - Filas en blanco no suman al total pero se conservan
//   - Actualizar presupuesto recalcula el bloque de totales
//   - Convertir lead crea cliente y es idempotente

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/config"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/infra"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/router"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func eqDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	engine *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("crm_merch_test"),
		tcPostgres.WithUsername("crm"),
		tcPostgres.WithPassword("crm"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	require.NoError(t, infra.RunMigrations(db))

	// Seed admin user
	hash, err := bcrypt.GenerateFromPassword([]byte("crm2026"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`INSERT INTO usuarios (id, username, nombre, email, password_hash, rol, activo, created_at, updated_at)
		VALUES (gen_random_uuid(), 'admin@e2e.test', 'Admin E2E', 'admin@e2e.test', ?, 'administrador', true, NOW(), NOW())
		ON CONFLICT DO NOTHING`, string(hash)).Error)

	dispatcher := worker.NewDispatcher(rdb)

	// Webhook disabled in tests (empty URL → nil notifier, nil-safe everywhere)
	r := router.New(cfg, db, rdb, infra.NewNotifier(""), infra.NewCircuitBreaker(infra.DefaultCBConfig()), dispatcher)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin@e2e.test", "password": "crm2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken, engine: r}
}

type presupuestoBody struct {
	ID        string `json:"id"`
	Numero    string `json:"numero"`
	Estado    string `json:"estado"`
	SitioWeb  string `json:"sitio_web"`
	Items     []any  `json:"items"`
	Subtotal  decimal.Decimal
	Descuento decimal.Decimal
	Impuestos decimal.Decimal
	Total     decimal.Decimal
}

func crearCliente(t *testing.T, env *testEnv, nombre, email, sitio string) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/clientes",
		jsonBody(t, map[string]any{"nombre": nombre, "email": email, "sitio_web": sitio}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var cliente struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &cliente)
	return cliente.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloPresupuestoCompleto(t *testing.T) {
	env := setupTestEnv(t)

	clienteID := crearCliente(t, env, "Laura Gómez", "laura@promopack.example", "promopack")

	// Crear presupuesto: 10 × 5.00 € → subtotal 50.00, IVA 10.50, total 60.50
	crearResp := do(t, env.server, "POST", "/v1/presupuestos",
		jsonBody(t, map[string]any{
			"cliente_id": clienteID,
			"items": []map[string]any{
				{"descripcion": "Bolígrafos serigrafiados", "cantidad": 10, "precio_unitario": "5.00"},
			},
			"descuento": "0",
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, crearResp.StatusCode)
	var p presupuestoBody
	decodeJSON(t, crearResp, &p)

	assert.Equal(t, "P-000001", p.Numero)
	assert.Equal(t, "borrador", p.Estado)
	assert.Equal(t, "promopack", p.SitioWeb) // inherited from the cliente
	eqDecimal(t, "50.00", p.Subtotal)
	eqDecimal(t, "10.50", p.Impuestos)
	eqDecimal(t, "60.50", p.Total)

	// Aceptar
	estadoResp := do(t, env.server, "PATCH", "/v1/presupuestos/"+p.ID+"/estado",
		jsonBody(t, map[string]string{"estado": "aceptado"}), env.token)
	require.Equal(t, http.StatusOK, estadoResp.StatusCode)
	estadoResp.Body.Close()

	// Facturar
	factResp := do(t, env.server, "POST", "/v1/presupuestos/"+p.ID+"/facturar", nil, env.token)
	require.Equal(t, http.StatusCreated, factResp.StatusCode)
	var factura struct {
		Numero string          `json:"numero"`
		Total  decimal.Decimal `json:"total"`
	}
	decodeJSON(t, factResp, &factura)
	assert.Equal(t, "F-000001", factura.Numero)
	eqDecimal(t, "60.50", factura.Total)

	// El presupuesto queda facturado
	getResp := do(t, env.server, "GET", "/v1/presupuestos/"+p.ID, nil, env.token)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	var after presupuestoBody
	decodeJSON(t, getResp, &after)
	assert.Equal(t, "facturado", after.Estado)

	// Descargar PDF
	pdfResp := do(t, env.server, "GET", "/v1/presupuestos/"+p.ID+"/pdf", nil, env.token)
	require.Equal(t, http.StatusOK, pdfResp.StatusCode)
	assert.Contains(t, pdfResp.Header.Get("Content-Disposition"), "Presupuesto_P-000001.pdf")
	body, err := io.ReadAll(pdfResp.Body)
	pdfResp.Body.Close()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
}

func TestE2E_FilasEnBlancoYDescuento(t *testing.T) {
	env := setupTestEnv(t)
	clienteID := crearCliente(t, env, "Pedro Sanz", "pedro@regalopro.example", "regalopro")

	// 4 × 3.25 = 13.00; fila en blanco no suma; 10% dto → base 11.70; IVA 2.457; total 14.157
	resp := do(t, env.server, "POST", "/v1/presupuestos",
		jsonBody(t, map[string]any{
			"cliente_id": clienteID,
			"items": []map[string]any{
				{"descripcion": "Tazas personalizadas", "cantidad": 4, "precio_unitario": "3.25"},
				{"descripcion": "   ", "cantidad": 99, "precio_unitario": "100.00"},
			},
			"descuento": "10",
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p presupuestoBody
	decodeJSON(t, resp, &p)

	eqDecimal(t, "13.00", p.Subtotal)
	eqDecimal(t, "2.457", p.Impuestos)
	eqDecimal(t, "14.157", p.Total)
	assert.Len(t, p.Items, 2) // the blank row is kept, just not billed

	// Re-read from the database: the stored snapshot keeps the sub-cent
	// digits, nothing is rounded on the way through Postgres
	getResp := do(t, env.server, "GET", "/v1/presupuestos/"+p.ID, nil, env.token)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	var stored presupuestoBody
	decodeJSON(t, getResp, &stored)
	eqDecimal(t, "2.457", stored.Impuestos)
	eqDecimal(t, "14.157", stored.Total)
}

func TestE2E_ActualizarRecalculaTotales(t *testing.T) {
	env := setupTestEnv(t)
	clienteID := crearCliente(t, env, "Nuria Vidal", "nuria@textilcorp.example", "textilcorp")

	crearResp := do(t, env.server, "POST", "/v1/presupuestos",
		jsonBody(t, map[string]any{
			"cliente_id": clienteID,
			"items": []map[string]any{
				{"descripcion": "Camisetas", "cantidad": 10, "precio_unitario": "5.00"},
			},
			"descuento": "0",
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, crearResp.StatusCode)
	var p presupuestoBody
	decodeJSON(t, crearResp, &p)

	updResp := do(t, env.server, "PUT", "/v1/presupuestos/"+p.ID,
		jsonBody(t, map[string]any{
			"items": []map[string]any{
				{"descripcion": "Camisetas", "cantidad": 20, "precio_unitario": "5.00"},
			},
			"descuento": "0",
		}),
		env.token,
	)
	require.Equal(t, http.StatusOK, updResp.StatusCode)
	var updated presupuestoBody
	decodeJSON(t, updResp, &updated)

	eqDecimal(t, "100.00", updated.Subtotal)
	eqDecimal(t, "121.00", updated.Total)
	assert.Equal(t, p.Numero, updated.Numero) // el número nunca cambia
}

func TestE2E_FacturarRechazaNoAceptado(t *testing.T) {
	env := setupTestEnv(t)
	clienteID := crearCliente(t, env, "Iván Ortega", "ivan@promopack.example", "promopack")

	crearResp := do(t, env.server, "POST", "/v1/presupuestos",
		jsonBody(t, map[string]any{
			"cliente_id": clienteID,
			"items": []map[string]any{
				{"descripcion": "Llaveros", "cantidad": 5, "precio_unitario": "2.00"},
			},
			"descuento": "0",
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, crearResp.StatusCode)
	var p presupuestoBody
	decodeJSON(t, crearResp, &p)

	factResp := do(t, env.server, "POST", "/v1/presupuestos/"+p.ID+"/facturar", nil, env.token)
	assert.Equal(t, http.StatusBadRequest, factResp.StatusCode)
	factResp.Body.Close()
}

func TestE2E_ConvertirLead(t *testing.T) {
	env := setupTestEnv(t)

	leadResp := do(t, env.server, "POST", "/v1/leads",
		jsonBody(t, map[string]any{
			"nombre":    "Carlos Ruiz",
			"email":     "carlos@eventos.example",
			"sitio_web": "regalopro",
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, leadResp.StatusCode)
	var lead struct {
		ID string `json:"id"`
	}
	decodeJSON(t, leadResp, &lead)

	convResp := do(t, env.server, "POST", "/v1/leads/"+lead.ID+"/convertir", nil, env.token)
	require.Equal(t, http.StatusCreated, convResp.StatusCode)
	var cliente struct {
		ID       string `json:"id"`
		Nombre   string `json:"nombre"`
		SitioWeb string `json:"sitio_web"`
	}
	decodeJSON(t, convResp, &cliente)
	assert.Equal(t, "Carlos Ruiz", cliente.Nombre)
	assert.Equal(t, "regalopro", cliente.SitioWeb)

	// Convertir dos veces devuelve el mismo cliente
	convResp2 := do(t, env.server, "POST", "/v1/leads/"+lead.ID+"/convertir", nil, env.token)
	require.Equal(t, http.StatusCreated, convResp2.StatusCode)
	var cliente2 struct {
		ID string `json:"id"`
	}
	decodeJSON(t, convResp2, &cliente2)
	assert.Equal(t, cliente.ID, cliente2.ID)
}
