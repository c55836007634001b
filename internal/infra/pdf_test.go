package infra

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePresupuesto(numero, sitioWeb string, nItems int) *model.Presupuesto {
	p := &model.Presupuesto{
		ID:            uuid.New(),
		Numero:        numero,
		ClienteID:     uuid.New(),
		ClienteNombre: "María López",
		ClienteEmail:  "maria@example.com",
		SitioWeb:      sitioWeb,
		Fecha:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		FechaValidez:  time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC),
		Estado:        "borrador",
		Subtotal:      decimal.RequireFromString("50.00"),
		Descuento:     decimal.Zero,
		Impuestos:     decimal.RequireFromString("10.50"),
		Total:         decimal.RequireFromString("60.50"),
	}
	for i := 0; i < nItems; i++ {
		p.Items = append(p.Items, model.PresupuestoItem{
			Orden:          i,
			Descripcion:    "Bolígrafos serigrafiados con logo — ref. 4411",
			Cantidad:       10,
			PrecioUnitario: decimal.RequireFromString("5.00"),
			LineaTotal:     decimal.RequireFromString("50.00"),
		})
	}
	return p
}

func TestGeneratePresupuestoPDF_EscribeArchivoConNombreCorrecto(t *testing.T) {
	dir := t.TempDir()

	path, err := GeneratePresupuestoPDF(samplePresupuesto("P-000042", "promopack", 3), dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Presupuesto_P-000042.pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500), "a rendered PDF should not be near-empty")

	// PDF magic bytes
	head := make([]byte, 5)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Read(head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(head))
}

func TestGeneratePresupuestoPDF_SitioDesconocidoUsaPresetPorDefecto(t *testing.T) {
	dir := t.TempDir()

	// Unknown slug must not error — it renders with the default branding
	_, err := GeneratePresupuestoPDF(samplePresupuesto("P-000043", "tienda-inexistente", 2), dir)
	assert.NoError(t, err)
}

func TestGeneratePresupuestoPDF_SobrescrituraTrasEdicion(t *testing.T) {
	dir := t.TempDir()
	p := samplePresupuesto("P-000044", "regalopro", 1)

	first, err := GeneratePresupuestoPDF(p, dir)
	require.NoError(t, err)

	p.Items = append(p.Items, model.PresupuestoItem{
		Orden: 1, Descripcion: "Tazas", Cantidad: 4,
		PrecioUnitario: decimal.RequireFromString("3.25"),
		LineaTotal:     decimal.RequireFromString("13.00"),
	})
	second, err := GeneratePresupuestoPDF(p, dir)
	require.NoError(t, err)

	// Same quote, same filename — the new render replaces the old file
	assert.Equal(t, first, second)
}

func TestGeneratePresupuestoPDF_MuchasLineasPagina(t *testing.T) {
	dir := t.TempDir()

	// Enough rows to force at least one page break with repeated table header
	path, err := GeneratePresupuestoPDF(samplePresupuesto("P-000045", "textilcorp", 80), dir)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(2000))
}

func TestTruncateDesc(t *testing.T) {
	corta := "Bolígrafos serigrafiados"
	assert.Equal(t, corta, truncateDesc(corta))

	// An accented rune straddling the cut point must not be split into
	// invalid UTF-8
	larga := strings.Repeat("ñ", 68) + "áéí extra texto que sobra"
	out := truncateDesc(larga)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 70, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "…"))

	exacta := strings.Repeat("é", 70)
	assert.Equal(t, exacta, truncateDesc(exacta))
}

func TestPresetFor(t *testing.T) {
	assert.Equal(t, "PromoPack", presetFor("promopack").Nombre)
	assert.Equal(t, "PromoPack", presetFor("  PromoPack  ").Nombre) // case and spacing tolerant
	assert.Equal(t, defaultPreset, presetFor("desconocido"))
	assert.Equal(t, defaultPreset, presetFor(""))
}
