package infra

// pdf.go — Presupuesto PDF generation using go-pdf/fpdf.
// Produces an A4, text-native document:
//   - Branded header (per-site preset) + numero and dates
//   - Two-column info block (quote metadata left, cliente snapshot right)
//   - Line-items table (descripcion, cantidad, precio unitario, total línea)
//     with the header row repeated on every page
//   - Totals box: subtotal, discount line only when > 0, IVA 21%, bold total
//   - Optional notes block and footer
//
// The output file is saved to storagePath/Presupuesto_{numero}.pdf.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ErrRender is the single error kind the renderer reports. Every failure in
// the pipeline (layout, output, file write) wraps it; no partial file is left
// behind. The caller decides whether to retry.
var ErrRender = errors.New("pdf: render de presupuesto fallido")

// BrandPreset is the per-site branding applied to the document header.
type BrandPreset struct {
	Nombre string
	Lema   string
	// RGB header accent color
	R, G, B int
}

// brandPresets is the static lookup keyed by Presupuesto.SitioWeb. An
// unrecognized slug falls back to defaultPreset instead of erroring.
var brandPresets = map[string]BrandPreset{
	"promopack":  {Nombre: "PromoPack", Lema: "Merchandising que se recuerda", R: 26, G: 115, B: 232},
	"regalopro":  {Nombre: "RegaloPro", Lema: "Regalos de empresa a medida", R: 217, G: 48, B: 37},
	"textilcorp": {Nombre: "TextilCorp", Lema: "Textil personalizado", R: 15, G: 157, B: 88},
}

var defaultPreset = BrandPreset{Nombre: "CRM Merchandising", Lema: "Presupuesto comercial", R: 66, G: 66, B: 66}

// presetFor never fails: unknown sites get the default branding.
func presetFor(sitioWeb string) BrandPreset {
	if p, ok := brandPresets[strings.ToLower(strings.TrimSpace(sitioWeb))]; ok {
		return p
	}
	return defaultPreset
}

// GeneratePresupuestoPDF renders the quote document and returns the absolute
// path of the written file. storagePath is created if needed.
func GeneratePresupuestoPDF(p *model.Presupuesto, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("%w: create storage dir: %v", ErrRender, err)
	}

	fileName := fmt.Sprintf("Presupuesto_%s.pdf", p.Numero)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // core fonts are cp1252; needed for € and accents
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0) // page breaks are handled per table row
	pdf.AddPage()

	brand := presetFor(p.SitioWeb)
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 30 // total margins = 30mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFillColor(brand.R, brand.G, brand.B)
	pdf.Rect(0, 0, pageW, 4, "F")

	pdf.SetY(12)
	pdf.SetTextColor(brand.R, brand.G, brand.B)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(contentW/2, 10, tr(brand.Nombre), "", 0, "L", false, 0, "")

	pdf.SetTextColor(60, 60, 60)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW/2, 10, "PRESUPUESTO", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(contentW/2, 5, tr(brand.Lema), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(contentW/2, 5, tr("Nº "+p.Numero), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	// ── Info block: quote metadata left, cliente snapshot right ─────────────
	colW := contentW / 2
	topY := pdf.GetY()

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colW, 5, "DATOS DEL PRESUPUESTO", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(colW, 5, tr("Fecha: "+p.Fecha.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.CellFormat(colW, 5, tr("Válido hasta: "+p.FechaValidez.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.CellFormat(colW, 5, tr("Estado: "+p.Estado), "", 1, "L", false, 0, "")

	pdf.SetXY(15+colW, topY)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colW, 5, "CLIENTE", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(colW, 5, tr(p.ClienteNombre), "", 2, "L", false, 0, "")
	if p.ClienteEmpresa != nil && *p.ClienteEmpresa != "" {
		pdf.CellFormat(colW, 5, tr(*p.ClienteEmpresa), "", 2, "L", false, 0, "")
	}
	pdf.CellFormat(colW, 5, tr(p.ClienteEmail), "", 2, "L", false, 0, "")

	pdf.SetY(topY + 24)

	// ── Line-items table ─────────────────────────────────────────────────────
	col1 := contentW * 0.52 // descripcion
	col2 := contentW * 0.12 // cantidad
	col3 := contentW * 0.18 // precio unitario
	col4 := contentW * 0.18 // total línea

	tableHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(brand.R, brand.G, brand.B)
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(col1, 7, tr("Descripción"), "", 0, "L", true, 0, "")
		pdf.CellFormat(col2, 7, "Cant.", "", 0, "C", true, 0, "")
		pdf.CellFormat(col3, 7, "Precio unit.", "", 0, "R", true, 0, "")
		pdf.CellFormat(col4, 7, tr("Total línea"), "", 1, "R", true, 0, "")
		pdf.SetTextColor(60, 60, 60)
	}
	tableHeader()

	pdf.SetFont("Helvetica", "", 9)
	fill := false
	for _, item := range p.Items {
		// Slice rows across pages; the header repeats on every new page so
		// the page-splitting order matches the single-column layout.
		if pdf.GetY() > pageH-45 {
			pdf.AddPage()
			pdf.SetY(15)
			tableHeader()
			pdf.SetFont("Helvetica", "", 9)
		}
		desc := truncateDesc(item.Descripcion)
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(col1, 6, tr(desc), "", 0, "L", fill, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("%d", item.Cantidad), "", 0, "C", fill, 0, "")
		pdf.CellFormat(col3, 6, tr(formatEUR(item.PrecioUnitario)), "", 0, "R", fill, 0, "")
		pdf.CellFormat(col4, 6, tr(formatEUR(item.LineaTotal)), "", 1, "R", fill, 0, "")
		fill = !fill
	}

	pdf.Ln(4)
	if pdf.GetY() > pageH-60 {
		pdf.AddPage()
		pdf.SetY(15)
	}

	// ── Totals box ───────────────────────────────────────────────────────────
	labelW := col1 + col2 + col3
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(labelW, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, tr(formatEUR(p.Subtotal)), "", 1, "R", false, 0, "")

	if p.Descuento.IsPositive() {
		descuentoImporte := p.Subtotal.Mul(p.Descuento).Div(decimal.New(100, 0))
		pdf.CellFormat(labelW, 6, tr(fmt.Sprintf("Descuento (%s%%):", p.Descuento.String())), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, tr("-"+formatEUR(descuentoImporte)), "", 1, "R", false, 0, "")
	}

	pdf.CellFormat(labelW, 6, "IVA (21%):", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, tr(formatEUR(p.Impuestos)), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetDrawColor(brand.R, brand.G, brand.B)
	pdf.Line(15+labelW-40, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.CellFormat(labelW, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 8, tr(formatEUR(p.Total)), "", 1, "R", false, 0, "")

	// ── Notes ────────────────────────────────────────────────────────────────
	if p.Notas != nil && strings.TrimSpace(*p.Notas) != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, "Notas", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW, 5, tr(*p.Notas), "", "L", false)
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.SetY(-25)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(contentW, 4, tr(brand.Nombre+" — presupuesto válido hasta la fecha indicada."), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Precios en euros, IVA 21% incluido en el total."), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		// Never leave a partial file behind
		_ = os.Remove(filePath)
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	return filePath, nil
}

// formatEUR formats an amount as "1234.56 €". Presentation only — stored
// amounts are never rounded through this path.
func formatEUR(d decimal.Decimal) string {
	return d.StringFixed(2) + " €"
}

// truncateDesc shortens a description to fit the table column. Counted in
// runes, not bytes, so accented characters at the cut point stay intact.
func truncateDesc(s string) string {
	r := []rune(s)
	if len(r) <= 70 {
		return s
	}
	return string(r[:69]) + "…"
}
