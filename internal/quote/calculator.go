// Package quote implements the presupuesto total calculation.
// It is pure arithmetic over line items: no I/O, no persistence, no locale
// formatting — those belong to the PDF renderer and the DTO layer.
package quote

import (
	"strings"

	"github.com/shopspring/decimal"
)

// IVARate is the value-added tax applied to every presupuesto. Fixed at 21%.
var IVARate = decimal.New(21, -2)

var hundred = decimal.New(100, 0)

// LineItem is one row of a presupuesto.
// LineaTotal is always derived from Cantidad and PrecioUnitario; it is never
// stored as an independent source of truth.
type LineItem struct {
	Descripcion    string
	Cantidad       int
	PrecioUnitario decimal.Decimal
}

// LineaTotal returns Cantidad × PrecioUnitario.
func (it LineItem) LineaTotal() decimal.Decimal {
	return it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad)))
}

// EnBlanco reports whether the item has an empty or whitespace-only
// description. Blank rows stay in the caller's editable list but contribute
// nothing to the totals.
func (it LineItem) EnBlanco() bool {
	return strings.TrimSpace(it.Descripcion) == ""
}

// Totals is the computed totals block of a presupuesto.
// Invariant: Total = Subtotal − Descuento + Impuestos, with every field
// derived from the same inputs through a single arithmetic path.
type Totals struct {
	Subtotal      decimal.Decimal
	DescuentoPct  decimal.Decimal
	Descuento     decimal.Decimal
	BaseImponible decimal.Decimal
	Impuestos     decimal.Decimal
	Total         decimal.Decimal
}

// ComputeTotals turns a list of line items plus a discount percentage into
// the Totals block. It is deterministic and side-effect free: identical
// inputs always produce identical outputs. The discount percentage is
// clamped to [0, 100] before computing.
func ComputeTotals(items []LineItem, descuentoPct decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		if it.EnBlanco() {
			continue
		}
		subtotal = subtotal.Add(it.LineaTotal())
	}

	pct := clampPct(descuentoPct)
	descuento := subtotal.Mul(pct).Div(hundred)
	base := subtotal.Sub(descuento)
	impuestos := base.Mul(IVARate)

	return Totals{
		Subtotal:      subtotal,
		DescuentoPct:  pct,
		Descuento:     descuento,
		BaseImponible: base,
		Impuestos:     impuestos,
		Total:         base.Add(impuestos),
	}
}

func clampPct(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}
