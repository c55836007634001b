package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Presupuesto is a commercial quote: cliente snapshot, ordered line items and
// the totals block computed at last save.
//
// Estado: "borrador" | "enviado" | "aceptado" | "rechazado" | "facturado".
// Transitions are user-driven — any estado may be set to any other by direct
// edit; there is no enforced state machine.
//
// The totals columns are a snapshot of the last computation; edits go through
// the service layer which recomputes and overwrites the whole block.
type Presupuesto struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero string    `gorm:"uniqueIndex;not null"`

	// Cliente snapshot — captured at creation, not a live reference
	ClienteID      uuid.UUID `gorm:"type:uuid;index;not null"`
	ClienteNombre  string    `gorm:"not null"`
	ClienteEmpresa *string
	ClienteEmail   string `gorm:"not null"`

	SitioWeb string `gorm:"type:varchar(50)"`

	Fecha        time.Time `gorm:"type:date;not null"`
	FechaValidez time.Time `gorm:"type:date;not null"`

	Estado string `gorm:"type:varchar(20);not null;default:'borrador'"`

	// Scale 6 keeps the computed amounts exactly as the calculator produced
	// them — the IVA step can yield sub-cent digits and the stored snapshot is
	// never pre-rounded; rounding happens only at presentation.
	Subtotal  decimal.Decimal `gorm:"type:decimal(14,6);not null"`
	Descuento decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"` // percent
	Impuestos decimal.Decimal `gorm:"type:decimal(14,6);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(14,6);not null"`

	Notas *string
	// PDFPath is relative to PDF_STORAGE_PATH; set after the first render
	PDFPath   *string `gorm:"column:pdf_path"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []PresupuestoItem `gorm:"foreignKey:PresupuestoID;constraint:OnDelete:CASCADE"`
}

func (p *Presupuesto) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Vencido reports whether the validity date has passed. Expiry is purely
// informational: viewing, sending, duplicating and PDF export all remain
// available after it.
func (p *Presupuesto) Vencido(now time.Time) bool {
	return p.FechaValidez.Before(now.Truncate(24 * time.Hour))
}

// PresupuestoItem is one line of a presupuesto. Orden preserves display order,
// which is not significant for the totals.
type PresupuestoItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PresupuestoID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Orden          int       `gorm:"not null;default:0"`
	Descripcion    string
	Cantidad       int             `gorm:"not null;default:1"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	LineaTotal     decimal.Decimal `gorm:"type:decimal(14,6);not null"`
	CreatedAt      time.Time
}

func (i *PresupuestoItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
