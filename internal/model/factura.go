package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Factura is an invoice issued from an accepted presupuesto. The totals are
// copied from the presupuesto snapshot at creation time.
// Estado: "emitida" | "pagada" | "anulada"
type Factura struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero        string     `gorm:"uniqueIndex;not null"`
	PresupuestoID *uuid.UUID `gorm:"type:uuid;index"`

	ClienteID      uuid.UUID `gorm:"type:uuid;index;not null"`
	ClienteNombre  string    `gorm:"not null"`
	ClienteEmpresa *string
	ClienteEmail   string `gorm:"not null"`

	Fecha time.Time `gorm:"type:date;not null"`

	// Same scale as the presupuesto totals: the copied snapshot must match the
	// source exactly, sub-cent digits included.
	Subtotal  decimal.Decimal `gorm:"type:decimal(14,6);not null"`
	Descuento decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"` // percent
	Impuestos decimal.Decimal `gorm:"type:decimal(14,6);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(14,6);not null"`

	Estado    string `gorm:"type:varchar(20);not null;default:'emitida'"`
	Notas     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (f *Factura) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
