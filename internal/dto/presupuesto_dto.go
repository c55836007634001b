package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// PresupuestoFilter is bound from the query string of GET /v1/presupuestos.
type PresupuestoFilter struct {
	Estado    string `form:"estado"` // borrador | enviado | aceptado | rechazado | facturado | all
	ClienteID string `form:"cliente_id" validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type PresupuestoListResponse struct {
	Data  []PresupuestoResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemPresupuestoRequest allows cantidad ≥ 1 only; blank descriptions are
// accepted — they stay on the row list but are excluded from the totals.
type ItemPresupuestoRequest struct {
	Descripcion    string          `json:"descripcion"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
}

type CrearPresupuestoRequest struct {
	ClienteID    string                   `json:"cliente_id"    validate:"required,uuid"`
	SitioWeb     string                   `json:"sitio_web"`
	Items        []ItemPresupuestoRequest `json:"items"         validate:"required,min=1,dive"`
	Descuento    decimal.Decimal          `json:"descuento"     validate:"min=0,max=100"` // percent
	Fecha        string                   `json:"fecha"         validate:"omitempty,datetime=2006-01-02"`
	FechaValidez string                   `json:"fecha_validez" validate:"omitempty,datetime=2006-01-02"`
	Notas        *string                  `json:"notas"`
}

// ActualizarPresupuestoRequest replaces the items and discount wholesale;
// the totals block is recomputed and overwritten on every update.
type ActualizarPresupuestoRequest struct {
	SitioWeb     *string                  `json:"sitio_web"`
	Items        []ItemPresupuestoRequest `json:"items"         validate:"required,min=1,dive"`
	Descuento    decimal.Decimal          `json:"descuento"     validate:"min=0,max=100"`
	FechaValidez *string                  `json:"fecha_validez" validate:"omitempty,datetime=2006-01-02"`
	Notas        *string                  `json:"notas"`
}

type CambiarEstadoRequest struct {
	Estado string `json:"estado" validate:"required,oneof=borrador enviado aceptado rechazado facturado"`
}

// EnviarPresupuestoRequest triggers the async render + email pipeline.
type EnviarPresupuestoRequest struct {
	Email  *string `json:"email"  validate:"omitempty,email"` // default: cliente snapshot email
	Asunto *string `json:"asunto"`
	Cuerpo *string `json:"cuerpo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemPresupuestoResponse struct {
	Descripcion    string          `json:"descripcion"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	LineaTotal     decimal.Decimal `json:"linea_total"`
}

type PresupuestoResponse struct {
	ID             string                    `json:"id"`
	Numero         string                    `json:"numero"`
	ClienteID      string                    `json:"cliente_id"`
	ClienteNombre  string                    `json:"cliente_nombre"`
	ClienteEmpresa *string                   `json:"cliente_empresa,omitempty"`
	ClienteEmail   string                    `json:"cliente_email"`
	SitioWeb       string                    `json:"sitio_web"`
	Fecha          string                    `json:"fecha"`
	FechaValidez   string                    `json:"fecha_validez"`
	Vencido        bool                      `json:"vencido"`
	Estado         string                    `json:"estado"`
	Items          []ItemPresupuestoResponse `json:"items"`
	Subtotal       decimal.Decimal           `json:"subtotal"`
	Descuento      decimal.Decimal           `json:"descuento"` // percent
	Impuestos      decimal.Decimal           `json:"impuestos"`
	Total          decimal.Decimal           `json:"total"`
	Notas          *string                   `json:"notas,omitempty"`
	CreatedAt      string                    `json:"created_at"`
}
