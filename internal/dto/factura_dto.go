package dto

import "github.com/shopspring/decimal"

type FacturaFilter struct {
	Estado    string `form:"estado"` // emitida | pagada | anulada | all
	ClienteID string `form:"cliente_id" validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type FacturaListResponse struct {
	Data  []FacturaResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type ActualizarFacturaRequest struct {
	Estado *string `json:"estado" validate:"omitempty,oneof=emitida pagada anulada"`
	Notas  *string `json:"notas"`
}

type FacturaResponse struct {
	ID             string          `json:"id"`
	Numero         string          `json:"numero"`
	PresupuestoID  *string         `json:"presupuesto_id,omitempty"`
	ClienteID      string          `json:"cliente_id"`
	ClienteNombre  string          `json:"cliente_nombre"`
	ClienteEmpresa *string         `json:"cliente_empresa,omitempty"`
	ClienteEmail   string          `json:"cliente_email"`
	Fecha          string          `json:"fecha"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Descuento      decimal.Decimal `json:"descuento"` // percent
	Impuestos      decimal.Decimal `json:"impuestos"`
	Total          decimal.Decimal `json:"total"`
	Estado         string          `json:"estado"`
	Notas          *string         `json:"notas,omitempty"`
	CreatedAt      string          `json:"created_at"`
}
