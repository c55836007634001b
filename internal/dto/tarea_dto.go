package dto

type TareaFilter struct {
	Estado    string `form:"estado,default=pendiente"` // pendiente | completada | all
	ClienteID string `form:"cliente_id" validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type TareaListResponse struct {
	Data  []TareaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type CrearTareaRequest struct {
	Titulo      string  `json:"titulo"       validate:"required"`
	Descripcion *string `json:"descripcion"`
	FechaLimite *string `json:"fecha_limite" validate:"omitempty,datetime=2006-01-02"`
	ClienteID   *string `json:"cliente_id"   validate:"omitempty,uuid"`
	LeadID      *string `json:"lead_id"      validate:"omitempty,uuid"`
}

type ActualizarTareaRequest struct {
	Titulo      *string `json:"titulo"`
	Descripcion *string `json:"descripcion"`
	FechaLimite *string `json:"fecha_limite" validate:"omitempty,datetime=2006-01-02"`
	Estado      *string `json:"estado"       validate:"omitempty,oneof=pendiente completada"`
}

type TareaResponse struct {
	ID          string  `json:"id"`
	Titulo      string  `json:"titulo"`
	Descripcion *string `json:"descripcion,omitempty"`
	FechaLimite *string `json:"fecha_limite,omitempty"`
	ClienteID   *string `json:"cliente_id,omitempty"`
	LeadID      *string `json:"lead_id,omitempty"`
	UsuarioID   string  `json:"usuario_id"`
	Estado      string  `json:"estado"`
	CreatedAt   string  `json:"created_at"`
}
