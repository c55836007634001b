package dto

type LeadFilter struct {
	Estado   string `form:"estado"` // nuevo | contactado | calificado | ganado | perdido | all
	SitioWeb string `form:"sitio_web"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type LeadListResponse struct {
	Data  []LeadResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type CrearLeadRequest struct {
	Nombre   string  `json:"nombre"    validate:"required"`
	Empresa  *string `json:"empresa"`
	Email    string  `json:"email"     validate:"required,email"`
	Telefono *string `json:"telefono"`
	SitioWeb string  `json:"sitio_web"`
	Notas    *string `json:"notas"`
}

type ActualizarLeadRequest struct {
	Nombre   *string `json:"nombre"`
	Empresa  *string `json:"empresa"`
	Email    *string `json:"email"  validate:"omitempty,email"`
	Telefono *string `json:"telefono"`
	SitioWeb *string `json:"sitio_web"`
	Estado   *string `json:"estado" validate:"omitempty,oneof=nuevo contactado calificado ganado perdido"`
	Notas    *string `json:"notas"`
}

type LeadResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	Empresa   *string `json:"empresa,omitempty"`
	Email     string  `json:"email"`
	Telefono  *string `json:"telefono,omitempty"`
	SitioWeb  string  `json:"sitio_web"`
	Estado    string  `json:"estado"`
	Notas     *string `json:"notas,omitempty"`
	ClienteID *string `json:"cliente_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}
