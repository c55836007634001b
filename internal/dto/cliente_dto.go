package dto

// ─── Filter / List ──────────────────────────────────────────────────────────

// ClienteFilter is bound from the query string of GET /v1/clientes.
type ClienteFilter struct {
	Busqueda string `form:"q"` // matches nombre, empresa or email
	SitioWeb string `form:"sitio_web"`
	Activo   string `form:"activo,default=true"` // true | false | all
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre    string  `json:"nombre"    validate:"required"`
	Empresa   *string `json:"empresa"`
	Email     string  `json:"email"     validate:"required,email"`
	Telefono  *string `json:"telefono"`
	Direccion *string `json:"direccion"`
	SitioWeb  string  `json:"sitio_web"`
	Notas     *string `json:"notas"`
}

type ActualizarClienteRequest struct {
	Nombre    *string `json:"nombre"`
	Empresa   *string `json:"empresa"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Telefono  *string `json:"telefono"`
	Direccion *string `json:"direccion"`
	SitioWeb  *string `json:"sitio_web"`
	Notas     *string `json:"notas"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	Empresa   *string `json:"empresa,omitempty"`
	Email     string  `json:"email"`
	Telefono  *string `json:"telefono,omitempty"`
	Direccion *string `json:"direccion,omitempty"`
	SitioWeb  string  `json:"sitio_web"`
	Notas     *string `json:"notas,omitempty"`
	Activo    bool    `json:"activo"`
	CreatedAt string  `json:"created_at"`
}
