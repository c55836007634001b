package dto

type CrearSitioRequest struct {
	Slug   string `json:"slug"   validate:"required,lowercase,alphanum"`
	Nombre string `json:"nombre" validate:"required"`
	URL    string `json:"url"    validate:"omitempty,url"`
	Color  string `json:"color"  validate:"omitempty,hexcolor"`
}

type ActualizarSitioRequest struct {
	Nombre *string `json:"nombre"`
	URL    *string `json:"url"   validate:"omitempty,url"`
	Color  *string `json:"color" validate:"omitempty,hexcolor"`
}

type SitioResponse struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Nombre string `json:"nombre"`
	URL    string `json:"url"`
	Color  string `json:"color"`
	Activo bool   `json:"activo"`
}
