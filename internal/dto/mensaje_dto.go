package dto

type MensajeFilter struct {
	Canal string `form:"canal"` // email | whatsapp | instagram | telefono | all
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type MensajeListResponse struct {
	Data  []MensajeResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// RegistrarMensajeRequest records a history entry by hand (e.g. a WhatsApp
// conversation held outside the system). Outbound emails are created by the
// enviar-presupuesto pipeline, not through this DTO.
type RegistrarMensajeRequest struct {
	Canal     string  `json:"canal"     validate:"required,oneof=email whatsapp instagram telefono"`
	Direccion string  `json:"direccion" validate:"required,oneof=entrada salida"`
	Asunto    *string `json:"asunto"`
	Cuerpo    string  `json:"cuerpo"    validate:"required"`
}

type MensajeResponse struct {
	ID        string  `json:"id"`
	ClienteID string  `json:"cliente_id"`
	Canal     string  `json:"canal"`
	Direccion string  `json:"direccion"`
	Asunto    *string `json:"asunto,omitempty"`
	Cuerpo    string  `json:"cuerpo"`
	Estado    string  `json:"estado"`
	CreatedAt string  `json:"created_at"`
}
