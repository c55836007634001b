package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Mensaje is one entry of a cliente's messaging-channel history.
// Canal:     "email" | "whatsapp" | "instagram" | "telefono"
// Direccion: "entrada" | "salida"
// Estado:    "pendiente" | "enviado" | "error"
//
// Only outbound email is actually delivered by this system (SMTP worker);
// other channels are history rows recorded by hand.
type Mensaje struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID uuid.UUID `gorm:"type:uuid;index;not null"`
	Canal     string    `gorm:"type:varchar(20);not null"`
	Direccion string    `gorm:"type:varchar(10);not null"`
	Asunto    *string
	Cuerpo    string `gorm:"type:text;not null"`
	Estado    string `gorm:"type:varchar(20);not null;default:'enviado'"`
	// Destinatario is the resolved recipient address for outbound email,
	// including any per-send override; retries read it from here
	Destinatario *string
	// AdjuntoPath points at a rendered PDF when the message carries one
	AdjuntoPath *string
	// Retry fields — used by the retry cron to re-attempt failed outbound emails
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m *Mensaje) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
