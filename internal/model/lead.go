package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead is a prospective customer captured from one of the storefront sites.
// Estado: "nuevo" | "contactado" | "calificado" | "ganado" | "perdido"
// Converting a lead creates a Cliente and marks the lead "ganado".
type Lead struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Empresa   *string
	Email     string `gorm:"index;not null"`
	Telefono  *string
	SitioWeb  string `gorm:"type:varchar(50);index"`
	Estado    string `gorm:"type:varchar(20);not null;default:'nuevo'"`
	Notas     *string
	// ClienteID is set when the lead is converted
	ClienteID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l *Lead) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
