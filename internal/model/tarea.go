package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tarea is a follow-up task, optionally linked to a cliente or lead.
// Estado: "pendiente" | "completada"
type Tarea struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Titulo      string    `gorm:"not null"`
	Descripcion *string
	FechaLimite *time.Time `gorm:"type:date"`
	ClienteID   *uuid.UUID `gorm:"type:uuid;index"`
	LeadID      *uuid.UUID `gorm:"type:uuid;index"`
	UsuarioID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	Estado      string     `gorm:"type:varchar(20);not null;default:'pendiente'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Tarea) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
