package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cliente is a customer/contact record.
// SitioWeb records which branded storefront the client came from; presupuestos
// snapshot the cliente identity at creation time instead of referencing it.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"index;not null"`
	Empresa   *string
	Email     string `gorm:"index;not null"`
	Telefono  *string
	Direccion *string
	SitioWeb  string `gorm:"type:varchar(50);index"`
	Notas     *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cliente) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
