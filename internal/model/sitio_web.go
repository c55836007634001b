package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SitioWeb is one of the branded storefront sources clients and leads
// arrive from. The slug is what Cliente.SitioWeb / Presupuesto.SitioWeb store
// and what selects the PDF branding preset.
type SitioWeb struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Slug      string    `gorm:"uniqueIndex;not null"`
	Nombre    string    `gorm:"not null"`
	URL       string
	Color     string `gorm:"type:varchar(7)"` // hex, e.g. #1A73E8
	Activo    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *SitioWeb) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
