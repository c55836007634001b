package repository

import (
	"context"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SitioRepository interface {
	Create(ctx context.Context, s *model.SitioWeb) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SitioWeb, error)
	FindBySlug(ctx context.Context, slug string) (*model.SitioWeb, error)
	List(ctx context.Context) ([]model.SitioWeb, error)
	Update(ctx context.Context, s *model.SitioWeb) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
}

type sitioRepo struct{ db *gorm.DB }

func NewSitioRepository(db *gorm.DB) SitioRepository { return &sitioRepo{db: db} }

func (r *sitioRepo) Create(ctx context.Context, s *model.SitioWeb) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sitioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SitioWeb, error) {
	var s model.SitioWeb
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *sitioRepo) FindBySlug(ctx context.Context, slug string) (*model.SitioWeb, error) {
	var s model.SitioWeb
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&s).Error
	return &s, err
}

func (r *sitioRepo) List(ctx context.Context) ([]model.SitioWeb, error) {
	var sitios []model.SitioWeb
	err := r.db.WithContext(ctx).Order("slug").Find(&sitios).Error
	return sitios, err
}

func (r *sitioRepo) Update(ctx context.Context, s *model.SitioWeb) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sitioRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	return r.db.WithContext(ctx).Model(&model.SitioWeb{}).Where("id = ?", id).Update("activo", activo).Error
}
