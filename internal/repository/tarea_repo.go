package repository

import (
	"context"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TareaRepository interface {
	Create(ctx context.Context, t *model.Tarea) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tarea, error)
	List(ctx context.Context, filter dto.TareaFilter) ([]model.Tarea, int64, error)
	Update(ctx context.Context, t *model.Tarea) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type tareaRepo struct{ db *gorm.DB }

func NewTareaRepository(db *gorm.DB) TareaRepository { return &tareaRepo{db: db} }

func (r *tareaRepo) Create(ctx context.Context, t *model.Tarea) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tareaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Tarea, error) {
	var t model.Tarea
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *tareaRepo) List(ctx context.Context, filter dto.TareaFilter) ([]model.Tarea, int64, error) {
	var tareas []model.Tarea
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Tarea{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Pending tasks first by due date, NULLs last
	err := q.Order("fecha_limite NULLS LAST, created_at DESC").
		Offset(offset).Limit(filter.Limit).Find(&tareas).Error
	return tareas, total, err
}

func (r *tareaRepo) Update(ctx context.Context, t *model.Tarea) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *tareaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Tarea{}, "id = ?", id).Error
}
