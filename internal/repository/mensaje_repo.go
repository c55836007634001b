package repository

import (
	"context"
	"time"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MensajeRepository interface {
	Create(ctx context.Context, m *model.Mensaje) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Mensaje, error)
	ListByCliente(ctx context.Context, clienteID uuid.UUID, filter dto.MensajeFilter) ([]model.Mensaje, int64, error)
	Update(ctx context.Context, m *model.Mensaje) error
	// ListPendingRetries returns failed outbound emails whose next_retry_at
	// has passed, oldest first — consumed by the retry cron.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Mensaje, error)
}

type mensajeRepo struct{ db *gorm.DB }

func NewMensajeRepository(db *gorm.DB) MensajeRepository { return &mensajeRepo{db: db} }

func (r *mensajeRepo) Create(ctx context.Context, m *model.Mensaje) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *mensajeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Mensaje, error) {
	var m model.Mensaje
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	return &m, err
}

func (r *mensajeRepo) ListByCliente(ctx context.Context, clienteID uuid.UUID, filter dto.MensajeFilter) ([]model.Mensaje, int64, error) {
	var mensajes []model.Mensaje
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Mensaje{}).Where("cliente_id = ?", clienteID)
	if filter.Canal != "" && filter.Canal != "all" {
		q = q.Where("canal = ?", filter.Canal)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&mensajes).Error
	return mensajes, total, err
}

func (r *mensajeRepo) Update(ctx context.Context, m *model.Mensaje) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *mensajeRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Mensaje, error) {
	var mensajes []model.Mensaje
	err := r.db.WithContext(ctx).
		Where("estado = ? AND canal = ? AND direccion = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?",
			"error", "email", "salida", now).
		Order("next_retry_at").
		Limit(limit).
		Find(&mensajes).Error
	return mensajes, err
}
