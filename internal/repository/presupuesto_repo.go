package repository

import (
	"context"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PresupuestoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Presupuesto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Presupuesto, error)
	List(ctx context.Context, filter dto.PresupuestoFilter) ([]model.Presupuesto, int64, error)
	// ReplaceItems deletes the current rows and inserts the new ones; callers
	// pass the same tx used to save the totals so the overwrite is atomic.
	ReplaceItems(ctx context.Context, tx *gorm.DB, presupuestoID uuid.UUID, items []model.PresupuestoItem) error
	Save(ctx context.Context, tx *gorm.DB, p *model.Presupuesto) error
	UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error
	UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error
	Delete(ctx context.Context, id uuid.UUID) error
	NextNumero(ctx context.Context, tx *gorm.DB) (int, error)
	DB() *gorm.DB // exposes the DB for transaction creation in the service layer
}

type presupuestoRepo struct{ db *gorm.DB }

func NewPresupuestoRepository(db *gorm.DB) PresupuestoRepository { return &presupuestoRepo{db: db} }

func (r *presupuestoRepo) DB() *gorm.DB { return r.db }

func (r *presupuestoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Presupuesto) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *presupuestoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Presupuesto, error) {
	var p model.Presupuesto
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("orden") }).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *presupuestoRepo) List(ctx context.Context, filter dto.PresupuestoFilter) ([]model.Presupuesto, int64, error) {
	var presupuestos []model.Presupuesto
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Presupuesto{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("orden") }).
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&presupuestos).Error
	return presupuestos, total, err
}

func (r *presupuestoRepo) ReplaceItems(ctx context.Context, tx *gorm.DB, presupuestoID uuid.UUID, items []model.PresupuestoItem) error {
	if err := tx.WithContext(ctx).
		Where("presupuesto_id = ?", presupuestoID).
		Delete(&model.PresupuestoItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *presupuestoRepo) Save(ctx context.Context, tx *gorm.DB, p *model.Presupuesto) error {
	// Items are managed via ReplaceItems; skip the association to avoid
	// GORM upserting stale rows.
	return tx.WithContext(ctx).Omit("Items").Save(p).Error
}

func (r *presupuestoRepo) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error {
	return r.db.WithContext(ctx).Model(&model.Presupuesto{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *presupuestoRepo) UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.Presupuesto{}).Where("id = ?", id).Update("pdf_path", path).Error
}

func (r *presupuestoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Items").Delete(&model.Presupuesto{ID: id}).Error
}

func (r *presupuestoRepo) NextNumero(ctx context.Context, tx *gorm.DB) (int, error) {
	// PostgreSQL sequence — created by the schema patches in infra
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('presupuestos_numero_seq')").Scan(&num).Error
	return num, err
}
