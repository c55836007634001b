package service

import (
	"context"
	"errors"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/repository"

	"github.com/google/uuid"
)

// FacturaService manages invoices after emission. Creation happens through
// PresupuestoService.Facturar — there is no free-standing invoice creation.
type FacturaService interface {
	Obtener(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error)
	Listar(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarFacturaRequest) (*dto.FacturaResponse, error)
}

type facturaService struct {
	repo repository.FacturaRepository
}

func NewFacturaService(repo repository.FacturaRepository) FacturaService {
	return &facturaService{repo: repo}
}

func (s *facturaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("factura no encontrada")
	}
	return facturaToResponse(f), nil
}

func (s *facturaService) Listar(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	facturas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.FacturaResponse, len(facturas))
	for i := range facturas {
		data[i] = *facturaToResponse(&facturas[i])
	}
	return &dto.FacturaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *facturaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarFacturaRequest) (*dto.FacturaResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("factura no encontrada")
	}
	if req.Estado != nil {
		f.Estado = *req.Estado
	}
	if req.Notas != nil {
		f.Notas = req.Notas
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return facturaToResponse(f), nil
}

func facturaToResponse(f *model.Factura) *dto.FacturaResponse {
	var presupuestoID *string
	if f.PresupuestoID != nil {
		id := f.PresupuestoID.String()
		presupuestoID = &id
	}
	return &dto.FacturaResponse{
		ID:             f.ID.String(),
		Numero:         f.Numero,
		PresupuestoID:  presupuestoID,
		ClienteID:      f.ClienteID.String(),
		ClienteNombre:  f.ClienteNombre,
		ClienteEmpresa: f.ClienteEmpresa,
		ClienteEmail:   f.ClienteEmail,
		Fecha:          f.Fecha.Format("2006-01-02"),
		Subtotal:       f.Subtotal,
		Descuento:      f.Descuento,
		Impuestos:      f.Impuestos,
		Total:          f.Total,
		Estado:         f.Estado,
		Notas:          f.Notas,
		CreatedAt:      f.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
