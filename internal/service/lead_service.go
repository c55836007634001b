package service

import (
	"context"
	"errors"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/infra"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeadService interface {
	Crear(ctx context.Context, req dto.CrearLeadRequest) (*dto.LeadResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.LeadResponse, error)
	Listar(ctx context.Context, filter dto.LeadFilter) (*dto.LeadListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarLeadRequest) (*dto.LeadResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	// Convertir creates a Cliente from the lead's contact data and marks the
	// lead "ganado". Idempotent: converting an already-converted lead returns
	// the existing cliente.
	Convertir(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
}

type leadService struct {
	repo        repository.LeadRepository
	clienteRepo repository.ClienteRepository
	notifier    *infra.Notifier
	cb          *infra.CircuitBreaker
}

func NewLeadService(repo repository.LeadRepository, clienteRepo repository.ClienteRepository, notifier *infra.Notifier, cb *infra.CircuitBreaker) LeadService {
	return &leadService{repo: repo, clienteRepo: clienteRepo, notifier: notifier, cb: cb}
}

func (s *leadService) Crear(ctx context.Context, req dto.CrearLeadRequest) (*dto.LeadResponse, error) {
	lead := &model.Lead{
		Nombre:   req.Nombre,
		Empresa:  req.Empresa,
		Email:    req.Email,
		Telefono: req.Telefono,
		SitioWeb: req.SitioWeb,
		Estado:   "nuevo",
		Notas:    req.Notas,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}
	return leadToResponse(lead), nil
}

func (s *leadService) Obtener(ctx context.Context, id uuid.UUID) (*dto.LeadResponse, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("lead no encontrado")
	}
	return leadToResponse(lead), nil
}

func (s *leadService) Listar(ctx context.Context, filter dto.LeadFilter) (*dto.LeadListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	leads, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.LeadResponse, len(leads))
	for i := range leads {
		data[i] = *leadToResponse(&leads[i])
	}
	return &dto.LeadListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *leadService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarLeadRequest) (*dto.LeadResponse, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("lead no encontrado")
	}
	if req.Nombre != nil {
		lead.Nombre = *req.Nombre
	}
	if req.Empresa != nil {
		lead.Empresa = req.Empresa
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.Telefono != nil {
		lead.Telefono = req.Telefono
	}
	if req.SitioWeb != nil {
		lead.SitioWeb = *req.SitioWeb
	}
	if req.Estado != nil {
		lead.Estado = *req.Estado
	}
	if req.Notas != nil {
		lead.Notas = req.Notas
	}
	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, err
	}
	return leadToResponse(lead), nil
}

func (s *leadService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("lead no encontrado")
	}
	return s.repo.Delete(ctx, id)
}

func (s *leadService) Convertir(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("lead no encontrado")
	}

	if lead.ClienteID != nil {
		existing, err := s.clienteRepo.FindByID(ctx, *lead.ClienteID)
		if err == nil {
			return clienteToResponse(existing), nil
		}
		// cliente row gone — fall through and convert again
	}

	cliente := &model.Cliente{
		Nombre:   lead.Nombre,
		Empresa:  lead.Empresa,
		Email:    lead.Email,
		Telefono: lead.Telefono,
		SitioWeb: lead.SitioWeb,
		Notas:    lead.Notas,
		Activo:   true,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		createCliente := s.clienteRepo.Create
		updateLead := s.repo.Update
		if tx != nil {
			createCliente = func(ctx context.Context, c *model.Cliente) error {
				return tx.WithContext(ctx).Create(c).Error
			}
			updateLead = func(ctx context.Context, l *model.Lead) error {
				return tx.WithContext(ctx).Save(l).Error
			}
		}

		if err := createCliente(ctx, cliente); err != nil {
			return err
		}
		lead.Estado = "ganado"
		lead.ClienteID = &cliente.ID
		return updateLead(ctx, lead)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.emitEvent(ctx, "lead.convertido", lead.ID.String(), map[string]any{
		"cliente_id": cliente.ID.String(),
		"sitio_web":  lead.SitioWeb,
	})
	return clienteToResponse(cliente), nil
}

func (s *leadService) emitEvent(ctx context.Context, tipo, recursoID string, payload map[string]any) {
	if s.notifier == nil {
		return
	}
	_ = s.cb.Execute(func() error {
		return s.notifier.Notify(ctx, infra.Event{Tipo: tipo, RecursoID: recursoID, Payload: payload})
	})
}

func leadToResponse(l *model.Lead) *dto.LeadResponse {
	var clienteID *string
	if l.ClienteID != nil {
		id := l.ClienteID.String()
		clienteID = &id
	}
	return &dto.LeadResponse{
		ID:        l.ID.String(),
		Nombre:    l.Nombre,
		Empresa:   l.Empresa,
		Email:     l.Email,
		Telefono:  l.Telefono,
		SitioWeb:  l.SitioWeb,
		Estado:    l.Estado,
		Notas:     l.Notas,
		ClienteID: clienteID,
		CreatedAt: l.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
