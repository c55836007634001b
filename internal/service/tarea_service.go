package service

import (
	"context"
	"errors"
	"time"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/repository"

	"github.com/google/uuid"
)

type TareaService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearTareaRequest) (*dto.TareaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.TareaResponse, error)
	Listar(ctx context.Context, filter dto.TareaFilter) (*dto.TareaListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarTareaRequest) (*dto.TareaResponse, error)
	Completar(ctx context.Context, id uuid.UUID) (*dto.TareaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type tareaService struct {
	repo repository.TareaRepository
}

func NewTareaService(repo repository.TareaRepository) TareaService {
	return &tareaService{repo: repo}
}

func (s *tareaService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearTareaRequest) (*dto.TareaResponse, error) {
	t := &model.Tarea{
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		UsuarioID:   usuarioID,
		Estado:      "pendiente",
	}
	if req.FechaLimite != nil {
		if f, err := time.Parse("2006-01-02", *req.FechaLimite); err == nil {
			t.FechaLimite = &f
		}
	}
	if req.ClienteID != nil {
		if id, err := uuid.Parse(*req.ClienteID); err == nil {
			t.ClienteID = &id
		}
	}
	if req.LeadID != nil {
		if id, err := uuid.Parse(*req.LeadID); err == nil {
			t.LeadID = &id
		}
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return tareaToResponse(t), nil
}

func (s *tareaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.TareaResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("tarea no encontrada")
	}
	return tareaToResponse(t), nil
}

func (s *tareaService) Listar(ctx context.Context, filter dto.TareaFilter) (*dto.TareaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	tareas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.TareaResponse, len(tareas))
	for i := range tareas {
		data[i] = *tareaToResponse(&tareas[i])
	}
	return &dto.TareaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *tareaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarTareaRequest) (*dto.TareaResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("tarea no encontrada")
	}
	if req.Titulo != nil {
		t.Titulo = *req.Titulo
	}
	if req.Descripcion != nil {
		t.Descripcion = req.Descripcion
	}
	if req.FechaLimite != nil {
		if f, err := time.Parse("2006-01-02", *req.FechaLimite); err == nil {
			t.FechaLimite = &f
		}
	}
	if req.Estado != nil {
		t.Estado = *req.Estado
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return tareaToResponse(t), nil
}

func (s *tareaService) Completar(ctx context.Context, id uuid.UUID) (*dto.TareaResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("tarea no encontrada")
	}
	t.Estado = "completada"
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return tareaToResponse(t), nil
}

func (s *tareaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("tarea no encontrada")
	}
	return s.repo.Delete(ctx, id)
}

func tareaToResponse(t *model.Tarea) *dto.TareaResponse {
	var fechaLimite, clienteID, leadID *string
	if t.FechaLimite != nil {
		f := t.FechaLimite.Format("2006-01-02")
		fechaLimite = &f
	}
	if t.ClienteID != nil {
		id := t.ClienteID.String()
		clienteID = &id
	}
	if t.LeadID != nil {
		id := t.LeadID.String()
		leadID = &id
	}
	return &dto.TareaResponse{
		ID:          t.ID.String(),
		Titulo:      t.Titulo,
		Descripcion: t.Descripcion,
		FechaLimite: fechaLimite,
		ClienteID:   clienteID,
		LeadID:      leadID,
		UsuarioID:   t.UsuarioID.String(),
		Estado:      t.Estado,
		CreatedAt:   t.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
