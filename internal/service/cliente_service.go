package service

import (
	"context"
	"errors"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/repository"

	"github.com/google/uuid"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	cliente := &model.Cliente{
		Nombre:    req.Nombre,
		Empresa:   req.Empresa,
		Email:     req.Email,
		Telefono:  req.Telefono,
		Direccion: req.Direccion,
		SitioWeb:  req.SitioWeb,
		Notas:     req.Notas,
		Activo:    true,
	}
	if err := s.repo.Create(ctx, cliente); err != nil {
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	clientes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClienteResponse, len(clientes))
	for i := range clientes {
		data[i] = *clienteToResponse(&clientes[i])
	}
	return &dto.ClienteListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	if req.Nombre != nil {
		cliente.Nombre = *req.Nombre
	}
	if req.Empresa != nil {
		cliente.Empresa = req.Empresa
	}
	if req.Email != nil {
		cliente.Email = *req.Email
	}
	if req.Telefono != nil {
		cliente.Telefono = req.Telefono
	}
	if req.Direccion != nil {
		cliente.Direccion = req.Direccion
	}
	if req.SitioWeb != nil {
		cliente.SitioWeb = *req.SitioWeb
	}
	if req.Notas != nil {
		cliente.Notas = req.Notas
	}
	if err := s.repo.Update(ctx, cliente); err != nil {
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

// Desactivar hides the cliente from listings; historical presupuestos and
// facturas keep their snapshot data untouched.
func (s *clienteService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActivo(ctx, id, false)
}

func (s *clienteService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActivo(ctx, id, true)
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:        c.ID.String(),
		Nombre:    c.Nombre,
		Empresa:   c.Empresa,
		Email:     c.Email,
		Telefono:  c.Telefono,
		Direccion: c.Direccion,
		SitioWeb:  c.SitioWeb,
		Notas:     c.Notas,
		Activo:    c.Activo,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
