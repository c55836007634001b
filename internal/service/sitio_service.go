package service

import (
	"context"
	"errors"
	"strings"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/repository"

	"github.com/google/uuid"
)

type SitioService interface {
	Crear(ctx context.Context, req dto.CrearSitioRequest) (*dto.SitioResponse, error)
	Listar(ctx context.Context) ([]dto.SitioResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSitioRequest) (*dto.SitioResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type sitioService struct {
	repo repository.SitioRepository
}

func NewSitioService(repo repository.SitioRepository) SitioService {
	return &sitioService{repo: repo}
}

func (s *sitioService) Crear(ctx context.Context, req dto.CrearSitioRequest) (*dto.SitioResponse, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if _, err := s.repo.FindBySlug(ctx, slug); err == nil {
		return nil, errors.New("ya existe un sitio con ese slug")
	}
	sitio := &model.SitioWeb{
		Slug:   slug,
		Nombre: req.Nombre,
		URL:    req.URL,
		Color:  req.Color,
		Activo: true,
	}
	if err := s.repo.Create(ctx, sitio); err != nil {
		return nil, err
	}
	return sitioToResponse(sitio), nil
}

func (s *sitioService) Listar(ctx context.Context) ([]dto.SitioResponse, error) {
	sitios, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SitioResponse, len(sitios))
	for i := range sitios {
		resp[i] = *sitioToResponse(&sitios[i])
	}
	return resp, nil
}

func (s *sitioService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSitioRequest) (*dto.SitioResponse, error) {
	sitio, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("sitio no encontrado")
	}
	if req.Nombre != nil {
		sitio.Nombre = *req.Nombre
	}
	if req.URL != nil {
		sitio.URL = *req.URL
	}
	if req.Color != nil {
		sitio.Color = *req.Color
	}
	if err := s.repo.Update(ctx, sitio); err != nil {
		return nil, err
	}
	return sitioToResponse(sitio), nil
}

func (s *sitioService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActivo(ctx, id, false)
}

func sitioToResponse(s *model.SitioWeb) *dto.SitioResponse {
	return &dto.SitioResponse{
		ID:     s.ID.String(),
		Slug:   s.Slug,
		Nombre: s.Nombre,
		URL:    s.URL,
		Color:  s.Color,
		Activo: s.Activo,
	}
}
