package service

import (
	"context"
	"errors"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/repository"

	"github.com/google/uuid"
)

// MensajeService is the messaging-channel history of a cliente. Manual
// entries (WhatsApp, Instagram, phone, inbound email) are recorded here;
// outbound emails are created by the enviar-presupuesto pipeline.
type MensajeService interface {
	Registrar(ctx context.Context, clienteID uuid.UUID, req dto.RegistrarMensajeRequest) (*dto.MensajeResponse, error)
	ListarPorCliente(ctx context.Context, clienteID uuid.UUID, filter dto.MensajeFilter) (*dto.MensajeListResponse, error)
}

type mensajeService struct {
	repo        repository.MensajeRepository
	clienteRepo repository.ClienteRepository
}

func NewMensajeService(repo repository.MensajeRepository, clienteRepo repository.ClienteRepository) MensajeService {
	return &mensajeService{repo: repo, clienteRepo: clienteRepo}
}

func (s *mensajeService) Registrar(ctx context.Context, clienteID uuid.UUID, req dto.RegistrarMensajeRequest) (*dto.MensajeResponse, error) {
	if _, err := s.clienteRepo.FindByID(ctx, clienteID); err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	m := &model.Mensaje{
		ClienteID: clienteID,
		Canal:     req.Canal,
		Direccion: req.Direccion,
		Asunto:    req.Asunto,
		Cuerpo:    req.Cuerpo,
		// Manual entries record conversations that already happened
		Estado: "enviado",
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return mensajeToResponse(m), nil
}

func (s *mensajeService) ListarPorCliente(ctx context.Context, clienteID uuid.UUID, filter dto.MensajeFilter) (*dto.MensajeListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	mensajes, total, err := s.repo.ListByCliente(ctx, clienteID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MensajeResponse, len(mensajes))
	for i := range mensajes {
		data[i] = *mensajeToResponse(&mensajes[i])
	}
	return &dto.MensajeListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func mensajeToResponse(m *model.Mensaje) *dto.MensajeResponse {
	return &dto.MensajeResponse{
		ID:        m.ID.String(),
		ClienteID: m.ClienteID.String(),
		Canal:     m.Canal,
		Direccion: m.Direccion,
		Asunto:    m.Asunto,
		Cuerpo:    m.Cuerpo,
		Estado:    m.Estado,
		CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
