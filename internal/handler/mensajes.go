package handler

import (
	"net/http"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/apierror"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MensajesHandler exposes the per-cliente messaging history, nested under
// /v1/clientes/:id/mensajes.
type MensajesHandler struct{ svc service.MensajeService }

func NewMensajesHandler(svc service.MensajeService) *MensajesHandler {
	return &MensajesHandler{svc: svc}
}

// Registrar godoc
// @Summary      Registrar mensaje en el historial
// @Description  Anota manualmente una conversación (WhatsApp, Instagram, teléfono o email entrante). Los emails salientes los crea el envío de presupuestos.
// @Tags         mensajes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del cliente"
// @Param        body body dto.RegistrarMensajeRequest true "Mensaje"
// @Success      201  {object} dto.MensajeResponse
// @Router       /v1/clientes/{id}/mensajes [post]
func (h *MensajesHandler) Registrar(c *gin.Context) {
	clienteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.RegistrarMensajeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), clienteID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MensajesHandler) ListarPorCliente(c *gin.Context) {
	clienteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var filter dto.MensajeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListarPorCliente(c.Request.Context(), clienteID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar mensajes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
