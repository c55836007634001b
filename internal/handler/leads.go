package handler

import (
	"net/http"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/apierror"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type LeadsHandler struct{ svc service.LeadService }

func NewLeadsHandler(svc service.LeadService) *LeadsHandler { return &LeadsHandler{svc: svc} }

func (h *LeadsHandler) Crear(c *gin.Context) {
	var req dto.CrearLeadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *LeadsHandler) Listar(c *gin.Context) {
	var filter dto.LeadFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar leads"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LeadsHandler) Obtener(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LeadsHandler) Actualizar(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.ActualizarLeadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LeadsHandler) Eliminar(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Convertir godoc
// @Summary      Convertir lead en cliente
// @Description  Crea un cliente con los datos de contacto del lead y lo marca "ganado". Idempotente.
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del lead"
// @Success      201 {object} dto.ClienteResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/leads/{id}/convertir [post]
func (h *LeadsHandler) Convertir(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Convertir(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}
