package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/apierror"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type PresupuestosHandler struct{ svc service.PresupuestoService }

func NewPresupuestosHandler(svc service.PresupuestoService) *PresupuestosHandler {
	return &PresupuestosHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear presupuesto
// @Description  Crea un presupuesto con snapshot del cliente, calcula los totales (IVA 21%) y asigna el número secuencial.
// @Tags         presupuestos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearPresupuestoRequest true "Detalle del presupuesto"
// @Success      201  {object} dto.PresupuestoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/presupuestos [post]
func (h *PresupuestosHandler) Crear(c *gin.Context) {
	var req dto.CrearPresupuestoRequest
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

// Listar godoc
// @Summary      Listar presupuestos
// @Tags         presupuestos
// @Produce      json
// @Security     BearerAuth
// @Param        estado     query string false "borrador | enviado | aceptado | rechazado | facturado | all"
// @Param        cliente_id query string false "UUID del cliente"
// @Param        page       query int    false "Página (default 1)"
// @Param        limit      query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.PresupuestoListResponse
// @Router       /v1/presupuestos [get]
func (h *PresupuestosHandler) Listar(c *gin.Context) {
	var filter dto.PresupuestoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar presupuestos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PresupuestosHandler) Obtener(c *gin.Context) {
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

// Actualizar godoc
// @Summary      Actualizar presupuesto
// @Description  Reemplaza ítems y descuento y recalcula el bloque de totales completo.
// @Tags         presupuestos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del presupuesto"
// @Param        body body dto.ActualizarPresupuestoRequest true "Nuevos ítems y descuento"
// @Success      200  {object} dto.PresupuestoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/presupuestos/{id} [put]
func (h *PresupuestosHandler) Actualizar(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.ActualizarPresupuestoRequest
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

func (h *PresupuestosHandler) CambiarEstado(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.CambiarEstadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), id, req.Estado)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PresupuestosHandler) Eliminar(c *gin.Context) {
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

// Duplicar godoc
// @Summary      Duplicar presupuesto
// @Description  Copia ítems, descuento y notas a un borrador nuevo con número propio y fecha de hoy.
// @Tags         presupuestos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del presupuesto original"
// @Success      201 {object} dto.PresupuestoResponse
// @Router       /v1/presupuestos/{id}/duplicar [post]
func (h *PresupuestosHandler) Duplicar(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Duplicar(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DescargarPDF godoc
// @Summary      Descargar PDF del presupuesto
// @Description  Renderiza el documento con el branding del sitio web de origen y lo devuelve como adjunto Presupuesto_{numero}.pdf.
// @Tags         presupuestos
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "UUID del presupuesto"
// @Success      200 {file} binary
// @Failure      409 {object} apierror.APIError "Render ya en curso"
// @Failure      500 {object} apierror.APIError "Render fallido"
// @Router       /v1/presupuestos/{id}/pdf [get]
func (h *PresupuestosHandler) DescargarPDF(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	path, err := h.svc.GenerarPDF(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if err.Error() == "presupuesto no encontrado" {
			status = http.StatusNotFound
		} else if err.Error() == "ya hay una generación de PDF en curso para este presupuesto" {
			status = http.StatusConflict
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("PDF no disponible"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	c.File(path)
}

// Enviar godoc
// @Summary      Enviar presupuesto por email
// @Description  Registra el mensaje saliente y encola el render + envío asíncrono; el presupuesto pasa a "enviado".
// @Tags         presupuestos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del presupuesto"
// @Param        body body dto.EnviarPresupuestoRequest false "Destinatario y cuerpo opcionales"
// @Success      202  {object} dto.PresupuestoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/presupuestos/{id}/enviar [post]
func (h *PresupuestosHandler) Enviar(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.EnviarPresupuestoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Enviar(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// Facturar godoc
// @Summary      Emitir factura desde un presupuesto aceptado
// @Tags         presupuestos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del presupuesto"
// @Success      201 {object} dto.FacturaResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/presupuestos/{id}/facturar [post]
func (h *PresupuestosHandler) Facturar(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Facturar(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}
