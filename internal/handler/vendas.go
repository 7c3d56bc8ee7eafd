package handler

import (
	"net/http"
	"strconv"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/apierror"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/middleware"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VendasHandler struct{ svc service.VendaService }

func NewVendasHandler(svc service.VendaService) *VendasHandler {
	return &VendasHandler{svc: svc}
}

// Registrar godoc
// @Summary Registra uma venda
// @Tags vendas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarVendaRequest true "Dados da venda"
// @Success 201 {object} dto.VendaResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/vendas [post]
func (h *VendasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RegistrarVenda(c.Request.Context(), usuarioID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cancelar godoc
// @Summary Cancela uma venda concluída e estorna estoque, crédito e caixa
// @Tags vendas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da venda"
// @Param body body dto.CancelarVendaRequest true "Motivo do cancelamento"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Router /v1/vendas/{id} [delete]
func (h *VendasHandler) Cancelar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.CancelarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.CancelarVenda(c.Request.Context(), usuarioID, id, req.Motivo); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VendasHandler) Obter(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary Lista vendas com filtros e paginação
// @Tags vendas
// @Produce json
// @Security BearerAuth
// @Param data query string false "Dia (AAAA-MM-DD)"
// @Param estado query string false "Estado da venda"
// @Param page query int false "Página"
// @Param limit query int false "Itens por página"
// @Success 200 {object} dto.VendaListResponse
// @Router /v1/vendas [get]
func (h *VendasHandler) Listar(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := dto.VendaFilter{
		Data:   c.Query("data"),
		Estado: c.Query("estado"),
		Page:   page,
		Limit:  limit,
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
