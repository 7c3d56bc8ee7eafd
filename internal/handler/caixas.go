package handler

import (
	"net/http"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/apierror"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/middleware"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CaixasHandler struct {
	svc service.CaixaService
	loc *time.Location
}

func NewCaixasHandler(svc service.CaixaService, loc *time.Location) *CaixasHandler {
	return &CaixasHandler{svc: svc, loc: loc}
}

// diaOuHoje parses the optional ?dia=YYYY-MM-DD query in the store timezone.
func (h *CaixasHandler) diaOuHoje(c *gin.Context) (time.Time, bool) {
	raw := c.Query("dia")
	if raw == "" {
		return time.Now().In(h.loc), true
	}
	dia, err := time.ParseInLocation("2006-01-02", raw, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("dia inválido, use o formato AAAA-MM-DD"))
		return time.Time{}, false
	}
	return dia, true
}

// Criar godoc
// @Summary Cria um novo caixa
// @Tags caixas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CriarCaixaRequest true "Dados do caixa"
// @Success 201 {object} dto.CaixaResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/caixas [post]
func (h *CaixasHandler) Criar(c *gin.Context) {
	var req dto.CriarCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista os caixas
// @Tags caixas
// @Produce json
// @Security BearerAuth
// @Param incluir_inativos query bool false "Inclui caixas desativados"
// @Success 200 {array} dto.CaixaResponse
// @Router /v1/caixas [get]
func (h *CaixasHandler) Listar(c *gin.Context) {
	incluirInativos := c.Query("incluir_inativos") == "true"
	resp, err := h.svc.Listar(c.Request.Context(), incluirInativos)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CaixasHandler) Desativar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.Desativar(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Saldo godoc
// @Summary Calcula o saldo de sistema de um caixa para um dia
// @Tags caixas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do caixa"
// @Param dia query string false "Dia de referência (AAAA-MM-DD, padrão hoje)"
// @Success 200 {object} dto.SaldoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/caixas/{id}/saldo [get]
func (h *CaixasHandler) Saldo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	dia, ok := h.diaOuHoje(c)
	if !ok {
		return
	}
	resp, err := h.svc.CalcularSaldo(c.Request.Context(), id, dia)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CaixasHandler) Movimentacoes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	dia, ok := h.diaOuHoje(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListarMovimentacoes(c.Request.Context(), id, dia)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MovimentacaoManual godoc
// @Summary Registra uma entrada ou saída manual no caixa
// @Tags caixas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimentacaoManualRequest true "Movimentação manual"
// @Success 201 {object} dto.MovimentacaoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/caixas/movimentacoes [post]
func (h *CaixasHandler) MovimentacaoManual(c *gin.Context) {
	var req dto.MovimentacaoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RegistrarMovimentacaoManual(c.Request.Context(), usuarioID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Transferir godoc
// @Summary Transfere valor entre dois caixas
// @Tags caixas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.TransferenciaRequest true "Transferência"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Router /v1/caixas/transferencias [post]
func (h *CaixasHandler) Transferir(c *gin.Context) {
	var req dto.TransferenciaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.Transferir(c.Request.Context(), usuarioID, req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Ajuste godoc
// @Summary Ajusta o saldo de um caixa via movimento compensatório
// @Tags caixas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AjusteAdministrativoRequest true "Ajuste administrativo"
// @Success 201 {object} dto.MovimentacaoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/caixas/ajustes [post]
func (h *CaixasHandler) Ajuste(c *gin.Context) {
	var req dto.AjusteAdministrativoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.AjusteAdministrativo(c.Request.Context(), usuarioID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}
