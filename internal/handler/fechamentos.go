package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/apierror"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/middleware"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FechamentosHandler struct {
	svc service.FechamentoService
	loc *time.Location
}

func NewFechamentosHandler(svc service.FechamentoService, loc *time.Location) *FechamentosHandler {
	return &FechamentosHandler{svc: svc, loc: loc}
}

// Fechar godoc
// @Summary Fecha o dia corrente de um caixa
// @Tags fechamentos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FecharCaixaRequest true "Contagem do fechamento"
// @Success 201 {object} dto.FechamentoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/fechamentos [post]
func (h *FechamentosHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.FecharCaixa(c.Request.Context(), usuarioID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// FecharRetroativo godoc
// @Summary Registra um fechamento retroativo para um dia passado
// @Tags fechamentos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FechamentoRetroativoRequest true "Fechamento retroativo"
// @Success 201 {object} dto.FechamentoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/fechamentos/retroativos [post]
func (h *FechamentosHandler) FecharRetroativo(c *gin.Context) {
	var req dto.FechamentoRetroativoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.FecharRetroativo(c.Request.Context(), usuarioID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *FechamentosHandler) Obter(c *gin.Context) {
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

// ListarPorDia godoc
// @Summary Lista os fechamentos de um dia
// @Tags fechamentos
// @Produce json
// @Security BearerAuth
// @Param dia query string false "Dia (AAAA-MM-DD, padrão hoje)"
// @Success 200 {array} dto.FechamentoResponse
// @Router /v1/fechamentos [get]
func (h *FechamentosHandler) ListarPorDia(c *gin.Context) {
	dia := time.Now().In(h.loc)
	if raw := c.Query("dia"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("dia inválido, use o formato AAAA-MM-DD"))
			return
		}
		dia = parsed
	}
	resp, err := h.svc.ListarPorDia(c.Request.Context(), dia)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FechamentosHandler) ListarPendentes(c *gin.Context) {
	resp, err := h.svc.ListarPendentes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Aprovar godoc
// @Summary Aprova um fechamento pendente
// @Tags fechamentos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do fechamento"
// @Success 200 {object} dto.FechamentoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/fechamentos/{id}/aprovar [post]
func (h *FechamentosHandler) Aprovar(c *gin.Context) {
	h.transicionar(c, h.svc.Aprovar)
}

// Rejeitar godoc
// @Summary Rejeita um fechamento pendente
// @Tags fechamentos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do fechamento"
// @Success 200 {object} dto.FechamentoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/fechamentos/{id}/rejeitar [post]
func (h *FechamentosHandler) Rejeitar(c *gin.Context) {
	h.transicionar(c, h.svc.Rejeitar)
}

func (h *FechamentosHandler) transicionar(
	c *gin.Context,
	fn func(ctx context.Context, adminID, fechamentoID uuid.UUID) (*dto.FechamentoResponse, error),
) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	claims := middleware.GetClaims(c)
	adminID, _ := uuid.Parse(claims.UserID)

	resp, err := fn(c.Request.Context(), adminID, id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AbrirAvaliacao godoc
// @Summary Abre o caixa Avaliação conferindo a contagem da manhã
// @Tags fechamentos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AberturaAvaliacaoRequest true "Contagem de abertura"
// @Success 200 {object} dto.AberturaAvaliacaoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/avaliacao/abertura [post]
func (h *FechamentosHandler) AbrirAvaliacao(c *gin.Context) {
	var req dto.AberturaAvaliacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.AbrirAvaliacao(c.Request.Context(), usuarioID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
