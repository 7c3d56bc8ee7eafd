package handler

import (
	"net/http"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/apierror"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type ReconciliacaoHandler struct {
	svc service.ReconciliacaoService
	loc *time.Location
}

func NewReconciliacaoHandler(svc service.ReconciliacaoService, loc *time.Location) *ReconciliacaoHandler {
	return &ReconciliacaoHandler{svc: svc, loc: loc}
}

// Executar godoc
// @Summary Executa a reconciliação de vendas contra o livro de caixa
// @Description Varredura idempotente: lança movimentos de venda faltantes e
// @Description ignora os já registrados. O mesmo trabalho roda toda noite.
// @Tags reconciliacao
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ReconciliacaoRequest true "Dia a varrer (opcional)"
// @Success 200 {object} dto.ResultadoReconciliacao
// @Failure 400 {object} apierror.APIError
// @Router /v1/reconciliacao [post]
func (h *ReconciliacaoHandler) Executar(c *gin.Context) {
	var req dto.ReconciliacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}

	dia := time.Now().In(h.loc)
	if req.Dia != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Dia, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("dia inválido, use o formato AAAA-MM-DD"))
			return
		}
		dia = parsed
	}

	resultado, err := h.svc.ReconciliarDia(c.Request.Context(), dia)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resultado)
}
