package handler

import (
	"net/http"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/apierror"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/middleware"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type AlertasHandler struct {
	svc service.AlertaService
	loc *time.Location
}

func NewAlertasHandler(svc service.AlertaService, loc *time.Location) *AlertasHandler {
	return &AlertasHandler{svc: svc, loc: loc}
}

// Verificar godoc
// @Summary Verifica caixas sem fechamento no último dia útil
// @Tags alertas
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AlertaFechamentosResponse
// @Router /v1/alertas/fechamentos [get]
func (h *AlertasHandler) Verificar(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resp, err := h.svc.VerificarFechamentos(c.Request.Context(), claims.Papel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Dispensar godoc
// @Summary Dispensa o alerta de fechamentos para um dia de referência
// @Description Usado quando a loja não abriu no dia, então a ausência de
// @Description fechamentos é esperada.
// @Tags alertas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.DispensarAlertaRequest true "Dia de referência (opcional)"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Router /v1/alertas/fechamentos/dispensar [post]
func (h *AlertasHandler) Dispensar(c *gin.Context) {
	var req dto.DispensarAlertaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ref := h.svc.DataReferencia(time.Now().In(h.loc))
	if req.Data != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Data, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("data inválida, use o formato AAAA-MM-DD"))
			return
		}
		ref = parsed
	}

	if err := h.svc.Dispensar(c.Request.Context(), ref); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
