package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/config"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/middleware"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/router"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Route-permission tests over stub services: any call that reaches a stub
// method not overridden below would panic, so a 2xx/4xx response also proves
// which handler ran.

const permTestSecret = "perm-test-secret"

type stubFechamentoSvc struct{ service.FechamentoService }

func (stubFechamentoSvc) FecharRetroativo(_ context.Context, _ uuid.UUID, req dto.FechamentoRetroativoRequest) (*dto.FechamentoResponse, error) {
	return &dto.FechamentoResponse{
		ID:             uuid.NewString(),
		CaixaID:        req.CaixaID,
		DataFechamento: req.Dia,
		Status:         "pendente_aprovacao",
	}, nil
}

type stubAlertaSvc struct{ service.AlertaService }

func (stubAlertaSvc) DataReferencia(hoje time.Time) time.Time {
	return hoje.AddDate(0, 0, -1)
}

func (stubAlertaSvc) Dispensar(_ context.Context, _ time.Time) error {
	return nil
}

func permTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loc, err := time.LoadLocation("America/Maceio")
	require.NoError(t, err)

	r := router.New(router.Deps{
		Cfg: &config.Config{
			Env:       "test",
			JWTSecret: permTestSecret,
		},
		Loc:           loc,
		FechamentoSvc: stubFechamentoSvc{},
		AlertaSvc:     stubAlertaSvc{},
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func tokenComPapel(t *testing.T, papel string) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: papel + "@perm.test",
		Papel:    papel,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(permTestSecret))
	require.NoError(t, err)
	return token
}

func postJSON(t *testing.T, srv *httptest.Server, path, token string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestOperadorPodeRegistrarFechamentoRetroativo(t *testing.T) {
	srv := permTestServer(t)
	token := tokenComPapel(t, "operador")

	resp := postJSON(t, srv, "/v1/fechamentos/retroativos", token, map[string]any{
		"caixa_id":      uuid.NewString(),
		"dia":           "2026-08-28",
		"valor_contado": 150.0,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestOperadorPodeDispensarAlerta(t *testing.T) {
	srv := permTestServer(t)
	token := tokenComPapel(t, "operador")

	resp := postJSON(t, srv, "/v1/alertas/fechamentos/dispensar", token, map[string]any{
		"data": "2026-08-28",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestOperadorNaoAprovaFechamento(t *testing.T) {
	srv := permTestServer(t)
	token := tokenComPapel(t, "operador")

	resp := postJSON(t, srv, "/v1/fechamentos/"+uuid.NewString()+"/aprovar", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSemTokenRecebe401(t *testing.T) {
	srv := permTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/fechamentos/retroativos", bytes.NewReader([]byte("{}")))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
