package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/model"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fechamentoFixture struct {
	caixaRepo      *fakeCaixaRepo
	fechamentoRepo *fakeFechamentoRepo
	vendaRepo      *fakeVendaRepo
	flags          *fakeFlags
	dispatcher     *fakeDispatcher
	svc            service.FechamentoService
}

func novoFechamentoFixture() *fechamentoFixture {
	f := &fechamentoFixture{
		caixaRepo:      newFakeCaixaRepo(),
		fechamentoRepo: newFakeFechamentoRepo(),
		vendaRepo:      newFakeVendaRepo(),
		flags:          newFakeFlags(),
		dispatcher:     &fakeDispatcher{},
	}
	caixaSvc := service.NewCaixaService(f.caixaRepo, f.fechamentoRepo, f.vendaRepo, maceio())
	f.svc = service.NewFechamentoService(f.fechamentoRepo, f.caixaRepo, caixaSvc, f.dispatcher, f.flags, maceio())
	return f
}

// ── FecharCaixa ──────────────────────────────────────────────────────────────

func TestFecharCaixaAprovadoQuandoContagemBate(t *testing.T) {
	f := novoFechamentoFixture()
	caixa := criarCaixa(t, f.caixaRepo, "Caixa 1", 290)

	resp, err := f.svc.FecharCaixa(context.Background(), uuid.New(), dto.FecharCaixaRequest{
		CaixaID:      caixa.ID.String(),
		ValorContado: decimal.NewFromFloat(290),
	})
	require.NoError(t, err)
	assert.Equal(t, model.FechamentoAprovado, resp.Status)
	assert.Equal(t, "0.00", resp.Diferenca.StringFixed(2))
	assert.Empty(t, f.dispatcher.emails)
}

func TestFecharCaixaDivergenteExigeJustificativa(t *testing.T) {
	f := novoFechamentoFixture()
	caixa := criarCaixa(t, f.caixaRepo, "Caixa 1", 290)

	// Hard gate: the divergent closing never persists without a reason.
	_, err := f.svc.FecharCaixa(context.Background(), uuid.New(), dto.FecharCaixaRequest{
		CaixaID:      caixa.ID.String(),
		ValorContado: decimal.NewFromFloat(289.50),
	})
	require.ErrorContains(t, err, "justificativa")
	assert.Empty(t, f.fechamentoRepo.fechamentos)

	justificativa := "Faltou troco de R$0,50 na gaveta"
	resp, err := f.svc.FecharCaixa(context.Background(), uuid.New(), dto.FecharCaixaRequest{
		CaixaID:       caixa.ID.String(),
		ValorContado:  decimal.NewFromFloat(289.50),
		Justificativa: &justificativa,
	})
	require.NoError(t, err)
	assert.Equal(t, model.FechamentoPendente, resp.Status)
	assert.Equal(t, "-0.50", resp.Diferenca.StringFixed(2))
	// Divergence queues the report mail for the administrators.
	assert.Len(t, f.dispatcher.emails, 1)
}

func TestFecharCaixaDuplicadoRejeitado(t *testing.T) {
	f := novoFechamentoFixture()
	caixa := criarCaixa(t, f.caixaRepo, "Caixa 1", 100)

	_, err := f.svc.FecharCaixa(context.Background(), uuid.New(), dto.FecharCaixaRequest{
		CaixaID:      caixa.ID.String(),
		ValorContado: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)

	_, err = f.svc.FecharCaixa(context.Background(), uuid.New(), dto.FecharCaixaRequest{
		CaixaID:      caixa.ID.String(),
		ValorContado: decimal.NewFromFloat(100),
	})
	assert.ErrorContains(t, err, "já possui fechamento")
}

func TestFecharCaixaDiaFuturo(t *testing.T) {
	f := novoFechamentoFixture()
	caixa := criarCaixa(t, f.caixaRepo, "Caixa 1", 100)

	amanha := time.Now().In(maceio()).AddDate(0, 0, 1).Format("2006-01-02")
	_, err := f.svc.FecharCaixa(context.Background(), uuid.New(), dto.FecharCaixaRequest{
		CaixaID:      caixa.ID.String(),
		Dia:          amanha,
		ValorContado: decimal.NewFromFloat(100),
	})
	assert.ErrorContains(t, err, "futuro")
}

// ── FecharRetroativo ─────────────────────────────────────────────────────────

func TestFecharRetroativoSemprePendente(t *testing.T) {
	f := novoFechamentoFixture()
	caixa := criarCaixa(t, f.caixaRepo, "Caixa 1", 150)

	ontem := time.Now().In(maceio()).AddDate(0, 0, -1).Format("2006-01-02")
	// Exact match with the system balance, and still pendente: a backdated
	// count cannot be checked against the physical drawer anymore.
	resp, err := f.svc.FecharRetroativo(context.Background(), uuid.New(), dto.FechamentoRetroativoRequest{
		CaixaID:      caixa.ID.String(),
		Dia:          ontem,
		ValorContado: decimal.NewFromFloat(150),
	})
	require.NoError(t, err)
	assert.Equal(t, model.FechamentoPendente, resp.Status)
	require.NotNil(t, resp.Justificativa)
	assert.Equal(t, "Fechamento retroativo", *resp.Justificativa)
}

func TestFecharRetroativoExigeDiaPassado(t *testing.T) {
	f := novoFechamentoFixture()
	caixa := criarCaixa(t, f.caixaRepo, "Caixa 1", 150)

	hoje := time.Now().In(maceio()).Format("2006-01-02")
	_, err := f.svc.FecharRetroativo(context.Background(), uuid.New(), dto.FechamentoRetroativoRequest{
		CaixaID:      caixa.ID.String(),
		Dia:          hoje,
		ValorContado: decimal.NewFromFloat(150),
	})
	assert.ErrorContains(t, err, "anterior")
}

// ── Aprovação ────────────────────────────────────────────────────────────────

func TestAprovarERejeitarFechamento(t *testing.T) {
	f := novoFechamentoFixture()
	caixa := criarCaixa(t, f.caixaRepo, "Caixa 1", 300)

	justificativa := "Diferença de contagem"
	resp, err := f.svc.FecharCaixa(context.Background(), uuid.New(), dto.FecharCaixaRequest{
		CaixaID:       caixa.ID.String(),
		ValorContado:  decimal.NewFromFloat(295),
		Justificativa: &justificativa,
	})
	require.NoError(t, err)
	require.Equal(t, model.FechamentoPendente, resp.Status)
	fechamentoID := uuid.MustParse(resp.ID)

	aprovado, err := f.svc.Aprovar(context.Background(), uuid.New(), fechamentoID)
	require.NoError(t, err)
	assert.Equal(t, model.FechamentoAprovado, aprovado.Status)

	// Terminal state: a reviewed closing never moves again.
	_, err = f.svc.Rejeitar(context.Background(), uuid.New(), fechamentoID)
	assert.ErrorContains(t, err, "não pode ser alterado")
}

// ── Abertura do caixa de avaliação ───────────────────────────────────────────

func TestAbrirAvaliacaoContagemConfere(t *testing.T) {
	f := novoFechamentoFixture()
	criarCaixa(t, f.caixaRepo, service.CaixaAvaliacao, 80)

	resp, err := f.svc.AbrirAvaliacao(context.Background(), uuid.New(), dto.AberturaAvaliacaoRequest{
		ValorContado: decimal.NewFromFloat(80),
	})
	require.NoError(t, err)
	assert.True(t, resp.Aberto)
	assert.Equal(t, "0.00", resp.Diferenca.StringFixed(2))

	dia := time.Now().In(maceio()).Format("2006-01-02")
	marcada, _ := f.flags.Marcada(context.Background(), "avaliacao:aberta:"+dia)
	assert.True(t, marcada)
}

func TestAbrirAvaliacaoContagemDiverge(t *testing.T) {
	f := novoFechamentoFixture()
	criarCaixa(t, f.caixaRepo, service.CaixaAvaliacao, 80)

	resp, err := f.svc.AbrirAvaliacao(context.Background(), uuid.New(), dto.AberturaAvaliacaoRequest{
		ValorContado: decimal.NewFromFloat(75),
	})
	require.NoError(t, err)
	assert.False(t, resp.Aberto)
	assert.Equal(t, "-5.00", resp.Diferenca.StringFixed(2))

	dia := time.Now().In(maceio()).Format("2006-01-02")
	marcada, _ := f.flags.Marcada(context.Background(), "avaliacao:aberta:"+dia)
	assert.False(t, marcada)
}

func TestValidarAberturaTolerancia(t *testing.T) {
	assert.True(t, service.ValidarAbertura(decimal.NewFromFloat(100), decimal.NewFromFloat(100)))
	assert.True(t, service.ValidarAbertura(decimal.NewFromFloat(100.004), decimal.NewFromFloat(100)))
	assert.False(t, service.ValidarAbertura(decimal.NewFromFloat(100.01), decimal.NewFromFloat(100)))
}
