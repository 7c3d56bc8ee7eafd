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

type reconciliacaoFixture struct {
	caixaRepo *fakeCaixaRepo
	vendaRepo *fakeVendaRepo
	caixaSvc  service.CaixaService
	svc       service.ReconciliacaoService
}

func novoReconciliacaoFixture() *reconciliacaoFixture {
	f := &reconciliacaoFixture{
		caixaRepo: newFakeCaixaRepo(),
		vendaRepo: newFakeVendaRepo(),
	}
	f.caixaSvc = service.NewCaixaService(f.caixaRepo, newFakeFechamentoRepo(), f.vendaRepo, maceio())
	f.svc = service.NewReconciliacaoService(f.vendaRepo, f.caixaSvc, "Caixa 1", maceio())
	return f
}

func (f *reconciliacaoFixture) criarVendaDinheiro(t *testing.T, caixaNome string, valor float64, quando time.Time) *model.Venda {
	t.Helper()
	venda := &model.Venda{
		NumeroTicket: f.vendaRepo.ticket + 100,
		CaixaNome:    caixaNome,
		UsuarioID:    uuid.New(),
		Total:        decimal.NewFromFloat(valor),
		Estado:       model.VendaConcluida,
		DataVenda:    quando,
		Pagamentos:   []model.VendaPagamento{{Metodo: "dinheiro", Valor: decimal.NewFromFloat(valor)}},
	}
	require.NoError(t, f.vendaRepo.Create(context.Background(), nil, venda))
	return venda
}

func TestReconciliarConvergeParaZero(t *testing.T) {
	f := novoReconciliacaoFixture()
	criarCaixa(t, f.caixaRepo, "Caixa 1", 0)
	loc := maceio()
	dia := time.Date(2026, 8, 28, 0, 0, 0, 0, loc)

	// Five cash sales; two already have their movement recorded.
	var vendas []*model.Venda
	for i := 0; i < 5; i++ {
		vendas = append(vendas, f.criarVendaDinheiro(t, "Caixa 1", 10, dia.Add(time.Duration(9+i)*time.Hour)))
	}
	for _, v := range vendas[:2] {
		res := f.caixaSvc.RegistrarMovimentoVenda(context.Background(), v.ID.String(), "Caixa 1",
			[]dto.PagamentoVenda{{Metodo: "dinheiro", Valor: decimal.NewFromFloat(10)}}, v.DataVenda, nil)
		require.True(t, res.Sucesso)
	}

	resultado, err := f.svc.ReconciliarDia(context.Background(), dia)
	require.NoError(t, err)
	assert.Equal(t, 3, resultado.Corrigidas)
	assert.Empty(t, resultado.Erros)
	assert.Len(t, f.caixaRepo.movs, 5)

	// Second pass finds nothing left to fix.
	resultado, err = f.svc.ReconciliarDia(context.Background(), dia)
	require.NoError(t, err)
	assert.Equal(t, 0, resultado.Corrigidas)
	assert.Empty(t, resultado.Erros)
	assert.Len(t, f.caixaRepo.movs, 5)
}

func TestReconciliarUsaCaixaPadrao(t *testing.T) {
	f := novoReconciliacaoFixture()
	padrao := criarCaixa(t, f.caixaRepo, "Caixa 1", 0)
	loc := maceio()
	dia := time.Date(2026, 8, 28, 0, 0, 0, 0, loc)

	// Legacy sale without a register reference lands on the default one.
	f.criarVendaDinheiro(t, "", 35, dia.Add(14*time.Hour))

	resultado, err := f.svc.ReconciliarDia(context.Background(), dia)
	require.NoError(t, err)
	assert.Equal(t, 1, resultado.Corrigidas)
	require.Len(t, f.caixaRepo.movs, 1)
	assert.Equal(t, padrao.ID, *f.caixaRepo.movs[0].CaixaDestinoID)
}

func TestReconciliarPreservaDataDaVenda(t *testing.T) {
	f := novoReconciliacaoFixture()
	criarCaixa(t, f.caixaRepo, "Caixa 1", 0)
	loc := maceio()
	dia := time.Date(2026, 8, 20, 0, 0, 0, 0, loc)

	venda := f.criarVendaDinheiro(t, "Caixa 1", 42, dia.Add(15*time.Hour))

	_, err := f.svc.ReconciliarDia(context.Background(), dia)
	require.NoError(t, err)
	require.Len(t, f.caixaRepo.movs, 1)
	// The backfilled movement counts toward the sale's own business day,
	// not the day the sweep ran.
	assert.True(t, f.caixaRepo.movs[0].DataMovimentacao.Equal(venda.DataVenda))
}

func TestReconciliarErroNaoAbortaVarredura(t *testing.T) {
	f := novoReconciliacaoFixture()
	criarCaixa(t, f.caixaRepo, "Caixa 1", 0)
	loc := maceio()
	dia := time.Date(2026, 8, 28, 0, 0, 0, 0, loc)

	f.criarVendaDinheiro(t, "Caixa 1", 10, dia.Add(9*time.Hour))
	perdida := f.criarVendaDinheiro(t, "Caixa Removido", 20, dia.Add(10*time.Hour))
	f.criarVendaDinheiro(t, "Caixa 1", 30, dia.Add(11*time.Hour))

	resultado, err := f.svc.ReconciliarDia(context.Background(), dia)
	require.NoError(t, err)
	assert.Equal(t, 2, resultado.Corrigidas)
	require.Len(t, resultado.Erros, 1)
	// The error names the sale id (matching the movement motivo "Venda #<id>"),
	// the exact amount and the register left unrecorded.
	assert.Contains(t, resultado.Erros[0], perdida.ID.String())
	assert.Contains(t, resultado.Erros[0], "Caixa Removido")
	assert.Contains(t, resultado.Erros[0], "20.00")
}

func TestReconciliarIgnoraVendasSemDinheiro(t *testing.T) {
	f := novoReconciliacaoFixture()
	criarCaixa(t, f.caixaRepo, "Caixa 1", 0)
	loc := maceio()
	dia := time.Date(2026, 8, 28, 0, 0, 0, 0, loc)

	venda := &model.Venda{
		NumeroTicket: 900,
		CaixaNome:    "Caixa 1",
		UsuarioID:    uuid.New(),
		Total:        decimal.NewFromFloat(60),
		Estado:       model.VendaConcluida,
		DataVenda:    dia.Add(12 * time.Hour),
		Pagamentos:   []model.VendaPagamento{{Metodo: "pix", Valor: decimal.NewFromFloat(60)}},
	}
	require.NoError(t, f.vendaRepo.Create(context.Background(), nil, venda))

	resultado, err := f.svc.ReconciliarDia(context.Background(), dia)
	require.NoError(t, err)
	assert.Equal(t, 0, resultado.Corrigidas)
	assert.Empty(t, resultado.Erros)
	assert.Empty(t, f.caixaRepo.movs)
}
