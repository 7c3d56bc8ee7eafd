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

type vendaFixture struct {
	caixaRepo      *fakeCaixaRepo
	fechamentoRepo *fakeFechamentoRepo
	vendaRepo      *fakeVendaRepo
	produtoRepo    *fakeProdutoRepo
	clienteRepo    *fakeClienteRepo
	dispatcher     *fakeDispatcher
	flags          *fakeFlags
	caixaSvc       service.CaixaService
	fechamentoSvc  service.FechamentoService
	svc            service.VendaService
}

func novoVendaFixture() *vendaFixture {
	f := &vendaFixture{
		caixaRepo:      newFakeCaixaRepo(),
		fechamentoRepo: newFakeFechamentoRepo(),
		vendaRepo:      newFakeVendaRepo(),
		produtoRepo:    newFakeProdutoRepo(),
		clienteRepo:    newFakeClienteRepo(),
		dispatcher:     &fakeDispatcher{},
		flags:          newFakeFlags(),
	}
	f.caixaSvc = service.NewCaixaService(f.caixaRepo, f.fechamentoRepo, f.vendaRepo, maceio())
	f.fechamentoSvc = service.NewFechamentoService(f.fechamentoRepo, f.caixaRepo, f.caixaSvc, f.dispatcher, f.flags, maceio())
	f.svc = service.NewVendaService(f.vendaRepo, f.produtoRepo, f.clienteRepo, f.caixaRepo, f.caixaSvc, maceio())
	return f
}

func (f *vendaFixture) criarProduto(t *testing.T, nome string, preco float64, quantidade int) *model.Produto {
	t.Helper()
	p := &model.Produto{
		Codigo:     "P-" + uuid.NewString()[:8],
		Nome:       nome,
		Preco:      decimal.NewFromFloat(preco),
		Quantidade: quantidade,
		Ativo:      true,
	}
	require.NoError(t, f.produtoRepo.Create(context.Background(), p))
	return p
}

func TestRegistrarVendaPagamentosNaoConferem(t *testing.T) {
	f := novoVendaFixture()
	criarCaixa(t, f.caixaRepo, "Caixa 1", 0)
	p := f.criarProduto(t, "Camisa infantil", 150, 5)

	_, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		CaixaNome:  "Caixa 1",
		Itens:      []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: 1}},
		Pagamentos: []dto.PagamentoRequest{{Metodo: "dinheiro", Valor: decimal.NewFromFloat(140)}},
	})
	require.ErrorContains(t, err, "não corresponde ao total")
	assert.Empty(t, f.vendaRepo.vendas)
	// Stock untouched when the sale is rejected pre-persistence.
	assert.Equal(t, 5, p.Quantidade)
}

func TestRegistrarVendaBaixaEstoqueERegistraMovimento(t *testing.T) {
	f := novoVendaFixture()
	criarCaixa(t, f.caixaRepo, "Caixa 1", 200)
	p := f.criarProduto(t, "Tênis usado", 75, 2)

	resp, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		CaixaNome:  "Caixa 1",
		Itens:      []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: 2}},
		Pagamentos: []dto.PagamentoRequest{{Metodo: "dinheiro", Valor: decimal.NewFromFloat(150)}},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Aviso)
	assert.Equal(t, 0, p.Quantidade)

	caixa, _ := f.caixaRepo.FindByNome(context.Background(), "Caixa 1")
	assert.Equal(t, "350.00", caixa.SaldoAtual.StringFixed(2))
	require.Len(t, f.caixaRepo.movs, 1)
	assert.Equal(t, model.MovVenda, f.caixaRepo.movs[0].Tipo)
}

func TestRegistrarVendaAvisoQuandoMovimentoFalha(t *testing.T) {
	f := novoVendaFixture()
	// No register named "Caixa 9" exists, so the recorder fails after the
	// sale commits.
	p := f.criarProduto(t, "Vestido", 90, 1)

	resp, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		CaixaNome:  "Caixa 9",
		Itens:      []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: 1}},
		Pagamentos: []dto.PagamentoRequest{{Metodo: "dinheiro", Valor: decimal.NewFromFloat(90)}},
	})
	require.NoError(t, err)

	// The sale stands; the warning names the exact amount and register.
	assert.Len(t, f.vendaRepo.vendas, 1)
	assert.Contains(t, resp.Aviso, "90.00")
	assert.Contains(t, resp.Aviso, "Caixa 9")
	assert.Empty(t, f.caixaRepo.movs)
}

func TestRegistrarVendaComCreditoLoja(t *testing.T) {
	f := novoVendaFixture()
	criarCaixa(t, f.caixaRepo, "Caixa 1", 0)
	p := f.criarProduto(t, "Casaco", 100, 1)

	cliente := &model.Cliente{Nome: "Maria", SaldoCredito: decimal.NewFromFloat(60), Ativo: true}
	require.NoError(t, f.clienteRepo.Create(context.Background(), cliente))
	clienteID := cliente.ID.String()

	resp, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		CaixaNome: "Caixa 1",
		ClienteID: &clienteID,
		Itens:     []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: 1}},
		Pagamentos: []dto.PagamentoRequest{
			{Metodo: "credito_loja", Valor: decimal.NewFromFloat(60)},
			{Metodo: "dinheiro", Valor: decimal.NewFromFloat(40)},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Aviso)
	assert.Equal(t, "0.00", cliente.SaldoCredito.StringFixed(2))

	// Only the cash leg reaches the drawer.
	caixa, _ := f.caixaRepo.FindByNome(context.Background(), "Caixa 1")
	assert.Equal(t, "40.00", caixa.SaldoAtual.StringFixed(2))
}

func TestRegistrarVendaCreditoLojaInsuficiente(t *testing.T) {
	f := novoVendaFixture()
	criarCaixa(t, f.caixaRepo, "Caixa 1", 0)
	p := f.criarProduto(t, "Bota", 100, 1)

	cliente := &model.Cliente{Nome: "João", SaldoCredito: decimal.NewFromFloat(30), Ativo: true}
	require.NoError(t, f.clienteRepo.Create(context.Background(), cliente))
	clienteID := cliente.ID.String()

	_, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		CaixaNome:  "Caixa 1",
		ClienteID:  &clienteID,
		Itens:      []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: 1}},
		Pagamentos: []dto.PagamentoRequest{{Metodo: "credito_loja", Valor: decimal.NewFromFloat(100)}},
	})
	assert.ErrorContains(t, err, "insuficiente")
}

func TestRegistrarVendaCreditoLojaSemCliente(t *testing.T) {
	f := novoVendaFixture()
	criarCaixa(t, f.caixaRepo, "Caixa 1", 0)
	p := f.criarProduto(t, "Saia", 50, 1)

	_, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		CaixaNome:  "Caixa 1",
		Itens:      []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: 1}},
		Pagamentos: []dto.PagamentoRequest{{Metodo: "credito_loja", Valor: decimal.NewFromFloat(50)}},
	})
	assert.ErrorContains(t, err, "exige cliente")
}

func TestCancelarVendaEstornaTudo(t *testing.T) {
	f := novoVendaFixture()
	criarCaixa(t, f.caixaRepo, "Caixa 1", 0)
	p := f.criarProduto(t, "Calça", 80, 3)

	resp, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		CaixaNome:  "Caixa 1",
		Itens:      []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: 1}},
		Pagamentos: []dto.PagamentoRequest{{Metodo: "dinheiro", Valor: decimal.NewFromFloat(80)}},
	})
	require.NoError(t, err)
	vendaID := uuid.MustParse(resp.ID)

	require.NoError(t, f.svc.CancelarVenda(context.Background(), uuid.New(), vendaID, "Cliente desistiu"))

	venda, _ := f.vendaRepo.FindByID(context.Background(), vendaID)
	assert.Equal(t, model.VendaCancelada, venda.Estado)
	assert.Equal(t, 3, p.Quantidade)

	// Ledger append-only: the original venda entry stays, an estorno saida
	// takes the cash back out.
	caixa, _ := f.caixaRepo.FindByNome(context.Background(), "Caixa 1")
	assert.Equal(t, "0.00", caixa.SaldoAtual.StringFixed(2))
	require.Len(t, f.caixaRepo.movs, 2)
	assert.Equal(t, model.MovVenda, f.caixaRepo.movs[0].Tipo)
	assert.Equal(t, model.MovSaida, f.caixaRepo.movs[1].Tipo)
	assert.Contains(t, f.caixaRepo.movs[1].Motivo, "Estorno")

	// A second cancellation is rejected.
	err = f.svc.CancelarVenda(context.Background(), uuid.New(), vendaID, "De novo")
	assert.ErrorContains(t, err, "não pode ser cancelada")
}

// ── Ciclo completo: venda → saldo → fechamento divergente ────────────────────

func TestCicloVendaAteFechamentoDivergente(t *testing.T) {
	f := novoVendaFixture()
	caixa := criarCaixa(t, f.caixaRepo, "Caixa 1", 200)
	p := f.criarProduto(t, "Conjunto infantil", 150, 1)

	// R$150 sale split 90 dinheiro / 60 pix.
	_, err := f.svc.RegistrarVenda(context.Background(), uuid.New(), dto.RegistrarVendaRequest{
		CaixaNome: "Caixa 1",
		Itens:     []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: 1}},
		Pagamentos: []dto.PagamentoRequest{
			{Metodo: "dinheiro", Valor: decimal.NewFromFloat(90)},
			{Metodo: "pix", Valor: decimal.NewFromFloat(60)},
		},
	})
	require.NoError(t, err)

	// Only the cash leg hits the drawer: 200 + 90.
	assert.Equal(t, "290.00", caixa.SaldoAtual.StringFixed(2))

	saldo, err := f.caixaSvc.CalcularSaldo(context.Background(), caixa.ID, time.Now().In(maceio()))
	require.NoError(t, err)
	assert.Equal(t, "290.00", saldo.SaldoSistema.StringFixed(2))

	// The operator counts R$289.50: fifty cents short, justification
	// required, closing parked for review.
	justificativa := "Diferença de R$0,50 na contagem"
	fechamento, err := f.fechamentoSvc.FecharCaixa(context.Background(), uuid.New(), dto.FecharCaixaRequest{
		CaixaID:       caixa.ID.String(),
		ValorContado:  decimal.NewFromFloat(289.50),
		Justificativa: &justificativa,
	})
	require.NoError(t, err)
	assert.Equal(t, "-0.50", fechamento.Diferenca.StringFixed(2))
	assert.Equal(t, model.FechamentoPendente, fechamento.Status)
	assert.Len(t, f.dispatcher.emails, 1)
}
