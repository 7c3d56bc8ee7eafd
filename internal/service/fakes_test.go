package service_test

import (
	"context"
	"errors"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/model"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/money"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/repository"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNotFound = errors.New("registro não encontrado")

// ── Full in-memory CaixaRepository ───────────────────────────────────────────

type fakeCaixaRepo struct {
	caixas map[uuid.UUID]*model.Caixa
	movs   []model.MovimentacaoCaixa
}

func newFakeCaixaRepo() *fakeCaixaRepo {
	return &fakeCaixaRepo{caixas: make(map[uuid.UUID]*model.Caixa)}
}

func (r *fakeCaixaRepo) Create(_ context.Context, c *model.Caixa) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.caixas[c.ID] = c
	return nil
}

func (r *fakeCaixaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Caixa, error) {
	c, ok := r.caixas[id]
	if !ok {
		return nil, errNotFound
	}
	return c, nil
}

func (r *fakeCaixaRepo) FindByNome(_ context.Context, nome string) (*model.Caixa, error) {
	for _, c := range r.caixas {
		if c.Nome == nome {
			return c, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeCaixaRepo) List(_ context.Context, incluirInativos bool) ([]model.Caixa, error) {
	var out []model.Caixa
	for _, c := range r.caixas {
		if c.Ativo || incluirInativos {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCaixaRepo) Update(_ context.Context, c *model.Caixa) error {
	r.caixas[c.ID] = c
	return nil
}

func (r *fakeCaixaRepo) aplicarSaldo(m *model.MovimentacaoCaixa) {
	if m.CaixaDestinoID != nil {
		if c, ok := r.caixas[*m.CaixaDestinoID]; ok {
			c.SaldoAtual = c.SaldoAtual.Add(m.Valor)
		}
	}
	if m.CaixaOrigemID != nil {
		if c, ok := r.caixas[*m.CaixaOrigemID]; ok {
			c.SaldoAtual = c.SaldoAtual.Sub(m.Valor)
		}
	}
}

func (r *fakeCaixaRepo) AplicarMovimentacao(_ context.Context, m *model.MovimentacaoCaixa) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movs = append(r.movs, *m)
	r.aplicarSaldo(m)
	return nil
}

func (r *fakeCaixaRepo) AplicarMovimentacaoVenda(_ context.Context, m *model.MovimentacaoCaixa) (bool, error) {
	for _, existente := range r.movs {
		if existente.VendaID != nil && m.VendaID != nil && *existente.VendaID == *m.VendaID {
			return false, nil
		}
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movs = append(r.movs, *m)
	r.aplicarSaldo(m)
	return true, nil
}

func (r *fakeCaixaRepo) AplicarTransferencia(_ context.Context, saida, entrada *model.MovimentacaoCaixa) error {
	for _, m := range []*model.MovimentacaoCaixa{saida, entrada} {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		r.movs = append(r.movs, *m)
		r.aplicarSaldo(m)
	}
	return nil
}

func (r *fakeCaixaRepo) FindMovimentacaoPorVenda(_ context.Context, vendaID string) (*model.MovimentacaoCaixa, error) {
	for i := range r.movs {
		if r.movs[i].VendaID != nil && *r.movs[i].VendaID == vendaID {
			return &r.movs[i], nil
		}
	}
	return nil, nil
}

func (r *fakeCaixaRepo) ListMovimentacoes(_ context.Context, caixaID uuid.UUID, inicio, fim time.Time) ([]model.MovimentacaoCaixa, error) {
	var out []model.MovimentacaoCaixa
	for _, m := range r.movs {
		if r.tocaCaixa(m, caixaID) && dentro(m.DataMovimentacao, inicio, fim) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeCaixaRepo) SomaMovimentacoesDia(_ context.Context, caixaID uuid.UUID, inicio, fim time.Time, apenasManuais bool) (decimal.Decimal, error) {
	soma := decimal.Zero
	for _, m := range r.movs {
		if !r.tocaCaixa(m, caixaID) || !dentro(m.DataMovimentacao, inicio, fim) {
			continue
		}
		if apenasManuais && m.Tipo == model.MovVenda {
			continue
		}
		if m.CaixaDestinoID != nil && *m.CaixaDestinoID == caixaID {
			soma = soma.Add(m.Valor)
		} else {
			soma = soma.Sub(m.Valor)
		}
	}
	return soma, nil
}

func (r *fakeCaixaRepo) tocaCaixa(m model.MovimentacaoCaixa, caixaID uuid.UUID) bool {
	return (m.CaixaOrigemID != nil && *m.CaixaOrigemID == caixaID) ||
		(m.CaixaDestinoID != nil && *m.CaixaDestinoID == caixaID)
}

func dentro(t, inicio, fim time.Time) bool {
	return !t.Before(inicio) && t.Before(fim)
}

var _ repository.CaixaRepository = (*fakeCaixaRepo)(nil)

// ── In-memory FechamentoRepository ───────────────────────────────────────────

type fakeFechamentoRepo struct {
	fechamentos []*model.FechamentoCaixa
}

func newFakeFechamentoRepo() *fakeFechamentoRepo { return &fakeFechamentoRepo{} }

func (r *fakeFechamentoRepo) Create(_ context.Context, f *model.FechamentoCaixa) error {
	for _, existente := range r.fechamentos {
		if existente.CaixaID == f.CaixaID && existente.DataFechamento.Equal(f.DataFechamento) {
			return errors.New("duplicate key idx_fechamento_caixa_dia")
		}
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = time.Now()
	r.fechamentos = append(r.fechamentos, f)
	return nil
}

func (r *fakeFechamentoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.FechamentoCaixa, error) {
	for _, f := range r.fechamentos {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeFechamentoRepo) FindByCaixaEDia(_ context.Context, caixaID uuid.UUID, dia time.Time) (*model.FechamentoCaixa, error) {
	for _, f := range r.fechamentos {
		if f.CaixaID == caixaID && dentro(f.DataFechamento, dia, dia.Add(24*time.Hour)) {
			return f, nil
		}
	}
	return nil, nil
}

func (r *fakeFechamentoRepo) FindUltimoAnterior(_ context.Context, caixaID uuid.UUID, antesDe time.Time) (*model.FechamentoCaixa, error) {
	var ultimo *model.FechamentoCaixa
	for _, f := range r.fechamentos {
		if f.CaixaID != caixaID || !f.DataFechamento.Before(antesDe) {
			continue
		}
		if ultimo == nil || f.DataFechamento.After(ultimo.DataFechamento) {
			ultimo = f
		}
	}
	return ultimo, nil
}

func (r *fakeFechamentoRepo) ListByDia(_ context.Context, dia time.Time) ([]model.FechamentoCaixa, error) {
	var out []model.FechamentoCaixa
	for _, f := range r.fechamentos {
		if dentro(f.DataFechamento, dia, dia.Add(24*time.Hour)) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFechamentoRepo) ListPendentes(_ context.Context) ([]model.FechamentoCaixa, error) {
	var out []model.FechamentoCaixa
	for _, f := range r.fechamentos {
		if f.Status == model.FechamentoPendente {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFechamentoRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	for _, f := range r.fechamentos {
		if f.ID == id {
			f.Status = status
			return nil
		}
	}
	return errNotFound
}

var _ repository.FechamentoRepository = (*fakeFechamentoRepo)(nil)

// ── In-memory VendaRepository ────────────────────────────────────────────────

type fakeVendaRepo struct {
	vendas []*model.Venda
	ticket int64
}

func newFakeVendaRepo() *fakeVendaRepo { return &fakeVendaRepo{} }

func (r *fakeVendaRepo) DB() *gorm.DB { return nil }

func (r *fakeVendaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venda) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.vendas = append(r.vendas, v)
	return nil
}

func (r *fakeVendaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venda, error) {
	for _, v := range r.vendas {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeVendaRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int64, error) {
	r.ticket++
	return r.ticket, nil
}

func (r *fakeVendaRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	for _, v := range r.vendas {
		if v.ID == id {
			v.Estado = estado
			return nil
		}
	}
	return errNotFound
}

func (r *fakeVendaRepo) List(_ context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error) {
	var out []model.Venda
	for _, v := range r.vendas {
		if filter.Estado != "" && filter.Estado != "all" && v.Estado != filter.Estado {
			continue
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *fakeVendaRepo) ListPeriodo(_ context.Context, inicio, fim time.Time) ([]model.Venda, error) {
	var out []model.Venda
	for _, v := range r.vendas {
		if v.Estado == model.VendaConcluida && dentro(v.DataVenda, inicio, fim) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVendaRepo) TotalDinheiroPorCaixa(_ context.Context, caixaNome string, inicio, fim time.Time) (decimal.Decimal, error) {
	soma := decimal.Zero
	for _, v := range r.vendas {
		if v.Estado != model.VendaConcluida || v.CaixaNome != caixaNome || !dentro(v.DataVenda, inicio, fim) {
			continue
		}
		for _, p := range v.Pagamentos {
			if money.EhDinheiro(p.Metodo) {
				soma = soma.Add(p.Valor)
			}
		}
	}
	return soma, nil
}

var _ repository.VendaRepository = (*fakeVendaRepo)(nil)

// ── In-memory ProdutoRepository ──────────────────────────────────────────────

type fakeProdutoRepo struct {
	produtos map[uuid.UUID]*model.Produto
}

func newFakeProdutoRepo() *fakeProdutoRepo {
	return &fakeProdutoRepo{produtos: make(map[uuid.UUID]*model.Produto)}
}

func (r *fakeProdutoRepo) Create(_ context.Context, p *model.Produto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.produtos[p.ID] = p
	return nil
}

func (r *fakeProdutoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Produto, error) {
	p, ok := r.produtos[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (r *fakeProdutoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Produto, error) {
	for _, p := range r.produtos {
		if p.Codigo == codigo {
			return p, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeProdutoRepo) List(_ context.Context, categoria string, apenasAtivos bool) ([]model.Produto, error) {
	var out []model.Produto
	for _, p := range r.produtos {
		if categoria != "" && p.Categoria != categoria {
			continue
		}
		if apenasAtivos && !p.Ativo {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProdutoRepo) Update(_ context.Context, p *model.Produto) error {
	r.produtos[p.ID] = p
	return nil
}

func (r *fakeProdutoRepo) Desativar(_ context.Context, id uuid.UUID) error {
	p, ok := r.produtos[id]
	if !ok {
		return errNotFound
	}
	p.Ativo = false
	return nil
}

func (r *fakeProdutoRepo) BaixarEstoqueTx(_ *gorm.DB, produtoID uuid.UUID, quantidade int) error {
	p, ok := r.produtos[produtoID]
	if !ok || p.Quantidade < quantidade {
		return errNotFound
	}
	p.Quantidade -= quantidade
	return nil
}

func (r *fakeProdutoRepo) ReporEstoqueTx(_ *gorm.DB, produtoID uuid.UUID, quantidade int) error {
	p, ok := r.produtos[produtoID]
	if !ok {
		return errNotFound
	}
	p.Quantidade += quantidade
	return nil
}

var _ repository.ProdutoRepository = (*fakeProdutoRepo)(nil)

// ── In-memory ClienteRepository ──────────────────────────────────────────────

type fakeClienteRepo struct {
	clientes   map[uuid.UUID]*model.Cliente
	avaliacoes []*model.Avaliacao
}

func newFakeClienteRepo() *fakeClienteRepo {
	return &fakeClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *fakeClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *fakeClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, errNotFound
	}
	return c, nil
}

func (r *fakeClienteRepo) List(_ context.Context) ([]model.Cliente, error) {
	var out []model.Cliente
	for _, c := range r.clientes {
		if c.Ativo {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *fakeClienteRepo) CreateAvaliacao(_ context.Context, a *model.Avaliacao) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	r.avaliacoes = append(r.avaliacoes, a)
	return nil
}

func (r *fakeClienteRepo) FindAvaliacaoByID(_ context.Context, id uuid.UUID) (*model.Avaliacao, error) {
	for _, a := range r.avaliacoes {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeClienteRepo) ListAvaliacoes(_ context.Context, clienteID *uuid.UUID) ([]model.Avaliacao, error) {
	var out []model.Avaliacao
	for _, a := range r.avaliacoes {
		if clienteID != nil && a.ClienteID != *clienteID {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeClienteRepo) AceitarAvaliacao(_ context.Context, a *model.Avaliacao) error {
	for _, existente := range r.avaliacoes {
		if existente.ID == a.ID {
			existente.Status = model.AvaliacaoAceita
		}
	}
	if c, ok := r.clientes[a.ClienteID]; ok {
		c.SaldoCredito = c.SaldoCredito.Add(a.ValorOferta)
	}
	return nil
}

func (r *fakeClienteRepo) UpdateAvaliacaoStatus(_ context.Context, id uuid.UUID, status string) error {
	for _, a := range r.avaliacoes {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return errNotFound
}

func (r *fakeClienteRepo) DebitarCreditoTx(_ *gorm.DB, clienteID uuid.UUID, valor decimal.Decimal) error {
	c, ok := r.clientes[clienteID]
	if !ok || c.SaldoCredito.LessThan(valor) {
		return errNotFound
	}
	c.SaldoCredito = c.SaldoCredito.Sub(valor)
	return nil
}

func (r *fakeClienteRepo) ReporCreditoTx(_ *gorm.DB, clienteID uuid.UUID, valor decimal.Decimal) error {
	c, ok := r.clientes[clienteID]
	if !ok {
		return errNotFound
	}
	c.SaldoCredito = c.SaldoCredito.Add(valor)
	return nil
}

var _ repository.ClienteRepository = (*fakeClienteRepo)(nil)

// ── FlagStore / Dispatcher fakes ─────────────────────────────────────────────

type fakeFlags struct {
	marcas map[string]bool
}

func newFakeFlags() *fakeFlags { return &fakeFlags{marcas: make(map[string]bool)} }

func (f *fakeFlags) Marcar(_ context.Context, chave string) error {
	f.marcas[chave] = true
	return nil
}

func (f *fakeFlags) Marcada(_ context.Context, chave string) (bool, error) {
	return f.marcas[chave], nil
}

var _ service.FlagStore = (*fakeFlags)(nil)

type fakeDispatcher struct {
	emails []interface{}
}

func (d *fakeDispatcher) EnqueueEmail(_ context.Context, payload interface{}) error {
	d.emails = append(d.emails, payload)
	return nil
}

var _ service.Dispatcher = (*fakeDispatcher)(nil)

// maceio is the store timezone used across the tests.
func maceio() *time.Location {
	loc, err := time.LoadLocation("America/Maceio")
	if err != nil {
		return time.FixedZone("-03", -3*60*60)
	}
	return loc
}
