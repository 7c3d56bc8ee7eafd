package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/model"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/money"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VendaService interface {
	RegistrarVenda(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error)
	CancelarVenda(ctx context.Context, usuarioID uuid.UUID, id uuid.UUID, motivo string) error
	Obter(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error)
	Listar(ctx context.Context, filter dto.VendaFilter) (*dto.VendaListResponse, error)
}

type vendaService struct {
	repo        repository.VendaRepository
	produtoRepo repository.ProdutoRepository
	clienteRepo repository.ClienteRepository
	caixaRepo   repository.CaixaRepository
	caixaSvc    CaixaService
	loc         *time.Location
}

func NewVendaService(
	repo repository.VendaRepository,
	produtoRepo repository.ProdutoRepository,
	clienteRepo repository.ClienteRepository,
	caixaRepo repository.CaixaRepository,
	caixaSvc CaixaService,
	loc *time.Location,
) VendaService {
	return &vendaService{
		repo:        repo,
		produtoRepo: produtoRepo,
		clienteRepo: clienteRepo,
		caixaRepo:   caixaRepo,
		caixaSvc:    caixaSvc,
		loc:         loc,
	}
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode with fake repositories).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── RegistrarVenda ────────────────────────────────────────────────────────────
// 1. Resolve products, compute totals, validate payments (pre-flight)
// 2. BEGIN TX: ticket, venda+itens+pagamentos, baixa de estoque, débito de
//    crédito de loja
// 3. COMMIT — the sale is now irreversible
// 4. Record the cash movement NON-fatally: a recorder failure after commit
//    surfaces as an aviso naming the exact unrecorded amount and register,
//    and the reconciliation job converges the ledger later.

func (s *vendaService) RegistrarVenda(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
	var clienteID *uuid.UUID
	if req.ClienteID != nil {
		id, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, fmt.Errorf("cliente_id inválido: %w", err)
		}
		if _, err := s.clienteRepo.FindByID(ctx, id); err != nil {
			return nil, errors.New("cliente não encontrado")
		}
		clienteID = &id
	}

	type itemResolvido struct {
		produtoID  uuid.UUID
		nome       string
		preco      decimal.Decimal
		quantidade int
		subtotal   decimal.Decimal
	}

	var resolvidos []itemResolvido
	subtotal := decimal.Zero
	for _, item := range req.Itens {
		pid, err := uuid.Parse(item.ProdutoID)
		if err != nil {
			return nil, fmt.Errorf("produto_id inválido: %w", err)
		}
		p, err := s.produtoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("produto %s não encontrado", item.ProdutoID)
		}
		if !p.Ativo {
			return nil, fmt.Errorf("o produto %q está inativo e não pode ser vendido", p.Nome)
		}
		if p.Quantidade < item.Quantidade {
			return nil, fmt.Errorf("estoque insuficiente para %q (disponível: %d)", p.Nome, p.Quantidade)
		}
		linha := p.Preco.Mul(decimal.NewFromInt(int64(item.Quantidade)))
		subtotal = subtotal.Add(linha)
		resolvidos = append(resolvidos, itemResolvido{
			produtoID:  pid,
			nome:       p.Nome,
			preco:      p.Preco,
			quantidade: item.Quantidade,
			subtotal:   linha,
		})
	}

	desconto := req.Desconto.Round(2)
	total := subtotal.Sub(desconto).Round(2)
	if total.IsNegative() {
		return nil, errors.New("o desconto não pode exceder o subtotal")
	}

	totalPagamentos := decimal.Zero
	totalCredito := decimal.Zero
	for _, pg := range req.Pagamentos {
		metodo := money.NormalizarMetodo(pg.Metodo)
		switch metodo {
		case model.PagamentoDinheiro, model.PagamentoPix, model.PagamentoCredito, model.PagamentoDebito:
		case model.PagamentoCreditoLoja:
			if clienteID == nil {
				return nil, errors.New("pagamento com crédito de loja exige cliente identificado")
			}
			totalCredito = totalCredito.Add(pg.Valor)
		default:
			return nil, fmt.Errorf("método de pagamento inválido: %q", pg.Metodo)
		}
		totalPagamentos = totalPagamentos.Add(pg.Valor)
	}
	if !money.Iguais(totalPagamentos, total, money.ToleranciaCentavos) {
		return nil, fmt.Errorf(
			"a soma dos pagamentos (R$ %s) não corresponde ao total da venda (R$ %s)",
			totalPagamentos.StringFixed(2), total.StringFixed(2),
		)
	}

	agora := time.Now().In(s.loc)
	var venda model.Venda
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticket, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}

		venda = model.Venda{
			NumeroTicket: ticket,
			CaixaNome:    req.CaixaNome,
			ClienteID:    clienteID,
			UsuarioID:    usuarioID,
			Subtotal:     subtotal,
			Desconto:     desconto,
			Total:        total,
			Estado:       model.VendaConcluida,
			DataVenda:    agora,
		}
		for _, r := range resolvidos {
			venda.Itens = append(venda.Itens, model.VendaItem{
				ProdutoID:     r.produtoID,
				Quantidade:    r.quantidade,
				PrecoUnitario: r.preco,
				Subtotal:      r.subtotal,
			})
		}
		for _, pg := range req.Pagamentos {
			venda.Pagamentos = append(venda.Pagamentos, model.VendaPagamento{
				Metodo:   money.NormalizarMetodo(pg.Metodo),
				Valor:    pg.Valor.Round(2),
				Bandeira: pg.Bandeira,
			})
		}
		if err := s.repo.Create(ctx, tx, &venda); err != nil {
			return err
		}

		for _, r := range resolvidos {
			if err := s.produtoRepo.BaixarEstoqueTx(tx, r.produtoID, r.quantidade); err != nil {
				return fmt.Errorf("estoque insuficiente para %q", r.nome)
			}
		}
		if totalCredito.IsPositive() {
			if err := s.clienteRepo.DebitarCreditoTx(tx, *clienteID, totalCredito.Round(2)); err != nil {
				return errors.New("saldo de crédito do cliente insuficiente")
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := vendaToResponse(&venda)

	pagamentos := make([]dto.PagamentoVenda, 0, len(venda.Pagamentos))
	for _, pg := range venda.Pagamentos {
		pagamentos = append(pagamentos, dto.PagamentoVenda{Metodo: pg.Metodo, Valor: pg.Valor, Bandeira: pg.Bandeira})
	}
	res := s.caixaSvc.RegistrarMovimentoVenda(ctx, venda.ID.String(), venda.CaixaNome, pagamentos, venda.DataVenda, &usuarioID)
	if !res.Sucesso {
		resp.Aviso = fmt.Sprintf(
			"Venda registrada, mas R$ %s em dinheiro não foi lançado no caixa %q: %s. O valor será regularizado pela reconciliação.",
			res.ValorRegistrado.StringFixed(2), venda.CaixaNome, res.Erro,
		)
		log.Warn().
			Int64("ticket", venda.NumeroTicket).
			Str("caixa", venda.CaixaNome).
			Str("valor", res.ValorRegistrado.StringFixed(2)).
			Str("erro", res.Erro).
			Msg("movimento de venda não registrado")
	}
	return resp, nil
}

// ── CancelarVenda ─────────────────────────────────────────────────────────────

// CancelarVenda reverses a completed sale: stock returns, store credit is
// refunded and the drawer cash leaves through an inverse saida movement.
// The original venda movement stays in the ledger untouched.
func (s *vendaService) CancelarVenda(ctx context.Context, usuarioID uuid.UUID, id uuid.UUID, motivo string) error {
	venda, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("venda não encontrada")
	}
	if venda.Estado != model.VendaConcluida {
		return fmt.Errorf("venda com estado %q não pode ser cancelada", venda.Estado)
	}

	creditoLoja := decimal.Zero
	for _, pg := range venda.Pagamentos {
		if money.NormalizarMetodo(pg.Metodo) == model.PagamentoCreditoLoja {
			creditoLoja = creditoLoja.Add(pg.Valor)
		}
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateEstadoTx(tx, id, model.VendaCancelada); err != nil {
			return err
		}
		for _, item := range venda.Itens {
			if err := s.produtoRepo.ReporEstoqueTx(tx, item.ProdutoID, item.Quantidade); err != nil {
				return err
			}
		}
		if creditoLoja.IsPositive() && venda.ClienteID != nil {
			if err := s.clienteRepo.ReporCreditoTx(tx, *venda.ClienteID, creditoLoja); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	// Cash originally entered the drawer; the cancellation takes it back out
	// with a fresh saida entry so the ledger stays append-only.
	movVenda, err := s.caixaRepo.FindMovimentacaoPorVenda(ctx, venda.ID.String())
	if err == nil && movVenda != nil && movVenda.CaixaDestinoID != nil {
		estorno := &model.MovimentacaoCaixa{
			CaixaOrigemID:    movVenda.CaixaDestinoID,
			Tipo:             model.MovSaida,
			Valor:            movVenda.Valor,
			Motivo:           fmt.Sprintf("Estorno venda #%d: %s", venda.NumeroTicket, motivo),
			DataMovimentacao: time.Now().In(s.loc),
			CriadoPorID:      &usuarioID,
		}
		if err := s.caixaRepo.AplicarMovimentacao(ctx, estorno); err != nil {
			log.Error().Err(err).
				Int64("ticket", venda.NumeroTicket).
				Str("valor", movVenda.Valor.StringFixed(2)).
				Msg("falha ao registrar estorno do movimento de venda")
		}
	}

	log.Info().
		Int64("ticket", venda.NumeroTicket).
		Str("motivo", motivo).
		Msg("venda cancelada")
	return nil
}

func (s *vendaService) Obter(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error) {
	venda, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("venda não encontrada")
	}
	return vendaToResponse(venda), nil
}

func (s *vendaService) Listar(ctx context.Context, filter dto.VendaFilter) (*dto.VendaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	vendas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VendaResponse, 0, len(vendas))
	for i := range vendas {
		out = append(out, *vendaToResponse(&vendas[i]))
	}
	return &dto.VendaListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func vendaToResponse(v *model.Venda) *dto.VendaResponse {
	resp := &dto.VendaResponse{
		ID:           v.ID.String(),
		NumeroTicket: v.NumeroTicket,
		CaixaNome:    v.CaixaNome,
		Subtotal:     v.Subtotal,
		Desconto:     v.Desconto,
		Total:        v.Total,
		Estado:       v.Estado,
		DataVenda:    v.DataVenda.Format(time.RFC3339),
	}
	for _, item := range v.Itens {
		nome := ""
		if item.Produto != nil {
			nome = item.Produto.Nome
		}
		resp.Itens = append(resp.Itens, dto.ItemVendaResponse{
			Produto:       nome,
			Quantidade:    item.Quantidade,
			PrecoUnitario: item.PrecoUnitario,
			Subtotal:      item.Subtotal,
		})
	}
	for _, pg := range v.Pagamentos {
		resp.Pagamentos = append(resp.Pagamentos, dto.PagamentoRequest{
			Metodo:   pg.Metodo,
			Valor:    pg.Valor,
			Bandeira: pg.Bandeira,
		})
	}
	return resp
}
