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
)

type CaixaService interface {
	Criar(ctx context.Context, req dto.CriarCaixaRequest) (*dto.CaixaResponse, error)
	Listar(ctx context.Context, incluirInativos bool) ([]dto.CaixaResponse, error)
	Desativar(ctx context.Context, caixaID uuid.UUID) error

	RegistrarMovimentacaoManual(ctx context.Context, usuarioID uuid.UUID, req dto.MovimentacaoManualRequest) (*dto.MovimentacaoResponse, error)
	Transferir(ctx context.Context, usuarioID uuid.UUID, req dto.TransferenciaRequest) error
	// AjusteAdministrativo sets a register to a target balance by recording a
	// compensating entrada/saida movement. The cached saldo is never written
	// directly, so the ledger stays complete.
	AjusteAdministrativo(ctx context.Context, usuarioID uuid.UUID, req dto.AjusteAdministrativoRequest) (*dto.MovimentacaoResponse, error)

	// RegistrarMovimentoVenda records the cash legs of a committed sale as a
	// single "venda" movement. The sale is already persisted when this runs,
	// so every failure mode must come back as a structured result — never an
	// abort. Called at sale time by VendaService and again, idempotently, by
	// the reconciliation job.
	RegistrarMovimentoVenda(ctx context.Context, vendaID, caixaNome string, pagamentos []dto.PagamentoVenda, dataVenda time.Time, criadoPorID *uuid.UUID) dto.ResultadoMovimentoVenda

	CalcularSaldo(ctx context.Context, caixaID uuid.UUID, dia time.Time) (*dto.SaldoResponse, error)
	ListarMovimentacoes(ctx context.Context, caixaID uuid.UUID, dia time.Time) ([]dto.MovimentacaoResponse, error)
}

type caixaService struct {
	repo           repository.CaixaRepository
	fechamentoRepo repository.FechamentoRepository
	vendaRepo      repository.VendaRepository
	loc            *time.Location
}

func NewCaixaService(
	repo repository.CaixaRepository,
	fechamentoRepo repository.FechamentoRepository,
	vendaRepo repository.VendaRepository,
	loc *time.Location,
) CaixaService {
	return &caixaService{repo: repo, fechamentoRepo: fechamentoRepo, vendaRepo: vendaRepo, loc: loc}
}

// ── Criar / Listar ────────────────────────────────────────────────────────────

func (s *caixaService) Criar(ctx context.Context, req dto.CriarCaixaRequest) (*dto.CaixaResponse, error) {
	if existing, err := s.repo.FindByNome(ctx, req.Nome); err == nil && existing != nil {
		return nil, fmt.Errorf("já existe um caixa com o nome %q", req.Nome)
	}
	caixa := &model.Caixa{
		Nome:       req.Nome,
		SaldoAtual: req.SaldoInicial.Round(2),
		Ativo:      true,
	}
	if err := s.repo.Create(ctx, caixa); err != nil {
		return nil, err
	}
	return caixaToResponse(caixa), nil
}

func (s *caixaService) Listar(ctx context.Context, incluirInativos bool) ([]dto.CaixaResponse, error) {
	caixas, err := s.repo.List(ctx, incluirInativos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CaixaResponse, 0, len(caixas))
	for i := range caixas {
		out = append(out, *caixaToResponse(&caixas[i]))
	}
	return out, nil
}

// Desativar marks a register inactive. Registers are never deleted because
// movimentações and fechamentos reference them.
func (s *caixaService) Desativar(ctx context.Context, caixaID uuid.UUID) error {
	caixa, err := s.repo.FindByID(ctx, caixaID)
	if err != nil {
		return errors.New("caixa não encontrado")
	}
	caixa.Ativo = false
	return s.repo.Update(ctx, caixa)
}

// ── Movimentações manuais ─────────────────────────────────────────────────────

func (s *caixaService) RegistrarMovimentacaoManual(ctx context.Context, usuarioID uuid.UUID, req dto.MovimentacaoManualRequest) (*dto.MovimentacaoResponse, error) {
	caixaID, err := uuid.Parse(req.CaixaID)
	if err != nil {
		return nil, fmt.Errorf("caixa_id inválido: %w", err)
	}
	caixa, err := s.repo.FindByID(ctx, caixaID)
	if err != nil {
		return nil, errors.New("caixa não encontrado")
	}
	if !caixa.Ativo {
		return nil, fmt.Errorf("o caixa %q está inativo", caixa.Nome)
	}

	mov := &model.MovimentacaoCaixa{
		Tipo:             req.Tipo,
		Valor:            req.Valor.Round(2),
		Motivo:           req.Motivo,
		DataMovimentacao: time.Now().In(s.loc),
		CriadoPorID:      &usuarioID,
	}
	switch req.Tipo {
	case model.MovEntrada:
		mov.CaixaDestinoID = &caixa.ID
	case model.MovSaida:
		mov.CaixaOrigemID = &caixa.ID
	default:
		return nil, fmt.Errorf("tipo de movimentação inválido: %q", req.Tipo)
	}

	if err := s.repo.AplicarMovimentacao(ctx, mov); err != nil {
		return nil, err
	}
	return s.movimentacaoToResponse(ctx, mov), nil
}

func (s *caixaService) Transferir(ctx context.Context, usuarioID uuid.UUID, req dto.TransferenciaRequest) error {
	origemID, err := uuid.Parse(req.CaixaOrigemID)
	if err != nil {
		return fmt.Errorf("caixa_origem_id inválido: %w", err)
	}
	destinoID, err := uuid.Parse(req.CaixaDestinoID)
	if err != nil {
		return fmt.Errorf("caixa_destino_id inválido: %w", err)
	}
	if origemID == destinoID {
		return errors.New("caixa de origem e destino devem ser diferentes")
	}

	origem, err := s.repo.FindByID(ctx, origemID)
	if err != nil {
		return errors.New("caixa de origem não encontrado")
	}
	destino, err := s.repo.FindByID(ctx, destinoID)
	if err != nil {
		return errors.New("caixa de destino não encontrado")
	}

	agora := time.Now().In(s.loc)
	valor := req.Valor.Round(2)
	motivo := fmt.Sprintf("Transferência %s → %s: %s", origem.Nome, destino.Nome, req.Motivo)

	saida := &model.MovimentacaoCaixa{
		CaixaOrigemID:    &origem.ID,
		Tipo:             model.MovTransferenciaOut,
		Valor:            valor,
		Motivo:           motivo,
		DataMovimentacao: agora,
		CriadoPorID:      &usuarioID,
	}
	entrada := &model.MovimentacaoCaixa{
		CaixaDestinoID:   &destino.ID,
		Tipo:             model.MovTransferenciaIn,
		Valor:            valor,
		Motivo:           motivo,
		DataMovimentacao: agora,
		CriadoPorID:      &usuarioID,
	}
	return s.repo.AplicarTransferencia(ctx, saida, entrada)
}

func (s *caixaService) AjusteAdministrativo(ctx context.Context, usuarioID uuid.UUID, req dto.AjusteAdministrativoRequest) (*dto.MovimentacaoResponse, error) {
	caixaID, err := uuid.Parse(req.CaixaID)
	if err != nil {
		return nil, fmt.Errorf("caixa_id inválido: %w", err)
	}
	caixa, err := s.repo.FindByID(ctx, caixaID)
	if err != nil {
		return nil, errors.New("caixa não encontrado")
	}

	alvo := req.SaldoAlvo.Round(2)
	diff := alvo.Sub(caixa.SaldoAtual)
	if money.Iguais(alvo, caixa.SaldoAtual, money.ToleranciaCentavos) {
		return nil, errors.New("o saldo do caixa já corresponde ao valor alvo")
	}

	mov := &model.MovimentacaoCaixa{
		Valor:            diff.Abs(),
		Motivo:           "Ajuste administrativo: " + req.Motivo,
		DataMovimentacao: time.Now().In(s.loc),
		CriadoPorID:      &usuarioID,
	}
	if diff.IsPositive() {
		mov.Tipo = model.MovEntrada
		mov.CaixaDestinoID = &caixa.ID
	} else {
		mov.Tipo = model.MovSaida
		mov.CaixaOrigemID = &caixa.ID
	}

	if err := s.repo.AplicarMovimentacao(ctx, mov); err != nil {
		return nil, err
	}
	log.Info().
		Str("caixa", caixa.Nome).
		Str("saldo_anterior", caixa.SaldoAtual.StringFixed(2)).
		Str("saldo_alvo", alvo.StringFixed(2)).
		Msg("ajuste administrativo de saldo aplicado")
	return s.movimentacaoToResponse(ctx, mov), nil
}

// ── Registro do movimento de venda ────────────────────────────────────────────

func (s *caixaService) RegistrarMovimentoVenda(ctx context.Context, vendaID, caixaNome string, pagamentos []dto.PagamentoVenda, dataVenda time.Time, criadoPorID *uuid.UUID) dto.ResultadoMovimentoVenda {
	totalDinheiro := decimal.Zero
	for _, p := range pagamentos {
		if money.EhDinheiro(p.Metodo) {
			totalDinheiro = totalDinheiro.Add(p.Valor)
		}
	}
	totalDinheiro = totalDinheiro.Round(2)

	// No cash changed hands; there is nothing to put in the drawer.
	if !totalDinheiro.IsPositive() {
		return dto.ResultadoMovimentoVenda{Sucesso: true, ValorRegistrado: decimal.Zero}
	}

	// Cheap pre-check. The unique venda_id column is the real guarantee;
	// this just avoids opening a transaction for the common repeat case.
	if existente, err := s.repo.FindMovimentacaoPorVenda(ctx, vendaID); err == nil && existente != nil {
		return dto.ResultadoMovimentoVenda{
			Sucesso:         true,
			MovimentacaoID:  &existente.ID,
			ValorRegistrado: existente.Valor,
			Erro:            "DUPLICADO",
		}
	}

	caixa, err := s.repo.FindByNome(ctx, caixaNome)
	if err != nil {
		return dto.ResultadoMovimentoVenda{
			Sucesso:         false,
			ValorRegistrado: totalDinheiro,
			Erro:            fmt.Sprintf("caixa %q não encontrado", caixaNome),
		}
	}

	mov := &model.MovimentacaoCaixa{
		CaixaDestinoID:   &caixa.ID,
		Tipo:             model.MovVenda,
		Valor:            totalDinheiro,
		Motivo:           "Venda #" + vendaID,
		VendaID:          &vendaID,
		DataMovimentacao: dataVenda,
		CriadoPorID:      criadoPorID,
	}
	inserida, err := s.repo.AplicarMovimentacaoVenda(ctx, mov)
	if err != nil {
		log.Error().Err(err).
			Str("venda_id", vendaID).
			Str("caixa", caixaNome).
			Str("valor", totalDinheiro.StringFixed(2)).
			Msg("falha ao registrar movimento de venda")
		return dto.ResultadoMovimentoVenda{
			Sucesso:         false,
			ValorRegistrado: totalDinheiro,
			Erro:            err.Error(),
		}
	}
	if !inserida {
		// Another writer recorded this sale between the pre-check and the
		// insert. The ledger has exactly one entry, which is all we wanted.
		existente, err := s.repo.FindMovimentacaoPorVenda(ctx, vendaID)
		res := dto.ResultadoMovimentoVenda{
			Sucesso:         true,
			ValorRegistrado: totalDinheiro,
			Erro:            "DUPLICADO",
		}
		if err == nil && existente != nil {
			res.MovimentacaoID = &existente.ID
			res.ValorRegistrado = existente.Valor
		}
		return res
	}

	return dto.ResultadoMovimentoVenda{
		Sucesso:         true,
		MovimentacaoID:  &mov.ID,
		ValorRegistrado: totalDinheiro,
	}
}

// ── CalcularSaldo ─────────────────────────────────────────────────────────────

// CalcularSaldo derives how much cash the system says the drawer should hold
// at the end of the given business day. The opening balance comes from the
// most recent prior closing's counted value plus the net movements of any
// uncovered days since that closing; for a register never closed it is
// reconstructed from the cached saldo minus the day's net movements.
// Manual movements of the day shift the opening figure; sales cash is summed
// from the sales table itself, so a missing venda movement (pre
// reconciliation) does not distort the figure.
func (s *caixaService) CalcularSaldo(ctx context.Context, caixaID uuid.UUID, dia time.Time) (*dto.SaldoResponse, error) {
	caixa, err := s.repo.FindByID(ctx, caixaID)
	if err != nil {
		return nil, errors.New("caixa não encontrado")
	}

	inicio := time.Date(dia.Year(), dia.Month(), dia.Day(), 0, 0, 0, 0, s.loc)
	fim := inicio.Add(24 * time.Hour)

	var aberturaBase decimal.Decimal
	anterior, err := s.fechamentoRepo.FindUltimoAnterior(ctx, caixaID, inicio)
	if err != nil {
		return nil, err
	}
	if anterior != nil {
		aberturaBase = anterior.ValorContado
		// The last closing may be days old (register idle, closing skipped).
		// Movements recorded on the days in between still changed the drawer,
		// so their net effect rolls into the opening figure.
		ant := anterior.DataFechamento
		anteriorFim := time.Date(ant.Year(), ant.Month(), ant.Day(), 0, 0, 0, 0, s.loc).Add(24 * time.Hour)
		if anteriorFim.Before(inicio) {
			netIntervalo, err := s.repo.SomaMovimentacoesDia(ctx, caixaID, anteriorFim, inicio, false)
			if err != nil {
				return nil, err
			}
			aberturaBase = aberturaBase.Add(netIntervalo)
		}
	} else {
		netDia, err := s.repo.SomaMovimentacoesDia(ctx, caixaID, inicio, fim, false)
		if err != nil {
			return nil, err
		}
		aberturaBase = caixa.SaldoAtual.Sub(netDia)
	}

	manuais, err := s.repo.SomaMovimentacoesDia(ctx, caixaID, inicio, fim, true)
	if err != nil {
		return nil, err
	}
	abertura := aberturaBase.Add(manuais)

	vendasDinheiro, err := s.vendaRepo.TotalDinheiroPorCaixa(ctx, caixa.Nome, inicio, fim)
	if err != nil {
		return nil, err
	}

	return &dto.SaldoResponse{
		CaixaID:             caixa.ID.String(),
		CaixaNome:           caixa.Nome,
		Dia:                 inicio.Format("2006-01-02"),
		SaldoAbertura:       abertura.Round(2),
		TotalVendasDinheiro: vendasDinheiro.Round(2),
		SaldoSistema:        abertura.Add(vendasDinheiro).Round(2),
	}, nil
}

func (s *caixaService) ListarMovimentacoes(ctx context.Context, caixaID uuid.UUID, dia time.Time) ([]dto.MovimentacaoResponse, error) {
	inicio := time.Date(dia.Year(), dia.Month(), dia.Day(), 0, 0, 0, 0, s.loc)
	movs, err := s.repo.ListMovimentacoes(ctx, caixaID, inicio, inicio.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimentacaoResponse, 0, len(movs))
	for i := range movs {
		out = append(out, *s.movimentacaoToResponse(ctx, &movs[i]))
	}
	return out, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func caixaToResponse(c *model.Caixa) *dto.CaixaResponse {
	return &dto.CaixaResponse{
		ID:           c.ID.String(),
		Nome:         c.Nome,
		SaldoAtual:   c.SaldoAtual,
		Ativo:        c.Ativo,
		AtualizadoEm: c.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *caixaService) movimentacaoToResponse(ctx context.Context, m *model.MovimentacaoCaixa) *dto.MovimentacaoResponse {
	resp := &dto.MovimentacaoResponse{
		ID:               m.ID.String(),
		Tipo:             m.Tipo,
		Valor:            m.Valor,
		Motivo:           m.Motivo,
		DataMovimentacao: m.DataMovimentacao,
	}
	resp.CaixaOrigem = s.nomeCaixa(ctx, m.CaixaOrigemID)
	resp.CaixaDestino = s.nomeCaixa(ctx, m.CaixaDestinoID)
	return resp
}

func (s *caixaService) nomeCaixa(ctx context.Context, id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	c, err := s.repo.FindByID(ctx, *id)
	if err != nil {
		return nil
	}
	return &c.Nome
}
