package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/model"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/money"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Dispatcher enqueues async jobs into the worker queues. Satisfied by
// *worker.Dispatcher; kept as an interface so services stay testable
// without Redis.
type Dispatcher interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

// FlagStore persists small day-scoped boolean flags (alert dismissals, the
// evaluation-register open mark). Backed by Redis; losing a flag only
// re-prompts, never corrupts data.
type FlagStore interface {
	Marcar(ctx context.Context, chave string) error
	Marcada(ctx context.Context, chave string) (bool, error)
}

// CaixaAvaliacao is the evaluation register, opened through its own
// counted-value gate each morning.
const CaixaAvaliacao = "Avaliação"

type FechamentoService interface {
	// FecharCaixa closes the current business day for a register. The
	// closing is immutable once created; only Aprovar/Rejeitar touch it
	// afterwards.
	FecharCaixa(ctx context.Context, usuarioID uuid.UUID, req dto.FecharCaixaRequest) (*dto.FechamentoResponse, error)
	// FecharRetroativo backfills a closing for a past day. Always enters
	// pendente_aprovacao, even when the difference is zero.
	FecharRetroativo(ctx context.Context, usuarioID uuid.UUID, req dto.FechamentoRetroativoRequest) (*dto.FechamentoResponse, error)
	Aprovar(ctx context.Context, adminID, fechamentoID uuid.UUID) (*dto.FechamentoResponse, error)
	Rejeitar(ctx context.Context, adminID, fechamentoID uuid.UUID) (*dto.FechamentoResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.FechamentoResponse, error)
	ListarPorDia(ctx context.Context, dia time.Time) ([]dto.FechamentoResponse, error)
	ListarPendentes(ctx context.Context) ([]dto.FechamentoResponse, error)
	// AbrirAvaliacao is the morning opening gate of the "Avaliação"
	// register: count the drawer, compare against the system balance and
	// persist the open mark when they agree.
	AbrirAvaliacao(ctx context.Context, usuarioID uuid.UUID, req dto.AberturaAvaliacaoRequest) (*dto.AberturaAvaliacaoResponse, error)
}

type fechamentoService struct {
	repo       repository.FechamentoRepository
	caixaRepo  repository.CaixaRepository
	caixaSvc   CaixaService
	dispatcher Dispatcher
	flags      FlagStore
	loc        *time.Location
}

func NewFechamentoService(
	repo repository.FechamentoRepository,
	caixaRepo repository.CaixaRepository,
	caixaSvc CaixaService,
	dispatcher Dispatcher,
	flags FlagStore,
	loc *time.Location,
) FechamentoService {
	return &fechamentoService{
		repo:       repo,
		caixaRepo:  caixaRepo,
		caixaSvc:   caixaSvc,
		dispatcher: dispatcher,
		flags:      flags,
		loc:        loc,
	}
}

// ValidarAbertura reports whether a counted opening value matches the system
// balance within the standard cent tolerance.
func ValidarAbertura(valorContado, valorSistema decimal.Decimal) bool {
	return money.Iguais(valorContado, valorSistema, money.ToleranciaCentavos)
}

// ── FecharCaixa ───────────────────────────────────────────────────────────────

func (s *fechamentoService) FecharCaixa(ctx context.Context, usuarioID uuid.UUID, req dto.FecharCaixaRequest) (*dto.FechamentoResponse, error) {
	caixaID, err := uuid.Parse(req.CaixaID)
	if err != nil {
		return nil, fmt.Errorf("caixa_id inválido: %w", err)
	}

	hoje := meiaNoite(time.Now().In(s.loc), s.loc)
	dia := hoje
	if req.Dia != "" {
		dia, err = time.ParseInLocation("2006-01-02", req.Dia, s.loc)
		if err != nil {
			return nil, fmt.Errorf("dia inválido: %w", err)
		}
	}
	if dia.After(hoje) {
		return nil, errors.New("não é possível fechar um dia futuro")
	}
	if dia.Before(hoje) {
		return nil, errors.New("para fechar um dia anterior use o fechamento retroativo")
	}

	resumo, err := marshalResumo(req.ResumoPagamentos)
	if err != nil {
		return nil, err
	}

	return s.criarFechamento(ctx, usuarioID, caixaID, dia, req.ValorContado, req.Justificativa, resumo, false)
}

func (s *fechamentoService) FecharRetroativo(ctx context.Context, usuarioID uuid.UUID, req dto.FechamentoRetroativoRequest) (*dto.FechamentoResponse, error) {
	caixaID, err := uuid.Parse(req.CaixaID)
	if err != nil {
		return nil, fmt.Errorf("caixa_id inválido: %w", err)
	}
	dia, err := time.ParseInLocation("2006-01-02", req.Dia, s.loc)
	if err != nil {
		return nil, fmt.Errorf("dia inválido: %w", err)
	}
	hoje := meiaNoite(time.Now().In(s.loc), s.loc)
	if !dia.Before(hoje) {
		return nil, errors.New("fechamento retroativo exige um dia anterior a hoje")
	}

	justificativa := req.Justificativa
	if justificativa == nil || strings.TrimSpace(*justificativa) == "" {
		padrao := "Fechamento retroativo"
		justificativa = &padrao
	}
	return s.criarFechamento(ctx, usuarioID, caixaID, dia, req.ValorContado, justificativa, nil, true)
}

// criarFechamento runs the shared closing pipeline. retroativo forces the
// pendente_aprovacao status no matter the difference: a backdated count can
// not be re-verified against the physical drawer, so a person signs off.
func (s *fechamentoService) criarFechamento(
	ctx context.Context,
	usuarioID, caixaID uuid.UUID,
	dia time.Time,
	valorContado decimal.Decimal,
	justificativa *string,
	resumo []byte,
	retroativo bool,
) (*dto.FechamentoResponse, error) {
	caixa, err := s.caixaRepo.FindByID(ctx, caixaID)
	if err != nil {
		return nil, errors.New("caixa não encontrado")
	}

	if existente, err := s.repo.FindByCaixaEDia(ctx, caixaID, dia); err != nil {
		return nil, err
	} else if existente != nil {
		return nil, fmt.Errorf("o caixa %q já possui fechamento para %s", caixa.Nome, dia.Format("02/01/2006"))
	}

	saldo, err := s.caixaSvc.CalcularSaldo(ctx, caixaID, dia)
	if err != nil {
		return nil, err
	}

	contado := valorContado.Round(2)
	if contado.IsNegative() {
		return nil, errors.New("o valor contado não pode ser negativo")
	}
	diferenca := contado.Sub(saldo.SaldoSistema)
	dentroTolerancia := money.Iguais(contado, saldo.SaldoSistema, money.ToleranciaCentavos)

	status := model.FechamentoAprovado
	if retroativo || !dentroTolerancia {
		status = model.FechamentoPendente
	}
	if !dentroTolerancia {
		if justificativa == nil || strings.TrimSpace(*justificativa) == "" {
			return nil, fmt.Errorf(
				"diferença de R$ %s no caixa %q exige justificativa",
				diferenca.StringFixed(2), caixa.Nome,
			)
		}
	}

	fechamento := &model.FechamentoCaixa{
		CaixaID:          caixaID,
		DataFechamento:   dia,
		SaldoSistema:     saldo.SaldoSistema,
		ValorContado:     contado,
		Diferenca:        diferenca,
		Justificativa:    justificativa,
		Status:           status,
		CriadoPorID:      usuarioID,
		ResumoPagamentos: resumo,
	}
	if err := s.repo.Create(ctx, fechamento); err != nil {
		return nil, fmt.Errorf("falha ao gravar o fechamento: %w", err)
	}
	fechamento.Caixa = caixa

	log.Info().
		Str("caixa", caixa.Nome).
		Str("dia", dia.Format("2006-01-02")).
		Str("diferenca", diferenca.StringFixed(2)).
		Str("status", status).
		Msg("fechamento de caixa registrado")

	if status == model.FechamentoPendente {
		s.notificarPendente(ctx, fechamento)
	}
	return fechamentoToResponse(fechamento), nil
}

// notificarPendente queues the divergence report mail. Best effort: the
// closing is already persisted and must not be rolled back over a full
// queue.
func (s *fechamentoService) notificarPendente(ctx context.Context, f *model.FechamentoCaixa) {
	if s.dispatcher == nil {
		return
	}
	payload := map[string]string{
		"tipo":          "fechamento_pendente",
		"fechamento_id": f.ID.String(),
	}
	if err := s.dispatcher.EnqueueEmail(ctx, payload); err != nil {
		log.Error().Err(err).Str("fechamento_id", f.ID.String()).
			Msg("falha ao enfileirar alerta de fechamento pendente")
	}
}

// ── Aprovação ─────────────────────────────────────────────────────────────────

func (s *fechamentoService) Aprovar(ctx context.Context, adminID, fechamentoID uuid.UUID) (*dto.FechamentoResponse, error) {
	return s.transicionar(ctx, adminID, fechamentoID, model.FechamentoAprovado)
}

func (s *fechamentoService) Rejeitar(ctx context.Context, adminID, fechamentoID uuid.UUID) (*dto.FechamentoResponse, error) {
	return s.transicionar(ctx, adminID, fechamentoID, model.FechamentoRejeitado)
}

func (s *fechamentoService) transicionar(ctx context.Context, adminID, fechamentoID uuid.UUID, destino string) (*dto.FechamentoResponse, error) {
	f, err := s.repo.FindByID(ctx, fechamentoID)
	if err != nil {
		return nil, errors.New("fechamento não encontrado")
	}
	if f.Status != model.FechamentoPendente {
		return nil, fmt.Errorf("fechamento com status %q não pode ser alterado", f.Status)
	}
	if err := s.repo.UpdateStatus(ctx, fechamentoID, destino); err != nil {
		return nil, err
	}
	f.Status = destino

	log.Info().
		Str("fechamento_id", fechamentoID.String()).
		Str("status", destino).
		Str("admin_id", adminID.String()).
		Msg("fechamento revisado")
	return fechamentoToResponse(f), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *fechamentoService) Obter(ctx context.Context, id uuid.UUID) (*dto.FechamentoResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("fechamento não encontrado")
	}
	return fechamentoToResponse(f), nil
}

func (s *fechamentoService) ListarPorDia(ctx context.Context, dia time.Time) ([]dto.FechamentoResponse, error) {
	fs, err := s.repo.ListByDia(ctx, meiaNoite(dia, s.loc))
	if err != nil {
		return nil, err
	}
	return fechamentosToResponse(fs), nil
}

func (s *fechamentoService) ListarPendentes(ctx context.Context) ([]dto.FechamentoResponse, error) {
	fs, err := s.repo.ListPendentes(ctx)
	if err != nil {
		return nil, err
	}
	return fechamentosToResponse(fs), nil
}

// ── Abertura do caixa de avaliação ────────────────────────────────────────────

func (s *fechamentoService) AbrirAvaliacao(ctx context.Context, usuarioID uuid.UUID, req dto.AberturaAvaliacaoRequest) (*dto.AberturaAvaliacaoResponse, error) {
	caixa, err := s.caixaRepo.FindByNome(ctx, CaixaAvaliacao)
	if err != nil {
		return nil, fmt.Errorf("caixa %q não encontrado", CaixaAvaliacao)
	}

	contado := req.ValorContado.Round(2)
	sistema := caixa.SaldoAtual
	aberto := ValidarAbertura(contado, sistema)

	if aberto && s.flags != nil {
		dia := time.Now().In(s.loc).Format("2006-01-02")
		if err := s.flags.Marcar(ctx, "avaliacao:aberta:"+dia); err != nil {
			log.Error().Err(err).Msg("falha ao persistir a marca de abertura da avaliação")
		}
	}

	return &dto.AberturaAvaliacaoResponse{
		Aberto:       aberto,
		ValorContado: contado,
		SaldoSistema: sistema,
		Diferenca:    contado.Sub(sistema),
	}, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func meiaNoite(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func marshalResumo(resumo map[string]decimal.Decimal) ([]byte, error) {
	if len(resumo) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(resumo)
	if err != nil {
		return nil, fmt.Errorf("resumo_pagamentos inválido: %w", err)
	}
	return data, nil
}

func fechamentoToResponse(f *model.FechamentoCaixa) *dto.FechamentoResponse {
	resp := &dto.FechamentoResponse{
		ID:             f.ID.String(),
		CaixaID:        f.CaixaID.String(),
		DataFechamento: f.DataFechamento.Format("2006-01-02"),
		SaldoSistema:   f.SaldoSistema,
		ValorContado:   f.ValorContado,
		Diferenca:      f.Diferenca,
		Justificativa:  f.Justificativa,
		Status:         f.Status,
		CriadoPor:      f.CriadoPorID.String(),
		CreatedAt:      f.CreatedAt.Format(time.RFC3339),
	}
	if f.Caixa != nil {
		resp.CaixaNome = f.Caixa.Nome
	}
	return resp
}

func fechamentosToResponse(fs []model.FechamentoCaixa) []dto.FechamentoResponse {
	out := make([]dto.FechamentoResponse, 0, len(fs))
	for i := range fs {
		out = append(out, *fechamentoToResponse(&fs[i]))
	}
	return out
}
