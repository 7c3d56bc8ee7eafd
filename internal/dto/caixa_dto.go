package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarCaixaRequest struct {
	Nome         string          `json:"nome"          validate:"required,min=2,max=60"`
	SaldoInicial decimal.Decimal `json:"saldo_inicial" validate:"min=0"`
}

type MovimentacaoManualRequest struct {
	CaixaID string          `json:"caixa_id" validate:"required,uuid"`
	Tipo    string          `json:"tipo"     validate:"required,oneof=entrada saida"`
	Valor   decimal.Decimal `json:"valor"    validate:"required,gt=0"`
	Motivo  string          `json:"motivo"   validate:"required,min=3"`
}

type TransferenciaRequest struct {
	CaixaOrigemID  string          `json:"caixa_origem_id"  validate:"required,uuid"`
	CaixaDestinoID string          `json:"caixa_destino_id" validate:"required,uuid"`
	Valor          decimal.Decimal `json:"valor"            validate:"required,gt=0"`
	Motivo         string          `json:"motivo"           validate:"required,min=3"`
}

// AjusteAdministrativoRequest sets a register to a target balance. The
// adjustment itself is recorded as a compensating entrada/saida movement —
// the balance is never written directly.
type AjusteAdministrativoRequest struct {
	CaixaID   string          `json:"caixa_id"   validate:"required,uuid"`
	SaldoAlvo decimal.Decimal `json:"saldo_alvo" validate:"min=0"`
	Motivo    string          `json:"motivo"     validate:"required,min=3"`
}

type AberturaAvaliacaoRequest struct {
	ValorContado decimal.Decimal `json:"valor_contado" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CaixaResponse struct {
	ID           string          `json:"id"`
	Nome         string          `json:"nome"`
	SaldoAtual   decimal.Decimal `json:"saldo_atual"`
	Ativo        bool            `json:"ativo"`
	AtualizadoEm string          `json:"atualizado_em"`
}

// SaldoResponse is the derived "system says the drawer should contain X"
// figure for one register and business day.
type SaldoResponse struct {
	CaixaID             string          `json:"caixa_id"`
	CaixaNome           string          `json:"caixa_nome"`
	Dia                 string          `json:"dia"`
	SaldoAbertura       decimal.Decimal `json:"saldo_abertura"`
	TotalVendasDinheiro decimal.Decimal `json:"total_vendas_dinheiro"`
	SaldoSistema        decimal.Decimal `json:"saldo_sistema"`
}

// ResultadoMovimentoVenda is the success-shaped result of recording a sale's
// cash leg against a register. Erro "DUPLICADO" means the movement already
// existed — a no-op, not a failure. Any other non-empty Erro with
// Sucesso=false must be surfaced to the operator naming ValorRegistrado,
// because the sale itself has already been persisted irreversibly.
type ResultadoMovimentoVenda struct {
	Sucesso         bool            `json:"sucesso"`
	MovimentacaoID  *uuid.UUID      `json:"movimentacao_id,omitempty"`
	ValorRegistrado decimal.Decimal `json:"valor_registrado"`
	Erro            string          `json:"erro,omitempty"`
}

// PagamentoVenda is one payment leg as seen by the movement recorder and
// the reconciliation job.
type PagamentoVenda struct {
	Metodo   string          `json:"metodo"`
	Valor    decimal.Decimal `json:"valor"`
	Bandeira *string         `json:"bandeira,omitempty"`
}

type AberturaAvaliacaoResponse struct {
	Aberto       bool            `json:"aberto"`
	ValorContado decimal.Decimal `json:"valor_contado"`
	SaldoSistema decimal.Decimal `json:"saldo_sistema"`
	Diferenca    decimal.Decimal `json:"diferenca"`
}

type MovimentacaoResponse struct {
	ID               string          `json:"id"`
	CaixaOrigem      *string         `json:"caixa_origem"`
	CaixaDestino     *string         `json:"caixa_destino"`
	Tipo             string          `json:"tipo"`
	Valor            decimal.Decimal `json:"valor"`
	Motivo           string          `json:"motivo"`
	DataMovimentacao time.Time       `json:"data_movimentacao"`
}
