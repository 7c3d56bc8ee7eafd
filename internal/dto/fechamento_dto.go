package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type FecharCaixaRequest struct {
	CaixaID       string          `json:"caixa_id"      validate:"required,uuid"`
	Dia           string          `json:"dia"           validate:"omitempty,datetime=2006-01-02"`
	ValorContado  decimal.Decimal `json:"valor_contado" validate:"min=0"`
	Justificativa *string         `json:"justificativa"`
	// ResumoPagamentos is an optional audit snapshot of the day's totals per
	// payment method, stored verbatim on the closing record.
	ResumoPagamentos map[string]decimal.Decimal `json:"resumo_pagamentos"`
}

// FechamentoRetroativoRequest backfills a closing for a prior business day
// that was never closed. Retroactive closings always require review.
type FechamentoRetroativoRequest struct {
	CaixaID       string          `json:"caixa_id"      validate:"required,uuid"`
	Dia           string          `json:"dia"           validate:"required,datetime=2006-01-02"`
	ValorContado  decimal.Decimal `json:"valor_contado" validate:"min=0"`
	Justificativa *string         `json:"justificativa"`
}

// DispensarAlertaRequest dismisses the missing-closing alert for one
// reference day. Empty data means the current reference day.
type DispensarAlertaRequest struct {
	Data string `json:"data" validate:"omitempty,datetime=2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FechamentoResponse struct {
	ID             string          `json:"id"`
	CaixaID        string          `json:"caixa_id"`
	CaixaNome      string          `json:"caixa_nome"`
	DataFechamento string          `json:"data_fechamento"`
	SaldoSistema   decimal.Decimal `json:"saldo_sistema"`
	ValorContado   decimal.Decimal `json:"valor_contado"`
	Diferenca      decimal.Decimal `json:"diferenca"`
	Justificativa  *string         `json:"justificativa"`
	Status         string          `json:"status"`
	CriadoPor      string          `json:"criado_por"`
	CreatedAt      string          `json:"created_at"`
}

// AlertaFechamentosResponse lists the registers missing a closing for the
// reference business day, plus the caller's role so the client decides
// between the blocking dialog (operador) and the dismissible banner (admin).
type AlertaFechamentosResponse struct {
	DataReferencia string   `json:"data_referencia"`
	Caixas         []string `json:"caixas"`
	Dispensado     bool     `json:"dispensado"`
	Papel          string   `json:"papel"`
}
