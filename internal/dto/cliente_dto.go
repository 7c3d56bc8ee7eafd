package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarClienteRequest struct {
	Nome     string  `json:"nome"     validate:"required,min=2,max=120"`
	Telefone *string `json:"telefone" validate:"omitempty,min=8,max=20"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

type AtualizarClienteRequest struct {
	Nome     string  `json:"nome"     validate:"omitempty,min=2,max=120"`
	Telefone *string `json:"telefone" validate:"omitempty,min=8,max=20"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

type CriarAvaliacaoRequest struct {
	ClienteID   string          `json:"cliente_id"  validate:"required,uuid"`
	Descricao   string          `json:"descricao"   validate:"required,min=3"`
	QtdItens    int             `json:"qtd_itens"   validate:"required,gt=0"`
	ValorOferta decimal.Decimal `json:"valor_oferta" validate:"required,gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID           string          `json:"id"`
	Nome         string          `json:"nome"`
	Telefone     *string         `json:"telefone"`
	Email        *string         `json:"email"`
	SaldoCredito decimal.Decimal `json:"saldo_credito"`
	Ativo        bool            `json:"ativo"`
}

type AvaliacaoResponse struct {
	ID          string          `json:"id"`
	ClienteID   string          `json:"cliente_id"`
	Cliente     string          `json:"cliente"`
	Descricao   string          `json:"descricao"`
	QtdItens    int             `json:"qtd_itens"`
	ValorOferta decimal.Decimal `json:"valor_oferta"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at"`
}
