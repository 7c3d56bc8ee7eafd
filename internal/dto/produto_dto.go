package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarProdutoRequest struct {
	Codigo     string          `json:"codigo"     validate:"required,min=1,max=40"`
	Nome       string          `json:"nome"       validate:"required,min=2,max=120"`
	Categoria  string          `json:"categoria"  validate:"omitempty,max=60"`
	Preco      decimal.Decimal `json:"preco"      validate:"required,gt=0"`
	Quantidade int             `json:"quantidade" validate:"min=0"`
}

type AtualizarProdutoRequest struct {
	Nome       string           `json:"nome"       validate:"omitempty,min=2,max=120"`
	Categoria  string           `json:"categoria"  validate:"omitempty,max=60"`
	Preco      *decimal.Decimal `json:"preco"      validate:"omitempty"`
	Quantidade *int             `json:"quantidade" validate:"omitempty,min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProdutoResponse struct {
	ID         string          `json:"id"`
	Codigo     string          `json:"codigo"`
	Nome       string          `json:"nome"`
	Categoria  string          `json:"categoria"`
	Preco      decimal.Decimal `json:"preco"`
	Quantidade int             `json:"quantidade"`
	Ativo      bool            `json:"ativo"`
}
