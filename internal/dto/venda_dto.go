package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVendaRequest struct {
	ProdutoID  string `json:"produto_id" validate:"required,uuid"`
	Quantidade int    `json:"quantidade" validate:"required,gt=0"`
}

type PagamentoRequest struct {
	Metodo   string          `json:"metodo"   validate:"required"`
	Valor    decimal.Decimal `json:"valor"    validate:"required,gt=0"`
	Bandeira *string         `json:"bandeira"`
}

type RegistrarVendaRequest struct {
	CaixaNome  string             `json:"caixa_nome" validate:"required"`
	ClienteID  *string            `json:"cliente_id" validate:"omitempty,uuid"`
	Itens      []ItemVendaRequest `json:"itens"      validate:"required,min=1,dive"`
	Desconto   decimal.Decimal    `json:"desconto"   validate:"min=0"`
	Pagamentos []PagamentoRequest `json:"pagamentos" validate:"required,min=1,max=3,dive"`
}

type CancelarVendaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ReconciliacaoRequest names the business day to sweep. Empty dia means
// today in the store timezone.
type ReconciliacaoRequest struct {
	Dia string `json:"dia" validate:"omitempty,datetime=2006-01-02"`
}

type VendaFilter struct {
	Data   string
	Estado string
	Page   int
	Limit  int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVendaResponse struct {
	Produto       string          `json:"produto"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type VendaResponse struct {
	ID           string              `json:"id"`
	NumeroTicket int64               `json:"numero_ticket"`
	CaixaNome    string              `json:"caixa_nome"`
	Itens        []ItemVendaResponse `json:"itens"`
	Subtotal     decimal.Decimal     `json:"subtotal"`
	Desconto     decimal.Decimal     `json:"desconto"`
	Total        decimal.Decimal     `json:"total"`
	Pagamentos   []PagamentoRequest  `json:"pagamentos"`
	Estado       string              `json:"estado"`
	DataVenda    string              `json:"data_venda"`
	// Aviso carries an operator-visible warning when the sale committed but
	// its cash movement could not be recorded, naming the exact amount that
	// needs manual reconciliation.
	Aviso string `json:"aviso,omitempty"`
}

type VendaListResponse struct {
	Data  []VendaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ResultadoReconciliacao summarizes one reconciliation run over a window.
type ResultadoReconciliacao struct {
	Corrigidas int      `json:"corrigidas"`
	Erros      []string `json:"erros"`
}
