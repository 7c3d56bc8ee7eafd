package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale states.
const (
	VendaConcluida = "concluida"
	VendaCancelada = "cancelada"
)

// Canonical payment method names. Legacy rows may carry free-text variants
// ("Dinheiro", "PIX") — money.NormalizarMetodo translates them at the edge.
const (
	PagamentoDinheiro    = "dinheiro"
	PagamentoPix         = "pix"
	PagamentoCredito     = "cartao_credito"
	PagamentoDebito      = "cartao_debito"
	PagamentoCreditoLoja = "credito_loja"
)

// Venda is a completed sale with up to three payment legs.
// CaixaNome records which register took the sale — by name, because the
// operator picks the register by name at the terminal.
type Venda struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroTicket int64           `gorm:"uniqueIndex;not null"`
	CaixaNome    string          `gorm:"not null;index"`
	ClienteID    *uuid.UUID      `gorm:"type:uuid;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Desconto     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'concluida'"`
	// DataVenda is the business timestamp of the sale.
	DataVenda time.Time `gorm:"not null;index"`
	CreatedAt time.Time

	Itens      []VendaItem      `gorm:"foreignKey:VendaID"`
	Pagamentos []VendaPagamento `gorm:"foreignKey:VendaID"`
}

type VendaItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendaID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProdutoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantidade    int             `gorm:"not null"`
	PrecoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

type VendaPagamento struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Metodo  string          `gorm:"type:varchar(30);not null"`
	Valor   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Bandeira is the card brand, when Metodo is a card leg.
	Bandeira *string `gorm:"type:varchar(30)"`
}
