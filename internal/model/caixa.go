package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Caixa is a named cash drawer ("Caixa 1", "Caixa 2", "Avaliação").
// SaldoAtual is a cached projection kept in sync by movement application;
// the authoritative system balance is always derived from opening balance
// plus the day's movements. A caixa is never deleted while movimentações or
// fechamentos reference it — it is deactivated instead.
type Caixa struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome       string          `gorm:"uniqueIndex;not null"`
	SaldoAtual decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Ativo      bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Movement kinds. Valor is always stored positive; the sign is implied by
// the kind and by which side (origem/destino) references the caixa.
const (
	MovEntrada          = "entrada"
	MovSaida            = "saida"
	MovTransferenciaIn  = "transferencia_entrada"
	MovTransferenciaOut = "transferencia_saida"
	MovVenda            = "venda"
)

// Closing statuses.
const (
	FechamentoAprovado  = "aprovado"
	FechamentoPendente  = "pendente_aprovacao"
	FechamentoRejeitado = "rejeitado"
)

// MovimentacaoCaixa is an immutable entry in the cash ledger.
// Movements are NEVER modified or deleted — corrections create inverse
// entries. CaixaOrigemID nil means money entered from outside the system
// (e.g. a customer sale); CaixaDestinoID nil means money left the system.
// VendaID carries a unique constraint so that a sale can produce at most one
// "venda" movement, closing the double-recording race between the
// at-sale-time recorder and the reconciliation job.
type MovimentacaoCaixa struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CaixaOrigemID  *uuid.UUID      `gorm:"type:uuid;index"`
	CaixaDestinoID *uuid.UUID      `gorm:"type:uuid;index"`
	Tipo           string          `gorm:"type:varchar(30);not null"`
	Valor          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo         string          `gorm:"not null"`
	VendaID        *string         `gorm:"uniqueIndex"`
	// DataMovimentacao is the business timestamp — when the economic event
	// happened, not when the row was inserted. Backfilled movements keep the
	// sale's original time so they count toward the right business day.
	DataMovimentacao time.Time  `gorm:"not null;index"`
	CriadoPorID      *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time
}

func (MovimentacaoCaixa) TableName() string { return "movimentacoes_caixa" }

// FechamentoCaixa is the end-of-day reconciliation record for one caixa.
// Diferenca = ValorContado − SaldoSistema. Status starts as "aprovado" only
// when the difference is within the 1-cent tolerance; otherwise it starts
// as "pendente_aprovacao" and an administrator approves or rejects later.
// Never mutated after creation except by that approval action.
type FechamentoCaixa struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CaixaID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_fechamento_caixa_dia,unique,priority:1"`
	DataFechamento time.Time       `gorm:"type:date;not null;index:idx_fechamento_caixa_dia,unique,priority:2"`
	SaldoSistema   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ValorContado   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Diferenca      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Justificativa  *string
	Status         string    `gorm:"type:varchar(30);not null"`
	CriadoPorID    uuid.UUID `gorm:"type:uuid;not null"`
	// ResumoPagamentos is an optional JSON snapshot of the day's totals per
	// payment method. Audit only — never used in any comparison.
	ResumoPagamentos []byte `gorm:"type:jsonb"`
	CreatedAt        time.Time

	Caixa *Caixa `gorm:"foreignKey:CaixaID"`
}

func (FechamentoCaixa) TableName() string { return "fechamentos_caixa" }
