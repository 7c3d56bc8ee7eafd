package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Evaluation states for client intake.
const (
	AvaliacaoAguardando = "aguardando"
	AvaliacaoAceita     = "aceita"
	AvaliacaoRecusada   = "recusada"
)

// Cliente is a customer who buys and/or brings goods for evaluation.
// SaldoCredito is store credit earned from accepted evaluations, spendable
// as a "credito_loja" payment leg.
type Cliente struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome         string    `gorm:"not null"`
	Telefone     *string
	Email        *string
	SaldoCredito decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Ativo        bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Avaliacao records the intake of secondhand goods brought by a client:
// how many pieces, the store's offer, and whether the client accepted.
// Accepting credits the client's SaldoCredito.
type Avaliacao struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Descricao     string          `gorm:"not null"`
	QtdItens      int             `gorm:"not null"`
	ValorOferta   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'aguardando'"`
	AvaliadoPorID uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
}

func (Avaliacao) TableName() string { return "avaliacoes" }
