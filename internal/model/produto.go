package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Produto is a consignment piece in the store catalog.
type Produto struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo     string          `gorm:"uniqueIndex;not null"`
	Nome       string          `gorm:"not null"`
	Categoria  string          `gorm:"index"`
	Preco      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantidade int             `gorm:"not null;default:0"`
	Ativo      bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
