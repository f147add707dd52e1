package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Produto is a catalog entry. Quantidade never drops below zero: every write
// goes through the clamped update in ProdutoRepository.AjustarEstoqueTx.
type Produto struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome          string          `gorm:"index;not null"`
	Categoria     string          `gorm:"not null;default:''"`
	PrecoVenda    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PrecoCusto    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantidade    int             `gorm:"not null;default:0"`
	EstoqueMinimo int             `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EstoqueBaixo reports whether the on-hand quantity reached the alert threshold.
func (p *Produto) EstoqueBaixo() bool { return p.Quantidade <= p.EstoqueMinimo }
