package model

import (
	"time"

	"github.com/google/uuid"
)

// MovimentoEstoque records one change to a product's on-hand quantity.
// Quantidade is the requested delta; the clamp at zero shows up as the gap
// between EstoqueAnterior+Quantidade and EstoqueNovo.
type MovimentoEstoque struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProdutoID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo            string    `gorm:"type:varchar(20);not null"` // "venda" | "reposicao" | "ajuste"
	Quantidade      int       `gorm:"not null"`
	EstoqueAnterior int       `gorm:"not null"`
	EstoqueNovo     int       `gorm:"not null"`
	Motivo          string
	VendaID         *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (MovimentoEstoque) TableName() string { return "movimentos_estoque" }

// Contador is a named monotonically increasing counter, one row per key.
type Contador struct {
	Chave string `gorm:"primaryKey;type:varchar(60)"`
	Valor int64  `gorm:"not null"`
}

func (Contador) TableName() string { return "contadores" }
