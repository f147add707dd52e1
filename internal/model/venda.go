package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order status values.
const (
	StatusPago      = "paid"
	StatusPendente  = "pending"
	StatusCancelado = "cancelled"
)

// Payment methods with special meaning. Any other string is accepted as-is.
const (
	MetodoDinheiro = "Dinheiro"
	MetodoFiado    = "Fiado"
)

// StatusValido reports whether s is one of the three order statuses.
func StatusValido(s string) bool {
	switch s {
	case StatusPago, StatusPendente, StatusCancelado:
		return true
	}
	return false
}

// StatusInicial derives the status of a new order from its payment method:
// store credit starts pending, everything else is paid on the spot.
func StatusInicial(metodo string) string {
	if strings.EqualFold(strings.TrimSpace(metodo), MetodoFiado) {
		return StatusPendente
	}
	return StatusPago
}

// Venda is an order header. Total is fixed at creation time.
// ClienteID and ClienteNome are both optional; when ClienteID is set it wins.
type Venda struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero          string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	Sequencia       int64           `gorm:"not null"`
	ClienteID       *uuid.UUID      `gorm:"type:uuid;index"`
	ClienteNome     *string         `gorm:"type:varchar(120)"`
	MetodoPagamento string          `gorm:"type:varchar(40);not null"`
	Status          string          `gorm:"type:varchar(20);not null;index"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Desconto        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TaxaEntrega     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	RealizadaEm     time.Time       `gorm:"not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Cliente *Cliente    `gorm:"foreignKey:ClienteID"`
	Itens   []VendaItem `gorm:"foreignKey:VendaID"`
}

// VendaItem freezes price and quantity at sale time.
type VendaItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VendaID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProdutoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantidade    int             `gorm:"not null"`
	PrecoUnitario decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (VendaItem) TableName() string { return "venda_itens" }
