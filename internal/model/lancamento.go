package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LancamentoEntrada = "entrada"
	LancamentoSaida   = "saida"
)

const (
	CategoriaVendas     = "Sales"
	CategoriaFechamento = "Fechamento de Caixa"
)

// Lancamento is an append-only ledger row. There is no update path and
// deletion is a hard delete.
type Lancamento struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo          string          `gorm:"type:varchar(10);not null;index"`
	Descricao     string          `gorm:"not null"`
	Categoria     string          `gorm:"type:varchar(60);not null;index"`
	Valor         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Metodo        string          `gorm:"type:varchar(40);not null"`
	Data          time.Time       `gorm:"not null;index"`
	VendaID       *uuid.UUID      `gorm:"type:uuid;index"`
	SessaoCaixaID *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time
}

func (Lancamento) TableName() string { return "lancamentos" }
