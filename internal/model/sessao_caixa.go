package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CaixaAberto  = "open"
	CaixaFechado = "closed"
)

// SessaoCaixa is a daily cash session. While open, the running total is
// derived from paid orders on every read; closing freezes it into
// TotalFechamento and VendasFechamento.
type SessaoCaixa struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Status               string          `gorm:"type:varchar(10);not null"`
	ValorAbertura        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	AbertaEm             time.Time       `gorm:"not null"`
	FechadaEm            *time.Time
	VendasFechamento     *decimal.Decimal `gorm:"type:numeric(12,2)"`
	TotalFechamento      *decimal.Decimal `gorm:"type:numeric(12,2)"`
	FechamentoAutomatico bool             `gorm:"not null;default:false"`
}

func (SessaoCaixa) TableName() string { return "sessoes_caixa" }

func (s *SessaoCaixa) Aberta() bool { return s.Status == CaixaAberto }
