package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCaixaRequest struct {
	ValorAbertura *decimal.Decimal `json:"valor_abertura" validate:"omitempty,min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// SessaoCaixaResponse describes a cash session. For an open session
// VendasPagas and TotalCorrente are computed at read time; for a closed one
// they are the values frozen at closing.
type SessaoCaixaResponse struct {
	ID                   string          `json:"id"`
	Status               string          `json:"status"`
	ValorAbertura        decimal.Decimal `json:"valor_abertura"`
	AbertaEm             time.Time       `json:"aberta_em"`
	FechadaEm            *time.Time      `json:"fechada_em,omitempty"`
	VendasPagas          decimal.Decimal `json:"vendas_pagas"`
	TotalCorrente        decimal.Decimal `json:"total_corrente"`
	FechamentoAutomatico bool            `json:"fechamento_automatico"`
	ProximoFechamento    *time.Time      `json:"proximo_fechamento_automatico,omitempty"`
}

type HistoricoCaixaResponse struct {
	Data  []SessaoCaixaResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
