package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LancamentoFilter is bound from the query string of GET /v1/lancamentos.
// De and Ate are YYYY-MM-DD in the store's timezone.
type LancamentoFilter struct {
	Tipo      string `form:"tipo"      validate:"omitempty,oneof=entrada saida"`
	Categoria string `form:"categoria"`
	De        string `form:"de"`
	Ate       string `form:"ate"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type LancamentoResponse struct {
	ID        string          `json:"id"`
	Tipo      string          `json:"tipo"`
	Descricao string          `json:"descricao"`
	Categoria string          `json:"categoria"`
	Valor     decimal.Decimal `json:"valor"`
	Metodo    string          `json:"metodo"`
	Data      time.Time       `json:"data"`
	VendaID   *string         `json:"venda_id,omitempty"`
}

type LancamentoListResponse struct {
	Data     []LancamentoResponse `json:"data"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	Limit    int                  `json:"limit"`
	Entradas decimal.Decimal      `json:"entradas"`
	Saidas   decimal.Decimal      `json:"saidas"`
	Saldo    decimal.Decimal      `json:"saldo"`
}
