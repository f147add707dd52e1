package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// VendaFilter is bound from the query string of GET /v1/vendas.
type VendaFilter struct {
	Status string `form:"status"` // paid | pending | cancelled; empty = all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VendaListResponse struct {
	Data  []VendaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemVendaRequest is one requested line. Lines with an empty produto_id or a
// non-positive quantidade are dropped before validation of the order.
type ItemVendaRequest struct {
	ProdutoID  string `json:"produto_id"`
	Quantidade int    `json:"quantidade"`
	// PrecoUnitario is the price shown to the customer; nil falls back to the catalog price.
	PrecoUnitario *decimal.Decimal `json:"preco_unitario" validate:"omitempty,min=0"`
}

type RegistrarVendaRequest struct {
	ClienteID       *string            `json:"cliente_id"       validate:"omitempty,uuid"`
	ClienteNome     *string            `json:"cliente_nome"     validate:"omitempty,max=120"`
	MetodoPagamento string             `json:"metodo_pagamento" validate:"max=40"`
	Status          *string            `json:"status"           validate:"omitempty,oneof=paid pending cancelled"`
	Itens           []ItemVendaRequest `json:"itens"            validate:"dive"`
	Desconto        *decimal.Decimal   `json:"desconto"         validate:"omitempty,min=0"`
	TaxaEntrega     *decimal.Decimal   `json:"taxa_entrega"     validate:"omitempty,min=0"`
	// Total overrides the computed total when present.
	Total *decimal.Decimal `json:"total" validate:"omitempty,min=0"`
	// RealizadaEm back-dates the order; nil means now.
	RealizadaEm *time.Time `json:"realizada_em"`
}

type AlterarStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=paid pending cancelled"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVendaResponse struct {
	ProdutoID     string          `json:"produto_id"`
	Produto       string          `json:"produto,omitempty"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type VendaResponse struct {
	ID              string              `json:"id"`
	Numero          string              `json:"numero"`
	ClienteID       *string             `json:"cliente_id,omitempty"`
	Cliente         string              `json:"cliente,omitempty"`
	MetodoPagamento string              `json:"metodo_pagamento"`
	Status          string              `json:"status"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Desconto        decimal.Decimal     `json:"desconto"`
	TaxaEntrega     decimal.Decimal     `json:"taxa_entrega"`
	Total           decimal.Decimal     `json:"total"`
	RealizadaEm     time.Time           `json:"realizada_em"`
	AtualizadaEm    time.Time           `json:"atualizada_em"`
	Itens           []ItemVendaResponse `json:"itens,omitempty"`
}
