package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CriarProdutoRequest struct {
	Nome          string          `json:"nome"           validate:"required,min=2,max=120"`
	Categoria     string          `json:"categoria"      validate:"max=60"`
	PrecoVenda    decimal.Decimal `json:"preco_venda"    validate:"min=0"`
	PrecoCusto    decimal.Decimal `json:"preco_custo"    validate:"min=0"`
	Quantidade    int             `json:"quantidade"     validate:"min=0"`
	EstoqueMinimo int             `json:"estoque_minimo" validate:"min=0"`
}

// AjustarEstoqueRequest applies a signed delta. Positive deltas are restocks.
type AjustarEstoqueRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type ProdutoFilter struct {
	Categoria string `form:"categoria"`
	Busca     string `form:"busca"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type ProdutoResponse struct {
	ID            string          `json:"id"`
	Nome          string          `json:"nome"`
	Categoria     string          `json:"categoria"`
	PrecoVenda    decimal.Decimal `json:"preco_venda"`
	PrecoCusto    decimal.Decimal `json:"preco_custo"`
	Quantidade    int             `json:"quantidade"`
	EstoqueMinimo int             `json:"estoque_minimo"`
	EstoqueBaixo  bool            `json:"estoque_baixo"`
	AtualizadoEm  time.Time       `json:"atualizado_em"`
}

type ProdutoListResponse struct {
	Data  []ProdutoResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type MovimentoEstoqueResponse struct {
	ID              string    `json:"id"`
	ProdutoID       string    `json:"produto_id"`
	Tipo            string    `json:"tipo"`
	Quantidade      int       `json:"quantidade"`
	EstoqueAnterior int       `json:"estoque_anterior"`
	EstoqueNovo     int       `json:"estoque_novo"`
	Motivo          string    `json:"motivo"`
	CriadoEm        time.Time `json:"criado_em"`
}

type CriarClienteRequest struct {
	Nome     string  `json:"nome"     validate:"required,min=2,max=120"`
	Telefone *string `json:"telefone" validate:"omitempty,max=30"`
}

type ClienteResponse struct {
	ID       string  `json:"id"`
	Nome     string  `json:"nome"`
	Telefone *string `json:"telefone,omitempty"`
}
