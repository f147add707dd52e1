// cmd/seedcatalogo/main.go: loads a demo catalog for local development.
// Uso: go run ./cmd/seedcatalogo
package main

import (
	"context"
	"os"
	"time"

	"adegapos/internal/config"
	"adegapos/internal/dto"
	"adegapos/internal/infra"
	"adegapos/internal/repository"
	"adegapos/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var catalogo = []dto.CriarProdutoRequest{
	{Nome: "Cerveja Lata 350ml", Categoria: "Cervejas", PrecoVenda: decimal.RequireFromString("5.50"), PrecoCusto: decimal.RequireFromString("3.20"), Quantidade: 120, EstoqueMinimo: 24},
	{Nome: "Cerveja Long Neck", Categoria: "Cervejas", PrecoVenda: decimal.RequireFromString("8.90"), PrecoCusto: decimal.RequireFromString("5.10"), Quantidade: 60, EstoqueMinimo: 12},
	{Nome: "Refrigerante 2L", Categoria: "Refrigerantes", PrecoVenda: decimal.RequireFromString("10.00"), PrecoCusto: decimal.RequireFromString("6.40"), Quantidade: 30, EstoqueMinimo: 6},
	{Nome: "Água Mineral 500ml", Categoria: "Águas", PrecoVenda: decimal.RequireFromString("3.00"), PrecoCusto: decimal.RequireFromString("1.10"), Quantidade: 80, EstoqueMinimo: 20},
	{Nome: "Vinho Tinto Seco", Categoria: "Vinhos", PrecoVenda: decimal.RequireFromString("39.90"), PrecoCusto: decimal.RequireFromString("22.00"), Quantidade: 15, EstoqueMinimo: 4},
	{Nome: "Gelo 5kg", Categoria: "Conveniência", PrecoVenda: decimal.RequireFromString("12.00"), PrecoCusto: decimal.RequireFromString("5.00"), Quantidade: 10, EstoqueMinimo: 5},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	svc := service.NewCatalogoService(
		repository.NewProdutoRepository(db),
		repository.NewMovimentoEstoqueRepository(db),
		repository.NewClienteRepository(db),
		service.Integracoes{},
	)

	ctx := context.Background()
	criados := 0
	for _, p := range catalogo {
		existentes, err := svc.ListarProdutos(ctx, dto.ProdutoFilter{Busca: p.Nome, Page: 1, Limit: 1})
		if err != nil {
			log.Fatal().Err(err).Msg("catalog lookup failed")
		}
		if existentes.Total > 0 {
			log.Info().Str("produto", p.Nome).Msg("already present")
			continue
		}
		if _, err := svc.CriarProduto(ctx, p); err != nil {
			log.Fatal().Err(err).Str("produto", p.Nome).Msg("seed failed")
		}
		criados++
	}
	if _, err := svc.CriarCliente(ctx, dto.CriarClienteRequest{Nome: "Cliente Balcão"}); err != nil {
		log.Warn().Err(err).Msg("demo customer not created")
	}
	log.Info().Int("criados", criados).Int("total", len(catalogo)).Msg("catalog seeded")
}
