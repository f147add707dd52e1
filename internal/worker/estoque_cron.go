package worker

// estoque_cron.go
// Background goroutine that periodically sweeps the catalog for products at
// or below their minimum stock and publishes the count as a gauge. Alerts
// raised by individual sales cover the transitions; the sweep catches stock
// that was already low at startup or was lowered outside the API.

import (
	"context"
	"time"

	"adegapos/internal/metrics"
	"adegapos/internal/repository"

	"github.com/rs/zerolog/log"
)

const estoqueTickInterval = 15 * time.Minute

type EstoqueCronConfig struct {
	ProdutoRepo repository.ProdutoRepository
	Intervalo   time.Duration
}

// StartEstoqueCron runs one sweep immediately, then every Intervalo until
// ctx is cancelled.
func StartEstoqueCron(ctx context.Context, cfg EstoqueCronConfig) {
	if cfg.Intervalo <= 0 {
		cfg.Intervalo = estoqueTickInterval
	}
	go func() {
		ticker := time.NewTicker(cfg.Intervalo)
		defer ticker.Stop()

		log.Info().Dur("intervalo", cfg.Intervalo).Msg("estoque_cron: started")
		varrerEstoque(ctx, cfg.ProdutoRepo)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("estoque_cron: shutting down")
				return
			case <-ticker.C:
				varrerEstoque(ctx, cfg.ProdutoRepo)
			}
		}
	}()
}

func varrerEstoque(ctx context.Context, repo repository.ProdutoRepository) int {
	produtos, err := repo.ListEstoqueBaixo(ctx)
	if err != nil {
		log.Error().Err(err).Msg("estoque_cron: failed to query low stock")
		return -1
	}
	metrics.ProdutosEstoqueBaixo.Set(float64(len(produtos)))
	for _, p := range produtos {
		log.Debug().Str("produto", p.Nome).Int("quantidade", p.Quantidade).Int("estoque_minimo", p.EstoqueMinimo).Msg("estoque_cron: low stock")
	}
	return len(produtos)
}
