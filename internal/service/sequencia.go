package service

import (
	"context"
	"fmt"
	"time"

	"adegapos/internal/metrics"
	"adegapos/internal/repository"

	"github.com/rs/zerolog/log"
)

const prefixoVenda = "VENDA"

// FormatarNumero renders a sequence value as the order display number.
func FormatarNumero(seq int64) string {
	return fmt.Sprintf("%s%05d", prefixoVenda, seq)
}

// Sequenciador hands out order numbers from a per-store counter row.
type Sequenciador struct {
	repo  repository.ContadorRepository
	chave string
	now   func() time.Time
}

func NewSequenciador(repo repository.ContadorRepository, lojaID string, now func() time.Time) *Sequenciador {
	if now == nil {
		now = time.Now
	}
	return &Sequenciador{repo: repo, chave: "vendas:" + lojaID, now: now}
}

// Proximo returns the next order number. When the counter is unreachable it
// falls back to the last five digits of the current millisecond timestamp,
// trading uniqueness for liveness; the unique index on vendas.numero turns a
// collision into a conflict error instead of a duplicate.
func (s *Sequenciador) Proximo(ctx context.Context) (string, int64) {
	seq, err := s.repo.Incrementar(ctx, s.chave)
	if err == nil && seq > 0 {
		return FormatarNumero(seq), seq
	}
	seq = s.now().UnixMilli() % 100000
	metrics.SequenciaFallback.Inc()
	log.Warn().Err(err).Str("chave", s.chave).Int64("seq", seq).Msg("order counter unavailable, using clock fallback")
	return FormatarNumero(seq), seq
}
