package worker

import (
	"context"
	"encoding/json"

	"adegapos/internal/metrics"

	"github.com/rs/zerolog/log"
)

// AlertaEstoquePayload is the job envelope sent to QueueAlertaEstoque.
type AlertaEstoquePayload struct {
	ProdutoID     string `json:"produto_id"`
	Nome          string `json:"nome"`
	Quantidade    int    `json:"quantidade"`
	EstoqueMinimo int    `json:"estoque_minimo"`
	Origem        string `json:"origem"`
}

// AlertaEstoqueWorker reports products that reached their minimum stock.
type AlertaEstoqueWorker struct{}

func NewAlertaEstoqueWorker() *AlertaEstoqueWorker { return &AlertaEstoqueWorker{} }

func (w *AlertaEstoqueWorker) Process(_ context.Context, raw json.RawMessage) error {
	var p AlertaEstoquePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("alerta_estoque: invalid payload")
		return nil
	}
	metrics.EstoqueBaixo.WithLabelValues(p.Nome).Inc()
	log.Warn().
		Str("produto_id", p.ProdutoID).
		Str("produto", p.Nome).
		Int("quantidade", p.Quantidade).
		Int("estoque_minimo", p.EstoqueMinimo).
		Str("origem", p.Origem).
		Msg("low stock")
	return nil
}
