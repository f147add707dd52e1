// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VendasRegistradas = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adega_vendas_registradas_total",
		Help: "Orders placed, by initial status",
	}, []string{"status"})

	VendasTransicoes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adega_vendas_transicoes_total",
		Help: "Order status transitions, by source and target status",
	}, []string{"de", "para"})

	Lancamentos = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adega_lancamentos_total",
		Help: "Ledger entries written, by direction and category",
	}, []string{"tipo", "categoria"})

	SequenciaFallback = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adega_sequencia_fallback_total",
		Help: "Order numbers derived from the clock because the counter failed",
	})

	CaixaFechamentos = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adega_caixa_fechamentos_total",
		Help: "Cash sessions closed, by mode",
	}, []string{"modo"})

	AutoFechamentoFalhas = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adega_auto_fechamento_falhas_total",
		Help: "Failed automatic close attempts",
	})

	EstoqueBaixo = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adega_estoque_baixo_alertas_total",
		Help: "Low-stock alerts raised, by product",
	}, []string{"produto"})

	ProdutosEstoqueBaixo = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "adega_produtos_estoque_baixo",
		Help: "Products at or below their minimum stock at the last sweep",
	})

	JobsProcessados = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adega_jobs_processados_total",
		Help: "Background jobs handled, by type and outcome",
	}, []string{"tipo", "resultado"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
