package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"adegapos/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueRelatorioCaixa = "jobs:relatorio_caixa"
	QueueAlertaEstoque  = "jobs:alerta_estoque"
	QueueEmail          = "jobs:email"
)

// MaxTentativas is how many times a failing job runs before it is parked in
// the dead letter queue.
const MaxTentativas = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Tentativas int             `json:"tentativas,omitempty"`
}

// Processor handles the payload of one job type. A returned error makes the
// pool retry the job.
type Processor interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// WorkerHandlers maps job types to their processors. Nil members are
// skipped with a warning.
type WorkerHandlers struct {
	RelatorioCaixa Processor
	AlertaEstoque  Processor
	Email          Processor
}

func (h *WorkerHandlers) processor(jobType string) Processor {
	switch jobType {
	case "relatorio_caixa":
		return h.RelatorioCaixa
	case "alerta_estoque":
		return h.AlertaEstoque
	case "email":
		return h.Email
	}
	return nil
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

func (d *Dispatcher) EnqueueRelatorioCaixa(ctx context.Context, p RelatorioCaixaPayload) error {
	return d.enqueue(ctx, QueueRelatorioCaixa, "relatorio_caixa", p)
}

func (d *Dispatcher) EnqueueAlertaEstoque(ctx context.Context, p AlertaEstoquePayload) error {
	return d.enqueue(ctx, QueueAlertaEstoque, "alerta_estoque", p)
}

func (d *Dispatcher) EnqueueEmail(ctx context.Context, p EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", p)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming every queue.
// Each goroutine blocks on BRPOP, so idle workers cost nothing. The returned
// WaitGroup is done once all workers saw ctx cancelled.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, rdb, handlers, id)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return &wg
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueRelatorioCaixa, QueueEmail, QueueAlertaEstoque}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	err := executar(ctx, handlers, job)
	if err == nil {
		metrics.JobsProcessados.WithLabelValues(job.Type, "ok").Inc()
		return
	}

	proximo, reenfileirar := proximaTentativa(job)
	if !reenfileirar {
		metrics.JobsProcessados.WithLabelValues(job.Type, "dlq").Inc()
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), proximo.Tentativas)
		return
	}
	metrics.JobsProcessados.WithLabelValues(job.Type, "retry").Inc()
	log.Warn().Err(err).Str("type", job.Type).Int("tentativa", proximo.Tentativas).Msg("job failed, re-queued")
	if err := push(ctx, rdb, queue, proximo); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("failed to re-queue job")
	}
}

// executar runs the job through its processor, turning panics into errors so
// one bad payload cannot take a worker goroutine down.
func executar(ctx context.Context, handlers *WorkerHandlers, job Job) (err error) {
	p := handlers.processor(job.Type)
	if p == nil {
		log.Warn().Str("type", job.Type).Msg("no processor for job type, dropping")
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panic: %v", r)
		}
	}()
	return p.Process(ctx, job.Payload)
}

// proximaTentativa counts the failed run and reports whether the job has
// attempts left.
func proximaTentativa(job Job) (Job, bool) {
	job.Tentativas++
	return job, job.Tentativas < MaxTentativas
}
