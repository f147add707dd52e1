package service

import (
	"context"
	"time"

	"adegapos/internal/worker"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("adegapos/internal/service")

// Cache is a read-through JSON cache. Implementations must treat every
// failure as a miss.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	Invalidate(ctx context.Context, keys ...string)
}

// EventPublisher ships domain events to downstream consumers.
type EventPublisher interface {
	Publicar(ctx context.Context, tipo, chave string, dados interface{}) error
}

// JobDispatcher enqueues background work. *worker.Dispatcher implements it.
type JobDispatcher interface {
	EnqueueRelatorioCaixa(ctx context.Context, p worker.RelatorioCaixaPayload) error
	EnqueueAlertaEstoque(ctx context.Context, p worker.AlertaEstoquePayload) error
}

// Locker grants a short-lived exclusive lease on a key.
type Locker interface {
	Adquirir(ctx context.Context, chave string, ttl time.Duration) (bool, error)
}

// Integracoes groups the side channels shared by the services. Nil members
// are replaced with no-ops, so unit tests only set what they assert on.
type Integracoes struct {
	Cache   Cache
	Eventos EventPublisher
	Jobs    JobDispatcher
	Now     func() time.Time
}

func (i Integracoes) comPadroes() Integracoes {
	if i.Cache == nil {
		i.Cache = semCache{}
	}
	if i.Eventos == nil {
		i.Eventos = semEventos{}
	}
	if i.Jobs == nil {
		i.Jobs = semJobs{}
	}
	if i.Now == nil {
		i.Now = time.Now
	}
	return i
}

// publicar is fire-and-forget: the database already committed, so a broker
// failure is logged and never surfaced to the caller.
func (i Integracoes) publicar(ctx context.Context, tipo, chave string, dados interface{}) {
	if err := i.Eventos.Publicar(ctx, tipo, chave, dados); err != nil {
		log.Warn().Err(err).Str("evento", tipo).Str("chave", chave).Msg("event publish failed")
	}
}

type semCache struct{}

func (semCache) Get(context.Context, string, interface{}) bool { return false }
func (semCache) Set(context.Context, string, interface{})      {}
func (semCache) Invalidate(context.Context, ...string)         {}

type semEventos struct{}

func (semEventos) Publicar(context.Context, string, string, interface{}) error { return nil }

type semJobs struct{}

func (semJobs) EnqueueRelatorioCaixa(context.Context, worker.RelatorioCaixaPayload) error { return nil }
func (semJobs) EnqueueAlertaEstoque(context.Context, worker.AlertaEstoquePayload) error   { return nil }

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func chaveVenda(id string) string   { return "venda:" + id }
func chaveProduto(id string) string { return "produto:" + id }
