package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"adegapos/internal/service"
	"adegapos/internal/worker"

	"github.com/stretchr/testify/mock"
)

type mockJobs struct{ mock.Mock }

var _ service.JobDispatcher = (*mockJobs)(nil)

func (m *mockJobs) EnqueueRelatorioCaixa(ctx context.Context, p worker.RelatorioCaixaPayload) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockJobs) EnqueueAlertaEstoque(ctx context.Context, p worker.AlertaEstoquePayload) error {
	return m.Called(ctx, p).Error(0)
}

type mockEventos struct{ mock.Mock }

var _ service.EventPublisher = (*mockEventos)(nil)

func (m *mockEventos) Publicar(ctx context.Context, tipo, chave string, dados interface{}) error {
	return m.Called(ctx, tipo, chave, dados).Error(0)
}

// cacheMemoria is a Cache backed by a map, JSON-encoding values the way the
// redis cache does.
type cacheMemoria struct {
	mu    sync.Mutex
	itens map[string][]byte
}

func novoCache() *cacheMemoria { return &cacheMemoria{itens: make(map[string][]byte)} }

func (c *cacheMemoria) Get(_ context.Context, key string, dest interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.itens[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *cacheMemoria) Set(_ context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.itens[key] = raw
}

func (c *cacheMemoria) Invalidate(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.itens, k)
	}
}

func (c *cacheMemoria) tem(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.itens[key]
	return ok
}

// relogio is a manually advanced clock.
type relogio struct {
	mu    sync.Mutex
	agora time.Time
}

func novoRelogio(t time.Time) *relogio { return &relogio{agora: t} }

func (r *relogio) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agora
}

func (r *relogio) Avancar(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agora = r.agora.Add(d)
}
