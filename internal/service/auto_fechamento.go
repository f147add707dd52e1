package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"adegapos/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ── Auto-fechamento ───────────────────────────────────────────────────────────
// Watches the open cash session and closes it at the first local midnight
// after it was opened. One watcher goroutine per armed session; it sleeps on
// a cancellable timer, re-reading the clock at least every Reavaliacao so a
// wall-clock jump cannot push the close far past the boundary. A failed
// close is retried every Retry until it succeeds, the session is closed by
// someone else, or the process shuts down. Every attempt is handed the
// boundary, so a late retry still freezes the day at midnight.

type AutoFechamentoConfig struct {
	Location    *time.Location
	Retry       time.Duration
	Reavaliacao time.Duration
	Timeout     time.Duration
	Locker      Locker // nil disables cross-replica locking
	Now         func() time.Time
}

func (c AutoFechamentoConfig) comPadroes() AutoFechamentoConfig {
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.Retry <= 0 {
		c.Retry = time.Minute
	}
	if c.Reavaliacao <= 0 {
		c.Reavaliacao = 10 * time.Minute
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

var errLockOcupado = errors.New("auto-close lock held by another instance")

type AutoFechamento struct {
	cfg    AutoFechamentoConfig
	fechar func(ctx context.Context, sessaoID uuid.UUID, limite time.Time) error

	mu     sync.Mutex
	base   context.Context
	armado *vigia
	wg     sync.WaitGroup
}

type vigia struct {
	sessaoID uuid.UUID
	limite   time.Time
	cancel   context.CancelFunc
}

func NewAutoFechamento(cfg AutoFechamentoConfig, fechar func(ctx context.Context, sessaoID uuid.UUID, limite time.Time) error) *AutoFechamento {
	return &AutoFechamento{cfg: cfg.comPadroes(), fechar: fechar, base: context.Background()}
}

// ProximaMeiaNoite returns the first 00:00 in loc strictly after t.
func ProximaMeiaNoite(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	y, m, d := lt.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// Iniciar binds watchers to ctx: cancelling it stops every watcher.
func (a *AutoFechamento) Iniciar(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.base = ctx
}

// Armar starts watching sessaoID, replacing any previous watcher, and
// returns the boundary it will fire at.
func (a *AutoFechamento) Armar(sessaoID uuid.UUID, abertaEm time.Time) time.Time {
	limite := ProximaMeiaNoite(abertaEm, a.cfg.Location)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.armado != nil {
		a.armado.cancel()
	}
	ctx, cancel := context.WithCancel(a.base)
	v := &vigia{sessaoID: sessaoID, limite: limite, cancel: cancel}
	a.armado = v

	a.wg.Add(1)
	go a.vigiar(ctx, v)

	log.Info().Str("sessao_id", sessaoID.String()).Time("limite", limite).Msg("auto-close armed")
	return limite
}

// Desarmar stops the watcher for sessaoID, if it is the armed one.
func (a *AutoFechamento) Desarmar(sessaoID uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.armado != nil && a.armado.sessaoID == sessaoID {
		a.armado.cancel()
		a.armado = nil
	}
}

// Armado reports the session currently watched and its boundary.
func (a *AutoFechamento) Armado() (uuid.UUID, time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.armado == nil {
		return uuid.Nil, time.Time{}, false
	}
	return a.armado.sessaoID, a.armado.limite, true
}

// Aguardar blocks until every watcher goroutine has returned.
func (a *AutoFechamento) Aguardar() { a.wg.Wait() }

func (a *AutoFechamento) vigiar(ctx context.Context, v *vigia) {
	defer a.wg.Done()
	defer a.soltar(v)

	logger := log.With().Str("sessao_id", v.sessaoID.String()).Logger()

	for {
		restante := v.limite.Sub(a.cfg.Now())
		if restante <= 0 {
			break
		}
		if restante > a.cfg.Reavaliacao {
			restante = a.cfg.Reavaliacao
		}
		if !esperar(ctx, restante) {
			return
		}
	}

	for {
		err := a.tentar(ctx, v)
		switch {
		case err == nil:
			logger.Info().Msg("cash session closed at midnight")
			return
		case errors.Is(err, ErrConflito), errors.Is(err, ErrNaoEncontrado):
			logger.Debug().Err(err).Msg("auto-close skipped, session no longer open")
			return
		case errors.Is(err, errLockOcupado):
			logger.Debug().Msg("auto-close running elsewhere, will re-check")
		default:
			metrics.AutoFechamentoFalhas.Inc()
			logger.Warn().Err(err).Dur("retry_em", a.cfg.Retry).Msg("auto-close failed, session stays open")
		}
		if !esperar(ctx, a.cfg.Retry) {
			return
		}
	}
}

func (a *AutoFechamento) tentar(ctx context.Context, v *vigia) error {
	if a.cfg.Locker != nil {
		ok, err := a.cfg.Locker.Adquirir(ctx, "caixa:auto-fechamento:"+v.sessaoID.String(), a.cfg.Retry)
		switch {
		case err != nil:
			// The conditional close still prevents a double close.
			log.Warn().Err(err).Msg("auto-close lock unavailable, closing without it")
		case !ok:
			return errLockOcupado
		}
	}
	// The close itself disarms this watcher, so it must not inherit ctx's cancellation.
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Timeout)
	defer cancel()
	return a.fechar(opCtx, v.sessaoID, v.limite)
}

func (a *AutoFechamento) soltar(v *vigia) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.armado == v {
		a.armado.cancel()
		a.armado = nil
	}
}

// esperar sleeps for d unless ctx ends first, and reports whether the full
// duration elapsed.
func esperar(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
