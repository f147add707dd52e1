package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adegapos/internal/config"
	"adegapos/internal/infra"
	"adegapos/internal/repository"
	"adegapos/internal/router"
	"adegapos/internal/service"
	"adegapos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger. dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := infra.InitTracer(ctx, cfg.OTelServiceName, cfg.OTelEndpoint)
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Events are optional; without brokers the services use a no-op publisher.
	var eventos service.EventPublisher
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kp := infra.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		defer kp.Close()
		eventos = kp
	}

	mailer := infra.NewMailer(cfg)
	mailBreaker := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	dispatcher := worker.NewDispatcher(rdb)

	app := router.New(ctx, router.Deps{
		Config:      cfg,
		DB:          db,
		Redis:       rdb,
		Eventos:     eventos,
		Jobs:        dispatcher,
		MailBreaker: mailBreaker,
	})

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	destinatario := ""
	if mailer.Configurado() {
		destinatario = cfg.RelatorioEmail
	}
	workerHandlers := &worker.WorkerHandlers{
		RelatorioCaixa: worker.NewRelatorioCaixaWorker(worker.RelatorioCaixaConfig{
			CaixaRepo:    repository.NewCaixaRepository(db),
			VendaRepo:    repository.NewVendaRepository(db),
			Emails:       dispatcher,
			Location:     cfg.Location(),
			StoragePath:  cfg.PDFStoragePath,
			Destinatario: destinatario,
		}),
		AlertaEstoque: worker.NewAlertaEstoqueWorker(),
		Email:         worker.NewEmailWorker(mailer, mailBreaker),
	}
	pool := worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)
	worker.StartEstoqueCron(ctx, worker.EstoqueCronConfig{ProdutoRepo: repository.NewProdutoRepository(db)})

	// Resume the midnight close for a session left open by a previous process.
	if err := app.Caixa.IniciarAutoFechamento(ctx); err != nil {
		log.Error().Err(err).Msg("auto-close not armed at startup")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.Engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("loja", cfg.LojaID).Msgf("adegapos listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	// Stop the auto-close watcher, workers and cron, then let an in-flight
	// close and in-flight jobs finish.
	cancel()
	app.Caixa.AguardarAutoFechamento()
	pool.Wait()

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("tracer shutdown")
	}
	log.Info().Msg("server exited")
}
