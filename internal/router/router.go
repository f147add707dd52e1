package router

import (
	"context"
	"time"

	"adegapos/internal/config"
	"adegapos/internal/handler"
	"adegapos/internal/infra"
	"adegapos/internal/middleware"
	"adegapos/internal/repository"
	"adegapos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// Deps are the process-level collaborators built by main. Eventos, Jobs and
// MailBreaker may be nil.
type Deps struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       *redis.Client
	Eventos     service.EventPublisher
	Jobs        service.JobDispatcher
	MailBreaker *infra.CircuitBreaker
}

// App is the wired HTTP engine plus the services main drives directly.
type App struct {
	Engine *gin.Engine
	Caixa  service.CaixaService
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(ctx context.Context, d Deps) *App {
	cfg := d.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(otelgin.Middleware(cfg.OTelServiceName))
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(ctx, cfg.RateLimitPorMinuto, time.Minute))

	// ── Integrations ─────────────────────────────────────────────────────────
	loc := cfg.Location()
	integ := service.Integracoes{Eventos: d.Eventos, Jobs: d.Jobs}
	var locker service.Locker
	if d.Redis != nil {
		integ.Cache = infra.NewRedisCache(d.Redis, "adega:", cfg.CacheTTL)
		locker = infra.NewRedisLocker(d.Redis, cfg.LojaID)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	produtoRepo := repository.NewProdutoRepository(d.DB)
	movimentoRepo := repository.NewMovimentoEstoqueRepository(d.DB)
	clienteRepo := repository.NewClienteRepository(d.DB)
	vendaRepo := repository.NewVendaRepository(d.DB)
	lancamentoRepo := repository.NewLancamentoRepository(d.DB)
	caixaRepo := repository.NewCaixaRepository(d.DB)
	contadorRepo := repository.NewContadorRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	sequencia := service.NewSequenciador(contadorRepo, cfg.LojaID, nil)
	vendaSvc := service.NewVendaService(vendaRepo, produtoRepo, movimentoRepo, lancamentoRepo, clienteRepo, sequencia, integ)
	caixaSvc := service.NewCaixaService(caixaRepo, vendaRepo, lancamentoRepo, service.AutoFechamentoConfig{
		Location:    loc,
		Retry:       cfg.AutoFechamentoRetry,
		Reavaliacao: cfg.AutoFechamentoReavaliacao,
		Locker:      locker,
	}, integ)
	catalogoSvc := service.NewCatalogoService(produtoRepo, movimentoRepo, clienteRepo, integ)
	lancamentoSvc := service.NewLancamentoService(lancamentoRepo, loc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	vendasH := handler.NewVendasHandler(vendaSvc)
	caixaH := handler.NewCaixaHandler(caixaSvc)
	catalogoH := handler.NewCatalogoHandler(catalogoSvc)
	lancamentosH := handler.NewLancamentosHandler(lancamentoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	health := handler.HealthDeps{DB: d.DB, Redis: d.Redis, AutoFechamentoOn: caixaSvc.AutoFechamentoArmado}
	if d.MailBreaker != nil {
		health.EstadoEmail = func() string { return d.MailBreaker.State().String() }
	}
	r.GET("/health", handler.Health(health))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		vendas := v1.Group("/vendas")
		{
			vendas.GET("", vendasH.Listar)
			vendas.POST("", vendasH.Registrar)
			vendas.GET("/:id", vendasH.Obter)
			vendas.PATCH("/:id/status", vendasH.AlterarStatus)
			vendas.DELETE("/:id", vendasH.Excluir)
		}

		caixa := v1.Group("/caixa")
		{
			caixa.POST("/abrir", caixaH.Abrir)
			caixa.POST("/fechar", caixaH.Fechar)
			caixa.GET("/status", caixaH.Status)
			caixa.GET("/historico", caixaH.Historico)
			caixa.GET("/:id", caixaH.Obter)
		}

		produtos := v1.Group("/produtos")
		{
			produtos.POST("", catalogoH.CriarProduto)
			produtos.GET("", catalogoH.ListarProdutos)
			produtos.GET("/alertas", catalogoH.Alertas)
			produtos.GET("/:id", catalogoH.ObterProduto)
			produtos.PATCH("/:id/estoque", catalogoH.AjustarEstoque)
			produtos.GET("/:id/movimentos", catalogoH.Movimentos)
		}

		v1.POST("/clientes", catalogoH.CriarCliente)
		v1.GET("/clientes/:id", catalogoH.ObterCliente)

		v1.GET("/lancamentos", lancamentosH.Listar)
		v1.DELETE("/lancamentos/:id", lancamentosH.Excluir)
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return &App{Engine: r, Caixa: caixaSvc}
}
