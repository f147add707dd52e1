package service

import (
	"context"
	"strings"

	"adegapos/internal/dto"
	"adegapos/internal/model"
	"adegapos/internal/repository"
	"adegapos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CatalogoService owns products, their stock and the customer registry.
type CatalogoService interface {
	CriarProduto(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error)
	ObterProduto(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error)
	ListarProdutos(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error)
	AjustarEstoque(ctx context.Context, id uuid.UUID, req dto.AjustarEstoqueRequest) (*dto.MovimentoEstoqueResponse, error)
	Movimentos(ctx context.Context, id uuid.UUID, limit int) ([]dto.MovimentoEstoqueResponse, error)
	AlertasEstoque(ctx context.Context) ([]dto.ProdutoResponse, error)
	CriarCliente(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteResponse, error)
	ObterCliente(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
}

type catalogoService struct {
	produtoRepo   repository.ProdutoRepository
	movimentoRepo repository.MovimentoEstoqueRepository
	clienteRepo   repository.ClienteRepository
	integ         Integracoes
}

func NewCatalogoService(
	produtoRepo repository.ProdutoRepository,
	movimentoRepo repository.MovimentoEstoqueRepository,
	clienteRepo repository.ClienteRepository,
	integ Integracoes,
) CatalogoService {
	return &catalogoService{
		produtoRepo:   produtoRepo,
		movimentoRepo: movimentoRepo,
		clienteRepo:   clienteRepo,
		integ:         integ.comPadroes(),
	}
}

// ── Produtos ──────────────────────────────────────────────────────────────────

func (s *catalogoService) CriarProduto(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error) {
	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		return nil, validacao("nome do produto é obrigatório")
	}
	if req.PrecoVenda.IsNegative() || req.PrecoCusto.IsNegative() {
		return nil, validacao("preços não podem ser negativos")
	}
	if req.Quantidade < 0 || req.EstoqueMinimo < 0 {
		return nil, validacao("quantidade e estoque mínimo não podem ser negativos")
	}

	agora := s.integ.Now()
	p := &model.Produto{
		ID:            uuid.New(),
		Nome:          nome,
		Categoria:     strings.TrimSpace(req.Categoria),
		PrecoVenda:    req.PrecoVenda,
		PrecoCusto:    req.PrecoCusto,
		Quantidade:    req.Quantidade,
		EstoqueMinimo: req.EstoqueMinimo,
		CreatedAt:     agora,
		UpdatedAt:     agora,
	}
	if err := s.produtoRepo.Create(ctx, p); err != nil {
		return nil, erroRepo(err, "criar produto")
	}
	return produtoToResponse(p), nil
}

func (s *catalogoService) ObterProduto(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error) {
	var cached dto.ProdutoResponse
	if s.integ.Cache.Get(ctx, chaveProduto(id.String()), &cached) {
		return &cached, nil
	}
	p, err := s.produtoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, erroRepo(err, "produto "+id.String())
	}
	resp := produtoToResponse(p)
	s.integ.Cache.Set(ctx, chaveProduto(id.String()), resp)
	return resp, nil
}

func (s *catalogoService) ListarProdutos(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	produtos, total, err := s.produtoRepo.List(ctx, filter)
	if err != nil {
		return nil, erroRepo(err, "listar produtos")
	}
	data := make([]dto.ProdutoResponse, 0, len(produtos))
	for i := range produtos {
		data = append(data, *produtoToResponse(&produtos[i]))
	}
	return &dto.ProdutoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Estoque ───────────────────────────────────────────────────────────────────
// Manual adjustments share the clamped update used by order placement, so a
// negative delta larger than the stock leaves the product at zero.

func (s *catalogoService) AjustarEstoque(ctx context.Context, id uuid.UUID, req dto.AjustarEstoqueRequest) (*dto.MovimentoEstoqueResponse, error) {
	ctx, span := tracer.Start(ctx, "CatalogoService.AjustarEstoque")
	defer span.End()

	if req.Delta == 0 {
		return nil, validacao("delta deve ser diferente de zero")
	}
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		return nil, validacao("motivo é obrigatório")
	}
	tipo := "ajuste"
	if req.Delta > 0 {
		tipo = "reposicao"
	}

	var mov *model.MovimentoEstoque
	var ajuste *repository.AjusteEstoque
	txErr := runTx(ctx, s.produtoRepo.DB(), func(tx *gorm.DB) error {
		aj, err := s.produtoRepo.AjustarEstoqueTx(ctx, tx, id, req.Delta)
		if err != nil {
			return err
		}
		m := &model.MovimentoEstoque{
			ID:              uuid.New(),
			ProdutoID:       id,
			Tipo:            tipo,
			Quantidade:      req.Delta,
			EstoqueAnterior: aj.Anterior,
			EstoqueNovo:     aj.Novo,
			Motivo:          motivo,
			CreatedAt:       s.integ.Now(),
		}
		if err := s.movimentoRepo.CreateTx(ctx, tx, m); err != nil {
			return err
		}
		mov, ajuste = m, aj
		return nil
	})
	if txErr != nil {
		return nil, erroRepo(txErr, "produto "+id.String())
	}

	s.integ.Cache.Invalidate(ctx, chaveProduto(id.String()))
	log.Info().
		Str("produto_id", id.String()).
		Int("delta", req.Delta).
		Int("anterior", ajuste.Anterior).
		Int("novo", ajuste.Novo).
		Msg("stock adjusted")

	if ajuste.EstoqueBaixo() {
		payload := worker.AlertaEstoquePayload{
			ProdutoID:     id.String(),
			Nome:          ajuste.Nome,
			Quantidade:    ajuste.Novo,
			EstoqueMinimo: ajuste.EstoqueMinimo,
			Origem:        tipo,
		}
		if err := s.integ.Jobs.EnqueueAlertaEstoque(ctx, payload); err != nil {
			log.Warn().Err(err).Str("produto_id", payload.ProdutoID).Msg("low-stock job enqueue failed")
		}
	}
	return movimentoToResponse(mov), nil
}

func (s *catalogoService) Movimentos(ctx context.Context, id uuid.UUID, limit int) ([]dto.MovimentoEstoqueResponse, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if _, err := s.produtoRepo.FindByID(ctx, id); err != nil {
		return nil, erroRepo(err, "produto "+id.String())
	}
	movs, err := s.movimentoRepo.ListByProduto(ctx, id, limit)
	if err != nil {
		return nil, erroRepo(err, "movimentos de estoque")
	}
	out := make([]dto.MovimentoEstoqueResponse, 0, len(movs))
	for i := range movs {
		out = append(out, *movimentoToResponse(&movs[i]))
	}
	return out, nil
}

func (s *catalogoService) AlertasEstoque(ctx context.Context) ([]dto.ProdutoResponse, error) {
	produtos, err := s.produtoRepo.ListEstoqueBaixo(ctx)
	if err != nil {
		return nil, erroRepo(err, "alertas de estoque")
	}
	out := make([]dto.ProdutoResponse, 0, len(produtos))
	for i := range produtos {
		out = append(out, *produtoToResponse(&produtos[i]))
	}
	return out, nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

func (s *catalogoService) CriarCliente(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteResponse, error) {
	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		return nil, validacao("nome do cliente é obrigatório")
	}
	c := &model.Cliente{ID: uuid.New(), Nome: nome, CreatedAt: s.integ.Now()}
	if req.Telefone != nil {
		if tel := strings.TrimSpace(*req.Telefone); tel != "" {
			c.Telefone = &tel
		}
	}
	if err := s.clienteRepo.Create(ctx, c); err != nil {
		return nil, erroRepo(err, "criar cliente")
	}
	return &dto.ClienteResponse{ID: c.ID.String(), Nome: c.Nome, Telefone: c.Telefone}, nil
}

func (s *catalogoService) ObterCliente(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.clienteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, erroRepo(err, "cliente "+id.String())
	}
	return &dto.ClienteResponse{ID: c.ID.String(), Nome: c.Nome, Telefone: c.Telefone}, nil
}

func produtoToResponse(p *model.Produto) *dto.ProdutoResponse {
	return &dto.ProdutoResponse{
		ID:            p.ID.String(),
		Nome:          p.Nome,
		Categoria:     p.Categoria,
		PrecoVenda:    p.PrecoVenda,
		PrecoCusto:    p.PrecoCusto,
		Quantidade:    p.Quantidade,
		EstoqueMinimo: p.EstoqueMinimo,
		EstoqueBaixo:  p.EstoqueBaixo(),
		AtualizadoEm:  p.UpdatedAt,
	}
}

func movimentoToResponse(m *model.MovimentoEstoque) *dto.MovimentoEstoqueResponse {
	return &dto.MovimentoEstoqueResponse{
		ID:              m.ID.String(),
		ProdutoID:       m.ProdutoID.String(),
		Tipo:            m.Tipo,
		Quantidade:      m.Quantidade,
		EstoqueAnterior: m.EstoqueAnterior,
		EstoqueNovo:     m.EstoqueNovo,
		Motivo:          m.Motivo,
		CriadoEm:        m.CreatedAt,
	}
}
