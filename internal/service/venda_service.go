package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"adegapos/internal/dto"
	"adegapos/internal/metrics"
	"adegapos/internal/model"
	"adegapos/internal/repository"
	"adegapos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type VendaService interface {
	Registrar(ctx context.Context, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error)
	AlterarStatus(ctx context.Context, id uuid.UUID, status string) (*dto.VendaResponse, error)
	Excluir(ctx context.Context, id uuid.UUID) error
	Obter(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error)
	Listar(ctx context.Context, filter dto.VendaFilter) (*dto.VendaListResponse, error)
}

type vendaService struct {
	repo           repository.VendaRepository
	produtoRepo    repository.ProdutoRepository
	movimentoRepo  repository.MovimentoEstoqueRepository
	lancamentoRepo repository.LancamentoRepository
	clienteRepo    repository.ClienteRepository
	sequencia      *Sequenciador
	integ          Integracoes
}

func NewVendaService(
	repo repository.VendaRepository,
	produtoRepo repository.ProdutoRepository,
	movimentoRepo repository.MovimentoEstoqueRepository,
	lancamentoRepo repository.LancamentoRepository,
	clienteRepo repository.ClienteRepository,
	sequencia *Sequenciador,
	integ Integracoes,
) VendaService {
	return &vendaService{
		repo:           repo,
		produtoRepo:    produtoRepo,
		movimentoRepo:  movimentoRepo,
		lancamentoRepo: lancamentoRepo,
		clienteRepo:    clienteRepo,
		sequencia:      sequencia,
		integ:          integ.comPadroes(),
	}
}

// ── Registrar ─────────────────────────────────────────────────────────────────
//   1. Drop lines without product or with quantity <= 0; nothing left is a validation error
//   2. Resolve customer and catalog prices (pre-flight, outside TX)
//   3. Compute totals; an explicit total wins over the computed one
//   4. Derive status from the payment method unless one was given
//   5. Allocate the order number from the store counter
//   6. BEGIN TX: header + items, ledger entrada if paid, clamped stock decrement per product
//   7. COMMIT, then cache invalidation, event, low-stock jobs (best-effort)

type linhaVenda struct {
	produtoID  uuid.UUID
	quantidade int
	preco      *decimal.Decimal
}

func (s *vendaService) Registrar(ctx context.Context, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
	ctx, span := tracer.Start(ctx, "VendaService.Registrar")
	defer span.End()

	// 1. Lines
	var linhas []linhaVenda
	for _, it := range req.Itens {
		ref := strings.TrimSpace(it.ProdutoID)
		if ref == "" || it.Quantidade <= 0 {
			continue
		}
		pid, err := uuid.Parse(ref)
		if err != nil {
			return nil, validacao("produto_id inválido: %q", ref)
		}
		linhas = append(linhas, linhaVenda{produtoID: pid, quantidade: it.Quantidade, preco: it.PrecoUnitario})
	}
	if len(linhas) == 0 {
		return nil, validacao("a venda precisa de ao menos um item com produto e quantidade positiva")
	}

	desconto := decimalOuZero(req.Desconto)
	taxaEntrega := decimalOuZero(req.TaxaEntrega)
	if desconto.IsNegative() {
		return nil, validacao("desconto não pode ser negativo")
	}
	if taxaEntrega.IsNegative() {
		return nil, validacao("taxa de entrega não pode ser negativa")
	}

	// 2. Customer
	var clienteID *uuid.UUID
	if req.ClienteID != nil && strings.TrimSpace(*req.ClienteID) != "" {
		cid, err := uuid.Parse(strings.TrimSpace(*req.ClienteID))
		if err != nil {
			return nil, validacao("cliente_id inválido: %q", *req.ClienteID)
		}
		if _, err := s.clienteRepo.FindByID(ctx, cid); err != nil {
			return nil, erroRepo(err, "cliente "+cid.String())
		}
		clienteID = &cid
	}
	var clienteNome *string
	if req.ClienteNome != nil {
		if nome := strings.TrimSpace(*req.ClienteNome); nome != "" {
			clienteNome = &nome
		}
	}

	// Catalog
	quantidades := make(map[uuid.UUID]int)
	for _, l := range linhas {
		quantidades[l.produtoID] += l.quantidade
	}
	ids := make([]uuid.UUID, 0, len(quantidades))
	for id := range quantidades {
		ids = append(ids, id)
	}
	// Stable lock order across concurrent placements.
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	produtos, err := s.produtoRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, erroRepo(err, "catálogo")
	}
	catalogo := make(map[uuid.UUID]model.Produto, len(produtos))
	for _, p := range produtos {
		catalogo[p.ID] = p
	}

	// 3. Totals
	agora := s.integ.Now()
	subtotal := decimal.Zero
	itens := make([]model.VendaItem, 0, len(linhas))
	for _, l := range linhas {
		p, ok := catalogo[l.produtoID]
		if !ok {
			return nil, naoEncontrado("produto %s", l.produtoID)
		}
		preco := p.PrecoVenda
		if l.preco != nil {
			preco = *l.preco
		}
		if preco.IsNegative() {
			return nil, validacao("preço unitário negativo para %s", p.Nome)
		}
		linhaTotal := preco.Mul(decimal.NewFromInt(int64(l.quantidade)))
		subtotal = subtotal.Add(linhaTotal)
		itens = append(itens, model.VendaItem{
			ID:            uuid.New(),
			ProdutoID:     l.produtoID,
			Quantidade:    l.quantidade,
			PrecoUnitario: preco,
			Subtotal:      linhaTotal,
		})
	}

	calculado := subtotal.Add(taxaEntrega).Sub(desconto)
	total := calculado
	if req.Total != nil {
		if req.Total.IsNegative() {
			return nil, validacao("total não pode ser negativo")
		}
		total = *req.Total
		if !total.Equal(calculado) {
			log.Warn().
				Str("informado", total.StringFixed(2)).
				Str("calculado", calculado.StringFixed(2)).
				Msg("order total override differs from computed total")
		}
	} else if calculado.IsNegative() {
		return nil, validacao("desconto maior que o valor da venda")
	}

	// 4. Method and status
	metodo := strings.TrimSpace(req.MetodoPagamento)
	if metodo == "" {
		metodo = model.MetodoDinheiro
	}
	status := model.StatusInicial(metodo)
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status = strings.TrimSpace(*req.Status)
		if !model.StatusValido(status) {
			return nil, validacao("status inválido: %q", status)
		}
	}

	realizadaEm := agora
	retroativa := req.RealizadaEm != nil && !req.RealizadaEm.IsZero()
	if retroativa {
		realizadaEm = *req.RealizadaEm
	}

	// 5. Number
	numero, seq := s.sequencia.Proximo(ctx)
	span.SetAttributes(attribute.String("venda.numero", numero), attribute.String("venda.status", status))

	venda := model.Venda{
		ID:              uuid.New(),
		Numero:          numero,
		Sequencia:       seq,
		ClienteID:       clienteID,
		ClienteNome:     clienteNome,
		MetodoPagamento: metodo,
		Status:          status,
		Subtotal:        subtotal,
		Desconto:        desconto,
		TaxaEntrega:     taxaEntrega,
		Total:           total,
		RealizadaEm:     realizadaEm,
		CreatedAt:       agora,
		UpdatedAt:       agora,
		Itens:           itens,
	}
	for i := range venda.Itens {
		venda.Itens[i].VendaID = venda.ID
	}

	// 6. ACID transaction
	var ajustes []repository.AjusteEstoque
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ajustes = ajustes[:0]
		if err := s.repo.TravarCaixaTx(ctx, tx); err != nil {
			return err
		}
		// Stamped after the lock so a close that committed first sees this
		// order as later than its cut.
		agora = s.integ.Now()
		venda.CreatedAt, venda.UpdatedAt = agora, agora
		if !retroativa {
			realizadaEm = agora
			venda.RealizadaEm = agora
		}
		if err := s.repo.CreateTx(ctx, tx, &venda); err != nil {
			return err
		}
		if venda.Status == model.StatusPago {
			if err := s.lancar(ctx, tx, &venda, model.LancamentoEntrada, realizadaEm); err != nil {
				return err
			}
		}
		for _, pid := range ids {
			q := quantidades[pid]
			aj, err := s.produtoRepo.AjustarEstoqueTx(ctx, tx, pid, -q)
			if err != nil {
				return err
			}
			ref := venda.ID
			mov := &model.MovimentoEstoque{
				ID:              uuid.New(),
				ProdutoID:       pid,
				Tipo:            "venda",
				Quantidade:      -q,
				EstoqueAnterior: aj.Anterior,
				EstoqueNovo:     aj.Novo,
				Motivo:          "Venda " + numero,
				VendaID:         &ref,
				CreatedAt:       agora,
			}
			if err := s.movimentoRepo.CreateTx(ctx, tx, mov); err != nil {
				return err
			}
			ajustes = append(ajustes, *aj)
		}
		return nil
	})
	if txErr != nil {
		span.RecordError(txErr)
		return nil, erroRepo(txErr, "registrar venda "+numero)
	}

	for i := range venda.Itens {
		p := catalogo[venda.Itens[i].ProdutoID]
		venda.Itens[i].Produto = &p
	}

	// 7. Post-commit (best-effort)
	metrics.VendasRegistradas.WithLabelValues(venda.Status).Inc()
	if venda.Status == model.StatusPago {
		metrics.Lancamentos.WithLabelValues(model.LancamentoEntrada, model.CategoriaVendas).Inc()
	}
	chaves := make([]string, 0, len(ids))
	for _, pid := range ids {
		chaves = append(chaves, chaveProduto(pid.String()))
	}
	s.integ.Cache.Invalidate(ctx, chaves...)

	resp := vendaToResponse(&venda)
	s.integ.publicar(ctx, "venda.registrada", venda.ID.String(), resp)

	for _, aj := range ajustes {
		if !aj.EstoqueBaixo() {
			continue
		}
		payload := worker.AlertaEstoquePayload{
			ProdutoID:     aj.ProdutoID.String(),
			Nome:          aj.Nome,
			Quantidade:    aj.Novo,
			EstoqueMinimo: aj.EstoqueMinimo,
			Origem:        "venda " + numero,
		}
		if err := s.integ.Jobs.EnqueueAlertaEstoque(ctx, payload); err != nil {
			log.Warn().Err(err).Str("produto_id", payload.ProdutoID).Msg("low-stock job enqueue failed")
		}
	}

	return resp, nil
}

// lancar writes the ledger effect of an order: an entrada when it becomes
// paid, a compensating saida when it stops being paid.
func (s *vendaService) lancar(ctx context.Context, tx *gorm.DB, v *model.Venda, tipo string, em time.Time) error {
	descricao := "Venda " + v.Numero
	if tipo == model.LancamentoSaida {
		descricao = "Estorno da venda " + v.Numero
	}
	ref := v.ID
	l := &model.Lancamento{
		ID:        uuid.New(),
		Tipo:      tipo,
		Descricao: descricao,
		Categoria: model.CategoriaVendas,
		Valor:     v.Total,
		Metodo:    v.MetodoPagamento,
		Data:      em,
		VendaID:   &ref,
		CreatedAt: em,
	}
	return s.lancamentoRepo.CreateTx(ctx, tx, l)
}

// ── AlterarStatus ─────────────────────────────────────────────────────────────
// The header row is locked for the duration of the transaction, so two
// concurrent "→ paid" requests cannot both observe a non-paid prior status.

func (s *vendaService) AlterarStatus(ctx context.Context, id uuid.UUID, status string) (*dto.VendaResponse, error) {
	ctx, span := tracer.Start(ctx, "VendaService.AlterarStatus")
	defer span.End()

	status = strings.TrimSpace(status)
	if !model.StatusValido(status) {
		return nil, validacao("status inválido: %q", status)
	}

	var venda *model.Venda
	var anterior, lancado string
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		lancado = ""
		if err := s.repo.TravarCaixaTx(ctx, tx); err != nil {
			return err
		}
		v, err := s.repo.FindByIDForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		anterior = v.Status
		venda = v
		// No write: updated_at decides which closed day a paid order counts in.
		if status == anterior {
			return nil
		}
		agora := s.integ.Now()
		if err := s.repo.UpdateStatusTx(ctx, tx, id, status, agora); err != nil {
			return err
		}
		v.Status = status
		v.UpdatedAt = agora

		switch {
		case status == model.StatusPago && anterior != model.StatusPago:
			lancado = model.LancamentoEntrada
		case anterior == model.StatusPago && status != model.StatusPago:
			lancado = model.LancamentoSaida
		}
		if lancado != "" {
			if err := s.lancar(ctx, tx, v, lancado, agora); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, erroRepo(txErr, "venda "+id.String())
	}

	metrics.VendasTransicoes.WithLabelValues(anterior, status).Inc()
	if lancado != "" {
		metrics.Lancamentos.WithLabelValues(lancado, model.CategoriaVendas).Inc()
	}
	s.integ.Cache.Invalidate(ctx, chaveVenda(id.String()))
	s.integ.publicar(ctx, "venda.status_alterado", id.String(), map[string]string{
		"id":     id.String(),
		"numero": venda.Numero,
		"de":     anterior,
		"para":   status,
	})

	if completa, err := s.repo.FindByID(ctx, id); err == nil {
		venda = completa
	}
	return vendaToResponse(venda), nil
}

// ── Excluir ───────────────────────────────────────────────────────────────────
// Removes items then header. Stock and ledger are left as they are.

func (s *vendaService) Excluir(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "VendaService.Excluir")
	defer span.End()

	var numero string
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		v, err := s.repo.FindByIDForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		numero = v.Numero
		return s.repo.DeleteTx(ctx, tx, id)
	})
	if txErr != nil {
		return erroRepo(txErr, "venda "+id.String())
	}

	s.integ.Cache.Invalidate(ctx, chaveVenda(id.String()))
	s.integ.publicar(ctx, "venda.excluida", id.String(), map[string]string{"id": id.String(), "numero": numero})
	return nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *vendaService) Obter(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error) {
	var cached dto.VendaResponse
	if s.integ.Cache.Get(ctx, chaveVenda(id.String()), &cached) {
		return &cached, nil
	}
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, erroRepo(err, "venda "+id.String())
	}
	resp := vendaToResponse(v)
	s.integ.Cache.Set(ctx, chaveVenda(id.String()), resp)
	return resp, nil
}

// Listar returns orders newest first. An empty status (or "all") lists every order.
func (s *vendaService) Listar(ctx context.Context, filter dto.VendaFilter) (*dto.VendaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Status == "all" {
		filter.Status = ""
	}
	if filter.Status != "" && !model.StatusValido(filter.Status) {
		return nil, validacao("status inválido: %q", filter.Status)
	}

	vendas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, erroRepo(err, "listar vendas")
	}
	data := make([]dto.VendaResponse, 0, len(vendas))
	for i := range vendas {
		data = append(data, *vendaToResponse(&vendas[i]))
	}
	return &dto.VendaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func vendaToResponse(v *model.Venda) *dto.VendaResponse {
	resp := &dto.VendaResponse{
		ID:              v.ID.String(),
		Numero:          v.Numero,
		MetodoPagamento: v.MetodoPagamento,
		Status:          v.Status,
		Subtotal:        v.Subtotal,
		Desconto:        v.Desconto,
		TaxaEntrega:     v.TaxaEntrega,
		Total:           v.Total,
		RealizadaEm:     v.RealizadaEm,
		AtualizadaEm:    v.UpdatedAt,
	}
	if v.ClienteID != nil {
		cid := v.ClienteID.String()
		resp.ClienteID = &cid
	}
	switch {
	case v.Cliente != nil:
		resp.Cliente = v.Cliente.Nome
	case v.ClienteNome != nil:
		resp.Cliente = *v.ClienteNome
	}
	for _, it := range v.Itens {
		item := dto.ItemVendaResponse{
			ProdutoID:     it.ProdutoID.String(),
			Quantidade:    it.Quantidade,
			PrecoUnitario: it.PrecoUnitario,
			Subtotal:      it.Subtotal,
		}
		if it.Produto != nil {
			item.Produto = it.Produto.Nome
		}
		resp.Itens = append(resp.Itens, item)
	}
	return resp
}

func decimalOuZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
