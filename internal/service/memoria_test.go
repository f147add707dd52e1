package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"adegapos/internal/dto"
	"adegapos/internal/model"
	"adegapos/internal/repository"
	"adegapos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store shared by the stub repositories ──────────────────────────

type memoria struct {
	mu          sync.Mutex
	produtos    map[uuid.UUID]*model.Produto
	clientes    map[uuid.UUID]*model.Cliente
	vendas      map[uuid.UUID]*model.Venda
	lancamentos []model.Lancamento
	movimentos  []model.MovimentoEstoque
	sessoes     map[uuid.UUID]*model.SessaoCaixa
	contadores  map[string]int64

	// failure injection
	falhaContador error
	falhaFechar   error

	// aoTravarCaixa runs when a close asks for the session lock, standing in
	// for an order that held the share lock and commits first.
	aoTravarCaixa func()
}

func novaMemoria() *memoria {
	return &memoria{
		produtos:   make(map[uuid.UUID]*model.Produto),
		clientes:   make(map[uuid.UUID]*model.Cliente),
		vendas:     make(map[uuid.UUID]*model.Venda),
		sessoes:    make(map[uuid.UUID]*model.SessaoCaixa),
		contadores: make(map[string]int64),
	}
}

func (m *memoria) addProduto(nome, preco string, qtd, minimo int) *model.Produto {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &model.Produto{
		ID:            uuid.New(),
		Nome:          nome,
		PrecoVenda:    decimal.RequireFromString(preco),
		Quantidade:    qtd,
		EstoqueMinimo: minimo,
	}
	m.produtos[p.ID] = p
	return p
}

func (m *memoria) quantidade(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.produtos[id].Quantidade
}

func (m *memoria) lancamentosCopia() []model.Lancamento {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Lancamento(nil), m.lancamentos...)
}

func (m *memoria) setFalhaFechar(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.falhaFechar = err
}

func (m *memoria) sessao(id uuid.UUID) model.SessaoCaixa {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.sessoes[id]
}

type repos struct {
	mem        *memoria
	produto    *stubProdutoRepo
	movimento  *stubMovimentoRepo
	cliente    *stubClienteRepo
	venda      *stubVendaRepo
	contador   *stubContadorRepo
	lancamento *stubLancamentoRepo
	caixa      *stubCaixaRepo
}

func novosRepos() *repos {
	mem := novaMemoria()
	return &repos{
		mem:        mem,
		produto:    &stubProdutoRepo{mem},
		movimento:  &stubMovimentoRepo{mem},
		cliente:    &stubClienteRepo{mem},
		venda:      &stubVendaRepo{mem},
		contador:   &stubContadorRepo{mem},
		lancamento: &stubLancamentoRepo{mem},
		caixa:      &stubCaixaRepo{mem},
	}
}

func (r *repos) vendaService(integ service.Integracoes) service.VendaService {
	seq := service.NewSequenciador(r.contador, "teste", integ.Now)
	return service.NewVendaService(r.venda, r.produto, r.movimento, r.lancamento, r.cliente, seq, integ)
}

// ── Produto ──────────────────────────────────────────────────────────────────

type stubProdutoRepo struct{ m *memoria }

var _ repository.ProdutoRepository = (*stubProdutoRepo)(nil)

func (r *stubProdutoRepo) DB() *gorm.DB { return nil }

func (r *stubProdutoRepo) Create(_ context.Context, p *model.Produto) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *p
	r.m.produtos[p.ID] = &cp
	return nil
}

func (r *stubProdutoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Produto, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.produtos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProdutoRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Produto, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []model.Produto
	for _, id := range ids {
		if p, ok := r.m.produtos[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProdutoRepo) List(_ context.Context, f dto.ProdutoFilter) ([]model.Produto, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []model.Produto
	for _, p := range r.m.produtos {
		if f.Categoria != "" && p.Categoria != f.Categoria {
			continue
		}
		if f.Busca != "" && !strings.Contains(strings.ToLower(p.Nome), strings.ToLower(f.Busca)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, int64(len(out)), nil
}

func (r *stubProdutoRepo) ListEstoqueBaixo(_ context.Context) ([]model.Produto, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []model.Produto
	for _, p := range r.m.produtos {
		if p.EstoqueBaixo() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProdutoRepo) AjustarEstoqueTx(_ context.Context, _ *gorm.DB, id uuid.UUID, delta int) (*repository.AjusteEstoque, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.produtos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	anterior := p.Quantidade
	p.Quantidade += delta
	if p.Quantidade < 0 {
		p.Quantidade = 0
	}
	return &repository.AjusteEstoque{
		ProdutoID:     id,
		Nome:          p.Nome,
		Anterior:      anterior,
		Novo:          p.Quantidade,
		EstoqueMinimo: p.EstoqueMinimo,
	}, nil
}

// ── MovimentoEstoque ─────────────────────────────────────────────────────────

type stubMovimentoRepo struct{ m *memoria }

var _ repository.MovimentoEstoqueRepository = (*stubMovimentoRepo)(nil)

func (r *stubMovimentoRepo) CreateTx(_ context.Context, _ *gorm.DB, mov *model.MovimentoEstoque) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.movimentos = append(r.m.movimentos, *mov)
	return nil
}

func (r *stubMovimentoRepo) ListByProduto(_ context.Context, id uuid.UUID, limit int) ([]model.MovimentoEstoque, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []model.MovimentoEstoque
	for i := len(r.m.movimentos) - 1; i >= 0 && len(out) < limit; i-- {
		if r.m.movimentos[i].ProdutoID == id {
			out = append(out, r.m.movimentos[i])
		}
	}
	return out, nil
}

// ── Cliente ──────────────────────────────────────────────────────────────────

type stubClienteRepo struct{ m *memoria }

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *c
	r.m.clientes[c.ID] = &cp
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

// ── Contador ─────────────────────────────────────────────────────────────────

type stubContadorRepo struct{ m *memoria }

var _ repository.ContadorRepository = (*stubContadorRepo)(nil)

func (r *stubContadorRepo) Incrementar(_ context.Context, chave string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.falhaContador != nil {
		return 0, r.m.falhaContador
	}
	r.m.contadores[chave]++
	return r.m.contadores[chave], nil
}

// ── Venda ────────────────────────────────────────────────────────────────────

type stubVendaRepo struct{ m *memoria }

var _ repository.VendaRepository = (*stubVendaRepo)(nil)

func (r *stubVendaRepo) DB() *gorm.DB { return nil }

func (r *stubVendaRepo) CreateTx(_ context.Context, _ *gorm.DB, v *model.Venda) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existente := range r.m.vendas {
		if existente.Numero == v.Numero {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *v
	cp.Itens = append([]model.VendaItem(nil), v.Itens...)
	r.m.vendas[v.ID] = &cp
	return nil
}

func (r *stubVendaRepo) carregar(id uuid.UUID) (*model.Venda, error) {
	v, ok := r.m.vendas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	cp.Itens = append([]model.VendaItem(nil), v.Itens...)
	for i := range cp.Itens {
		if p, ok := r.m.produtos[cp.Itens[i].ProdutoID]; ok {
			pc := *p
			cp.Itens[i].Produto = &pc
		}
	}
	if cp.ClienteID != nil {
		if c, ok := r.m.clientes[*cp.ClienteID]; ok {
			cc := *c
			cp.Cliente = &cc
		}
	}
	return &cp, nil
}

func (r *stubVendaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venda, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.carregar(id)
}

func (r *stubVendaRepo) FindByIDForUpdateTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Venda, error) {
	return r.FindByID(ctx, id)
}

func (r *stubVendaRepo) UpdateStatusTx(_ context.Context, _ *gorm.DB, id uuid.UUID, status string, em time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.vendas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Status = status
	v.UpdatedAt = em
	return nil
}

func (r *stubVendaRepo) DeleteTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.vendas[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.vendas, id)
	return nil
}

func (r *stubVendaRepo) List(_ context.Context, f dto.VendaFilter) ([]model.Venda, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []model.Venda
	for _, v := range r.m.vendas {
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequencia > out[j].Sequencia })
	return out, int64(len(out)), nil
}

func (r *stubVendaRepo) pagas(de, ate time.Time) []model.Venda {
	var out []model.Venda
	for _, v := range r.m.vendas {
		if v.Status == model.StatusPago && !v.RealizadaEm.Before(de) && !v.RealizadaEm.After(ate) && !v.UpdatedAt.After(ate) {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RealizadaEm.Before(out[j].RealizadaEm) })
	return out
}

func (r *stubVendaRepo) SomarPagas(ctx context.Context, de, ate time.Time) (decimal.Decimal, error) {
	return r.SomarPagasTx(ctx, nil, de, ate)
}

func (r *stubVendaRepo) SomarPagasTx(_ context.Context, _ *gorm.DB, de, ate time.Time) (decimal.Decimal, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	soma := decimal.Zero
	for _, v := range r.pagas(de, ate) {
		soma = soma.Add(v.Total)
	}
	return soma, nil
}

func (r *stubVendaRepo) ListPagas(_ context.Context, de, ate time.Time) ([]model.Venda, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.pagas(de, ate), nil
}

func (r *stubVendaRepo) TravarCaixaTx(context.Context, *gorm.DB) error { return nil }

// ── Lancamento ───────────────────────────────────────────────────────────────

type stubLancamentoRepo struct{ m *memoria }

var _ repository.LancamentoRepository = (*stubLancamentoRepo)(nil)

func (r *stubLancamentoRepo) CreateTx(_ context.Context, _ *gorm.DB, l *model.Lancamento) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.lancamentos = append(r.m.lancamentos, *l)
	return nil
}

func (r *stubLancamentoRepo) filtrar(q repository.LancamentoQuery) []model.Lancamento {
	var out []model.Lancamento
	for _, l := range r.m.lancamentos {
		if q.Tipo != "" && l.Tipo != q.Tipo {
			continue
		}
		if q.Categoria != "" && l.Categoria != q.Categoria {
			continue
		}
		if q.De != nil && l.Data.Before(*q.De) {
			continue
		}
		if q.Ate != nil && !l.Data.Before(*q.Ate) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (r *stubLancamentoRepo) List(_ context.Context, q repository.LancamentoQuery) ([]model.Lancamento, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	todos := r.filtrar(q)
	total := int64(len(todos))
	if q.Offset >= len(todos) {
		return nil, total, nil
	}
	todos = todos[q.Offset:]
	if q.Limit > 0 && len(todos) > q.Limit {
		todos = todos[:q.Limit]
	}
	return todos, total, nil
}

func (r *stubLancamentoRepo) Totais(_ context.Context, q repository.LancamentoQuery) (decimal.Decimal, decimal.Decimal, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	entradas, saidas := decimal.Zero, decimal.Zero
	for _, l := range r.filtrar(q) {
		if l.Tipo == model.LancamentoEntrada {
			entradas = entradas.Add(l.Valor)
		} else {
			saidas = saidas.Add(l.Valor)
		}
	}
	return entradas, saidas, nil
}

func (r *stubLancamentoRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, l := range r.m.lancamentos {
		if l.ID == id {
			r.m.lancamentos = append(r.m.lancamentos[:i], r.m.lancamentos[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Caixa ────────────────────────────────────────────────────────────────────

type stubCaixaRepo struct{ m *memoria }

var _ repository.CaixaRepository = (*stubCaixaRepo)(nil)

func (r *stubCaixaRepo) DB() *gorm.DB { return nil }

// Create mirrors the partial unique index on open sessions.
func (r *stubCaixaRepo) Create(_ context.Context, s *model.SessaoCaixa) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existente := range r.m.sessoes {
		if existente.Status == model.CaixaAberto {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *s
	r.m.sessoes[s.ID] = &cp
	return nil
}

func (r *stubCaixaRepo) FindAberta(_ context.Context) (*model.SessaoCaixa, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.sessoes {
		if s.Status == model.CaixaAberto {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCaixaRepo) FindAbertaForUpdateTx(ctx context.Context, _ *gorm.DB) (*model.SessaoCaixa, error) {
	r.m.mu.Lock()
	hook := r.m.aoTravarCaixa
	r.m.aoTravarCaixa = nil
	r.m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return r.FindAberta(ctx)
}

func (r *stubCaixaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessoes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubCaixaRepo) FecharTx(_ context.Context, _ *gorm.DB, id uuid.UUID, f repository.Fechamento) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.falhaFechar != nil {
		return false, r.m.falhaFechar
	}
	s, ok := r.m.sessoes[id]
	if !ok || s.Status != model.CaixaAberto {
		return false, nil
	}
	fechadaEm, vendas, total := f.FechadaEm, f.Vendas, f.Total
	s.Status = model.CaixaFechado
	s.FechadaEm = &fechadaEm
	s.VendasFechamento = &vendas
	s.TotalFechamento = &total
	s.FechamentoAutomatico = f.Automatico
	return true, nil
}

func (r *stubCaixaRepo) List(_ context.Context, page, limit int) ([]model.SessaoCaixa, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []model.SessaoCaixa
	for _, s := range r.m.sessoes {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AbertaEm.After(out[j].AbertaEm) })
	total := int64(len(out))
	inicio := (page - 1) * limit
	if inicio >= len(out) {
		return nil, total, nil
	}
	out = out[inicio:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

var errArmazenamento = errors.New("connection refused")
