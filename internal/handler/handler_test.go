package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"adegapos/internal/dto"
	"adegapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ── Service mocks ─────────────────────────────────────────────────────────────

type mockVendas struct{ mock.Mock }

func (m *mockVendas) Registrar(ctx context.Context, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.VendaResponse)
	return resp, args.Error(1)
}

func (m *mockVendas) AlterarStatus(ctx context.Context, id uuid.UUID, status string) (*dto.VendaResponse, error) {
	args := m.Called(ctx, id, status)
	resp, _ := args.Get(0).(*dto.VendaResponse)
	return resp, args.Error(1)
}

func (m *mockVendas) Excluir(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockVendas) Obter(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*dto.VendaResponse)
	return resp, args.Error(1)
}

func (m *mockVendas) Listar(ctx context.Context, filter dto.VendaFilter) (*dto.VendaListResponse, error) {
	args := m.Called(ctx, filter)
	resp, _ := args.Get(0).(*dto.VendaListResponse)
	return resp, args.Error(1)
}

type mockCaixa struct{ mock.Mock }

func (m *mockCaixa) Abrir(ctx context.Context, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.SessaoCaixaResponse)
	return resp, args.Error(1)
}

func (m *mockCaixa) Fechar(ctx context.Context, automatico bool) (*dto.SessaoCaixaResponse, error) {
	args := m.Called(ctx, automatico)
	resp, _ := args.Get(0).(*dto.SessaoCaixaResponse)
	return resp, args.Error(1)
}

func (m *mockCaixa) Status(ctx context.Context) (*dto.SessaoCaixaResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(*dto.SessaoCaixaResponse)
	return resp, args.Error(1)
}

func (m *mockCaixa) Obter(ctx context.Context, id uuid.UUID) (*dto.SessaoCaixaResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*dto.SessaoCaixaResponse)
	return resp, args.Error(1)
}

func (m *mockCaixa) Historico(ctx context.Context, page, limit int) (*dto.HistoricoCaixaResponse, error) {
	args := m.Called(ctx, page, limit)
	resp, _ := args.Get(0).(*dto.HistoricoCaixaResponse)
	return resp, args.Error(1)
}

func (m *mockCaixa) IniciarAutoFechamento(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockCaixa) AutoFechamentoArmado() bool                      { return m.Called().Bool(0) }
func (m *mockCaixa) AguardarAutoFechamento()                         { m.Called() }

type mockLancamentos struct{ mock.Mock }

func (m *mockLancamentos) Listar(ctx context.Context, filter dto.LancamentoFilter) (*dto.LancamentoListResponse, error) {
	args := m.Called(ctx, filter)
	resp, _ := args.Get(0).(*dto.LancamentoListResponse)
	return resp, args.Error(1)
}

func (m *mockLancamentos) Excluir(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

var (
	_ service.VendaService      = (*mockVendas)(nil)
	_ service.CaixaService      = (*mockCaixa)(nil)
	_ service.LancamentoService = (*mockLancamentos)(nil)
)

// ── Helpers ───────────────────────────────────────────────────────────────────

func init() { gin.SetMode(gin.TestMode) }

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func vendasRouter(svc service.VendaService) *gin.Engine {
	h := NewVendasHandler(svc)
	r := gin.New()
	r.GET("/v1/vendas", h.Listar)
	r.POST("/v1/vendas", h.Registrar)
	r.GET("/v1/vendas/:id", h.Obter)
	r.PATCH("/v1/vendas/:id/status", h.AlterarStatus)
	r.DELETE("/v1/vendas/:id", h.Excluir)
	return r
}

func caixaRouter(svc service.CaixaService) *gin.Engine {
	h := NewCaixaHandler(svc)
	r := gin.New()
	r.POST("/v1/caixa/abrir", h.Abrir)
	r.POST("/v1/caixa/fechar", h.Fechar)
	r.GET("/v1/caixa/status", h.Status)
	r.GET("/v1/caixa/historico", h.Historico)
	r.GET("/v1/caixa/:id", h.Obter)
	return r
}

// ── Vendas ────────────────────────────────────────────────────────────────────

func TestRegistrarVenda_Created(t *testing.T) {
	svc := new(mockVendas)
	produto := uuid.New().String()
	svc.On("Registrar", mock.Anything, mock.MatchedBy(func(req dto.RegistrarVendaRequest) bool {
		return len(req.Itens) == 1 && req.Itens[0].ProdutoID == produto && req.MetodoPagamento == "Pix"
	})).Return(&dto.VendaResponse{ID: uuid.NewString(), Numero: "VENDA00007", Status: "paid", Total: decimal.NewFromInt(20)}, nil)

	w := doRequest(vendasRouter(svc), http.MethodPost, "/v1/vendas", map[string]interface{}{
		"metodo_pagamento": "Pix",
		"itens":            []map[string]interface{}{{"produto_id": produto, "quantidade": 2}},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "VENDA00007", body["numero"])
	assert.Equal(t, "paid", body["status"])
	svc.AssertExpectations(t)
}

func TestRegistrarVenda_JSONInvalido(t *testing.T) {
	svc := new(mockVendas)
	w := doRequest(vendasRouter(svc), http.MethodPost, "/v1/vendas", "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["error"], "JSON inválido")
	svc.AssertNotCalled(t, "Registrar", mock.Anything, mock.Anything)
}

func TestRegistrarVenda_StatusForaDoDominio(t *testing.T) {
	svc := new(mockVendas)
	w := doRequest(vendasRouter(svc), http.MethodPost, "/v1/vendas", map[string]interface{}{
		"status": "refunded",
		"itens":  []map[string]interface{}{{"produto_id": uuid.NewString(), "quantidade": 1}},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	detalhes, ok := body["detalhes"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "oneof", detalhes["status"])
}

func TestRegistrarVenda_ErroDoServicoMapeado(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validacao", fmt.Errorf("%w: venda sem itens", service.ErrValidacao), http.StatusUnprocessableEntity},
		{"conflito", fmt.Errorf("%w: número repetido", service.ErrConflito), http.StatusConflict},
		{"nao encontrado", fmt.Errorf("%w: produto", service.ErrNaoEncontrado), http.StatusNotFound},
		{"armazenamento", fmt.Errorf("%w: vendas: %w", service.ErrArmazenamento, errors.New("conn refused")), http.StatusServiceUnavailable},
		{"desconhecido", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockVendas)
			svc.On("Registrar", mock.Anything, mock.Anything).Return(nil, tc.err)

			w := doRequest(vendasRouter(svc), http.MethodPost, "/v1/vendas", map[string]interface{}{"itens": []interface{}{}})

			assert.Equal(t, tc.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["ok"])
			assert.Equal(t, tc.err.Error(), body["error"], "message is passed through verbatim")
		})
	}
}

func TestListarVendas_FiltroEPaginacao(t *testing.T) {
	svc := new(mockVendas)
	svc.On("Listar", mock.Anything, dto.VendaFilter{Status: "pending", Page: 2, Limit: 10}).
		Return(&dto.VendaListResponse{Total: 11, Page: 2, Limit: 10}, nil)

	w := doRequest(vendasRouter(svc), http.MethodGet, "/v1/vendas?status=pending&page=2&limit=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 11, decode(t, w)["total"])
	svc.AssertExpectations(t)
}

func TestListarVendas_Defaults(t *testing.T) {
	svc := new(mockVendas)
	svc.On("Listar", mock.Anything, dto.VendaFilter{Page: 1, Limit: 50}).Return(&dto.VendaListResponse{}, nil)

	w := doRequest(vendasRouter(svc), http.MethodGet, "/v1/vendas", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAlterarStatus(t *testing.T) {
	svc := new(mockVendas)
	id := uuid.New()
	svc.On("AlterarStatus", mock.Anything, id, "cancelled").Return(&dto.VendaResponse{ID: id.String(), Status: "cancelled"}, nil)

	w := doRequest(vendasRouter(svc), http.MethodPatch, "/v1/vendas/"+id.String()+"/status", map[string]string{"status": "cancelled"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decode(t, w)["status"])
}

func TestAlterarStatus_IDInvalido(t *testing.T) {
	svc := new(mockVendas)
	w := doRequest(vendasRouter(svc), http.MethodPatch, "/v1/vendas/abc/status", map[string]string{"status": "paid"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "AlterarStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestExcluirVenda(t *testing.T) {
	svc := new(mockVendas)
	id := uuid.New()
	svc.On("Excluir", mock.Anything, id).Return(nil)

	w := doRequest(vendasRouter(svc), http.MethodDelete, "/v1/vendas/"+id.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"ok": true}, decode(t, w))
}

func TestObterVenda_NaoEncontrada(t *testing.T) {
	svc := new(mockVendas)
	id := uuid.New()
	svc.On("Obter", mock.Anything, id).Return(nil, fmt.Errorf("%w: venda", service.ErrNaoEncontrado))

	w := doRequest(vendasRouter(svc), http.MethodGet, "/v1/vendas/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── Caixa ─────────────────────────────────────────────────────────────────────

func TestAbrirCaixa_SemCorpo(t *testing.T) {
	svc := new(mockCaixa)
	svc.On("Abrir", mock.Anything, dto.AbrirCaixaRequest{}).Return(&dto.SessaoCaixaResponse{Status: "open"}, nil)

	w := doRequest(caixaRouter(svc), http.MethodPost, "/v1/caixa/abrir", nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "open", decode(t, w)["status"])
}

func TestAbrirCaixa_CorpoChunkedVazio(t *testing.T) {
	svc := new(mockCaixa)
	svc.On("Abrir", mock.Anything, dto.AbrirCaixaRequest{}).Return(&dto.SessaoCaixaResponse{Status: "open"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/caixa/abrir", http.NoBody)
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	w := httptest.NewRecorder()
	caixaRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertCalled(t, "Abrir", mock.Anything, dto.AbrirCaixaRequest{})
}

func TestAbrirCaixa_JSONInvalido(t *testing.T) {
	svc := new(mockCaixa)
	w := doRequest(caixaRouter(svc), http.MethodPost, "/v1/caixa/abrir", `{"valor_abertura":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Abrir", mock.Anything, mock.Anything)
}

func TestAbrirCaixa_ValorNegativo(t *testing.T) {
	svc := new(mockCaixa)
	w := doRequest(caixaRouter(svc), http.MethodPost, "/v1/caixa/abrir", map[string]interface{}{"valor_abertura": -5})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	svc.AssertNotCalled(t, "Abrir", mock.Anything, mock.Anything)
}

func TestAbrirCaixa_JaAberto(t *testing.T) {
	svc := new(mockCaixa)
	svc.On("Abrir", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: já existe um caixa aberto", service.ErrConflito))

	w := doRequest(caixaRouter(svc), http.MethodPost, "/v1/caixa/abrir", map[string]interface{}{"valor_abertura": 100})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFecharCaixa_Manual(t *testing.T) {
	svc := new(mockCaixa)
	svc.On("Fechar", mock.Anything, false).Return(&dto.SessaoCaixaResponse{Status: "closed"}, nil)

	w := doRequest(caixaRouter(svc), http.MethodPost, "/v1/caixa/fechar", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestStatusCaixa_SemSessao(t *testing.T) {
	svc := new(mockCaixa)
	svc.On("Status", mock.Anything).Return(nil, nil)

	w := doRequest(caixaRouter(svc), http.MethodGet, "/v1/caixa/status", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"ok": true, "sessao": nil}, decode(t, w))
}

func TestHistoricoCaixa_RepassaPaginacao(t *testing.T) {
	svc := new(mockCaixa)
	svc.On("Historico", mock.Anything, 3, 5).Return(&dto.HistoricoCaixaResponse{Page: 3, Limit: 5}, nil)

	w := doRequest(caixaRouter(svc), http.MethodGet, "/v1/caixa/historico?page=3&limit=5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

// ── Lançamentos ───────────────────────────────────────────────────────────────

func TestListarLancamentos_TipoInvalido(t *testing.T) {
	svc := new(mockLancamentos)
	r := gin.New()
	r.GET("/v1/lancamentos", NewLancamentosHandler(svc).Listar)

	w := doRequest(r, http.MethodGet, "/v1/lancamentos?tipo=transferencia", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	svc.AssertNotCalled(t, "Listar", mock.Anything, mock.Anything)
}

func TestExcluirLancamento(t *testing.T) {
	svc := new(mockLancamentos)
	id := uuid.New()
	svc.On("Excluir", mock.Anything, id).Return(nil)
	r := gin.New()
	r.DELETE("/v1/lancamentos/:id", NewLancamentosHandler(svc).Excluir)

	w := doRequest(r, http.MethodDelete, "/v1/lancamentos/"+id.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

// ── Health ────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	falha := func(context.Context) error { return errors.New("down") }

	cases := []struct {
		name          string
		db, redis     Pinger
		status        int
		dbEsperado    string
		redisEsperado string
	}{
		{"tudo ok", ok, ok, http.StatusOK, "connected", "connected"},
		{"banco fora", falha, ok, http.StatusServiceUnavailable, "error", "connected"},
		{"redis desabilitado", ok, nil, http.StatusOK, "connected", "disabled"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", health(tc.db, tc.redis, func() string { return "closed" }, func() bool { return true }))

			w := doRequest(r, http.MethodGet, "/health", nil)

			assert.Equal(t, tc.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, tc.dbEsperado, body["db"])
			assert.Equal(t, tc.redisEsperado, body["redis"])
			assert.Equal(t, "closed", body["email"])
			assert.Equal(t, true, body["auto_fechamento_armado"])
		})
	}
}
