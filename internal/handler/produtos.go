package handler

import (
	"net/http"
	"strconv"

	"adegapos/internal/dto"
	"adegapos/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogoHandler serves products, stock adjustments and customers.
type CatalogoHandler struct{ svc service.CatalogoService }

func NewCatalogoHandler(svc service.CatalogoService) *CatalogoHandler {
	return &CatalogoHandler{svc: svc}
}

// CriarProduto godoc
// @Summary      Cadastrar produto
// @Tags         produtos
// @Accept       json
// @Produce      json
// @Param        body body dto.CriarProdutoRequest true "Produto"
// @Success      201  {object} dto.ProdutoResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/produtos [post]
func (h *CatalogoHandler) CriarProduto(c *gin.Context) {
	var req dto.CriarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CriarProduto(c.Request.Context(), req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarProdutos godoc
// @Summary      Listar produtos
// @Tags         produtos
// @Produce      json
// @Param        categoria query string false "Categoria"
// @Param        busca     query string false "Trecho do nome"
// @Param        page      query int    false "Página"  default(1)
// @Param        limit     query int    false "Tamanho" default(100)
// @Success      200  {object} dto.ProdutoListResponse
// @Router       /v1/produtos [get]
func (h *CatalogoHandler) ListarProdutos(c *gin.Context) {
	var filter dto.ProdutoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarProdutos(c.Request.Context(), filter)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObterProduto godoc
// @Summary      Detalhe do produto
// @Tags         produtos
// @Produce      json
// @Param        id path string true "UUID do produto"
// @Success      200  {object} dto.ProdutoResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/produtos/{id} [get]
func (h *CatalogoHandler) ObterProduto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObterProduto(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AjustarEstoque godoc
// @Summary      Ajustar estoque
// @Description  Aplica um delta com sinal. Deltas positivos contam como reposição; o saldo nunca fica negativo.
// @Tags         produtos
// @Accept       json
// @Produce      json
// @Param        id   path string                    true "UUID do produto"
// @Param        body body dto.AjustarEstoqueRequest true "Delta e motivo"
// @Success      200  {object} dto.MovimentoEstoqueResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/produtos/{id}/estoque [patch]
func (h *CatalogoHandler) AjustarEstoque(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AjustarEstoqueRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarEstoque(c.Request.Context(), id, req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimentos godoc
// @Summary      Movimentos de estoque do produto
// @Tags         produtos
// @Produce      json
// @Param        id    path  string true  "UUID do produto"
// @Param        limit query int    false "Máximo de linhas" default(50)
// @Success      200  {array}  dto.MovimentoEstoqueResponse
// @Router       /v1/produtos/{id}/movimentos [get]
func (h *CatalogoHandler) Movimentos(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	resp, err := h.svc.Movimentos(c.Request.Context(), id, limit)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Alertas godoc
// @Summary      Produtos com estoque baixo
// @Description  Produtos cuja quantidade está abaixo do estoque mínimo.
// @Tags         produtos
// @Produce      json
// @Success      200  {array}  dto.ProdutoResponse
// @Router       /v1/produtos/alertas [get]
func (h *CatalogoHandler) Alertas(c *gin.Context) {
	resp, err := h.svc.AlertasEstoque(c.Request.Context())
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CriarCliente godoc
// @Summary      Cadastrar cliente
// @Tags         clientes
// @Accept       json
// @Produce      json
// @Param        body body dto.CriarClienteRequest true "Cliente"
// @Success      201  {object} dto.ClienteResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/clientes [post]
func (h *CatalogoHandler) CriarCliente(c *gin.Context) {
	var req dto.CriarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CriarCliente(c.Request.Context(), req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ObterCliente godoc
// @Summary      Detalhe do cliente
// @Tags         clientes
// @Produce      json
// @Param        id path string true "UUID do cliente"
// @Success      200  {object} dto.ClienteResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/clientes/{id} [get]
func (h *CatalogoHandler) ObterCliente(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObterCliente(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
