package handler

import (
	"net/http"

	"adegapos/internal/dto"
	"adegapos/internal/service"

	"github.com/gin-gonic/gin"
)

type VendasHandler struct{ svc service.VendaService }

func NewVendasHandler(svc service.VendaService) *VendasHandler { return &VendasHandler{svc: svc} }

// Registrar godoc
// @Summary      Registrar uma venda
// @Description  Grava cabeçalho e itens, baixa o estoque (nunca abaixo de zero) e lança a entrada no caixa quando a venda nasce paga.
// @Tags         vendas
// @Accept       json
// @Produce      json
// @Param        body body dto.RegistrarVendaRequest true "Itens e pagamento"
// @Success      201  {object} dto.VendaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/vendas [post]
func (h *VendasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar vendas
// @Description  Lista paginada, mais recentes primeiro, com filtro opcional por status.
// @Tags         vendas
// @Produce      json
// @Param        status query string false "paid | pending | cancelled"
// @Param        page   query int    false "Página"  default(1)
// @Param        limit  query int    false "Tamanho" default(50)
// @Success      200  {object} dto.VendaListResponse
// @Router       /v1/vendas [get]
func (h *VendasHandler) Listar(c *gin.Context) {
	var filter dto.VendaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obter godoc
// @Summary      Detalhe da venda
// @Tags         vendas
// @Produce      json
// @Param        id path string true "UUID da venda"
// @Success      200  {object} dto.VendaResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/vendas/{id} [get]
func (h *VendasHandler) Obter(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AlterarStatus godoc
// @Summary      Alterar status da venda
// @Description  Entrar em paid lança uma entrada; sair de paid lança uma saída compensatória. O estoque não é alterado.
// @Tags         vendas
// @Accept       json
// @Produce      json
// @Param        id   path string                   true "UUID da venda"
// @Param        body body dto.AlterarStatusRequest true "Novo status"
// @Success      200  {object} dto.VendaResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/vendas/{id}/status [patch]
func (h *VendasHandler) AlterarStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AlterarStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AlterarStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Excluir godoc
// @Summary      Excluir venda
// @Description  Remove a venda e seus itens. Estoque e lançamentos ficam como estão.
// @Tags         vendas
// @Produce      json
// @Param        id path string true "UUID da venda"
// @Success      200  {object} map[string]bool
// @Failure      404  {object} apierror.APIError
// @Router       /v1/vendas/{id} [delete]
func (h *VendasHandler) Excluir(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), id); err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
