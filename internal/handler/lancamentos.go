package handler

import (
	"net/http"

	"adegapos/internal/dto"
	"adegapos/internal/service"

	"github.com/gin-gonic/gin"
)

type LancamentosHandler struct{ svc service.LancamentoService }

func NewLancamentosHandler(svc service.LancamentoService) *LancamentosHandler {
	return &LancamentosHandler{svc: svc}
}

// Listar godoc
// @Summary      Listar lançamentos
// @Description  Livro-caixa filtrado por tipo, categoria e período (YYYY-MM-DD, fuso da loja), com totais de entradas, saídas e saldo.
// @Tags         lancamentos
// @Produce      json
// @Param        tipo      query string false "entrada | saida"
// @Param        categoria query string false "Categoria"
// @Param        de        query string false "Data inicial (inclusive)"
// @Param        ate       query string false "Data final (inclusive)"
// @Param        page      query int    false "Página"  default(1)
// @Param        limit     query int    false "Tamanho" default(50)
// @Success      200  {object} dto.LancamentoListResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/lancamentos [get]
func (h *LancamentosHandler) Listar(c *gin.Context) {
	var filter dto.LancamentoFilter
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

// Excluir godoc
// @Summary      Excluir lançamento
// @Tags         lancamentos
// @Produce      json
// @Param        id path string true "UUID do lançamento"
// @Success      200  {object} map[string]bool
// @Failure      404  {object} apierror.APIError
// @Router       /v1/lancamentos/{id} [delete]
func (h *LancamentosHandler) Excluir(c *gin.Context) {
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
