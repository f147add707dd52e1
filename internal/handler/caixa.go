package handler

import (
	"net/http"
	"strconv"

	"adegapos/internal/dto"
	"adegapos/internal/service"

	"github.com/gin-gonic/gin"
)

type CaixaHandler struct{ svc service.CaixaService }

func NewCaixaHandler(svc service.CaixaService) *CaixaHandler { return &CaixaHandler{svc: svc} }

// Abrir godoc
// @Summary      Abrir caixa
// @Description  Abre a sessão de caixa e agenda o fechamento automático para a meia-noite local seguinte.
// @Tags         caixa
// @Accept       json
// @Produce      json
// @Param        body body dto.AbrirCaixaRequest false "Troco inicial"
// @Success      201  {object} dto.SessaoCaixaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	// An empty body opens with a zero float.
	if !bindOptional(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Fechar godoc
// @Summary      Fechar caixa
// @Description  Fecha a sessão aberta, congela o total e lança o troco inicial como entrada de Fechamento de Caixa.
// @Tags         caixa
// @Produce      json
// @Success      200  {object} dto.SessaoCaixaResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	resp, err := h.svc.Fechar(c.Request.Context(), false)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Status godoc
// @Summary      Status do caixa
// @Description  Sessão aberta com total corrente, ou {"ok":true,"sessao":null} quando não há caixa aberto.
// @Tags         caixa
// @Produce      json
// @Success      200  {object} dto.SessaoCaixaResponse
// @Router       /v1/caixa/status [get]
func (h *CaixaHandler) Status(c *gin.Context) {
	resp, err := h.svc.Status(c.Request.Context())
	if err != nil {
		responderErro(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "sessao": nil})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historico godoc
// @Summary      Histórico de sessões
// @Tags         caixa
// @Produce      json
// @Param        page  query int false "Página"  default(1)
// @Param        limit query int false "Tamanho" default(20)
// @Success      200  {object} dto.HistoricoCaixaResponse
// @Router       /v1/caixa/historico [get]
func (h *CaixaHandler) Historico(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.Historico(c.Request.Context(), page, limit)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obter godoc
// @Summary      Sessão de caixa por ID
// @Tags         caixa
// @Produce      json
// @Param        id path string true "UUID da sessão"
// @Success      200  {object} dto.SessaoCaixaResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/caixa/{id} [get]
func (h *CaixaHandler) Obter(c *gin.Context) {
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
