package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"adegapos/internal/dto"
	"adegapos/internal/model"
	"adegapos/internal/service"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fluxoCaixaContext struct {
	repos    *repos
	vendas   service.VendaService
	caixa    service.CaixaService
	produtos map[string]*model.Produto
	pedidos  map[string]uuid.UUID
	err      error
}

func (c *fluxoCaixaContext) reset() {
	c.repos = novosRepos()
	c.vendas = c.repos.vendaService(service.Integracoes{})
	c.caixa = c.repos.caixaService(service.AutoFechamentoConfig{}, service.Integracoes{})
	c.produtos = make(map[string]*model.Produto)
	c.pedidos = make(map[string]uuid.UUID)
	c.err = nil
}

func (c *fluxoCaixaContext) oProdutoCustaComEmEstoque(nome, preco string, qtd int) error {
	c.produtos[nome] = c.repos.mem.addProduto(nome, preco, qtd, 0)
	return nil
}

func (c *fluxoCaixaContext) oCaixaFoiAbertoCom(valor string) error {
	_, err := c.caixa.Abrir(context.Background(), dto.AbrirCaixaRequest{ValorAbertura: dec(valor)})
	return err
}

func (c *fluxoCaixaContext) registroUmaVenda(qtd int, produto, metodo, rotulo string) error {
	p, ok := c.produtos[produto]
	if !ok {
		return fmt.Errorf("produto %q não cadastrado no cenário", produto)
	}
	resp, err := c.vendas.Registrar(context.Background(), dto.RegistrarVendaRequest{
		MetodoPagamento: metodo,
		Itens:           []dto.ItemVendaRequest{{ProdutoID: p.ID.String(), Quantidade: qtd}},
	})
	if err != nil {
		return err
	}
	c.pedidos[rotulo] = uuid.MustParse(resp.ID)
	return nil
}

func (c *fluxoCaixaContext) aVendaPassaPara(rotulo, status string) error {
	_, err := c.vendas.AlterarStatus(context.Background(), c.pedidos[rotulo], status)
	return err
}

func (c *fluxoCaixaContext) aVendaEsta(rotulo, status string) error {
	v, err := c.vendas.Obter(context.Background(), c.pedidos[rotulo])
	if err != nil {
		return err
	}
	if v.Status != status {
		return fmt.Errorf("venda %s: status %q, esperado %q", rotulo, v.Status, status)
	}
	return nil
}

func (c *fluxoCaixaContext) oLivroCaixaTem(n int, tipo, soma string) error {
	esperado := decimal.RequireFromString(soma)
	total, qtd := decimal.Zero, 0
	for _, l := range c.repos.mem.lancamentosCopia() {
		if l.Tipo == tipo {
			qtd++
			total = total.Add(l.Valor)
		}
	}
	if qtd != n || !total.Equal(esperado) {
		return fmt.Errorf("livro caixa: %d lançamentos de %s somando %s, esperado %d somando %s",
			qtd, tipo, total.StringFixed(2), n, esperado.StringFixed(2))
	}
	return nil
}

func (c *fluxoCaixaContext) oTotalCorrenteE(valor string) error {
	st, err := c.caixa.Status(context.Background())
	if err != nil {
		return err
	}
	if st == nil {
		return errors.New("nenhum caixa aberto")
	}
	if !st.TotalCorrente.Equal(decimal.RequireFromString(valor)) {
		return fmt.Errorf("total corrente %s, esperado %s", st.TotalCorrente.StringFixed(2), valor)
	}
	return nil
}

func (c *fluxoCaixaContext) oEstoqueE(produto string, qtd int) error {
	if got := c.repos.mem.quantidade(c.produtos[produto].ID); got != qtd {
		return fmt.Errorf("estoque de %s: %d, esperado %d", produto, got, qtd)
	}
	return nil
}

func (c *fluxoCaixaContext) tentoAbrirOutroCaixaCom(valor string) error {
	_, c.err = c.caixa.Abrir(context.Background(), dto.AbrirCaixaRequest{ValorAbertura: dec(valor)})
	return nil
}

func (c *fluxoCaixaContext) aOperacaoFalhaComConflito() error {
	if !errors.Is(c.err, service.ErrConflito) {
		return fmt.Errorf("esperado conflito, obtido %v", c.err)
	}
	return nil
}

func InitializeFluxoCaixa(ctx *godog.ScenarioContext) {
	tc := &fluxoCaixaContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^que o produto "([^"]*)" custa ([\d.]+) com (\d+) em estoque$`, tc.oProdutoCustaComEmEstoque)
	ctx.Step(`^que o caixa foi aberto com ([\d.]+)$`, tc.oCaixaFoiAbertoCom)

	ctx.Step(`^registro uma venda de (\d+) "([^"]*)" em "([^"]*)" como "([^"]*)"$`, tc.registroUmaVenda)
	ctx.Step(`^a venda "([^"]*)" passa para "([^"]*)"$`, tc.aVendaPassaPara)
	ctx.Step(`^tento abrir outro caixa com ([\d.]+)$`, tc.tentoAbrirOutroCaixaCom)

	ctx.Step(`^a venda "([^"]*)" está "([^"]*)"$`, tc.aVendaEsta)
	ctx.Step(`^o livro caixa tem (\d+) lançamentos? de (entrada|saida) somando ([\d.]+)$`, tc.oLivroCaixaTem)
	ctx.Step(`^o total corrente do caixa é ([\d.]+)$`, tc.oTotalCorrenteE)
	ctx.Step(`^o estoque de "([^"]*)" é (\d+)$`, tc.oEstoqueE)
	ctx.Step(`^a operação falha com conflito$`, tc.aOperacaoFalhaComConflito)
}

func TestFluxoCaixa(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeFluxoCaixa,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/fluxo_caixa.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
