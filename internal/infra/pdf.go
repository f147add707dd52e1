package infra

// pdf.go: cash-session closing report rendered with go-pdf/fpdf.
// The report carries the session header (opening float, open/close times,
// manual or automatic close), one row per paid order in the session window,
// and the frozen totals. Output goes to storagePath/fechamento_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"adegapos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GerarRelatorioCaixaPDF writes the closing report for a closed session and
// returns the path of the generated file.
func GerarRelatorioCaixaPDF(sessao *model.SessaoCaixa, vendas []model.Venda, loc *time.Location, storagePath string) (string, error) {
	if sessao.FechadaEm == nil {
		return "", fmt.Errorf("pdf: sessão %s ainda está aberta", sessao.ID)
	}
	if loc == nil {
		loc = time.Local
	}
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("fechamento_%s.pdf", sessao.ID))

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr("Fechamento de Caixa"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	modo := "manual"
	if sessao.FechamentoAutomatico {
		modo = "automático (meia-noite)"
	}
	linhas := []string{
		"Sessão: " + sessao.ID.String(),
		"Aberta em: " + sessao.AbertaEm.In(loc).Format("02/01/2006 15:04:05"),
		"Fechada em: " + sessao.FechadaEm.In(loc).Format("02/01/2006 15:04:05"),
		"Fechamento: " + modo,
	}
	for _, l := range linhas {
		pdf.CellFormat(contentW, 5, tr(l), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Orders ────────────────────────────────────────────────────────────────
	col := []float64{contentW * 0.20, contentW * 0.25, contentW * 0.30, contentW * 0.25}
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range []string{"Venda", "Horário", "Pagamento", "Total"} {
		align := "L"
		if i == 3 {
			align = "R"
		}
		pdf.CellFormat(col[i], 6, tr(h), "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, v := range vendas {
		pdf.CellFormat(col[0], 5, v.Numero, "", 0, "L", false, 0, "")
		pdf.CellFormat(col[1], 5, v.RealizadaEm.In(loc).Format("15:04:05"), "", 0, "L", false, 0, "")
		pdf.CellFormat(col[2], 5, tr(v.MetodoPagamento), "", 0, "L", false, 0, "")
		pdf.CellFormat(col[3], 5, "R$ "+v.Total.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if len(vendas) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 5, tr("Nenhuma venda paga na sessão."), "", 1, "C", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	vendasPagas := valorOuZero(sessao.VendasFechamento)
	total := valorOuZero(sessao.TotalFechamento)
	rotulo := col[0] + col[1] + col[2]

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(rotulo, 5, "Valor de abertura:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col[3], 5, "R$ "+sessao.ValorAbertura.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(rotulo, 5, fmt.Sprintf("Vendas pagas (%d):", len(vendas)), "", 0, "L", false, 0, "")
	pdf.CellFormat(col[3], 5, "R$ "+vendasPagas.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(rotulo, 7, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col[3], 7, "R$ "+total.StringFixed(2), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func valorOuZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
