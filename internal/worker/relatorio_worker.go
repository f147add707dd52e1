package worker

// relatorio_worker.go
// Processes closing-report jobs from QueueRelatorioCaixa:
//  1. Load the closed session
//  2. Load the paid orders placed inside its window
//  3. Render the PDF report
//  4. Enqueue an email job when a recipient is configured

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"adegapos/internal/infra"
	"adegapos/internal/model"
	"adegapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RelatorioCaixaPayload is the job envelope sent to QueueRelatorioCaixa.
type RelatorioCaixaPayload struct {
	SessaoID string `json:"sessao_id"`
}

// EmailEnqueuer is the slice of *Dispatcher the report worker needs.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, p EmailJobPayload) error
}

type RelatorioCaixaConfig struct {
	CaixaRepo    repository.CaixaRepository
	VendaRepo    repository.VendaRepository
	Emails       EmailEnqueuer
	Location     *time.Location
	StoragePath  string
	Destinatario string // empty disables the email
	// Gerar renders the PDF; defaults to infra.GerarRelatorioCaixaPDF.
	Gerar func(s *model.SessaoCaixa, vendas []model.Venda, loc *time.Location, dir string) (string, error)
}

type RelatorioCaixaWorker struct {
	cfg RelatorioCaixaConfig
}

func NewRelatorioCaixaWorker(cfg RelatorioCaixaConfig) *RelatorioCaixaWorker {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Gerar == nil {
		cfg.Gerar = infra.GerarRelatorioCaixaPDF
	}
	return &RelatorioCaixaWorker{cfg: cfg}
}

func (w *RelatorioCaixaWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload RelatorioCaixaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("relatorio_worker: invalid payload")
		return nil
	}
	sessaoID, err := uuid.Parse(payload.SessaoID)
	if err != nil {
		log.Error().Str("sessao_id", payload.SessaoID).Msg("relatorio_worker: invalid sessao_id")
		return nil
	}

	sessao, err := w.cfg.CaixaRepo.FindByID(ctx, sessaoID)
	if err != nil {
		return fmt.Errorf("relatorio_worker: load session: %w", err)
	}
	if sessao.FechadaEm == nil {
		log.Warn().Str("sessao_id", payload.SessaoID).Msg("relatorio_worker: session still open, skipping")
		return nil
	}
	vendas, err := w.cfg.VendaRepo.ListPagas(ctx, sessao.AbertaEm, *sessao.FechadaEm)
	if err != nil {
		return fmt.Errorf("relatorio_worker: load orders: %w", err)
	}

	pdfPath, err := w.cfg.Gerar(sessao, vendas, w.cfg.Location, w.cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("relatorio_worker: render PDF: %w", err)
	}
	log.Info().Str("pdf", pdfPath).Str("sessao_id", payload.SessaoID).Int("vendas", len(vendas)).Msg("relatorio_worker: report generated")

	if w.cfg.Destinatario == "" || w.cfg.Emails == nil {
		return nil
	}
	dia := sessao.AbertaEm.In(w.cfg.Location).Format("02/01/2006")
	total := "0.00"
	if sessao.TotalFechamento != nil {
		total = sessao.TotalFechamento.StringFixed(2)
	}
	job := EmailJobPayload{
		ToEmail: w.cfg.Destinatario,
		Subject: "Fechamento de caixa " + dia,
		Body:    fmt.Sprintf("Segue o relatório do caixa aberto em %s.\nTotal: R$ %s", dia, total),
		PDFPath: pdfPath,
	}
	if err := w.cfg.Emails.EnqueueEmail(ctx, job); err != nil {
		// The PDF exists already; a re-run would only duplicate it.
		log.Warn().Err(err).Str("sessao_id", payload.SessaoID).Msg("relatorio_worker: failed to enqueue email")
	}
	return nil
}
