package service

import (
	"context"
	"errors"
	"time"

	"adegapos/internal/dto"
	"adegapos/internal/metrics"
	"adegapos/internal/model"
	"adegapos/internal/repository"
	"adegapos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CaixaService interface {
	Abrir(ctx context.Context, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error)
	// Fechar closes the open session. automatico marks a midnight close.
	Fechar(ctx context.Context, automatico bool) (*dto.SessaoCaixaResponse, error)
	// Status returns the open session, or nil when none is open.
	Status(ctx context.Context) (*dto.SessaoCaixaResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.SessaoCaixaResponse, error)
	Historico(ctx context.Context, page, limit int) (*dto.HistoricoCaixaResponse, error)
	// IniciarAutoFechamento binds the midnight watcher to ctx and re-arms it
	// for a session left open by a previous run.
	IniciarAutoFechamento(ctx context.Context) error
	AutoFechamentoArmado() bool
	// AguardarAutoFechamento blocks until the midnight watcher, including a
	// close already in flight, has returned. Cancel the ctx given to
	// IniciarAutoFechamento first.
	AguardarAutoFechamento()
}

type caixaService struct {
	repo           repository.CaixaRepository
	vendaRepo      repository.VendaRepository
	lancamentoRepo repository.LancamentoRepository
	agendador      *AutoFechamento
	loc            *time.Location
	integ          Integracoes
}

func NewCaixaService(
	repo repository.CaixaRepository,
	vendaRepo repository.VendaRepository,
	lancamentoRepo repository.LancamentoRepository,
	auto AutoFechamentoConfig,
	integ Integracoes,
) CaixaService {
	integ = integ.comPadroes()
	if auto.Now == nil {
		auto.Now = integ.Now
	}
	s := &caixaService{
		repo:           repo,
		vendaRepo:      vendaRepo,
		lancamentoRepo: lancamentoRepo,
		integ:          integ,
	}
	s.agendador = NewAutoFechamento(auto, s.fecharAgendado)
	s.loc = s.agendador.cfg.Location
	return s
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// Exclusivity is checked here for a friendly message and enforced by the
// partial unique index on sessoes_caixa for concurrent opens.

func (s *caixaService) Abrir(ctx context.Context, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error) {
	ctx, span := tracer.Start(ctx, "CaixaService.Abrir")
	defer span.End()

	valor := decimalOuZero(req.ValorAbertura)
	if valor.IsNegative() {
		return nil, validacao("valor de abertura não pode ser negativo")
	}

	atual, err := s.repo.FindAberta(ctx)
	switch {
	case err == nil:
		return nil, conflito("já existe um caixa aberto desde %s", atual.AbertaEm.In(s.loc).Format("02/01/2006 15:04"))
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, erroRepo(err, "caixa")
	}

	sessao := &model.SessaoCaixa{
		ID:            uuid.New(),
		Status:        model.CaixaAberto,
		ValorAbertura: valor,
		AbertaEm:      s.integ.Now(),
	}
	if err := s.repo.Create(ctx, sessao); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflito("já existe um caixa aberto")
		}
		return nil, erroRepo(err, "abrir caixa")
	}

	s.agendador.Armar(sessao.ID, sessao.AbertaEm)
	resp, err := s.resposta(ctx, sessao)
	if err != nil {
		return nil, err
	}
	s.integ.publicar(ctx, "caixa.aberto", sessao.ID.String(), resp)
	return resp, nil
}

// ── Fechar ────────────────────────────────────────────────────────────────────

func (s *caixaService) Fechar(ctx context.Context, automatico bool) (*dto.SessaoCaixaResponse, error) {
	return s.fechar(ctx, uuid.Nil, time.Time{}, automatico)
}

func (s *caixaService) fecharAgendado(ctx context.Context, sessaoID uuid.UUID, limite time.Time) error {
	_, err := s.fechar(ctx, sessaoID, limite, true)
	return err
}

// fechar freezes the running total of the open session. A non-nil alvo
// restricts the close to that session, so a late midnight watcher never
// closes a session opened after its own was closed. A non-zero limite caps
// the closing instant, so a close retried after midnight still freezes the
// day at midnight.
//
// The session row is locked before the clock is read and the paid orders
// are summed, so orders that hold the share lock finish first and orders
// waiting on it are stamped after the close.
func (s *caixaService) fechar(ctx context.Context, alvo uuid.UUID, limite time.Time, automatico bool) (*dto.SessaoCaixaResponse, error) {
	ctx, span := tracer.Start(ctx, "CaixaService.Fechar")
	defer span.End()

	var (
		sessao *model.SessaoCaixa
		corte  time.Time
		vendas decimal.Decimal
		total  decimal.Decimal
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sessao, err = s.repo.FindAbertaForUpdateTx(ctx, tx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return naoEncontrado("nenhum caixa aberto")
			}
			return err
		}
		if alvo != uuid.Nil && sessao.ID != alvo {
			return conflito("a sessão %s já foi fechada", alvo)
		}

		corte = s.integ.Now()
		if !limite.IsZero() && corte.After(limite) {
			corte = limite
		}
		vendas, err = s.vendaRepo.SomarPagasTx(ctx, tx, sessao.AbertaEm, corte)
		if err != nil {
			return err
		}
		total = sessao.ValorAbertura.Add(vendas)

		f := repository.Fechamento{FechadaEm: corte, Vendas: vendas, Total: total, Automatico: automatico}
		ok, err := s.repo.FecharTx(ctx, tx, sessao.ID, f)
		if err != nil {
			return err
		}
		if !ok {
			return conflito("a sessão %s já foi fechada", sessao.ID)
		}
		if !sessao.ValorAbertura.IsPositive() {
			return nil
		}
		ref := sessao.ID
		return s.lancamentoRepo.CreateTx(ctx, tx, &model.Lancamento{
			ID:            uuid.New(),
			Tipo:          model.LancamentoEntrada,
			Descricao:     "Fundo de caixa da sessão aberta em " + sessao.AbertaEm.In(s.loc).Format("02/01/2006 15:04"),
			Categoria:     model.CategoriaFechamento,
			Valor:         sessao.ValorAbertura,
			Metodo:        model.MetodoDinheiro,
			Data:          corte,
			SessaoCaixaID: &ref,
			CreatedAt:     corte,
		})
	})
	if txErr != nil {
		return nil, erroRepo(txErr, "fechar caixa")
	}

	sessao.Status = model.CaixaFechado
	sessao.FechadaEm = &corte
	sessao.VendasFechamento = &vendas
	sessao.TotalFechamento = &total
	sessao.FechamentoAutomatico = automatico

	s.agendador.Desarmar(sessao.ID)

	modo := "manual"
	if automatico {
		modo = "automatico"
	}
	metrics.CaixaFechamentos.WithLabelValues(modo).Inc()
	if sessao.ValorAbertura.IsPositive() {
		metrics.Lancamentos.WithLabelValues(model.LancamentoEntrada, model.CategoriaFechamento).Inc()
	}
	log.Info().
		Str("sessao_id", sessao.ID.String()).
		Str("modo", modo).
		Str("total", total.StringFixed(2)).
		Msg("cash session closed")

	if err := s.integ.Jobs.EnqueueRelatorioCaixa(ctx, worker.RelatorioCaixaPayload{SessaoID: sessao.ID.String()}); err != nil {
		log.Warn().Err(err).Str("sessao_id", sessao.ID.String()).Msg("closing report enqueue failed")
	}

	resp, err := s.resposta(ctx, sessao)
	if err != nil {
		return nil, err
	}
	s.integ.publicar(ctx, "caixa.fechado", sessao.ID.String(), resp)
	return resp, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *caixaService) Status(ctx context.Context) (*dto.SessaoCaixaResponse, error) {
	sessao, err := s.repo.FindAberta(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, erroRepo(err, "caixa")
	}
	return s.resposta(ctx, sessao)
}

func (s *caixaService) Obter(ctx context.Context, id uuid.UUID) (*dto.SessaoCaixaResponse, error) {
	sessao, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, erroRepo(err, "sessão de caixa "+id.String())
	}
	return s.resposta(ctx, sessao)
}

func (s *caixaService) Historico(ctx context.Context, page, limit int) (*dto.HistoricoCaixaResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sessoes, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, erroRepo(err, "histórico de caixa")
	}
	data := make([]dto.SessaoCaixaResponse, 0, len(sessoes))
	for i := range sessoes {
		resp, err := s.resposta(ctx, &sessoes[i])
		if err != nil {
			return nil, err
		}
		data = append(data, *resp)
	}
	return &dto.HistoricoCaixaResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *caixaService) IniciarAutoFechamento(ctx context.Context) error {
	s.agendador.Iniciar(ctx)
	sessao, err := s.repo.FindAberta(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return erroRepo(err, "caixa")
	}
	s.agendador.Armar(sessao.ID, sessao.AbertaEm)
	return nil
}

func (s *caixaService) AutoFechamentoArmado() bool {
	_, _, ok := s.agendador.Armado()
	return ok
}

func (s *caixaService) AguardarAutoFechamento() { s.agendador.Aguardar() }

// resposta derives the running total for an open session on every call; a
// closed session reports the values frozen at closing.
func (s *caixaService) resposta(ctx context.Context, sessao *model.SessaoCaixa) (*dto.SessaoCaixaResponse, error) {
	resp := &dto.SessaoCaixaResponse{
		ID:                   sessao.ID.String(),
		Status:               sessao.Status,
		ValorAbertura:        sessao.ValorAbertura,
		AbertaEm:             sessao.AbertaEm,
		FechadaEm:            sessao.FechadaEm,
		FechamentoAutomatico: sessao.FechamentoAutomatico,
	}

	if !sessao.Aberta() && sessao.TotalFechamento != nil {
		resp.VendasPagas = decimalOuZero(sessao.VendasFechamento)
		resp.TotalCorrente = *sessao.TotalFechamento
		return resp, nil
	}

	ate := s.integ.Now()
	if sessao.FechadaEm != nil {
		ate = *sessao.FechadaEm
	}
	vendas, err := s.vendaRepo.SomarPagas(ctx, sessao.AbertaEm, ate)
	if err != nil {
		return nil, erroRepo(err, "somar vendas do caixa")
	}
	resp.VendasPagas = vendas
	resp.TotalCorrente = sessao.ValorAbertura.Add(vendas)
	if sessao.Aberta() {
		prox := ProximaMeiaNoite(sessao.AbertaEm, s.loc)
		resp.ProximoFechamento = &prox
	}
	return resp, nil
}
