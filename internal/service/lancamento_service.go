package service

import (
	"context"
	"strings"
	"time"

	"adegapos/internal/dto"
	"adegapos/internal/model"
	"adegapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type LancamentoService interface {
	Listar(ctx context.Context, filter dto.LancamentoFilter) (*dto.LancamentoListResponse, error)
	// Excluir hard-deletes one ledger row. Orders referencing it are untouched.
	Excluir(ctx context.Context, id uuid.UUID) error
}

type lancamentoService struct {
	repo repository.LancamentoRepository
	loc  *time.Location
}

func NewLancamentoService(repo repository.LancamentoRepository, loc *time.Location) LancamentoService {
	if loc == nil {
		loc = time.Local
	}
	return &lancamentoService{repo: repo, loc: loc}
}

func (s *lancamentoService) Listar(ctx context.Context, filter dto.LancamentoFilter) (*dto.LancamentoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	tipo := strings.TrimSpace(filter.Tipo)
	if tipo != "" && tipo != model.LancamentoEntrada && tipo != model.LancamentoSaida {
		return nil, validacao("tipo inválido: %q", tipo)
	}

	q := repository.LancamentoQuery{
		Tipo:      tipo,
		Categoria: strings.TrimSpace(filter.Categoria),
		Offset:    (filter.Page - 1) * filter.Limit,
		Limit:     filter.Limit,
	}
	var err error
	if q.De, err = s.dia(filter.De, 0); err != nil {
		return nil, err
	}
	// ate is inclusive: the query bound is the start of the following day.
	if q.Ate, err = s.dia(filter.Ate, 1); err != nil {
		return nil, err
	}
	if q.De != nil && q.Ate != nil && !q.Ate.After(*q.De) {
		return nil, validacao("intervalo de datas inválido")
	}

	lancamentos, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, erroRepo(err, "listar lançamentos")
	}
	entradas, saidas, err := s.repo.Totais(ctx, q)
	if err != nil {
		return nil, erroRepo(err, "totais de lançamentos")
	}

	data := make([]dto.LancamentoResponse, 0, len(lancamentos))
	for _, l := range lancamentos {
		item := dto.LancamentoResponse{
			ID:        l.ID.String(),
			Tipo:      l.Tipo,
			Descricao: l.Descricao,
			Categoria: l.Categoria,
			Valor:     l.Valor,
			Metodo:    l.Metodo,
			Data:      l.Data,
		}
		if l.VendaID != nil {
			vid := l.VendaID.String()
			item.VendaID = &vid
		}
		data = append(data, item)
	}
	return &dto.LancamentoListResponse{
		Data:     data,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
		Entradas: entradas,
		Saidas:   saidas,
		Saldo:    entradas.Sub(saidas),
	}, nil
}

func (s *lancamentoService) Excluir(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return erroRepo(err, "lançamento "+id.String())
	}
	log.Info().Str("lancamento_id", id.String()).Msg("ledger entry deleted")
	return nil
}

// dia parses a YYYY-MM-DD date as local midnight in the store's zone,
// shifted by offset days. Blank input means no bound.
func (s *lancamentoService) dia(v string, offset int) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation("2006-01-02", v, s.loc)
	if err != nil {
		return nil, validacao("data inválida %q, use AAAA-MM-DD", v)
	}
	d = d.AddDate(0, 0, offset)
	return &d, nil
}
