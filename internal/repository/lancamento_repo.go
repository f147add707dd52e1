package repository

import (
	"context"
	"time"

	"adegapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LancamentoQuery narrows ledger listings. Zero values mean "no filter".
type LancamentoQuery struct {
	Tipo      string
	Categoria string
	De        *time.Time
	Ate       *time.Time
	Offset    int
	Limit     int
}

type LancamentoRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, l *model.Lancamento) error
	List(ctx context.Context, q LancamentoQuery) ([]model.Lancamento, int64, error)
	// Totais sums entradas and saidas over the rows matched by q, ignoring paging.
	Totais(ctx context.Context, q LancamentoQuery) (entradas, saidas decimal.Decimal, err error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type lancamentoRepo struct{ db *gorm.DB }

func NewLancamentoRepository(db *gorm.DB) LancamentoRepository { return &lancamentoRepo{db: db} }

func (r *lancamentoRepo) CreateTx(ctx context.Context, tx *gorm.DB, l *model.Lancamento) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(l).Error
}

func (r *lancamentoRepo) filtrar(ctx context.Context, q LancamentoQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Lancamento{})
	if q.Tipo != "" {
		db = db.Where("tipo = ?", q.Tipo)
	}
	if q.Categoria != "" {
		db = db.Where("categoria = ?", q.Categoria)
	}
	if q.De != nil {
		db = db.Where("data >= ?", *q.De)
	}
	if q.Ate != nil {
		db = db.Where("data < ?", *q.Ate)
	}
	return db
}

func (r *lancamentoRepo) List(ctx context.Context, q LancamentoQuery) ([]model.Lancamento, int64, error) {
	var lancamentos []model.Lancamento
	var total int64

	if err := r.filtrar(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.filtrar(ctx, q).
		Order("data DESC").
		Offset(q.Offset).Limit(q.Limit).
		Find(&lancamentos).Error
	return lancamentos, total, err
}

func (r *lancamentoRepo) Totais(ctx context.Context, q LancamentoQuery) (decimal.Decimal, decimal.Decimal, error) {
	entradas, saidas := decimal.Zero, decimal.Zero
	row := r.filtrar(ctx, q).
		Select(
			"COALESCE(SUM(CASE WHEN tipo = ? THEN valor ELSE 0 END), 0), "+
				"COALESCE(SUM(CASE WHEN tipo = ? THEN valor ELSE 0 END), 0)",
			model.LancamentoEntrada, model.LancamentoSaida,
		).
		Row()
	if err := row.Scan(&entradas, &saidas); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return entradas, saidas, nil
}

// Delete is a hard delete; ledger rows carry no soft-delete column.
func (r *lancamentoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Lancamento{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
