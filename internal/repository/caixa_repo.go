package repository

import (
	"context"
	"time"

	"adegapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fechamento carries the values frozen when a session closes.
type Fechamento struct {
	FechadaEm  time.Time
	Vendas     decimal.Decimal
	Total      decimal.Decimal
	Automatico bool
}

type CaixaRepository interface {
	// Create fails with gorm.ErrDuplicatedKey when another session is open.
	Create(ctx context.Context, s *model.SessaoCaixa) error
	FindAberta(ctx context.Context) (*model.SessaoCaixa, error)
	// FindAbertaForUpdateTx locks the open session row until tx ends.
	FindAbertaForUpdateTx(ctx context.Context, tx *gorm.DB) (*model.SessaoCaixa, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error)
	// FecharTx closes the session only if it is still open and reports
	// whether this call did the closing.
	FecharTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, f Fechamento) (bool, error)
	List(ctx context.Context, page, limit int) ([]model.SessaoCaixa, int64, error)
	DB() *gorm.DB
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) DB() *gorm.DB { return r.db }

func (r *caixaRepo) Create(ctx context.Context, s *model.SessaoCaixa) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *caixaRepo) FindAberta(ctx context.Context) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).Where("status = ?", model.CaixaAberto).First(&s).Error
	return &s, err
}

func (r *caixaRepo) FindAbertaForUpdateTx(ctx context.Context, tx *gorm.DB) (*model.SessaoCaixa, error) {
	if tx == nil {
		tx = r.db
	}
	var s model.SessaoCaixa
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ?", model.CaixaAberto).
		First(&s).Error
	return &s, err
}

func (r *caixaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *caixaRepo) FecharTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, f Fechamento) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	res := tx.WithContext(ctx).
		Model(&model.SessaoCaixa{}).
		Where("id = ? AND status = ?", id, model.CaixaAberto).
		Updates(map[string]interface{}{
			"status":                model.CaixaFechado,
			"fechada_em":            f.FechadaEm,
			"vendas_fechamento":     f.Vendas,
			"total_fechamento":      f.Total,
			"fechamento_automatico": f.Automatico,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *caixaRepo) List(ctx context.Context, page, limit int) ([]model.SessaoCaixa, int64, error) {
	var sessoes []model.SessaoCaixa
	var total int64
	q := r.db.WithContext(ctx).Model(&model.SessaoCaixa{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("aberta_em DESC").Offset((page - 1) * limit).Limit(limit).Find(&sessoes).Error
	return sessoes, total, err
}
