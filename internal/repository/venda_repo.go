package repository

import (
	"context"
	"time"

	"adegapos/internal/dto"
	"adegapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VendaRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venda) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error)
	// FindByIDForUpdateTx locks the header row until tx ends.
	FindByIDForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Venda, error)
	UpdateStatusTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string, em time.Time) error
	// DeleteTx removes the items and then the header.
	DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	List(ctx context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error)
	// SomarPagas sums the totals of paid orders placed within [de, ate]
	// whose last status change is not after ate.
	SomarPagas(ctx context.Context, de, ate time.Time) (decimal.Decimal, error)
	SomarPagasTx(ctx context.Context, tx *gorm.DB, de, ate time.Time) (decimal.Decimal, error)
	ListPagas(ctx context.Context, de, ate time.Time) ([]model.Venda, error)
	// TravarCaixaTx share-locks the open cash session row until tx ends, so
	// a close waits for this transaction and orders wait for a running close.
	TravarCaixaTx(ctx context.Context, tx *gorm.DB) error
	DB() *gorm.DB
}

type vendaRepo struct{ db *gorm.DB }

func NewVendaRepository(db *gorm.DB) VendaRepository { return &vendaRepo{db: db} }

func (r *vendaRepo) DB() *gorm.DB { return r.db }

func (r *vendaRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return r.db
	}
	return tx
}

func (r *vendaRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venda) error {
	return r.conn(tx).WithContext(ctx).Omit("Cliente").Create(v).Error
}

func (r *vendaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error) {
	var v model.Venda
	err := r.db.WithContext(ctx).
		Preload("Itens.Produto").
		Preload("Cliente").
		Where("id = ?", id).
		First(&v).Error
	return &v, err
}

func (r *vendaRepo) FindByIDForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Venda, error) {
	var v model.Venda
	err := r.conn(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&v).Error
	return &v, err
}

func (r *vendaRepo) UpdateStatusTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string, em time.Time) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&model.Venda{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": em})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *vendaRepo) DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := r.conn(tx).WithContext(ctx)
	if err := db.Where("venda_id = ?", id).Delete(&model.VendaItem{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&model.Venda{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *vendaRepo) List(ctx context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error) {
	var vendas []model.Venda
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Venda{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Cliente").
		Order("realizada_em DESC, sequencia DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&vendas).Error
	return vendas, total, err
}

func pagasEntre(q *gorm.DB, de, ate time.Time) *gorm.DB {
	return q.Where("status = ? AND realizada_em >= ? AND realizada_em <= ? AND updated_at <= ?",
		model.StatusPago, de, ate, ate)
}

func (r *vendaRepo) SomarPagas(ctx context.Context, de, ate time.Time) (decimal.Decimal, error) {
	return r.SomarPagasTx(ctx, nil, de, ate)
}

func (r *vendaRepo) SomarPagasTx(ctx context.Context, tx *gorm.DB, de, ate time.Time) (decimal.Decimal, error) {
	var soma decimal.Decimal
	row := pagasEntre(r.conn(tx).WithContext(ctx).Model(&model.Venda{}).Select("COALESCE(SUM(total), 0)"), de, ate).
		Row()
	if err := row.Scan(&soma); err != nil {
		return decimal.Zero, err
	}
	return soma, nil
}

func (r *vendaRepo) ListPagas(ctx context.Context, de, ate time.Time) ([]model.Venda, error) {
	var vendas []model.Venda
	err := pagasEntre(r.db.WithContext(ctx).Preload("Itens.Produto"), de, ate).
		Order("realizada_em ASC").
		Find(&vendas).Error
	return vendas, err
}

func (r *vendaRepo) TravarCaixaTx(ctx context.Context, tx *gorm.DB) error {
	var ids []uuid.UUID
	return r.conn(tx).WithContext(ctx).
		Model(&model.SessaoCaixa{}).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("status = ?", model.CaixaAberto).
		Pluck("id", &ids).Error
}
