package repository

import (
	"context"
	"strings"

	"adegapos/internal/dto"
	"adegapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AjusteEstoque is the outcome of one clamped stock update.
type AjusteEstoque struct {
	ProdutoID     uuid.UUID
	Nome          string
	Anterior      int
	Novo          int
	EstoqueMinimo int
}

// EstoqueBaixo reports whether the new quantity reached the alert threshold.
func (a AjusteEstoque) EstoqueBaixo() bool { return a.Novo <= a.EstoqueMinimo }

type ProdutoRepository interface {
	Create(ctx context.Context, p *model.Produto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Produto, error)
	List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error)
	ListEstoqueBaixo(ctx context.Context) ([]model.Produto, error)
	// AjustarEstoqueTx adds delta to the on-hand quantity, clamping the result
	// at zero, in a single statement that holds the row lock for the rest of tx.
	AjustarEstoqueTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) (*AjusteEstoque, error)
	DB() *gorm.DB
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) DB() *gorm.DB { return r.db }

func (r *produtoRepo) Create(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *produtoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *produtoRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Produto, error) {
	var produtos []model.Produto
	if len(ids) == 0 {
		return produtos, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&produtos).Error
	return produtos, err
}

func (r *produtoRepo) List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error) {
	var produtos []model.Produto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Produto{})
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}
	if busca := strings.TrimSpace(filter.Busca); busca != "" {
		q = q.Where("nome ILIKE ?", "%"+busca+"%")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nome ASC").Offset(offset).Limit(filter.Limit).Find(&produtos).Error
	return produtos, total, err
}

func (r *produtoRepo) ListEstoqueBaixo(ctx context.Context) ([]model.Produto, error) {
	var produtos []model.Produto
	err := r.db.WithContext(ctx).
		Where("quantidade <= estoque_minimo").
		Order("quantidade ASC, nome ASC").
		Find(&produtos).Error
	return produtos, err
}

// The sub-select takes the row lock and exposes the pre-update quantity, which
// RETURNING alone cannot see.
const ajustarEstoqueSQL = `
UPDATE produtos p
   SET quantidade = GREATEST(p.quantidade + ?, 0),
       updated_at = NOW()
  FROM (SELECT id, quantidade FROM produtos WHERE id = ? FOR UPDATE) anterior
 WHERE p.id = anterior.id
RETURNING p.id AS produto_id, p.nome, anterior.quantidade AS anterior, p.quantidade AS novo, p.estoque_minimo`

func (r *produtoRepo) AjustarEstoqueTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) (*AjusteEstoque, error) {
	if tx == nil {
		tx = r.db
	}
	var rows []AjusteEstoque
	if err := tx.WithContext(ctx).Raw(ajustarEstoqueSQL, delta, id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}
