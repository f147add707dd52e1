package repository

import (
	"context"

	"gorm.io/gorm"
)

type ContadorRepository interface {
	// Incrementar atomically bumps the counter for chave and returns the new
	// value. The first call for a key returns 1.
	Incrementar(ctx context.Context, chave string) (int64, error)
}

type contadorRepo struct{ db *gorm.DB }

func NewContadorRepository(db *gorm.DB) ContadorRepository { return &contadorRepo{db: db} }

const incrementarSQL = `
INSERT INTO contadores (chave, valor) VALUES (?, 1)
ON CONFLICT (chave) DO UPDATE SET valor = contadores.valor + 1
RETURNING valor`

func (r *contadorRepo) Incrementar(ctx context.Context, chave string) (int64, error) {
	var valor int64
	err := r.db.WithContext(ctx).Raw(incrementarSQL, chave).Scan(&valor).Error
	return valor, err
}
