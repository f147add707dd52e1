package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error categories. Handlers map them to HTTP status codes; the wrapped
// message is always kept so callers can show it verbatim.
var (
	ErrValidacao     = errors.New("dados inválidos")
	ErrConflito      = errors.New("conflito")
	ErrNaoEncontrado = errors.New("não encontrado")
	ErrArmazenamento = errors.New("armazenamento indisponível")
)

func validacao(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidacao, fmt.Sprintf(format, args...))
}

func conflito(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflito, fmt.Sprintf(format, args...))
}

func naoEncontrado(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNaoEncontrado, fmt.Sprintf(format, args...))
}

// erroRepo classifies an error coming back from a repository call.
// Errors that already carry a category pass through untouched.
func erroRepo(err error, recurso string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidacao), errors.Is(err, ErrConflito),
		errors.Is(err, ErrNaoEncontrado), errors.Is(err, ErrArmazenamento):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return naoEncontrado("%s", recurso)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s: %w", ErrConflito, recurso, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrArmazenamento, recurso, err)
	}
}
