package errors

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorBuilder monta erros em cadeia. Mark deve ser a última chamada.
type ErrorBuilder struct {
	err error
}

func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.New(msg)}
}

func NewErrorf(format string, args ...any) *ErrorBuilder {
	return &ErrorBuilder{err: errors.Newf(format, args...)}
}

func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// WithMessage adiciona contexto interno (logs)
func (b *ErrorBuilder) WithMessage(msg string) *ErrorBuilder {
	b.err = errors.WithMessage(b.err, msg)
	return b
}

// WithHint adiciona a mensagem exibida ao usuário
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

func (b *ErrorBuilder) Mark(reference error) error {
	b.err = errors.Mark(b.err, reference)
	return b.err
}

// Hint devolve a mensagem de usuário do erro, ou um texto genérico pelo status.
func Hint(err error) string {
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return strings.Join(hints, "; ")
	}
	switch HTTPStatusFromErr(err) {
	case http.StatusNotFound:
		return "registro não encontrado"
	case http.StatusBadRequest:
		return "dados inválidos"
	case http.StatusConflict:
		return "operação não permitida"
	case http.StatusBadGateway:
		return "serviço externo indisponível, tente novamente manualmente"
	case http.StatusForbidden:
		return "acesso negado"
	case http.StatusUnauthorized:
		return "não autenticado"
	}
	return "erro interno"
}

// WriteHTTP converte o erro em resposta na fronteira do handler.
func WriteHTTP(w http.ResponseWriter, err error) {
	http.Error(w, Hint(err), HTTPStatusFromErr(err))
}
