package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Erros base da aplicação. Toda falha de domínio deve ser marcada com um deles.
var (
	ErrValidation         = new(ErrCodeValidation, "validation error")
	ErrNotFound           = new(ErrCodeNotFound, "resource not found")
	ErrInvariantViolation = new(ErrCodeInvariantViolation, "invariant violation")
	ErrExternalService    = new(ErrCodeExternalService, "external service error")
	ErrPermissionDenied   = new(ErrCodePermissionDenied, "permission denied")
	ErrUnauthorized       = new(ErrCodeUnauthorized, "unauthorized")
	ErrDatabase           = new(ErrCodeDatabase, "database error")
	ErrSystem             = new(ErrCodeSystemError, "system error")

	statusCodeMap = map[error]int{
		ErrValidation:         http.StatusBadRequest,
		ErrNotFound:           http.StatusNotFound,
		ErrInvariantViolation: http.StatusConflict,
		ErrExternalService:    http.StatusBadGateway,
		ErrPermissionDenied:   http.StatusForbidden,
		ErrUnauthorized:       http.StatusUnauthorized,
		ErrDatabase:           http.StatusInternalServerError,
		ErrSystem:             http.StatusInternalServerError,
	}
)

const (
	ErrCodeValidation         = "validation_error"
	ErrCodeNotFound           = "not_found"
	ErrCodeInvariantViolation = "invariant_violation"
	ErrCodeExternalService    = "external_service_error"
	ErrCodePermissionDenied   = "permission_denied"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeDatabase           = "database_error"
	ErrCodeSystemError        = "system_error"
)

// InternalError representa um erro de domínio
type InternalError struct {
	Code    string
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}
	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}
	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{Code: code, Message: message}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func IsValidation(err error) bool         { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool           { return errors.Is(err, ErrNotFound) }
func IsInvariantViolation(err error) bool { return errors.Is(err, ErrInvariantViolation) }
func IsExternalService(err error) bool    { return errors.Is(err, ErrExternalService) }
func IsPermissionDenied(err error) bool   { return errors.Is(err, ErrPermissionDenied) }

// HTTPStatusFromErr devolve o status HTTP correspondente à marca do erro.
func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
