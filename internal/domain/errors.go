package domain

import "fmt"

// Error types for consistent error handling across the API.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s não encontrado", e.Resource)
	}
	return fmt.Sprintf("%s não encontrado: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates the user lacks permission for the operation.
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Acesso negado"
}

// ErrConflict indicates a resource already exists (e.g. duplicate email).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrSaldoInsuficiente indicates a redemption larger than the balance.
type ErrSaldoInsuficiente struct {
	Saldo      float64
	Solicitado float64
}

func (e *ErrSaldoInsuficiente) Error() string {
	return fmt.Sprintf("Saldo insuficiente: disponível=%.2f solicitado=%.2f", e.Saldo, e.Solicitado)
}

// ErrTokenInvalido indicates an invalid or expired reset token.
type ErrTokenInvalido struct{}

func (e *ErrTokenInvalido) Error() string {
	return "Token inválido ou expirado"
}
