package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the simple kinds. Handlers wrap them with context via
// fmt.Errorf("%w: ..."); callers match with errors.Is.
var (
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("rol sin permiso")
	ErrNotFound     = errors.New("no encontrado")
	ErrDuplicate    = errors.New("solicitud duplicada")
)

// InvalidArgument flags malformed input (non-positive quantity, negative
// stock target, bad pagination values).
type InvalidArgument struct {
	Reason string
}

func (e *InvalidArgument) Error() string { return e.Reason }

// InvalidOrder flags a business-rule violation while placing an order:
// empty cart, foreign address, foreign payment method, unknown payment type.
type InvalidOrder struct {
	Reason string
}

func (e *InvalidOrder) Error() string { return e.Reason }

// Shortfall describes one product whose requested quantity exceeds stock.
type Shortfall struct {
	ProductID int64 `json:"idProducto"`
	Requested int   `json:"solicitado"`
	Available int   `json:"disponible"`
}

// InsufficientStock aggregates every shortfall found before any mutation, so
// the client sees all offending products in one response.
type InsufficientStock struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStock) Error() string {
	return fmt.Sprintf("stock insuficiente para %d producto(s)", len(e.Shortfalls))
}

// InvalidTransition flags an order-status change the state machine forbids.
type InvalidTransition struct {
	From string
}

func (e *InvalidTransition) Error() string {
	return fmt.Sprintf("transición inválida desde el estado %q", e.From)
}

// Invalidf builds an InvalidArgument with a formatted reason.
func Invalidf(format string, args ...any) error {
	return &InvalidArgument{Reason: fmt.Sprintf(format, args...)}
}
