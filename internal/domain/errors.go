package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrVariantNotFound    = errors.New("variante no encontrada")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidReservation = errors.New("reserva inconsistente")
)

// StockShortage detalle de un quiebre de stock en una línea de pedido.
type StockShortage struct {
	ProductID   string
	ProductName string
	Size        string // vacío = cualquier talla
	Color       string // vacío = cualquier color
	Available   int
	Requested   int
}

func (s StockShortage) String() string {
	label := s.ProductName
	if label == "" {
		label = s.ProductID
	}
	if s.Size != "" {
		label += " talla " + s.Size
	}
	if s.Color != "" {
		label += " color " + s.Color
	}
	return fmt.Sprintf("%s (disponible %d, solicitado %d)", label, s.Available, s.Requested)
}

// StockShortageError agrupa todos los quiebres de stock de un checkout.
// Envuelve ErrInsufficientStock para que errors.Is siga funcionando.
type StockShortageError struct {
	Items []StockShortage
}

func (e *StockShortageError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		parts = append(parts, it.String())
	}
	return "stock insuficiente: " + strings.Join(parts, "; ")
}

func (e *StockShortageError) Unwrap() error { return ErrInsufficientStock }
