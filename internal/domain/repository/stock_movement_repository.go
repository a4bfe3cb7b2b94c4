package repository

import "github.com/minimoda/minimoda-api/internal/domain/entity"

// ReplayTotals suma de efectos del libro para una variante: lo que deberían
// valer los contadores materializados si no hay deriva.
type ReplayTotals struct {
	VariantID string
	Stock     int // Σ quantity sobre {sale, purchase, adjustment, return}
	Reserved  int // Σ quantity sobre {reserve, release}
}

// StockMovementRepository define el puerto de persistencia del libro de
// movimientos (append-only: solo Create y lecturas).
type StockMovementRepository interface {
	Create(m *entity.StockMovement) error
	// ListByVariant movimientos de una variante, más recientes primero.
	ListByVariant(variantID string, limit, offset int) ([]*entity.StockMovement, error)
	// List movimientos globales, más recientes primero.
	List(limit, offset int) ([]*entity.StockMovement, error)
	// ReplayAll recalcula los totales por variante desde el libro completo.
	// Herramienta de reconciliación, no parte del camino caliente.
	ReplayAll() ([]ReplayTotals, error)
}
