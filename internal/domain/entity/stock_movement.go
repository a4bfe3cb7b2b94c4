package entity

import "time"

// Tipos de movimiento de stock. El libro es append-only: la suma de efectos
// reconstruye Stock y ReservedStock de la variante (las columnas son caché).
const (
	MovementTypeSale       = "sale"       // venta confirmada (negativo sobre stock)
	MovementTypePurchase   = "purchase"   // entrada por compra a proveedor
	MovementTypeAdjustment = "adjustment" // ajuste manual (signo libre)
	MovementTypeReserve    = "reserve"    // apartado por pedido en curso (positivo sobre reservado)
	MovementTypeRelease    = "release"    // liberación de apartado (negativo sobre reservado)
	MovementTypeReturn     = "return"     // devolución de cliente (positivo sobre stock)
)

// AffectsReserved indica si el tipo mueve ReservedStock; el resto mueve Stock.
func AffectsReserved(movementType string) bool {
	return movementType == MovementTypeReserve || movementType == MovementTypeRelease
}

// IsValidMovementType valida el tipo contra el catálogo de movimientos.
func IsValidMovementType(movementType string) bool {
	switch movementType {
	case MovementTypeSale, MovementTypePurchase, MovementTypeAdjustment,
		MovementTypeReserve, MovementTypeRelease, MovementTypeReturn:
		return true
	}
	return false
}

// StockMovement registro inmutable de auditoría de un cambio de stock.
// Quantity es con signo: reserve +q, release -q, sale -q, purchase/return +q,
// adjustment con el signo del ajuste. Nunca se edita ni se borra.
type StockMovement struct {
	ID          string
	VariantID   string
	OrderID     string // vacío si no está ligado a un pedido
	Type        string
	Quantity    int
	Reason      string // motivo corto: "checkout", "expiración", "inventario físico", etc.
	Description string
	CreatedBy   string // UserID del actor; vacío para procesos automáticos
	CreatedAt   time.Time
}
