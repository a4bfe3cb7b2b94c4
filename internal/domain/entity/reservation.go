package entity

import "time"

// Estados de una reserva de stock: reserved → released | sold.
const (
	ReservationStateReserved = "reserved"
	ReservationStateReleased = "released"
	ReservationStateSold     = "sold"
)

// StockReservation reserva de unidades de una variante contra un pedido.
// Entidad de primera clase (además del par reserve/release en el libro) para que
// el barrido de expiración no tenga que escanear el historial de movimientos.
// Se mantiene en la misma transacción que sus movimientos.
type StockReservation struct {
	ID        string
	VariantID string
	OrderID   string
	Quantity  int
	State     string // reserved, released, sold
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive indica si la reserva sigue apartando stock.
func (r *StockReservation) IsActive() bool {
	return r.State == ReservationStateReserved
}
