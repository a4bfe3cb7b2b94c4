package repository

import (
	"time"

	"github.com/minimoda/minimoda-api/internal/domain/entity"
)

// ReservationRepository define el puerto de persistencia para reservas.
// El estado de la reserva vive aquí como entidad propia; el par reserve/release
// del libro queda como rastro de auditoría en la misma transacción.
type ReservationRepository interface {
	Create(r *entity.StockReservation) error
	// GetActive reserva viva (state=reserved) de la pareja (variante, pedido).
	// Devuelve nil sin error si no hay ninguna.
	GetActive(variantID, orderID string) (*entity.StockReservation, error)
	ListActiveByOrder(orderID string) ([]*entity.StockReservation, error)
	// ListExpired reservas vivas cuyo expires_at quedó antes del corte.
	ListExpired(before time.Time, limit int) ([]*entity.StockReservation, error)
	UpdateState(id, state string) error
}
