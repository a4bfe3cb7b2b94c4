package stock

import (
	"context"

	"github.com/minimoda/minimoda-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de reservas:
// actualización de contadores, fila del libro y fila de reserva viajan juntas.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		variantRepo repository.VariantRepository,
		movementRepo repository.StockMovementRepository,
		reservationRepo repository.ReservationRepository,
	) error) error
}

// Notifier sink de notificaciones fire-and-forget. Un error del sink se registra
// en el log pero nunca se propaga a la mutación de stock que lo originó.
type Notifier interface {
	Notify(ctx context.Context, notificationType, title, message string, data map[string]any) error
}
