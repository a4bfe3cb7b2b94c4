package entity

import "time"

// Tipos de notificación que emite el motor de stock.
const (
	NotificationTypeLowStock     = "low_stock"
	NotificationTypeOrderExpired = "order_expired"
	NotificationTypeStockRollup  = "low_stock_rollup"
)

// Notification evento para el sink de notificaciones (best-effort: un fallo al
// registrarla nunca debe tumbar la mutación de stock que la originó).
type Notification struct {
	ID        string
	Type      string
	Title     string
	Message   string
	Data      map[string]any
	CreatedAt time.Time
}
