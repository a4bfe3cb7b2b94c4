package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pedido. El motor de reservas solo observa pending (reserva viva),
// processing/shipped/delivered (la reserva se convirtió en venta) y cancelled
// (la reserva se liberó).
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// IsValidOrderStatus valida un estado contra el catálogo.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order pedido del storefront. Aquí solo viven los campos que el motor de stock
// necesita; el resto del ciclo de pedido (pagos, envíos) son colaboradores externos.
type Order struct {
	ID        string
	UserID    string
	Status    string
	Total     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem línea de pedido. VariantID en nil marca la ruta legacy de stock plano
// (el producto no tiene variante que calce con talla/color pedidos).
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	VariantID *string
	Size      *string
	Color     *string
	Quantity  int
	UnitPrice decimal.Decimal
}
