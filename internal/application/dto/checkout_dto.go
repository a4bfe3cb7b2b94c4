package dto

import "time"

// OrderLineRequest línea del carrito. size/color vacíos significan "cualquiera"
// (calzan con la variante por defecto del producto).
type OrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest carrito completo del checkout.
type CreateOrderRequest struct {
	Items []OrderLineRequest `json:"items" validate:"required,min=1"`
}

// UpdateOrderStatusRequest transición administrativa de estado.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderResponse pedido creado o actualizado.
type OrderResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Total     string    `json:"total"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
