package dto

import "time"

// RegisterMovementRequest movimiento administrativo de stock sobre una variante
// (purchase, adjustment, return). Las reservas no entran por aquí: las maneja
// el protocolo de checkout.
type RegisterMovementRequest struct {
	VariantID   string `json:"variant_id" validate:"required"`
	Type        string `json:"type" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// MovementResponse fila del libro de movimientos.
type MovementResponse struct {
	ID          string    `json:"id"`
	VariantID   string    `json:"variant_id"`
	OrderID     string    `json:"order_id,omitempty"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	Reason      string    `json:"reason,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// VariantResponse variante con sus contadores.
type VariantResponse struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	Size          string  `json:"size,omitempty"`
	Color         string  `json:"color,omitempty"`
	Stock         int     `json:"stock"`
	ReservedStock int     `json:"reserved_stock"`
	Available     int     `json:"available"`
	MinStock      int     `json:"min_stock"`
	Price         *string `json:"price,omitempty"`
	IsActive      bool    `json:"is_active"`
}

// StockStatsResponse agregados del inventario.
type StockStatsResponse struct {
	TotalVariants int `json:"total_variants"`
	TotalStock    int `json:"total_stock"`
	TotalReserved int `json:"total_reserved"`
	TotalAvailable int `json:"total_available"`
	LowStockCount int `json:"low_stock_count"`
}
