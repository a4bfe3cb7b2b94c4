package repository

import "github.com/minimoda/minimoda-api/internal/domain/entity"

// StockStats agregados del inventario para el dashboard de soporte.
type StockStats struct {
	TotalVariants int
	TotalStock    int
	TotalReserved int
	LowStockCount int
}

// VariantRepository define el puerto de persistencia para variantes (DIP).
// GetForUpdate solo tiene sentido dentro de una transacción (SELECT FOR UPDATE).
type VariantRepository interface {
	Create(v *entity.ProductVariant) error
	Update(v *entity.ProductVariant) error
	GetByID(id string) (*entity.ProductVariant, error)
	GetForUpdate(id string) (*entity.ProductVariant, error)
	// FindBySelection busca la variante exacta de (producto, talla, color).
	// size/color en nil deben calzar con NULL en la fila, no con "cualquiera".
	// Devuelve nil sin error si no existe (ruta legacy de stock plano).
	FindBySelection(productID string, size, color *string) (*entity.ProductVariant, error)
	ListByProduct(productID string) ([]*entity.ProductVariant, error)
	// ListLowStock variantes activas con stock <= min_stock, peor déficit primero.
	ListLowStock(limit, offset int) ([]*entity.ProductVariant, error)
	// UpdateStockLevels persiste solo los contadores stock/reserved_stock.
	UpdateStockLevels(v *entity.ProductVariant) error
	Stats() (*StockStats, error)
}
