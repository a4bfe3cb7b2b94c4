package repository

import "github.com/minimoda/minimoda-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para productos (DIP).
type ProductRepository interface {
	Create(p *entity.Product) error
	Update(p *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetForUpdate(id string) (*entity.Product, error)
	// AdjustFlatStock suma delta (con signo) al stock plano legacy del producto.
	// Falla con ErrInsufficientStock si el resultado sería negativo.
	AdjustFlatStock(productID string, delta int) error
}
