package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/minimoda/minimoda-api/internal/domain"
	"github.com/minimoda/minimoda-api/internal/domain/entity"
	"github.com/minimoda/minimoda-api/internal/domain/repository"
)

// stockTarget unifica las dos rutas de stock de una línea de pedido: respaldada
// por variante (motor de reservas + libro) o stock plano legacy (productos sin
// variantes, decremento directo fuera del libro). El checkout nunca ramifica
// según la ruta: opera contra esta interfaz.
type stockTarget interface {
	// shortage devuelve el detalle del quiebre si no alcanza la disponibilidad,
	// nil si la línea puede satisfacerse.
	shortage() *domain.StockShortage
	reserve(ctx context.Context, orderID string) error
	release(ctx context.Context, orderID string) error
	confirm(ctx context.Context, orderID string) error
	unitPrice() decimal.Decimal
	variantID() *string
}

// variantTarget línea respaldada por variante: delega en el motor de reservas.
type variantTarget struct {
	engine   StockEngine
	product  *entity.Product
	variant  *entity.ProductVariant
	quantity int
}

func (t *variantTarget) shortage() *domain.StockShortage {
	if t.variant.Available() >= t.quantity {
		return nil
	}
	return &domain.StockShortage{
		ProductID:   t.product.ID,
		ProductName: t.product.Name,
		Size:        t.variant.SizeLabel(),
		Color:       t.variant.ColorLabel(),
		Available:   t.variant.Available(),
		Requested:   t.quantity,
	}
}

func (t *variantTarget) reserve(ctx context.Context, orderID string) error {
	return t.engine.ReserveStock(ctx, t.variant.ID, t.quantity, orderID, 0)
}

func (t *variantTarget) release(ctx context.Context, orderID string) error {
	return t.engine.ReleaseStock(ctx, t.variant.ID, t.quantity, orderID)
}

func (t *variantTarget) confirm(ctx context.Context, orderID string) error {
	return t.engine.ConfirmSale(ctx, t.variant.ID, t.quantity, orderID)
}

func (t *variantTarget) unitPrice() decimal.Decimal {
	return t.variant.EffectivePrice(t.product.BasePrice)
}

func (t *variantTarget) variantID() *string {
	id := t.variant.ID
	return &id
}

// flatTarget ruta legacy: el producto no tiene variante que calce con la línea
// y el stock vive en la columna plana del producto, sin pasar por el libro.
// reserve decrementa de una vez (no hay reserva diferida en esta ruta) y
// release restituye, de modo que el rollback compensatorio y la cancelación
// funcionan igual que en la ruta con variantes. confirm no hace nada: el
// decremento ya ocurrió al reservar.
type flatTarget struct {
	products repository.ProductRepository
	product  *entity.Product
	quantity int
}

func (t *flatTarget) shortage() *domain.StockShortage {
	if t.product.Stock >= t.quantity {
		return nil
	}
	return &domain.StockShortage{
		ProductID:   t.product.ID,
		ProductName: t.product.Name,
		Available:   t.product.Stock,
		Requested:   t.quantity,
	}
}

func (t *flatTarget) reserve(ctx context.Context, orderID string) error {
	return t.products.AdjustFlatStock(t.product.ID, -t.quantity)
}

func (t *flatTarget) release(ctx context.Context, orderID string) error {
	return t.products.AdjustFlatStock(t.product.ID, t.quantity)
}

func (t *flatTarget) confirm(ctx context.Context, orderID string) error {
	return nil
}

func (t *flatTarget) unitPrice() decimal.Decimal {
	return t.product.BasePrice
}

func (t *flatTarget) variantID() *string { return nil }
