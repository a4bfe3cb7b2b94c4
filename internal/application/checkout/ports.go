package checkout

import (
	"context"
	"time"
)

// StockEngine contrato del motor de reservas que consume el checkout.
// Lo implementa *stock.StockUseCase; la interfaz permite fakes en tests.
type StockEngine interface {
	ReserveStock(ctx context.Context, variantID string, quantity int, orderID string, timeout time.Duration) error
	ReleaseStock(ctx context.Context, variantID string, quantity int, orderID string) error
	ConfirmSale(ctx context.Context, variantID string, quantity int, orderID string) error
}
