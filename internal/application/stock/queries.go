package stock

import (
	"context"

	"github.com/minimoda/minimoda-api/internal/domain"
	"github.com/minimoda/minimoda-api/internal/domain/entity"
	"github.com/minimoda/minimoda-api/internal/domain/repository"
)

// GetVariantsByProduct lista las variantes de un producto.
func (uc *StockUseCase) GetVariantsByProduct(ctx context.Context, productID string) ([]*entity.ProductVariant, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return uc.variantRepo.ListByProduct(productID)
}

// GetLowStockVariants variantes activas en o bajo su umbral de reorden.
func (uc *StockUseCase) GetLowStockVariants(ctx context.Context, limit, offset int) ([]*entity.ProductVariant, error) {
	return uc.variantRepo.ListLowStock(limit, offset)
}

// GetStockStats agregados del inventario para soporte.
func (uc *StockUseCase) GetStockStats(ctx context.Context) (*repository.StockStats, error) {
	return uc.variantRepo.Stats()
}

// ListMovements historial del libro, más recientes primero. variantID vacío
// lista los movimientos globales.
func (uc *StockUseCase) ListMovements(ctx context.Context, variantID string, limit, offset int) ([]*entity.StockMovement, error) {
	if variantID == "" {
		return uc.movRepo.List(limit, offset)
	}
	return uc.movRepo.ListByVariant(variantID, limit, offset)
}

// ReconcileCounters repara la deriva entre los contadores materializados y el
// libro de movimientos: recalcula por variante y reescribe bajo bloqueo de fila
// los que difieran. Idempotente; pensado como tarea periódica de verificación,
// no como parte del camino caliente. Devuelve cuántas variantes se repararon.
func (uc *StockUseCase) ReconcileCounters(ctx context.Context) (int, error) {
	totals, err := uc.movRepo.ReplayAll()
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, t := range totals {
		t := t
		err := uc.txRunner.Run(ctx, func(
			variants repository.VariantRepository,
			_ repository.StockMovementRepository,
			_ repository.ReservationRepository,
		) error {
			v, err := variants.GetForUpdate(t.VariantID)
			if err != nil {
				return err
			}
			if v == nil {
				// Movimientos de una variante borrada: solo dejar rastro.
				uc.log.Warn().Str("variant_id", t.VariantID).Msg("libro con movimientos de variante inexistente")
				return nil
			}
			if v.Stock == t.Stock && v.ReservedStock == t.Reserved {
				return nil
			}
			uc.log.Warn().
				Str("variant_id", v.ID).
				Int("stock_cached", v.Stock).
				Int("stock_replayed", t.Stock).
				Int("reserved_cached", v.ReservedStock).
				Int("reserved_replayed", t.Reserved).
				Msg("deriva de contadores detectada, reparando desde el libro")
			v.Stock = t.Stock
			v.ReservedStock = t.Reserved
			if err := variants.UpdateStockLevels(v); err != nil {
				return err
			}
			repaired++
			return nil
		})
		if err != nil {
			// Una variante que no se pudo reparar no detiene el resto del lote.
			uc.log.Error().Err(err).Str("variant_id", t.VariantID).Msg("fallo reconciliando variante")
		}
	}
	return repaired, nil
}
