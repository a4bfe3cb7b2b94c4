package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minimoda/minimoda-api/internal/domain"
	"github.com/minimoda/minimoda-api/internal/domain/entity"
	"github.com/minimoda/minimoda-api/internal/domain/repository"
	"github.com/minimoda/minimoda-api/pkg/logger"
)

// Config parámetros del motor de reservas.
type Config struct {
	// ReservationTimeout ventana por defecto de una reserva de checkout (15m).
	ReservationTimeout time.Duration
}

// StockUseCase motor de reservas y libro de movimientos por variante.
// Toda mutación ejecuta dentro de TxRunner con bloqueo de fila
// (SELECT FOR UPDATE) sobre la variante: dos reservas concurrentes sobre la
// misma variante se serializan y no pueden sobrevender.
type StockUseCase struct {
	txRunner    TxRunner
	variantRepo repository.VariantRepository
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
	notifier    Notifier
	log         *logger.Logger
	cfg         Config
}

// NewStockUseCase construye el motor de stock.
func NewStockUseCase(
	txRunner TxRunner,
	variantRepo repository.VariantRepository,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	notifier Notifier,
	log *logger.Logger,
	cfg Config,
) *StockUseCase {
	if cfg.ReservationTimeout <= 0 {
		cfg.ReservationTimeout = 15 * time.Minute
	}
	return &StockUseCase{
		txRunner:    txRunner,
		variantRepo: variantRepo,
		movRepo:     movRepo,
		productRepo: productRepo,
		notifier:    notifier,
		log:         log,
		cfg:         cfg,
	}
}

// MovementInput entrada para ApplyMovement (movimientos administrativos).
type MovementInput struct {
	VariantID   string
	Type        string // purchase, adjustment, return
	Quantity    int    // con signo; purchase/return deben ser positivos
	OrderID     string
	Reason      string
	Description string
	ActingUser  string
}

// applyToVariant aplica la aritmética de un tipo de movimiento sobre los
// contadores de la variante ya bloqueada. Rechaza resultados negativos:
// reservado < 0 es ErrInvalidReservation (error de lógica); stock < 0 o
// reservado > stock es ErrInsufficientStock.
func applyToVariant(v *entity.ProductVariant, movementType string, quantity int) error {
	if entity.AffectsReserved(movementType) {
		newReserved := v.ReservedStock + quantity
		if newReserved < 0 {
			return fmt.Errorf("%w: reservado resultante %d", domain.ErrInvalidReservation, newReserved)
		}
		if newReserved > v.Stock {
			return fmt.Errorf("%w: disponible %d, solicitado %d",
				domain.ErrInsufficientStock, v.Available(), quantity)
		}
		v.ReservedStock = newReserved
		return nil
	}
	newStock := v.Stock + quantity
	if newStock < 0 || newStock < v.ReservedStock {
		return fmt.Errorf("%w: stock %d, reservado %d, movimiento %d",
			domain.ErrInsufficientStock, v.Stock, v.ReservedStock, quantity)
	}
	v.Stock = newStock
	return nil
}

// newMovement construye la fila del libro para la mutación.
func newMovement(variantID, movementType string, quantity int, orderID, reason, description, actingUser string) *entity.StockMovement {
	return &entity.StockMovement{
		ID:          uuid.New().String(),
		VariantID:   variantID,
		OrderID:     orderID,
		Type:        movementType,
		Quantity:    quantity,
		Reason:      reason,
		Description: description,
		CreatedBy:   actingUser,
		CreatedAt:   time.Now(),
	}
}

// ApplyMovement registra un movimiento administrativo (compra, ajuste o
// devolución) de forma transaccional: bloquea la fila de la variante, valida la
// aritmética, actualiza contadores y guarda la fila del libro juntos.
// reserve/release/sale no pasan por aquí: usan el protocolo de reservas.
func (uc *StockUseCase) ApplyMovement(ctx context.Context, input MovementInput) (*entity.ProductVariant, *entity.StockMovement, error) {
	switch input.Type {
	case entity.MovementTypePurchase, entity.MovementTypeReturn:
		if input.Quantity <= 0 {
			return nil, nil, domain.ErrInvalidInput
		}
	case entity.MovementTypeAdjustment:
		if input.Quantity == 0 {
			return nil, nil, domain.ErrInvalidInput
		}
	default:
		return nil, nil, domain.ErrInvalidInput
	}
	if input.VariantID == "" {
		return nil, nil, domain.ErrInvalidInput
	}

	var (
		variant  *entity.ProductVariant
		movement *entity.StockMovement
	)
	err := uc.txRunner.Run(ctx, func(
		variants repository.VariantRepository,
		movements repository.StockMovementRepository,
		_ repository.ReservationRepository,
	) error {
		v, err := variants.GetForUpdate(input.VariantID)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.ErrVariantNotFound
		}
		if err := applyToVariant(v, input.Type, input.Quantity); err != nil {
			return err
		}
		v.UpdatedAt = time.Now()
		if err := variants.UpdateStockLevels(v); err != nil {
			return err
		}
		m := newMovement(v.ID, input.Type, input.Quantity, input.OrderID, input.Reason, input.Description, input.ActingUser)
		if err := movements.Create(m); err != nil {
			return err
		}
		variant, movement = v, m
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	uc.notifyIfLowStock(ctx, variant)
	return variant, movement, nil
}

// ReserveStock aparta quantity unidades de la variante para un pedido.
// Verifica disponible = stock - reservado >= quantity bajo bloqueo de fila; si
// no alcanza, falla con ErrInsufficientStock indicando disponible vs solicitado.
// El stock físico no cambia: solo crece ReservedStock. timeout <= 0 usa el
// valor por defecto de configuración.
func (uc *StockUseCase) ReserveStock(ctx context.Context, variantID string, quantity int, orderID string, timeout time.Duration) error {
	if variantID == "" || orderID == "" || quantity <= 0 {
		return domain.ErrInvalidInput
	}
	if timeout <= 0 {
		timeout = uc.cfg.ReservationTimeout
	}

	var variant *entity.ProductVariant
	err := uc.txRunner.Run(ctx, func(
		variants repository.VariantRepository,
		movements repository.StockMovementRepository,
		reservations repository.ReservationRepository,
	) error {
		v, err := variants.GetForUpdate(variantID)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.ErrVariantNotFound
		}
		if v.Available() < quantity {
			return fmt.Errorf("%w: disponible %d, solicitado %d",
				domain.ErrInsufficientStock, v.Available(), quantity)
		}
		if err := applyToVariant(v, entity.MovementTypeReserve, quantity); err != nil {
			return err
		}
		now := time.Now()
		v.UpdatedAt = now
		if err := variants.UpdateStockLevels(v); err != nil {
			return err
		}
		m := newMovement(v.ID, entity.MovementTypeReserve, quantity, orderID, "checkout", "", "")
		if err := movements.Create(m); err != nil {
			return err
		}
		res := &entity.StockReservation{
			ID:        uuid.New().String(),
			VariantID: v.ID,
			OrderID:   orderID,
			Quantity:  quantity,
			State:     entity.ReservationStateReserved,
			ExpiresAt: now.Add(timeout),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := reservations.Create(res); err != nil {
			return err
		}
		variant = v
		return nil
	})
	if err != nil {
		return err
	}
	uc.notifyIfLowStock(ctx, variant)
	return nil
}

// ReleaseStock devuelve unidades reservadas al disponible. Es segura de llamar
// aunque ya no quede reserva (varios caminos de limpieza pueden competir por
// liberar el mismo pedido): recorta la liberación a lo pendiente, registra en
// el log la inconsistencia y continúa en vez de fallar.
func (uc *StockUseCase) ReleaseStock(ctx context.Context, variantID string, quantity int, orderID string) error {
	if variantID == "" || quantity <= 0 {
		return domain.ErrInvalidInput
	}

	var variant *entity.ProductVariant
	err := uc.txRunner.Run(ctx, func(
		variants repository.VariantRepository,
		movements repository.StockMovementRepository,
		reservations repository.ReservationRepository,
	) error {
		v, err := variants.GetForUpdate(variantID)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.ErrVariantNotFound
		}

		toRelease := quantity
		if toRelease > v.ReservedStock {
			// Liberación mayor que lo reservado: recortar y dejar rastro en el
			// log, el bug queda visible sin corromper los contadores.
			uc.log.Warn().
				Str("variant_id", variantID).
				Str("order_id", orderID).
				Int("requested", quantity).
				Int("reserved", v.ReservedStock).
				Msg("liberación recortada: excede lo reservado")
			toRelease = v.ReservedStock
		}
		if toRelease == 0 {
			uc.log.Warn().
				Str("variant_id", variantID).
				Str("order_id", orderID).
				Msg("liberación sin reserva pendiente, se ignora")
			variant = v
			return nil
		}

		if err := applyToVariant(v, entity.MovementTypeRelease, -toRelease); err != nil {
			return err
		}
		v.UpdatedAt = time.Now()
		if err := variants.UpdateStockLevels(v); err != nil {
			return err
		}
		m := newMovement(v.ID, entity.MovementTypeRelease, -toRelease, orderID, "liberación de reserva", "", "")
		if err := movements.Create(m); err != nil {
			return err
		}
		if orderID != "" {
			res, err := reservations.GetActive(variantID, orderID)
			if err != nil {
				return err
			}
			if res != nil {
				if err := reservations.UpdateState(res.ID, entity.ReservationStateReleased); err != nil {
					return err
				}
			}
		}
		variant = v
		return nil
	})
	if err != nil {
		return err
	}
	uc.notifyIfLowStock(ctx, variant)
	return nil
}

// ConfirmSale convierte la reserva de un pedido en venta definitiva: en una
// sola transacción libera lo reservado y aplica el movimiento sale que
// decrementa el stock físico. Es el único camino que reduce Stock; los ciclos
// reserva/liberación solo mueven ReservedStock.
func (uc *StockUseCase) ConfirmSale(ctx context.Context, variantID string, quantity int, orderID string) error {
	if variantID == "" || orderID == "" || quantity <= 0 {
		return domain.ErrInvalidInput
	}

	var variant *entity.ProductVariant
	err := uc.txRunner.Run(ctx, func(
		variants repository.VariantRepository,
		movements repository.StockMovementRepository,
		reservations repository.ReservationRepository,
	) error {
		v, err := variants.GetForUpdate(variantID)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.ErrVariantNotFound
		}

		// Paso 1: limpiar la reserva (recortada a lo pendiente, como ReleaseStock).
		toRelease := quantity
		if toRelease > v.ReservedStock {
			uc.log.Warn().
				Str("variant_id", variantID).
				Str("order_id", orderID).
				Int("requested", quantity).
				Int("reserved", v.ReservedStock).
				Msg("confirmación de venta sin reserva completa")
			toRelease = v.ReservedStock
		}
		if toRelease > 0 {
			if err := applyToVariant(v, entity.MovementTypeRelease, -toRelease); err != nil {
				return err
			}
			m := newMovement(v.ID, entity.MovementTypeRelease, -toRelease, orderID, "confirmación de venta", "", "")
			if err := movements.Create(m); err != nil {
				return err
			}
		}

		// Paso 2: venta definitiva sobre el stock físico.
		if err := applyToVariant(v, entity.MovementTypeSale, -quantity); err != nil {
			return err
		}
		sale := newMovement(v.ID, entity.MovementTypeSale, -quantity, orderID, "venta confirmada", "", "")
		if err := movements.Create(sale); err != nil {
			return err
		}

		v.UpdatedAt = time.Now()
		if err := variants.UpdateStockLevels(v); err != nil {
			return err
		}

		res, err := reservations.GetActive(variantID, orderID)
		if err != nil {
			return err
		}
		if res != nil {
			if err := reservations.UpdateState(res.ID, entity.ReservationStateSold); err != nil {
				return err
			}
		}
		variant = v
		return nil
	})
	if err != nil {
		return err
	}
	uc.notifyIfLowStock(ctx, variant)
	return nil
}

// notifyIfLowStock emite el evento low_stock si la mutación dejó el stock
// físico en el umbral o por debajo. Best-effort: un fallo del sink se registra
// y no afecta la mutación ya confirmada.
func (uc *StockUseCase) notifyIfLowStock(ctx context.Context, v *entity.ProductVariant) {
	if v == nil || !v.IsLowStock() {
		return
	}
	productName := v.ProductID
	if p, err := uc.productRepo.GetByID(v.ProductID); err == nil && p != nil {
		productName = p.Name
	}
	label := productName
	if v.SizeLabel() != "" {
		label += " talla " + v.SizeLabel()
	}
	if v.ColorLabel() != "" {
		label += " color " + v.ColorLabel()
	}
	err := uc.notifier.Notify(ctx,
		entity.NotificationTypeLowStock,
		"Stock bajo",
		fmt.Sprintf("%s: quedan %d unidades (mínimo %d)", label, v.Stock, v.MinStock),
		map[string]any{
			"product_id": v.ProductID,
			"variant_id": v.ID,
			"size":       v.SizeLabel(),
			"color":      v.ColorLabel(),
			"stock":      v.Stock,
			"min_stock":  v.MinStock,
		},
	)
	if err != nil {
		uc.log.Error().Err(err).
			Str("variant_id", v.ID).
			Msg("no se pudo emitir la notificación de stock bajo")
	}
}
