package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minimoda/minimoda-api/internal/domain"
	"github.com/minimoda/minimoda-api/internal/domain/entity"
	"github.com/minimoda/minimoda-api/internal/domain/repository"
	"github.com/minimoda/minimoda-api/pkg/logger"
)

// StockReleaser operaciones del motor de stock que consume el barrido.
// Lo implementa *stock.StockUseCase.
type StockReleaser interface {
	ReleaseStock(ctx context.Context, variantID string, quantity int, orderID string) error
	GetLowStockVariants(ctx context.Context, limit, offset int) ([]*entity.ProductVariant, error)
	ReconcileCounters(ctx context.Context) (int, error)
}

// Notifier sink de notificaciones (mismo contrato que el motor de stock).
type Notifier interface {
	Notify(ctx context.Context, notificationType, title, message string, data map[string]any) error
}

// Config parámetros del barrido.
type Config struct {
	// PendingExpiry edad máxima de un pedido en pending antes de cancelarlo (60m).
	PendingExpiry time.Duration
	// BatchSize máximo de pedidos por pasada.
	BatchSize int
}

// SweepUseCase reconciliación periódica: garantiza que ningún checkout
// abandonado retenga reservas para siempre. Cada pedido se procesa de forma
// independiente (log-and-continue); gracias a la idempotencia de ReleaseStock
// una pasada interrumpida se puede reintentar sin daño.
type SweepUseCase struct {
	orderRepo   repository.OrderRepository
	resRepo     repository.ReservationRepository
	productRepo repository.ProductRepository
	engine      StockReleaser
	notifier    Notifier
	log         *logger.Logger
	cfg         Config
}

// NewSweepUseCase construye el barrido.
func NewSweepUseCase(
	orderRepo repository.OrderRepository,
	resRepo repository.ReservationRepository,
	productRepo repository.ProductRepository,
	engine StockReleaser,
	notifier Notifier,
	log *logger.Logger,
	cfg Config,
) *SweepUseCase {
	if cfg.PendingExpiry <= 0 {
		cfg.PendingExpiry = 60 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &SweepUseCase{
		orderRepo:   orderRepo,
		resRepo:     resRepo,
		productRepo: productRepo,
		engine:      engine,
		notifier:    notifier,
		log:         log,
		cfg:         cfg,
	}
}

// ReleaseExpiredOrders cancela los pedidos en pending más viejos que la ventana
// de expiración y libera sus reservas. Devuelve cuántos pedidos se cancelaron.
// Un fallo liberando una línea no aborta el resto del pedido, y un fallo en un
// pedido no aborta el lote.
func (uc *SweepUseCase) ReleaseExpiredOrders(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-uc.cfg.PendingExpiry)
	orders, err := uc.orderRepo.ListPendingOlderThan(cutoff, uc.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("listar pedidos vencidos: %w", err)
	}

	cancelled := 0
	for _, order := range orders {
		if err := uc.expireOrder(ctx, order); err != nil {
			uc.log.Error().Err(err).
				Str("order_id", order.ID).
				Msg("fallo expirando pedido, continúa el lote")
			continue
		}
		cancelled++
	}
	if cancelled > 0 {
		uc.log.Info().Int("cancelled", cancelled).Msg("barrido de expiración completado")
	}
	return cancelled, nil
}

// expireOrder libera las reservas vivas de un pedido, lo cancela y notifica.
func (uc *SweepUseCase) expireOrder(ctx context.Context, order *entity.Order) error {
	reservations, err := uc.resRepo.ListActiveByOrder(order.ID)
	if err != nil {
		return fmt.Errorf("listar reservas del pedido: %w", err)
	}
	for _, res := range reservations {
		if err := uc.engine.ReleaseStock(ctx, res.VariantID, res.Quantity, order.ID); err != nil {
			// Una línea atascada no retiene al resto; la siguiente pasada la reintenta.
			uc.log.Error().Err(err).
				Str("order_id", order.ID).
				Str("variant_id", res.VariantID).
				Msg("fallo liberando reserva vencida")
		}
	}

	if err := uc.orderRepo.UpdateStatus(order.ID, entity.OrderStatusCancelled); err != nil {
		return fmt.Errorf("cancelar pedido: %w", err)
	}

	// Las líneas de stock plano se decrementaron al crear el pedido y no dejan
	// reserva en stock_reservations: hay que restituirlas aquí. Va después del
	// cambio de estado porque AdjustFlatStock no es idempotente: un reintento
	// del barrido solo ve pedidos en pending y ya no puede duplicar el abono.
	uc.restituteFlatLines(order.ID)

	err = uc.notifier.Notify(ctx,
		entity.NotificationTypeOrderExpired,
		"Pedido expirado",
		fmt.Sprintf("Tu pedido %s se canceló por falta de confirmación y el stock quedó liberado.", order.ID),
		map[string]any{
			"order_id":   order.ID,
			"user_id":    order.UserID,
			"created_at": order.CreatedAt,
		},
	)
	if err != nil {
		uc.log.Error().Err(err).Str("order_id", order.ID).Msg("no se pudo notificar la expiración")
	}
	return nil
}

// restituteFlatLines devuelve al stock plano las líneas sin variante de un
// pedido recién cancelado. Log-and-continue por línea: el pedido ya quedó
// cancelado y un abono atascado no debe frenar la notificación ni el lote.
func (uc *SweepUseCase) restituteFlatLines(orderID string) {
	items, err := uc.orderRepo.ListItems(orderID)
	if err != nil {
		uc.log.Error().Err(err).
			Str("order_id", orderID).
			Msg("no se pudieron listar las líneas para restituir stock plano")
		return
	}
	for _, item := range items {
		if item.VariantID != nil {
			continue
		}
		if err := uc.productRepo.AdjustFlatStock(item.ProductID, item.Quantity); err != nil {
			uc.log.Error().Err(err).
				Str("order_id", orderID).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("no se pudo restituir stock plano de una línea cancelada")
		}
	}
}

// ReleaseOrphanReservations red de seguridad a nivel de reserva: libera reservas
// vivas largamente vencidas cuyo pedido ya no existe (el borrado compensatorio
// del checkout pudo morir entre reservar y borrar el pedido). Las reservas de
// pedidos que sí existen las resuelve ReleaseExpiredOrders pedido a pedido, por
// eso aquí se saltan. El corte lleva PendingExpiry de margen sobre expires_at
// para no competir con la pasada por pedido.
func (uc *SweepUseCase) ReleaseOrphanReservations(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-uc.cfg.PendingExpiry)
	reservations, err := uc.resRepo.ListExpired(cutoff, uc.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("listar reservas vencidas: %w", err)
	}

	released := 0
	for _, res := range reservations {
		order, err := uc.orderRepo.GetByID(res.OrderID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			uc.log.Error().Err(err).
				Str("reservation_id", res.ID).
				Msg("no se pudo consultar el pedido de una reserva vencida")
			continue
		}
		if order != nil {
			continue
		}
		if err := uc.engine.ReleaseStock(ctx, res.VariantID, res.Quantity, res.OrderID); err != nil {
			uc.log.Error().Err(err).
				Str("reservation_id", res.ID).
				Str("variant_id", res.VariantID).
				Msg("fallo liberando reserva huérfana")
			continue
		}
		// ReleaseStock no toca la fila si el recorte dejó la liberación en cero;
		// el cierre explícito saca la reserva del conjunto vencido en todo caso.
		if err := uc.resRepo.UpdateState(res.ID, entity.ReservationStateReleased); err != nil {
			uc.log.Error().Err(err).
				Str("reservation_id", res.ID).
				Msg("no se pudo cerrar la reserva huérfana")
			continue
		}
		uc.log.Warn().
			Str("reservation_id", res.ID).
			Str("variant_id", res.VariantID).
			Str("order_id", res.OrderID).
			Int("quantity", res.Quantity).
			Msg("reserva huérfana liberada: su pedido ya no existe")
		released++
	}
	return released, nil
}

// LowStockRollup resumen diario de variantes en o bajo su umbral de reorden,
// en una única notificación para el equipo de compras.
func (uc *SweepUseCase) LowStockRollup(ctx context.Context) error {
	variants, err := uc.engine.GetLowStockVariants(ctx, 500, 0)
	if err != nil {
		return fmt.Errorf("listar stock bajo: %w", err)
	}
	if len(variants) == 0 {
		return nil
	}

	items := make([]map[string]any, 0, len(variants))
	for _, v := range variants {
		items = append(items, map[string]any{
			"product_id": v.ProductID,
			"variant_id": v.ID,
			"size":       v.SizeLabel(),
			"color":      v.ColorLabel(),
			"stock":      v.Stock,
			"min_stock":  v.MinStock,
		})
	}
	err = uc.notifier.Notify(ctx,
		entity.NotificationTypeStockRollup,
		"Resumen de stock bajo",
		fmt.Sprintf("%d variantes en o bajo su umbral de reorden", len(variants)),
		map[string]any{"count": len(variants), "items": items},
	)
	if err != nil {
		uc.log.Error().Err(err).Msg("no se pudo emitir el resumen de stock bajo")
	}
	return nil
}

// Reconcile pasa la verificación libro → contadores (reparación de deriva).
func (uc *SweepUseCase) Reconcile(ctx context.Context) error {
	repaired, err := uc.engine.ReconcileCounters(ctx)
	if err != nil {
		return err
	}
	if repaired > 0 {
		uc.log.Warn().Int("repaired", repaired).Msg("reconciliación reparó contadores derivados")
	}
	return nil
}
