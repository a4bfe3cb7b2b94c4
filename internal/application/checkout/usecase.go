package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minimoda/minimoda-api/internal/domain"
	"github.com/minimoda/minimoda-api/internal/domain/entity"
	"github.com/minimoda/minimoda-api/internal/domain/repository"
	"github.com/minimoda/minimoda-api/pkg/logger"
)

// CheckoutUseCase orquesta la creación de pedidos contra el motor de reservas
// con semántica todo-o-nada a nivel de pedido: o todas las líneas quedan
// reservadas o el pedido no existe.
type CheckoutUseCase struct {
	engine      StockEngine
	variantRepo repository.VariantRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	log         *logger.Logger
}

// NewCheckoutUseCase construye el caso de uso de checkout.
func NewCheckoutUseCase(
	engine StockEngine,
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	log *logger.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		engine:      engine,
		variantRepo: variantRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		log:         log,
	}
}

// OrderLineInput línea del carrito: producto + talla/color deseados.
// Size/Color en nil significan "cualquiera" (calzan con la variante por defecto).
type OrderLineInput struct {
	ProductID string
	Size      *string
	Color     *string
	Quantity  int
}

// CreateOrderInput entrada de CreateOrder.
type CreateOrderInput struct {
	UserID string
	Items  []OrderLineInput
}

// CreateOrder crea un pedido reservando stock para cada línea:
//  1. Resuelve cada línea a su variante; sin variante que calce, cae a la ruta
//     legacy de stock plano del producto (no es error).
//  2. Pre-chequea disponibilidad de TODAS las líneas y devuelve un único error
//     agregado nombrando cada quiebre, para no dejar pedidos a medias.
//  3. Persiste el pedido (identidad estable para las reservas).
//  4. Reserva línea por línea; si alguna falla, libera las ya reservadas,
//     borra el pedido (borrado compensatorio) y devuelve el error original.
func (uc *CheckoutUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*entity.Order, error) {
	if input.UserID == "" || len(input.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, line := range input.Items {
		if line.ProductID == "" || line.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	// 1. Resolver cada línea a su destino de stock.
	targets := make([]stockTarget, 0, len(input.Items))
	for _, line := range input.Items {
		target, err := uc.resolveLine(line)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	// 2. Pre-chequeo agregado de disponibilidad.
	var shortages []domain.StockShortage
	for _, target := range targets {
		if s := target.shortage(); s != nil {
			shortages = append(shortages, *s)
		}
	}
	if len(shortages) > 0 {
		return nil, &domain.StockShortageError{Items: shortages}
	}

	// 3. Persistir el pedido con sus líneas.
	now := time.Now()
	order := &entity.Order{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		Status:    entity.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	items := make([]*entity.OrderItem, 0, len(input.Items))
	total := decimal.Zero
	for i, line := range input.Items {
		price := targets[i].unitPrice()
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, &entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			VariantID: targets[i].variantID(),
			Size:      line.Size,
			Color:     line.Color,
			Quantity:  line.Quantity,
			UnitPrice: price,
		})
	}
	order.Total = total
	if err := uc.orderRepo.Create(order, items); err != nil {
		return nil, fmt.Errorf("persistir pedido: %w", err)
	}

	// 4. Reservar línea por línea con rollback compensatorio.
	for i, target := range targets {
		if err := target.reserve(ctx, order.ID); err != nil {
			uc.rollbackReservations(ctx, order.ID, targets[:i])
			if delErr := uc.orderRepo.Delete(order.ID); delErr != nil {
				// El pedido huérfano queda en pending: el barrido lo cancelará
				// al vencer la ventana de expiración.
				uc.log.Error().Err(delErr).
					Str("order_id", order.ID).
					Msg("no se pudo borrar el pedido tras fallo de reserva")
			}
			return nil, err
		}
	}

	return order, nil
}

// resolveLine busca la variante exacta de la línea; si el producto no tiene
// variante que calce, devuelve el destino legacy de stock plano.
func (uc *CheckoutUseCase) resolveLine(line OrderLineInput) (stockTarget, error) {
	product, err := uc.productRepo.GetByID(line.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, fmt.Errorf("producto %s: %w", line.ProductID, domain.ErrNotFound)
	}

	variant, err := uc.variantRepo.FindBySelection(line.ProductID, line.Size, line.Color)
	if err != nil {
		return nil, err
	}
	if variant == nil || !variant.IsActive {
		return &flatTarget{products: uc.productRepo, product: product, quantity: line.Quantity}, nil
	}
	return &variantTarget{engine: uc.engine, product: product, variant: variant, quantity: line.Quantity}, nil
}

// rollbackReservations libera las líneas ya reservadas de un pedido fallido.
// Best-effort: un fallo aquí se registra y el barrido de expiración actúa como
// red de seguridad al vencer el timeout.
func (uc *CheckoutUseCase) rollbackReservations(ctx context.Context, orderID string, reserved []stockTarget) {
	for _, target := range reserved {
		if err := target.release(ctx, orderID); err != nil {
			uc.log.Error().Err(err).
				Str("order_id", orderID).
				Msg("no se pudo liberar una reserva en el rollback del checkout")
		}
	}
}

// UpdateOrderStatus transición administrativa de estado. Al salir de pending:
// hacia processing/shipped/delivered convierte las reservas en ventas; hacia
// cancelled las libera. Los fallos de stock se registran pero no bloquean la
// transición: la integridad del estado del pedido manda y la reconciliación
// periódica repara la deriva.
func (uc *CheckoutUseCase) UpdateOrderStatus(ctx context.Context, orderID, newStatus, actingUser string) (*entity.Order, error) {
	if !entity.IsValidOrderStatus(newStatus) {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.Status == newStatus {
		return order, nil
	}
	if order.Status == entity.OrderStatusCancelled {
		return nil, domain.ErrConflict
	}

	if order.Status == entity.OrderStatusPending {
		items, err := uc.orderRepo.ListItems(orderID)
		if err != nil {
			return nil, err
		}
		switch newStatus {
		case entity.OrderStatusProcessing, entity.OrderStatusShipped, entity.OrderStatusDelivered:
			uc.settleItems(ctx, order.ID, items, true)
		case entity.OrderStatusCancelled:
			uc.settleItems(ctx, order.ID, items, false)
		}
	}

	if err := uc.orderRepo.UpdateStatus(orderID, newStatus); err != nil {
		return nil, err
	}
	order.Status = newStatus
	uc.log.Info().
		Str("order_id", orderID).
		Str("status", newStatus).
		Str("acting_user", actingUser).
		Msg("estado de pedido actualizado")
	return order, nil
}

// settleItems confirma (confirm=true) o libera (confirm=false) el stock de cada
// línea, con log-and-continue por línea.
func (uc *CheckoutUseCase) settleItems(ctx context.Context, orderID string, items []*entity.OrderItem, confirm bool) {
	for _, item := range items {
		target := uc.targetForItem(item)
		var err error
		if confirm {
			err = target.confirm(ctx, orderID)
		} else {
			err = target.release(ctx, orderID)
		}
		if err != nil {
			uc.log.Error().Err(err).
				Str("order_id", orderID).
				Str("product_id", item.ProductID).
				Bool("confirm", confirm).
				Msg("fallo de stock en transición de estado, no bloquea la transición")
		}
	}
}

// targetForItem reconstruye el destino de stock de una línea ya persistida.
func (uc *CheckoutUseCase) targetForItem(item *entity.OrderItem) stockTarget {
	if item.VariantID != nil {
		return &variantTarget{
			engine:   uc.engine,
			product:  &entity.Product{ID: item.ProductID},
			variant:  &entity.ProductVariant{ID: *item.VariantID},
			quantity: item.Quantity,
		}
	}
	return &flatTarget{
		products: uc.productRepo,
		product:  &entity.Product{ID: item.ProductID},
		quantity: item.Quantity,
	}
}
