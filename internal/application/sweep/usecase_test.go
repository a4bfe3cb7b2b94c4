package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimoda/minimoda-api/internal/domain"
	"github.com/minimoda/minimoda-api/internal/domain/entity"
	"github.com/minimoda/minimoda-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeOrders struct {
	orders map[string]*entity.Order
	items  map[string][]*entity.OrderItem
	// statusErr fuerza fallo al cancelar un pedido concreto.
	statusErr map[string]error
}

func (r *fakeOrders) Create(o *entity.Order, items []*entity.OrderItem) error {
	r.orders[o.ID] = o
	r.items[o.ID] = items
	return nil
}
func (r *fakeOrders) GetByID(id string) (*entity.Order, error) { return r.orders[id], nil }
func (r *fakeOrders) ListItems(orderID string) ([]*entity.OrderItem, error) {
	return r.items[orderID], nil
}
func (r *fakeOrders) UpdateStatus(id, status string) error {
	if err, ok := r.statusErr[id]; ok {
		return err
	}
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}
func (r *fakeOrders) Delete(id string) error { delete(r.orders, id); return nil }
func (r *fakeOrders) ListPendingOlderThan(cutoff time.Time, limit int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.orders {
		if o.Status == entity.OrderStatusPending && o.CreatedAt.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeReservations struct{ byOrder map[string][]*entity.StockReservation }

func (r *fakeReservations) Create(res *entity.StockReservation) error {
	r.byOrder[res.OrderID] = append(r.byOrder[res.OrderID], res)
	return nil
}
func (r *fakeReservations) GetActive(string, string) (*entity.StockReservation, error) {
	return nil, nil
}
func (r *fakeReservations) ListActiveByOrder(orderID string) ([]*entity.StockReservation, error) {
	var out []*entity.StockReservation
	for _, res := range r.byOrder[orderID] {
		if res.IsActive() {
			out = append(out, res)
		}
	}
	return out, nil
}
func (r *fakeReservations) ListExpired(before time.Time, limit int) ([]*entity.StockReservation, error) {
	var out []*entity.StockReservation
	for _, list := range r.byOrder {
		for _, res := range list {
			if res.IsActive() && res.ExpiresAt.Before(before) && len(out) < limit {
				out = append(out, res)
			}
		}
	}
	return out, nil
}
func (r *fakeReservations) UpdateState(id, state string) error {
	for _, list := range r.byOrder {
		for _, res := range list {
			if res.ID == id {
				res.State = state
			}
		}
	}
	return nil
}

type fakeProducts struct {
	stock map[string]int
	// adjustErr fuerza fallo al restituir un producto concreto.
	adjustErr map[string]error
}

func (r *fakeProducts) Create(*entity.Product) error                 { return nil }
func (r *fakeProducts) Update(*entity.Product) error                 { return nil }
func (r *fakeProducts) GetByID(string) (*entity.Product, error)      { return nil, nil }
func (r *fakeProducts) GetForUpdate(string) (*entity.Product, error) { return nil, nil }
func (r *fakeProducts) AdjustFlatStock(productID string, delta int) error {
	if err, ok := r.adjustErr[productID]; ok {
		return err
	}
	if r.stock[productID]+delta < 0 {
		return domain.ErrInsufficientStock
	}
	r.stock[productID] += delta
	return nil
}

type releaseCall struct {
	variantID string
	quantity  int
	orderID   string
}

type fakeReleaser struct {
	released  []releaseCall
	failOn    map[string]error // por variantID
	lowStock  []*entity.ProductVariant
	reconcile int
}

func (e *fakeReleaser) ReleaseStock(_ context.Context, variantID string, quantity int, orderID string) error {
	if err, ok := e.failOn[variantID]; ok {
		return err
	}
	e.released = append(e.released, releaseCall{variantID, quantity, orderID})
	return nil
}
func (e *fakeReleaser) GetLowStockVariants(context.Context, int, int) ([]*entity.ProductVariant, error) {
	return e.lowStock, nil
}
func (e *fakeReleaser) ReconcileCounters(context.Context) (int, error) { return e.reconcile, nil }

type fakeNotifier struct{ sent []entity.Notification }

func (n *fakeNotifier) Notify(_ context.Context, notificationType, title, message string, data map[string]any) error {
	n.sent = append(n.sent, entity.Notification{Type: notificationType, Title: title, Message: message, Data: data})
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type sweepFixture struct {
	orders   *fakeOrders
	res      *fakeReservations
	products *fakeProducts
	engine   *fakeReleaser
	notifier *fakeNotifier
	uc       *SweepUseCase
}

func newSweepFixture() *sweepFixture {
	f := &sweepFixture{
		orders:   &fakeOrders{orders: map[string]*entity.Order{}, items: map[string][]*entity.OrderItem{}, statusErr: map[string]error{}},
		res:      &fakeReservations{byOrder: map[string][]*entity.StockReservation{}},
		products: &fakeProducts{stock: map[string]int{}, adjustErr: map[string]error{}},
		engine:   &fakeReleaser{failOn: map[string]error{}},
		notifier: &fakeNotifier{},
	}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	f.uc = NewSweepUseCase(f.orders, f.res, f.products, f.engine, f.notifier, log, Config{
		PendingExpiry: time.Hour,
		BatchSize:     50,
	})
	return f
}

func (f *sweepFixture) addOrder(id string, status string, age time.Duration) {
	f.orders.orders[id] = &entity.Order{
		ID:        id,
		UserID:    "user-1",
		Status:    status,
		CreatedAt: time.Now().Add(-age),
	}
}

func (f *sweepFixture) addReservation(orderID, variantID string, qty int) {
	f.res.byOrder[orderID] = append(f.res.byOrder[orderID], &entity.StockReservation{
		ID:        orderID + "/" + variantID,
		VariantID: variantID,
		OrderID:   orderID,
		Quantity:  qty,
		State:     entity.ReservationStateReserved,
		ExpiresAt: time.Now().Add(-2 * time.Hour),
	})
}

func (f *sweepFixture) addFlatItem(orderID, productID string, qty int) {
	f.orders.items[orderID] = append(f.orders.items[orderID], &entity.OrderItem{
		ID:        orderID + "/" + productID,
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  qty,
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestReleaseExpiredOrders_CancelaYLibera(t *testing.T) {
	f := newSweepFixture()
	f.addOrder("order-1", entity.OrderStatusPending, 2*time.Hour)
	f.addReservation("order-1", "var-1", 3)
	f.addReservation("order-1", "var-2", 1)

	cancelled, err := f.uc.ReleaseExpiredOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)

	assert.Equal(t, entity.OrderStatusCancelled, f.orders.orders["order-1"].Status)
	require.Len(t, f.engine.released, 2)
	assert.Equal(t, releaseCall{"var-1", 3, "order-1"}, f.engine.released[0])
	assert.Equal(t, releaseCall{"var-2", 1, "order-1"}, f.engine.released[1])

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, entity.NotificationTypeOrderExpired, f.notifier.sent[0].Type)
	assert.Equal(t, "order-1", f.notifier.sent[0].Data["order_id"])
}

func TestReleaseExpiredOrders_IgnoraPedidosRecientesYNoPendientes(t *testing.T) {
	f := newSweepFixture()
	f.addOrder("joven", entity.OrderStatusPending, 10*time.Minute)
	f.addOrder("pagado", entity.OrderStatusProcessing, 3*time.Hour)

	cancelled, err := f.uc.ReleaseExpiredOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, cancelled)
	assert.Equal(t, entity.OrderStatusPending, f.orders.orders["joven"].Status)
	assert.Equal(t, entity.OrderStatusProcessing, f.orders.orders["pagado"].Status)
	assert.Empty(t, f.engine.released)
}

func TestReleaseExpiredOrders_FalloDeUnaLineaNoAbortaElPedido(t *testing.T) {
	f := newSweepFixture()
	f.addOrder("order-1", entity.OrderStatusPending, 2*time.Hour)
	f.addReservation("order-1", "var-atascada", 2)
	f.addReservation("order-1", "var-2", 1)
	f.engine.failOn["var-atascada"] = errors.New("timeout de lock")

	cancelled, err := f.uc.ReleaseExpiredOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled, "el pedido se cancela aunque una línea falle")

	require.Len(t, f.engine.released, 1)
	assert.Equal(t, "var-2", f.engine.released[0].variantID)
}

func TestReleaseExpiredOrders_FalloDeUnPedidoNoAbortaElLote(t *testing.T) {
	f := newSweepFixture()
	f.addOrder("order-roto", entity.OrderStatusPending, 2*time.Hour)
	f.addOrder("order-ok", entity.OrderStatusPending, 2*time.Hour)
	f.orders.statusErr["order-roto"] = errors.New("conexión perdida")

	cancelled, err := f.uc.ReleaseExpiredOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)
	assert.Equal(t, entity.OrderStatusCancelled, f.orders.orders["order-ok"].Status)
	// La siguiente pasada reintenta el pedido roto sin daño (liberación idempotente).
	assert.Equal(t, entity.OrderStatusPending, f.orders.orders["order-roto"].Status)
}

func TestReleaseExpiredOrders_RestituyeLineasDeStockPlano(t *testing.T) {
	f := newSweepFixture()
	f.addOrder("order-1", entity.OrderStatusPending, 2*time.Hour)
	// Línea con variante: deja reserva y se libera por el motor.
	f.addReservation("order-1", "var-1", 2)
	varID := "var-1"
	f.orders.items["order-1"] = append(f.orders.items["order-1"], &entity.OrderItem{
		ID: "order-1/var-1", OrderID: "order-1", ProductID: "prod-con-variante",
		VariantID: &varID, Quantity: 2,
	})
	// Línea plana: se decrementó al crear el pedido, sin reserva.
	f.addFlatItem("order-1", "prod-plano", 4)
	f.products.stock["prod-plano"] = 6 // 10 originales - 4 del checkout

	cancelled, err := f.uc.ReleaseExpiredOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)

	assert.Equal(t, entity.OrderStatusCancelled, f.orders.orders["order-1"].Status)
	assert.Equal(t, 10, f.products.stock["prod-plano"], "la línea plana vuelve al stock del producto")
	require.Len(t, f.engine.released, 1)
	assert.Equal(t, releaseCall{"var-1", 2, "order-1"}, f.engine.released[0],
		"la línea con variante se libera por el motor, no por stock plano")
}

func TestReleaseExpiredOrders_SinRestitucionPlanaSiCancelarFalla(t *testing.T) {
	f := newSweepFixture()
	f.addOrder("order-1", entity.OrderStatusPending, 2*time.Hour)
	f.addFlatItem("order-1", "prod-plano", 3)
	f.products.stock["prod-plano"] = 7
	f.orders.statusErr["order-1"] = errors.New("conexión perdida")

	cancelled, err := f.uc.ReleaseExpiredOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, cancelled)
	// La restitución va después de cancelar: si cancelar falla no hay abono y
	// la siguiente pasada reintenta sin duplicarlo.
	assert.Equal(t, 7, f.products.stock["prod-plano"])
}

func TestReleaseOrphanReservations_LiberaSoloLasSinPedido(t *testing.T) {
	f := newSweepFixture()
	// Pedido vivo en pending: su reserva la maneja la pasada por pedido.
	f.addOrder("order-vivo", entity.OrderStatusPending, 30*time.Minute)
	f.addReservation("order-vivo", "var-1", 2)
	// Reserva cuyo pedido desapareció (borrado compensatorio interrumpido).
	f.addReservation("order-borrado", "var-2", 3)

	released, err := f.uc.ReleaseOrphanReservations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	require.Len(t, f.engine.released, 1)
	assert.Equal(t, releaseCall{"var-2", 3, "order-borrado"}, f.engine.released[0])
	assert.Equal(t, entity.ReservationStateReleased, f.res.byOrder["order-borrado"][0].State)
	assert.True(t, f.res.byOrder["order-vivo"][0].IsActive(), "la reserva con pedido vivo no se toca")
}

func TestReleaseOrphanReservations_FalloDeUnaNoAbortaElLote(t *testing.T) {
	f := newSweepFixture()
	f.addReservation("order-a", "var-atascada", 1)
	f.addReservation("order-b", "var-2", 5)
	f.engine.failOn["var-atascada"] = errors.New("timeout de lock")

	released, err := f.uc.ReleaseOrphanReservations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	// La reserva atascada sigue viva y la siguiente pasada la reintenta.
	assert.True(t, f.res.byOrder["order-a"][0].IsActive())
	assert.Equal(t, entity.ReservationStateReleased, f.res.byOrder["order-b"][0].State)
}

func TestLowStockRollup_EmiteUnSoloResumen(t *testing.T) {
	f := newSweepFixture()
	size := "2T"
	f.engine.lowStock = []*entity.ProductVariant{
		{ID: "var-1", ProductID: "prod-1", Size: &size, Stock: 2, MinStock: 5},
		{ID: "var-2", ProductID: "prod-2", Stock: 0, MinStock: 3},
	}

	require.NoError(t, f.uc.LowStockRollup(context.Background()))
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, entity.NotificationTypeStockRollup, f.notifier.sent[0].Type)
	assert.Equal(t, 2, f.notifier.sent[0].Data["count"])
}

func TestLowStockRollup_SinQuiebresNoNotifica(t *testing.T) {
	f := newSweepFixture()
	require.NoError(t, f.uc.LowStockRollup(context.Background()))
	assert.Empty(t, f.notifier.sent)
}
