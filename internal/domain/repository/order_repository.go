package repository

import (
	"time"

	"github.com/minimoda/minimoda-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para pedidos y sus líneas.
// El pedido pertenece al checkout; el motor de stock solo lee status/created_at.
type OrderRepository interface {
	// Create persiste el pedido con sus líneas.
	Create(o *entity.Order, items []*entity.OrderItem) error
	GetByID(id string) (*entity.Order, error)
	ListItems(orderID string) ([]*entity.OrderItem, error)
	UpdateStatus(id, status string) error
	// Delete borra pedido y líneas: solo para el borrado compensatorio del checkout.
	Delete(id string) error
	// ListPendingOlderThan pedidos en pending creados antes del corte (para el barrido).
	ListPendingOlderThan(cutoff time.Time, limit int) ([]*entity.Order, error)
}
