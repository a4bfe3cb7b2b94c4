package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/minimoda/minimoda-api/internal/domain/entity"
	"github.com/minimoda/minimoda-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL.
// El libro es append-only: no hay Update ni Delete.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del libro de movimientos.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, variant_id, order_id, movement_type, quantity, reason, description, created_by, created_at`

// nullable convierte "" en NULL para columnas opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var orderID, reason, description, createdBy *string
	err := row.Scan(
		&m.ID, &m.VariantID, &orderID, &m.Type, &m.Quantity,
		&reason, &description, &createdBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if orderID != nil {
		m.OrderID = *orderID
	}
	if reason != nil {
		m.Reason = *reason
	}
	if description != nil {
		m.Description = *description
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

// Create agrega una fila al libro.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, variant_id, order_id, movement_type, quantity, reason, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.VariantID, nullable(m.OrderID), m.Type, m.Quantity,
		nullable(m.Reason), nullable(m.Description), nullable(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByVariant historial de una variante, más reciente primero.
func (r *StockMovementRepo) ListByVariant(variantID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE variant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, variantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements by variant: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

// List historial global, más reciente primero.
func (r *StockMovementRepo) List(limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ReplayAll reconstruye los contadores de cada variante desde el libro.
// stock suma venta/compra/ajuste/devolución; reservado suma reserva y
// liberación (ambas ya llevan signo en quantity). Es la fuente de verdad del
// job de reconciliación.
func (r *StockMovementRepo) ReplayAll() ([]repository.ReplayTotals, error) {
	query := `
		SELECT variant_id,
		       COALESCE(SUM(quantity) FILTER (WHERE movement_type IN ('sale', 'purchase', 'adjustment', 'return')), 0),
		       COALESCE(SUM(quantity) FILTER (WHERE movement_type IN ('reserve', 'release')), 0)
		FROM stock_movements
		GROUP BY variant_id`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("replay stock movements: %w", err)
	}
	defer rows.Close()

	var totals []repository.ReplayTotals
	for rows.Next() {
		var t repository.ReplayTotals
		if err := rows.Scan(&t.VariantID, &t.Stock, &t.Reserved); err != nil {
			return nil, fmt.Errorf("scan replay totals: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
