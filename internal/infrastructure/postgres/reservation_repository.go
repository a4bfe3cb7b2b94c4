package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/minimoda/minimoda-api/internal/domain/entity"
	"github.com/minimoda/minimoda-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de ReservationRepository sobre PostgreSQL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador de reservas.
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, variant_id, order_id, quantity, state, expires_at, created_at, updated_at`

func scanReservation(row pgx.Row) (*entity.StockReservation, error) {
	var res entity.StockReservation
	err := row.Scan(
		&res.ID, &res.VariantID, &res.OrderID, &res.Quantity, &res.State,
		&res.ExpiresAt, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Create persiste una reserva nueva.
func (r *ReservationRepo) Create(res *entity.StockReservation) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_reservations (id, variant_id, order_id, quantity, state, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		res.ID, res.VariantID, res.OrderID, res.Quantity, res.State,
		res.ExpiresAt, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// GetActive reserva viva de (variante, pedido). nil sin error si no existe.
func (r *ReservationRepo) GetActive(variantID, orderID string) (*entity.StockReservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM stock_reservations
		WHERE variant_id = $1 AND order_id = $2 AND state = 'reserved'
		ORDER BY created_at
		LIMIT 1`
	res, err := scanReservation(r.q.QueryRow(context.Background(), query, variantID, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active reservation: %w", err)
	}
	return res, nil
}

// ListActiveByOrder reservas vivas de un pedido.
func (r *ReservationRepo) ListActiveByOrder(orderID string) ([]*entity.StockReservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM stock_reservations
		WHERE order_id = $1 AND state = 'reserved'
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list active reservations by order: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListExpired reservas vivas vencidas antes del corte, más antigua primero.
func (r *ReservationRepo) ListExpired(before time.Time, limit int) ([]*entity.StockReservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM stock_reservations
		WHERE state = 'reserved' AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2`
	rows, err := r.q.Query(context.Background(), query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired reservations: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

// UpdateState marca la reserva como released o sold.
func (r *ReservationRepo) UpdateState(id, state string) error {
	query := `UPDATE stock_reservations SET state = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, state)
	if err != nil {
		return fmt.Errorf("update reservation state: %w", err)
	}
	return nil
}

func collectReservations(rows pgx.Rows) ([]*entity.StockReservation, error) {
	var list []*entity.StockReservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}
