package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/minimoda/minimoda-api/internal/domain/entity"
	"github.com/minimoda/minimoda-api/internal/domain/repository"
)

var _ repository.VariantRepository = (*VariantRepo)(nil)

// VariantRepo implementación de VariantRepository sobre PostgreSQL (usable con pool o tx).
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador de variantes. Pasar pool o tx (Querier).
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

const variantColumns = `id, product_id, size, color, stock, reserved_stock, min_stock, price, is_active, created_at, updated_at`

func scanVariant(row pgx.Row) (*entity.ProductVariant, error) {
	var v entity.ProductVariant
	err := row.Scan(
		&v.ID, &v.ProductID, &v.Size, &v.Color, &v.Stock, &v.ReservedStock,
		&v.MinStock, &v.Price, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create persiste una variante nueva.
func (r *VariantRepo) Create(v *entity.ProductVariant) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	query := `
		INSERT INTO product_variants (id, product_id, size, color, stock, reserved_stock, min_stock, price, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		v.ID, v.ProductID, v.Size, v.Color, v.Stock, v.ReservedStock,
		v.MinStock, v.Price, v.IsActive, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("variante duplicada para (producto, talla, color): %w", err)
		}
		return fmt.Errorf("insert variant: %w", err)
	}
	return nil
}

// Update actualiza los campos de catálogo de la variante (no los contadores).
func (r *VariantRepo) Update(v *entity.ProductVariant) error {
	query := `
		UPDATE product_variants
		SET size = $2, color = $3, min_stock = $4, price = $5, is_active = $6, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		v.ID, v.Size, v.Color, v.MinStock, v.Price, v.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update variant: %w", err)
	}
	return nil
}

// GetByID obtiene una variante por ID. Devuelve nil sin error si no existe.
func (r *VariantRepo) GetByID(id string) (*entity.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1`
	v, err := scanVariant(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return v, nil
}

// GetForUpdate obtiene la variante y bloquea la fila (SELECT FOR UPDATE).
// Es la serialización por variante que cierra la carrera entre reservas
// concurrentes: la segunda transacción espera a que la primera haga commit.
func (r *VariantRepo) GetForUpdate(id string) (*entity.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1 FOR UPDATE`
	v, err := scanVariant(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant for update: %w", err)
	}
	return v, nil
}

// FindBySelection busca la variante exacta de (producto, talla, color).
// IS NOT DISTINCT FROM hace que nil calce con NULL (la variante por defecto)
// y no con "cualquier valor". Devuelve nil sin error si no hay variante:
// es la señal de la ruta legacy de stock plano.
func (r *VariantRepo) FindBySelection(productID string, size, color *string) (*entity.ProductVariant, error) {
	query := `
		SELECT ` + variantColumns + `
		FROM product_variants
		WHERE product_id = $1
		  AND size  IS NOT DISTINCT FROM $2
		  AND color IS NOT DISTINCT FROM $3`
	v, err := scanVariant(r.q.QueryRow(context.Background(), query, productID, size, color))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find variant by selection: %w", err)
	}
	return v, nil
}

// ListByProduct lista las variantes de un producto.
func (r *VariantRepo) ListByProduct(productID string) ([]*entity.ProductVariant, error) {
	query := `
		SELECT ` + variantColumns + `
		FROM product_variants WHERE product_id = $1
		ORDER BY size NULLS FIRST, color NULLS FIRST`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// ListLowStock variantes activas con stock en o bajo su umbral, mayor déficit primero.
func (r *VariantRepo) ListLowStock(limit, offset int) ([]*entity.ProductVariant, error) {
	query := `
		SELECT ` + variantColumns + `
		FROM product_variants
		WHERE is_active AND stock <= min_stock
		ORDER BY (min_stock - stock) DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list low stock variants: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// UpdateStockLevels persiste solo los contadores de stock de la variante.
// Los CHECK de la tabla son la última línea de defensa del invariante
// 0 <= reserved_stock <= stock.
func (r *VariantRepo) UpdateStockLevels(v *entity.ProductVariant) error {
	query := `
		UPDATE product_variants
		SET stock = $2, reserved_stock = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, v.ID, v.Stock, v.ReservedStock)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("contadores de stock violan invariante (stock=%d, reservado=%d): %w",
				v.Stock, v.ReservedStock, err)
		}
		return fmt.Errorf("update stock levels: %w", err)
	}
	return nil
}

// Stats agregados del inventario.
func (r *VariantRepo) Stats() (*repository.StockStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(stock), 0),
		       COALESCE(SUM(reserved_stock), 0),
		       COUNT(*) FILTER (WHERE stock <= min_stock)
		FROM product_variants
		WHERE is_active`
	var st repository.StockStats
	err := r.q.QueryRow(context.Background(), query).Scan(
		&st.TotalVariants, &st.TotalStock, &st.TotalReserved, &st.LowStockCount,
	)
	if err != nil {
		return nil, fmt.Errorf("stock stats: %w", err)
	}
	return &st, nil
}
