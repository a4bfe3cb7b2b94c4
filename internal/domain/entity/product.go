package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa una prenda del catálogo infantil.
// Stock y MinStock son las columnas planas heredadas: solo se usan para productos
// que aún no tienen variantes (ruta de compatibilidad, fuera del libro de movimientos).
type Product struct {
	ID          string
	Name        string
	Description string
	BasePrice   decimal.Decimal // precio base; las variantes pueden sobreescribirlo
	Stock       int             // stock plano legacy (productos sin variantes)
	MinStock    int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
