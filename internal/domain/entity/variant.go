package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductVariant representa una combinación vendible (talla, color) de un producto.
// Size o Color en nil significan "cualquiera"/por defecto; un producto con stock plano
// se modela con una única variante por defecto (nil, nil).
//
// Invariantes: Stock >= 0, ReservedStock >= 0, ReservedStock <= Stock.
// Stock es el total físico en bodega; ReservedStock la porción apartada por pedidos
// en curso. Las columnas son una caché materializada del libro de movimientos.
type ProductVariant struct {
	ID            string
	ProductID     string
	Size          *string
	Color         *string
	Stock         int
	ReservedStock int
	MinStock      int
	Price         *decimal.Decimal // nil = usa el precio base del producto
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Available unidades vendibles: stock físico menos lo reservado.
func (v *ProductVariant) Available() int {
	return v.Stock - v.ReservedStock
}

// IsLowStock indica si el stock físico cayó al umbral de reorden o por debajo.
func (v *ProductVariant) IsLowStock() bool {
	return v.Stock <= v.MinStock
}

// EffectivePrice precio de la variante o, si no define uno, el precio base dado.
func (v *ProductVariant) EffectivePrice(base decimal.Decimal) decimal.Decimal {
	if v.Price != nil {
		return *v.Price
	}
	return base
}

// SizeLabel y ColorLabel devuelven el valor o cadena vacía si es "cualquiera".
func (v *ProductVariant) SizeLabel() string {
	if v.Size == nil {
		return ""
	}
	return *v.Size
}

func (v *ProductVariant) ColorLabel() string {
	if v.Color == nil {
		return ""
	}
	return *v.Color
}
