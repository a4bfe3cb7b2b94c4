package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/minimoda/minimoda-api/internal/application/dto"
	"github.com/minimoda/minimoda-api/internal/application/stock"
	"github.com/minimoda/minimoda-api/internal/domain"
	"github.com/minimoda/minimoda-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del motor de stock (protegido).
type StockHandler struct {
	uc *stock.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento administrativo de stock
// @Description  Compra, ajuste o devolución sobre una variante. Las reservas no
//
//	entran por aquí: las maneja el checkout.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "variant_id, type (purchase|adjustment|return), quantity, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	_, movement, err := h.uc.ApplyMovement(c.Context(), stock.MovementInput{
		VariantID:   in.VariantID,
		Type:        in.Type,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		Description: in.Description,
		ActingUser:  GetUserID(c),
	})
	if err != nil {
		return stockErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(movement))
}

// VariantsByProduct godoc
// @Summary      Variantes de un producto con sus contadores de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {array}   dto.VariantResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/variants [get]
func (h *StockHandler) VariantsByProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	variants, err := h.uc.GetVariantsByProduct(c.Context(), productID)
	if err != nil {
		return stockErrorResponse(c, err)
	}
	out := make([]dto.VariantResponse, 0, len(variants))
	for _, v := range variants {
		out = append(out, toVariantResponse(v))
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Variantes en o bajo su umbral de reorden
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máximo de filas (default 20)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.VariantResponse
// @Router       /api/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	variants, err := h.uc.GetLowStockVariants(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return stockErrorResponse(c, err)
	}
	out := make([]dto.VariantResponse, 0, len(variants))
	for _, v := range variants {
		out = append(out, toVariantResponse(v))
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Agregados del inventario
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockStatsResponse
// @Router       /api/stock/stats [get]
func (h *StockHandler) Stats(c *fiber.Ctx) error {
	st, err := h.uc.GetStockStats(c.Context())
	if err != nil {
		return stockErrorResponse(c, err)
	}
	return c.JSON(dto.StockStatsResponse{
		TotalVariants:  st.TotalVariants,
		TotalStock:     st.TotalStock,
		TotalReserved:  st.TotalReserved,
		TotalAvailable: st.TotalStock - st.TotalReserved,
		LowStockCount:  st.LowStockCount,
	})
}

// ListMovements godoc
// @Summary      Historial del libro de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        variant_id  query  string  false  "filtrar por variante; vacío = global"
// @Param        limit       query  int     false  "máximo de filas (default 20)"
// @Param        offset      query  int     false  "desplazamiento"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	movements, err := h.uc.ListMovements(c.Context(), c.Query("variant_id"), page.Limit, page.Offset)
	if err != nil {
		return stockErrorResponse(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(out)
}

// stockErrorResponse mapea errores de dominio del motor de stock a HTTP.
func stockErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrVariantNotFound), errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidReservation):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_RESERVATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toVariantResponse(v *entity.ProductVariant) dto.VariantResponse {
	out := dto.VariantResponse{
		ID:            v.ID,
		ProductID:     v.ProductID,
		Size:          v.SizeLabel(),
		Color:         v.ColorLabel(),
		Stock:         v.Stock,
		ReservedStock: v.ReservedStock,
		Available:     v.Available(),
		MinStock:      v.MinStock,
		IsActive:      v.IsActive,
	}
	if v.Price != nil {
		s := v.Price.StringFixed(2)
		out.Price = &s
	}
	return out
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		VariantID:   m.VariantID,
		OrderID:     m.OrderID,
		Type:        m.Type,
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		Description: m.Description,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}
