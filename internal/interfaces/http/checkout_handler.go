package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/minimoda/minimoda-api/internal/application/checkout"
	"github.com/minimoda/minimoda-api/internal/application/dto"
	"github.com/minimoda/minimoda-api/internal/domain"
	"github.com/minimoda/minimoda-api/internal/domain/entity"
)

// CheckoutHandler maneja creación de pedidos y transiciones de estado.
type CheckoutHandler struct {
	uc *checkout.CheckoutUseCase
}

// NewCheckoutHandler construye el handler de checkout.
func NewCheckoutHandler(uc *checkout.CheckoutUseCase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

// CreateOrder godoc
// @Summary      Crear pedido reservando stock
// @Description  Reserva stock para todas las líneas del carrito o no crea nada.
//
//	Un quiebre de stock responde 409 con el detalle por línea.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "líneas del carrito"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *CheckoutHandler) CreateOrder(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el pedido necesita al menos una línea"})
	}

	items := make([]checkout.OrderLineInput, 0, len(in.Items))
	for _, line := range in.Items {
		items = append(items, checkout.OrderLineInput{
			ProductID: line.ProductID,
			Size:      optional(line.Size),
			Color:     optional(line.Color),
			Quantity:  line.Quantity,
		})
	}

	order, err := h.uc.CreateOrder(c.Context(), checkout.CreateOrderInput{
		UserID: GetUserID(c),
		Items:  items,
	})
	if err != nil {
		return checkoutErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
}

// UpdateOrderStatus godoc
// @Summary      Transición de estado de un pedido
// @Description  Salir de pending hacia processing/shipped/delivered convierte las
//
//	reservas en ventas; hacia cancelled las libera. cancelled es terminal.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "status destino"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *CheckoutHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.uc.UpdateOrderStatus(c.Context(), c.Params("id"), in.Status, GetUserID(c))
	if err != nil {
		return checkoutErrorResponse(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// checkoutErrorResponse mapea errores de dominio del checkout a HTTP. El quiebre
// agregado de stock viaja como 409 con detalle por línea.
func checkoutErrorResponse(c *fiber.Ctx, err error) error {
	var shortage *domain.StockShortageError
	if errors.As(err, &shortage) {
		detail := make([]dto.ShortageItem, 0, len(shortage.Items))
		for _, it := range shortage.Items {
			detail = append(detail, dto.ShortageItem{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Size:        it.Size,
				Color:       it.Color,
				Available:   it.Available,
				Requested:   it.Requested,
			})
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: "stock insuficiente para una o más líneas",
			Detail:  detail,
		})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrVariantNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "transición de estado no permitida"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// optional convierte "" en nil (talla/color "cualquiera").
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		Total:     o.Total.StringFixed(2),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
