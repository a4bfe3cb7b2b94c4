package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minimoda/minimoda-api/internal/application/auth"
	"github.com/minimoda/minimoda-api/internal/application/checkout"
	"github.com/minimoda/minimoda-api/internal/application/stock"
	"github.com/minimoda/minimoda-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	StockUC    *stock.StockUseCase
	CheckoutUC *checkout.CheckoutUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	staff := RequireRole(entity.RoleAdmin, entity.RoleSoporte)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Checkout (cualquier usuario autenticado crea pedidos; las transiciones
	// de estado son del personal de tienda)
	checkoutHandler := NewCheckoutHandler(deps.CheckoutUC)
	orders := protected.Group("/orders")
	orders.Post("/", checkoutHandler.CreateOrder)
	orders.Patch("/:id/status", staff, checkoutHandler.UpdateOrderStatus)

	// Stock (personal de tienda; los movimientos administrativos solo admin)
	stockHandler := NewStockHandler(deps.StockUC)
	stockGroup := protected.Group("/stock")
	stockGroup.Post("/movements", adminOnly, stockHandler.RegisterMovement)
	stockGroup.Get("/movements", staff, stockHandler.ListMovements)
	stockGroup.Get("/low", staff, stockHandler.LowStock)
	stockGroup.Get("/stats", staff, stockHandler.Stats)

	// Variantes de un producto (lectura de personal de tienda)
	protected.Get("/products/:id/variants", staff, stockHandler.VariantsByProduct)
}
