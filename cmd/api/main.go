package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/minimoda/minimoda-api/internal/application/auth"
	"github.com/minimoda/minimoda-api/internal/application/checkout"
	"github.com/minimoda/minimoda-api/internal/application/stock"
	"github.com/minimoda/minimoda-api/internal/application/sweep"
	"github.com/minimoda/minimoda-api/internal/infrastructure/notify"
	"github.com/minimoda/minimoda-api/internal/infrastructure/postgres"
	httpRouter "github.com/minimoda/minimoda-api/internal/interfaces/http"
	"github.com/minimoda/minimoda-api/pkg/config"
	"github.com/minimoda/minimoda-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	variantRepo := postgres.NewVariantRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	notifier := notify.NewRecorder(pool, log)

	stockUC := stock.NewStockUseCase(txRunner, variantRepo, movementRepo, productRepo, notifier, log, stock.Config{
		ReservationTimeout: cfg.Stock.ReservationTimeout,
	})
	checkoutUC := checkout.NewCheckoutUseCase(stockUC, variantRepo, productRepo, orderRepo, log)
	sweepUC := sweep.NewSweepUseCase(orderRepo, reservationRepo, productRepo, stockUC, notifier, log.Component("sweep"), sweep.Config{
		PendingExpiry: cfg.Stock.PendingExpiry,
		BatchSize:     cfg.Stock.SweepBatchSize,
	})
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Tareas periódicas: barrido de pedidos vencidos cada SweepInterval;
	// resumen de stock bajo y reconciliación libro → contadores una vez al día.
	runner := sweep.NewRunner(log.Component("sweep"))
	runner.Every(ctx, cfg.Stock.SweepInterval, "expirar-pedidos", func(ctx context.Context) error {
		_, err := sweepUC.ReleaseExpiredOrders(ctx)
		return err
	})
	runner.Every(ctx, cfg.Stock.SweepInterval, "reservas-huerfanas", func(ctx context.Context) error {
		_, err := sweepUC.ReleaseOrphanReservations(ctx)
		return err
	})
	runner.Every(ctx, 24*time.Hour, "resumen-stock-bajo", sweepUC.LowStockRollup)
	runner.Every(ctx, 24*time.Hour, "reconciliar-contadores", sweepUC.Reconcile)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Minimoda API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		StockUC:    stockUC,
		CheckoutUC: checkoutUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	cancel() // detiene las tareas periódicas

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
