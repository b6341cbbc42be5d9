package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/anchor_vault/internal/chain"
	"github.com/congo-pay/anchor_vault/internal/config"
	"github.com/congo-pay/anchor_vault/internal/ledger"
	"github.com/congo-pay/anchor_vault/internal/middleware"
	"github.com/congo-pay/anchor_vault/internal/notification"
	"github.com/congo-pay/anchor_vault/internal/vault"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	// Ledger overrides the backend chosen from DB; used by tests.
	Ledger ledger.Ledger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil && d.Ledger == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	ledgerBackend, err := buildLedger(d)
	if err != nil {
		return err
	}

	var notifier notification.Notifier = notification.NewLoggerNotifier(d.Logger)
	if d.Cache != nil {
		notifier = notification.Fanout{notifier, notification.NewRedisNotifier(d.Cache, "")}
	}

	program := vault.NewProgram(d.Cfg.ProgramID, d.Logger)
	runtime := chain.NewRuntime(ledgerBackend, d.Logger, program)
	vaultSvc := vault.NewService(runtime, program, notifier)
	vaultHandler := vault.NewHandler(vaultSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"program_id": d.Cfg.ProgramID.String(),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterVaultRoutes(api, vaultHandler, middleware.InitializeRateLimit(d.Cache, d.Cfg.InitRateLimit))
	RegisterAccountRoutes(api, ledgerBackend, d.Cfg.AirdropEnabled, d.Logger)

	return nil
}

func buildLedger(d Deps) (ledger.Ledger, error) {
	if d.Ledger != nil {
		return d.Ledger, nil
	}
	if d.DB == nil {
		return ledger.NewInMemory(ledger.SystemClock{}), nil
	}
	pg := ledger.NewPostgresLedger(d.DB, ledger.SystemClock{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pg.Migrate(ctx); err != nil {
		return nil, err
	}
	return pg, nil
}
