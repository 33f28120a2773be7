package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-catalog-ws/internal/config"
	"go-catalog-ws/internal/events"
	"go-catalog-ws/internal/handler"
	"go-catalog-ws/internal/middleware"
	"go-catalog-ws/internal/repository"
	"go-catalog-ws/internal/service"
	"go-catalog-ws/internal/ws"
	"go-catalog-ws/pkg/database"
	"go-catalog-ws/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	config.LoadEnv()
	cfg := config.Load()
	cfg.ApplyLogLevel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 2. Setup Database
	db, err := database.Connect(database.Options{
		Driver:      cfg.DBDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		LogLevel:    cfg.GormLogLevel(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload dir %s: %v", cfg.UploadDir, err)
	}

	// 3. Setup WebSocket Hub and event fan-out
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)
	publisher, closePublishers := setupPublishers(ctx, cfg, wsHub)
	defer closePublishers()

	// 4. Dependency Injection (Wiring Layers)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	productRepo := repository.NewProductRepo(db)
	userRepo := repository.NewUserRepo(db)

	catalogService := service.NewCatalogService(productRepo)
	authService := service.NewAuthService(userRepo, tokens)
	userService := service.NewUserService(userRepo)
	dashboardService := service.NewDashboardService(productRepo)

	if err := authService.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Warnf("Warning: Failed to seed admin user: %v", err)
	}

	var github handler.GitHubLogin
	if cfg.GitHubEnabled() {
		github = service.NewGitHubOAuth(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)
	}

	routes := handler.Routes{
		Products:    handler.NewProductHandler(catalogService, publisher, cfg.UploadDir),
		Auth:        handler.NewAuthHandler(authService, github, tokens.TTL()),
		Users:       handler.NewUserHandler(userService),
		Dashboard:   handler.NewDashboardHandler(dashboardService),
		RequireAuth: middleware.RequireAuth(tokens, userRepo),
	}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   cfg.AppName,
		BodyLimit: 16 * 1024 * 1024,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 6. Routes
	app.Static(handler.UploadsPrefix, cfg.UploadDir)
	app.Get("/healthz", healthz(db))
	routes.Mount(app)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(ctx, c) {
			return
		}
		defer wsHub.Leave(ctx, c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	stop()
	log.Info("Server exited")
}

// setupPublishers picks the event path. With Redis every instance relays the
// shared channel to its own hub, so handlers publish to Redis only.
func setupPublishers(ctx context.Context, cfg config.Config, hub *ws.Hub) (events.Publisher, func()) {
	var (
		pubs    events.Multi
		closers []func()
	)

	local := events.Publisher(hub)
	if cfg.RedisAddr != "" {
		client, err := events.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			log.Warnf("Redis disabled: %v", err)
		} else if err := events.NewRedisRelay(client, cfg.RedisChannel, hub).Start(ctx); err != nil {
			log.Warnf("Redis relay disabled: %v", err)
			client.Close()
		} else {
			local = events.NewRedisPublisher(client, cfg.RedisChannel)
			closers = append(closers, func() { client.Close() })
		}
	}
	pubs = append(pubs, local)

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewKafkaProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Warnf("Kafka disabled: %v", err)
		} else {
			kp := events.NewKafkaPublisher(producer, cfg.KafkaTopic)
			pubs = append(pubs, kp)
			closers = append(closers, func() {
				if err := kp.Close(); err != nil {
					log.Warnf("close kafka producer: %v", err)
				}
			})
		}
	}

	return pubs, func() {
		for _, c := range closers {
			c()
		}
	}
}

func healthz(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
