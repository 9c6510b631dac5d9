package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/marketpulse/backend/internal/application/services"
	"github.com/marketpulse/backend/internal/bootstrap"
	"github.com/marketpulse/backend/internal/infrastructure/database"
	"github.com/marketpulse/backend/internal/interfaces/middleware"
	"github.com/marketpulse/backend/internal/interfaces/rest"
)

// setupRouter wires every HTTP route against the service graph.
func setupRouter(svcMgr *services.ServiceManager) *gin.Engine {
	router := gin.Default()

	healthHandler := rest.NewHealthHandler(svcMgr)
	webhookHandler := rest.NewWebhookHandler(svcMgr)
	adminHandler := rest.NewAdminHandler(svcMgr)

	router.GET("/", healthHandler.Home)
	router.GET("/health", healthHandler.Health)

	// Telegram pushes updates here; the secret check is a no-op when
	// TELEGRAM_WEBHOOK_SECRET is unset.
	router.POST("/webhook",
		middleware.VerifyWebhookSecret(svcMgr.Config.WebhookSecret),
		webhookHandler.Receive)

	api := router.Group("/api")
	{
		admin := api.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)

			protected := admin.Group("")
			protected.Use(middleware.RequireAdmin())
			{
				protected.POST("/trigger", adminHandler.Trigger)
				protected.POST("/set-webhook", adminHandler.SetWebhook)
				protected.GET("/webhook-info", adminHandler.WebhookInfo)
				protected.GET("/deliveries", adminHandler.Deliveries)
			}
		}
	}

	return router
}

func main() {
	// Line-buffer nothing: every log line must reach the platform's log
	// collector as soon as it is written.
	log.SetOutput(os.Stdout)

	// Load .env for local development (silently ignored when absent)
	_ = godotenv.Load()

	cfg, err := services.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("⚙️  Configuration loaded (chat %d)", cfg.ChatID)

	// Initialize database connection
	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	if err := bootstrap.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Initialize service manager
	svcMgr, err := services.NewServiceManager(db, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	log.Println("🔧 Service manager initialized")

	// Verify the bot token before accepting traffic
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	me, err := svcMgr.Telegram.BotInfo(startupCtx)
	if err != nil {
		log.Fatalf("Failed to verify bot credentials: %v", err)
	}
	log.Printf("🤖 Authenticated as @%s", me.Username)

	// Register the webhook when the platform told us our public URL
	if cfg.WebhookURL != "" {
		if err := svcMgr.Telegram.SetWebhook(startupCtx, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			log.Printf("⚠️  Warning: Failed to register webhook: %v", err)
		} else {
			log.Printf("🔗 Webhook registered: %s", cfg.WebhookURL)
		}
	} else {
		log.Println("⚠️  RENDER_EXTERNAL_URL not set, skipping webhook registration")
	}

	router := setupRouter(svcMgr)

	// Start scheduled job executor
	go svcMgr.Scheduler.Start()
	log.Println("⏰ Scheduler service started (30s polling)")

	// Announce the restart in the chat; a failure here is not fatal
	if err := svcMgr.Tasks.RunStartup(startupCtx); err != nil {
		log.Printf("⚠️  Warning: Failed to send startup message: %v", err)
	}

	port := strconv.Itoa(cfg.Port)
	log.Println("\n═══════════════════════════════════════════════════════════════════════════")
	log.Println("🚀 MarketPulse Bot Started Successfully")
	log.Println("═══════════════════════════════════════════════════════════════════════════")
	log.Printf("\n📍 Server:         http://localhost:%s", port)
	log.Printf("📨 Webhook:        http://localhost:%s/webhook", port)
	log.Printf("🔐 Admin API:      http://localhost:%s/api/admin", port)
	log.Printf("💚 Health check:   http://localhost:%s/health\n", port)

	// Create HTTP Server
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	svcMgr.Scheduler.Stop()
	log.Println("🛑 Scheduler stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	if err := db.Close(); err != nil {
		log.Printf("⚠️  Warning: Failed to close database: %v", err)
	}

	log.Println("Server exiting")
}
