package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pymepos-backend-go/internal/api"
	"pymepos-backend-go/internal/config"
	"pymepos-backend-go/internal/core"
	"pymepos-backend-go/internal/db"
	"pymepos-backend-go/internal/genai"
	"pymepos-backend-go/internal/middleware"
	"pymepos-backend-go/internal/pendingstore"
	"pymepos-backend-go/internal/webpay"
)

func main() {
	// --- 1. Load .env (development convenience) and Configuration ---
	// In deployed environments the variables come from the platform; a
	// missing .env file is not an error.
	_ = godotenv.Load()

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	// --- 2. Initialize Logger (Zap) ---
	var zapLogger *zap.Logger
	if strings.ToLower(appConfig.GinMode) == "release" {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 3. Initialize Firebase Admin SDK (Firestore and Auth clients) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	clients, err := db.NewClients(initCtx, appConfig)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()
	zapLogger.Info("Firebase Admin SDK (Firestore, Auth) initialized successfully.")

	// --- 4. Initialize Pending-Transaction Store ---
	pendingStore, err := buildPendingStore(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize pending-transaction store", zap.Error(err))
	}
	zapLogger.Info("Pending-transaction store initialized.", zap.String("driver", appConfig.PendingStoreDriver))

	// --- 5. Initialize Repositories and External Adapters ---
	accountRepo := db.NewFirestoreAccountRepository(clients.Firestore)
	businessRepo := db.NewFirestoreBusinessDataRepository(clients.Firestore)
	ticketRepo := db.NewFirestoreTicketRepository(clients.Firestore)
	identity := db.NewFirebaseIdentity(clients.Auth)

	webpayClient := webpay.NewClient(webpay.Config{
		BaseURL:      appConfig.WebpayBaseURL,
		CommerceCode: appConfig.WebpayCommerceCode,
		APIKey:       appConfig.WebpayAPIKey,
	})
	genaiClient := genai.NewClient(genai.Config{
		APIKey: appConfig.GeminiAPIKey,
		Model:  appConfig.GeminiModel,
	})
	zapLogger.Info("Repositories and gateway adapters initialized successfully.")

	// --- 6. Initialize Core Services ---
	checkoutService := core.NewCheckoutService(webpayClient, pendingStore, accountRepo, appConfig.WebpayReturnURL, zapLogger)
	advisoryService := core.NewAdvisoryService(accountRepo, genaiClient, zapLogger)
	deletionService := core.NewDeletionService(identity, accountRepo, businessRepo, appConfig.PurgeBatchSize, zapLogger)
	ticketService := core.NewTicketService(ticketRepo)
	zapLogger.Info("Core services initialized successfully.")

	// --- 7. Start the Scheduled Expiry Sweep ---
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	sweeper := core.NewSweeper(deletionService, accountRepo, appConfig.SweepInterval, zapLogger)
	go sweeper.Run(sweepCtx)
	zapLogger.Info("Expiry sweep started.", zap.Duration("interval", appConfig.SweepInterval))

	// --- 8. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	// --- 9. Apply Global Middleware (order matters) ---
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured.")
	}

	// --- 10. Setup API Routes ---
	checkoutHandler := api.NewCheckoutHandler(checkoutService, appConfig.ClientReceiptURL, zapLogger)
	advisoryHandler := api.NewAdvisoryHandler(advisoryService, zapLogger)
	ticketHandler := api.NewTicketHandler(ticketService, zapLogger)
	adminHandler := api.NewAdminHandler(deletionService, ticketService, zapLogger)
	adminMW := middleware.NewAdminMiddleware(clients.Auth, accountRepo)

	api.SetupRoutes(router, zapLogger, checkoutHandler, advisoryHandler, ticketHandler, adminHandler, adminMW)

	// --- 11. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 12. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	cancelSweep()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}

// buildPendingStore selects the pending-transaction store implementation
// named by PENDING_STORE_DRIVER.
func buildPendingStore(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (pendingstore.Store, error) {
	switch appConfig.PendingStoreDriver {
	case "memory", "":
		return pendingstore.NewMemoryStore(), nil
	case "file":
		if appConfig.PendingStorePath == "" {
			return nil, fmt.Errorf("PENDING_STORE_PATH is required for the file driver")
		}
		return pendingstore.NewFileStore(appConfig.PendingStorePath), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		store, err := pendingstore.NewRedisStore(ctx, client)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis at %s: %w", appConfig.RedisAddr, err)
		}
		logger.Info("Redis pending store connected", zap.String("addr", appConfig.RedisAddr))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown PENDING_STORE_DRIVER %q", appConfig.PendingStoreDriver)
	}
}
