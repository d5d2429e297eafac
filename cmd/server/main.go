package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wheelsup-backend-go/internal/api"
	"wheelsup-backend-go/internal/cache"
	"wheelsup-backend-go/internal/config"
	"wheelsup-backend-go/internal/core"
	"wheelsup-backend-go/internal/crypto"
	"wheelsup-backend-go/internal/db"
	"wheelsup-backend-go/internal/events"
	"wheelsup-backend-go/internal/identity"
	"wheelsup-backend-go/internal/mailer"
	"wheelsup-backend-go/internal/middleware"
	"wheelsup-backend-go/internal/suggest"
)

func newLogger(appConfig *config.Config) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if appConfig.IsRelease() {
		cfg = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(appConfig.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func main() {
	// --- 1. Load configuration and build the logger ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}
	zapLogger, err := newLogger(appConfig)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Application configuration loaded successfully.")

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	// --- 2. Firebase Admin SDK (Firestore and Auth) ---
	initCtx, cancelInitCtx := context.WithTimeout(rootCtx, 15*time.Second)
	defer cancelInitCtx()
	clients, err := db.InitFirebase(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()

	sealer, err := crypto.NewSealer(appConfig.PIIEncryptionKey)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Invalid PII_ENCRYPTION_KEY", zap.Error(err))
	}

	// --- 3. Repositories ---
	rideRepo := db.NewFirestoreRideRepository(clients.Firestore, zapLogger)
	userRepo := db.NewFirestoreUserRepository(clients.Firestore, sealer)
	analyticsRepo := db.NewFirestoreAnalyticsRepository(clients.Firestore)
	zapLogger.Info("Repositories initialized successfully.")

	// --- 4. Supporting infrastructure ---
	publisher, err := events.NewFromConfig(appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize event publisher", zap.Error(err))
	}
	defer publisher.Close()

	var flags cache.Cache = cache.NewMemoryCache()
	if appConfig.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.RedisConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		}, zapLogger)
		if err != nil {
			zapLogger.Warn("Redis unavailable, visitor flags kept in memory", zap.Error(err))
		} else {
			flags = redisCache
		}
	}
	defer flags.Close()

	var welcome core.WelcomeMailer
	if appConfig.MailEnabled() {
		m, err := mailer.New(mailer.Config{
			Host:   appConfig.SMTPHost,
			Port:   appConfig.SMTPPort,
			User:   appConfig.SMTPUser,
			Pass:   appConfig.SMTPPass,
			Sender: appConfig.MailSender,
		})
		if err != nil {
			zapLogger.Warn("Welcome mail disabled", zap.Error(err))
		} else {
			welcome = m
		}
	}

	var generator suggest.Generator
	if appConfig.GeminiAPIKey != "" {
		g, err := suggest.NewGeminiGenerator(initCtx, appConfig.GeminiAPIKey, appConfig.GeminiModel)
		if err != nil {
			zapLogger.Warn("Gemini client unavailable, suggestions will use fallbacks", zap.Error(err))
		} else {
			generator = g
		}
	} else {
		zapLogger.Warn("GEMINI_API_KEY not set, suggestions will use fallbacks")
	}

	// --- 5. Services ---
	directory := identity.NewSeedDirectory()
	rideStore := core.NewRideStore(rideRepo, publisher, zapLogger)
	conversationStore := core.NewConversationStore(publisher, zapLogger)
	profileService := core.NewProfileService(userRepo, directory,
		core.StaticCodeVerifier{Code: appConfig.PhoneVerificationCode}, welcome, publisher, zapLogger)
	visitorCounter := core.NewVisitorCounter(analyticsRepo, flags, zapLogger)
	gateway := suggest.NewGateway(generator, zapLogger)
	zapLogger.Info("Core services initialized successfully.")

	go func() {
		if err := rideStore.Run(rootCtx); err != nil {
			zapLogger.Error("Ride live subscription ended with error", zap.Error(err))
		}
	}()

	// --- 6. Gin engine and middleware ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORSMiddleware(appConfig.ClientOrigins()))

	// Already checked by config validation.
	location, _ := appConfig.Location()

	authMW := middleware.NewAuthMiddleware(clients.Auth, directory, zapLogger)
	api.SetupRoutes(router, zapLogger, authMW, api.Services{
		Rides:          rideStore,
		Conversations:  conversationStore,
		Users:          profileService,
		Analytics:      visitorCounter,
		Suggestions:    gateway,
		Revoker:        clients.Auth,
		Directory:      directory,
		AllowedOrigins: appConfig.ClientOrigins(),
		Location:       location,
	})

	// --- 7. HTTP server with graceful shutdown ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	stopRoot()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	// Let queued welcome emails go out before the process exits.
	profileService.WaitForMail()
	zapLogger.Info("Server exiting gracefully.")
}
