// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/application/container"
	"github.com/AtRiskMedia/adgrant-leads/internal/application/services"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/caching"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/caching/cleanup"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/email"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/export"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/security"
	"github.com/AtRiskMedia/adgrant-leads/internal/presentation/http/server"
	"github.com/AtRiskMedia/adgrant-leads/pkg/config"
	"github.com/gin-gonic/gin"
)

// Version is stamped at build time via -ldflags.
var Version = "1.0.0"

// NewLogger builds the channeled logger from LOG_* settings.
func NewLogger() (*logging.ChanneledLogger, error) {
	cfg := logging.DefaultLoggerConfig()
	cfg.DefaultLevel = logging.ParseLevel(config.LogLevel)
	cfg.JSONFormat = config.LogJSON
	cfg.LogDirectory = config.LogDir
	return logging.NewChanneledLogger(cfg)
}

// BuildContainer opens the lead store and wires every service. The returned
// closer must be called once the container is no longer used.
func BuildContainer(logger *logging.ChanneledLogger) (*container.Container, func() error, error) {
	repo, closer, err := OpenLeadStore(StoreOptionsFromConfig(), logger)
	if err != nil {
		return nil, nil, err
	}

	mailer := email.NewResendMailer(config.ResendAPIKey, config.EmailFrom, config.EmailFromName, logger).
		WithExpiresIn(services.HumanizeTTL(config.DownloadTokenTTL))
	if !mailer.Configured() {
		logger.Startup().Warn("RESEND_API_KEY not set, captures will return mailto fallback links")
	}

	jwtSecret := config.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = security.GenerateSecureKey(32)
		if err != nil {
			closer.Close()
			return nil, nil, fmt.Errorf("failed to generate admin signing key: %w", err)
		}
		logger.Startup().Warn("JWT_SECRET not set, admin sessions will not survive a restart")
	}
	if config.AdminPassword == "" {
		logger.Startup().Warn("ADMIN_PASSWORD not set, admin login is disabled")
	}

	var assembler services.Assembler = export.NewCampaignAssembler()
	var bundles *stores.BundlesStore
	if config.BundleCacheTTL > 0 {
		bundles = stores.NewBundlesStore(config.BundleCacheTTL)
		assembler = caching.NewCachingAssembler(assembler, bundles, logger)
	}

	appContainer := container.NewContainer(container.Dependencies{
		Logger:         logger,
		LeadRepository: repo,
		TokenCodec:     security.NewDownloadTokenCodec(config.DownloadTokenTTL),
		Mailer:         mailer,
		Assembler:      assembler,
		Bundles:        bundles,
		BaseURL:        config.BaseURL,
		Admin: services.AdminCredentials{
			Username:  config.AdminUsername,
			Password:  config.AdminPassword,
			JWTSecret: jwtSecret,
			TokenTTL:  config.AdminTokenTTL,
		},
		HTTP: container.HTTPSettings{
			Version:           Version,
			CORSOrigins:       config.CORSOrigins,
			AdminStaticDir:    config.AdminStaticDir,
			RateLimitRequests: config.RateLimitRequests,
			RateLimitWindow:   config.RateLimitWindow,
		},
	})

	return appContainer, closer.Close, nil
}

// Initialize performs the complete startup sequence and blocks until shutdown
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	log.Println("\033[32m" + `
  ▄▀█ █▀▄   █▀▀ █▀█ ▄▀█ █▄ █ ▀█▀   ▄▀█ █
  █▀█ █▄▀   █▄█ █▀▄ █▀█ █ ▀█  █    █▀█ █
` + "\033[97m" + `
  lead capture service
` + "\033[0m")

	// Step 1: Initialize logging
	log.Println("Initializing channeled logger...")
	logger, err := NewLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()
	logger.Startup().Info("Logger initialized - switching to channeled logging", "level", config.LogLevel)

	// Step 2: Open the lead store and create the container
	phaseStart := time.Now()
	appContainer, closeStore, err := BuildContainer(logger)
	if err != nil {
		logger.LogStartupPhase("container", time.Since(phaseStart), false, map[string]any{"error": err.Error()})
		return err
	}
	logger.LogStartupPhase("container", time.Since(phaseStart), true, nil)

	// Step 3: Start background cleanup worker
	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	cleanupWorker := cleanup.NewWorker(appContainer.Bundles, appContainer.LeadRepository, cleanup.NewConfig(), logger)
	go cleanupWorker.Start(ctx)

	// Step 4: Start HTTP server
	logger.Startup().Info("Starting HTTP server...")
	httpServer := server.New(server.ConfigFromEnv(), appContainer)

	// Step 5: Setup graceful shutdown
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port,
		"baseURL", config.BaseURL)

	// Wait for shutdown signal or server failure
	select {
	case <-gracefulShutdown:
		logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")
	case err := <-serverErr:
		if err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
			closeStore()
			return err
		}
	}

	shutdownStart := time.Now()

	// Cancel background tasks
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing lead store...")
	if err := closeStore(); err != nil {
		logger.Shutdown().Error("Error closing lead store", "error", err.Error())
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
