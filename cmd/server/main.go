package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pixelgate/internal/config"
	"pixelgate/internal/handlers"
	"pixelgate/internal/kvstore"
	"pixelgate/internal/logging"
	"pixelgate/internal/repository"
	"pixelgate/internal/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func Run(ctx context.Context) error {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Setup Logger
	logger := logging.New(cfg)

	// 3. Open Config Store
	backend, err := kvstore.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize config store: %w", err)
	}
	defer backend.Close()
	logger.Info("Config store ready", "driver", backend.Driver)

	// 4. Repositories
	pixels := repository.NewPixelRepository(backend.Store, logger)
	products := repository.NewProductRepository(backend.Store, pixels, logger)
	pages := repository.NewWhatsAppRepository(backend.Store, logger)
	appearance := repository.NewAppearanceRepository(backend.Store, logger)

	// 5. Initialize Services
	conversion := services.NewConversionClient(cfg, logger)
	if !conversion.Enabled() {
		logger.Warn("FB_PIXEL_API_TOKEN not set, server-side events are disabled")
	}
	mirror := services.NewEventMirror(conversion, pages, pixels, logger)
	auditService := services.NewAuditService(backend.DB, logger)
	if err := auditService.Migrate(); err != nil {
		return fmt.Errorf("audit migration failed: %w", err)
	}
	qrService := services.NewQRService()
	rateLimiter := services.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, logger)

	// 6. Initialize Handler
	h := handlers.NewHandler(cfg, logger, backend.Store, pixels, products, pages, appearance, mirror, auditService, qrService)

	// 7. Setup Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := h.SetupRouter(rateLimiter, "web/templates/*", "./web/static")

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Background Context for workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	auditDone := make(chan struct{})
	go func() {
		defer close(auditDone)
		auditService.Start(workerCtx)
	}()
	rateLimiter.StartCleanup(workerCtx, 10*time.Minute, 30*time.Minute)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Pending audit entries are flushed before the store closes.
	workerCancel()
	select {
	case <-auditDone:
	case <-shutdownCtx.Done():
	}

	logger.Info("Server exiting")
	return nil
}
