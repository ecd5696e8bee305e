package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookclub/internal/audit"
	"github.com/mrlokans/bookclub/internal/config"
	"github.com/mrlokans/bookclub/internal/database"
	auditrepo "github.com/mrlokans/bookclub/internal/database/audit"
	"github.com/mrlokans/bookclub/internal/database/maintenance"
	http_controllers "github.com/mrlokans/bookclub/internal/http"
	"github.com/mrlokans/bookclub/internal/logger"
	"github.com/mrlokans/bookclub/internal/scheduler"
	"github.com/mrlokans/bookclub/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// NewLogger builds the process logger from the log and environment settings.
func NewLogger(cfg *config.Config) *slog.Logger {
	return logger.New(logger.Config{
		Format:      cfg.Log.Format,
		Environment: cfg.Global.Environment,
		Level:       logger.ParseLevel(cfg.Log.Level),
	})
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, log *slog.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              cfg.HTTP.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("shutting down server", "signal", sig.String(), "timeout", timeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before the background work goes away.
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info("server exiting")
	return nil
}

// Run wires the database, audit trail, task queue and maintenance schedule
// into the router and serves it until the process is asked to stop.
func Run(cfg *config.Config, version string) error {
	log := NewLogger(cfg)
	log.Info("starting bookclub", "version", version, "environment", cfg.Global.Environment)

	if cfg.Global.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewDatabase(cfg.Database.Path, database.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", "error", err)
		}
	}()

	auditService := audit.NewService(auditrepo.NewRepository(db.DB), log)
	defer auditService.Wait()

	routerCfg := http_controllers.RouterConfig{
		Database:   db,
		Logger:     log,
		BcryptCost: cfg.Auth.BcryptCost,
		Version:    version,
	}
	if cfg.Audit.Enabled {
		routerCfg.Auditor = auditService
		routerCfg.AuditReader = auditService
	} else {
		log.Info("audit trail disabled")
	}

	var taskClient *tasks.Client
	var maintenanceScheduler *scheduler.MaintenanceScheduler
	var backgroundCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error("error closing task client", "error", err)
			}
		}()

		taskClient.Register(
			tasks.NewPruneAuditTrailQueue(auditService, log),
			tasks.NewPurgeDeletedQueue(maintenance.NewRepository(db.DB), auditService, log),
		)

		var backgroundCtx context.Context
		backgroundCtx, backgroundCancel = context.WithCancel(context.Background())
		defer backgroundCancel()
		go taskClient.Start(backgroundCtx)

		maintenanceScheduler = scheduler.NewMaintenanceScheduler(taskClient, scheduler.MaintenanceConfig{
			Schedule:            cfg.Maintenance.Schedule,
			AuditRetentionDays:  cfg.Audit.RetentionDays,
			PurgeRetentionHours: int(cfg.Maintenance.PurgeRetention / time.Hour),
			PurgeEnabled:        cfg.Maintenance.PurgeEnabled,
		}, log)
		if err := maintenanceScheduler.Start(backgroundCtx); err != nil {
			return fmt.Errorf("failed to start maintenance scheduler: %w", err)
		}
	} else {
		log.Info("task queue disabled, maintenance will not run")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if maintenanceScheduler != nil {
			maintenanceScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
			backgroundCancel()
		}
	}

	return Serve(router, cfg, log, onShutdown)
}
