package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/autocare/autocare-api/api/swagger"
	"github.com/autocare/autocare-api/internal/handler"
	"github.com/autocare/autocare-api/internal/repository"
	"github.com/autocare/autocare-api/internal/service"
	"github.com/autocare/autocare-api/pkg/cache"
	"github.com/autocare/autocare-api/pkg/config"
	"github.com/autocare/autocare-api/pkg/database"
	"github.com/autocare/autocare-api/pkg/database/migrations"
	"github.com/autocare/autocare-api/pkg/export"
	"github.com/autocare/autocare-api/pkg/jobs"
	"github.com/autocare/autocare-api/pkg/logger"
	"github.com/autocare/autocare-api/pkg/storage"
)

// @title AutoCare API
// @version 1.0.0
// @description Workshop backend for vehicles, repairs, spare parts and invoices.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	version = "dev"
	envFile string

	rootCmd = &cobra.Command{
		Use:   "autocare-api",
		Short: "AutoCare workshop API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	migrateCmd = &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Manage the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), args[0])
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("autocare-api %s (%s)\n", version, runtime.Version())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "path to the .env file")
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logr, nil
}

func migrate(ctx context.Context, direction string) error {
	cfg, logr, err := bootstrap()
	if err != nil {
		return err
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	runner, err := migrations.NewRunner(db.DB, logr)
	if err != nil {
		return err
	}
	switch direction {
	case "up":
		return runner.Up(ctx)
	case "down":
		return runner.Down(ctx)
	default:
		return runner.Status(ctx)
	}
}

func serve(ctx context.Context) error {
	cfg, logr, err := bootstrap()
	if err != nil {
		return err
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		runner, err := migrations.NewRunner(db.DB, logr)
		if err != nil {
			return err
		}
		if err := runner.Up(ctx); err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	} else if redisClient != nil {
		defer redisClient.Close()
	}

	files, err := storage.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.PublicPrefix)
	if err != nil {
		return err
	}

	metrics := service.NewMetricsService()
	images := service.NewImageService(files, cfg.Uploads.MaxBytes, logr)
	cleanup := jobs.NewQueue("image-cleanup", images.HandleCleanup, jobs.QueueConfig{
		Workers:    2,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	cleanup.Start(context.Background())
	images.UseCleanupQueue(cleanup)

	cacheRepo := repository.NewCacheRepository(redisClient, "autocare")
	app := wire(cfg, logr, db, cacheRepo, metrics, images)
	router := handler.NewRouter(handler.RouterDeps{Config: cfg, Logger: logr, Metrics: metrics, Auth: app.auth, Uploads: files}, app.handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		cleanup.Stop()
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// In-flight requests may still enqueue cleanups until Shutdown returns.
	shutdownErr := srv.Shutdown(shutdownCtx)
	if err := cleanup.StopContext(shutdownCtx); err != nil {
		logr.Warn("image cleanup queue not drained", zap.Error(err))
	}
	return shutdownErr
}

type application struct {
	auth     *service.AuthService
	handlers handler.Handlers
}

func wire(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, cacheRepo *repository.CacheRepository, metrics *service.MetricsService, images *service.ImageService) application {
	validate := validator.New()

	users := repository.NewUserRepository(db)
	vehicles := repository.NewVehicleRepository(db)
	repairs := repository.NewRepairRepository(db)
	serviceItems := repository.NewServiceItemRepository(db)
	spareParts := repository.NewSparePartRepository(db)
	categories := repository.NewCategoryRepository(db)
	invoices := repository.NewInvoiceRepository(db)

	listCache := service.NewCacheService(cacheRepo, metrics, cfg.Redis.CacheTTL, logr, cacheRepo.Enabled())

	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	exports := service.NewExportService(export.NewInvoicePDF(), logr)
	vehicleSvc := service.NewVehicleService(vehicles, users, images, validate, logr)
	invoiceSvc := service.NewInvoiceService(service.InvoiceServiceDeps{
		Invoices: invoices,
		Repairs:  repairs,
		Vehicles: vehicles,
		Users:    users,
		Services: serviceItems,
		Renderer: exports,
		Metrics:  metrics,
	}, validate, logr)

	return application{
		auth: authSvc,
		handlers: handler.Handlers{
			Auth:       handler.NewAuthHandler(authSvc),
			Users:      handler.NewUserHandler(service.NewUserService(users, validate, logr)),
			Vehicles:   handler.NewVehicleHandler(vehicleSvc),
			Repairs:    handler.NewRepairHandler(service.NewRepairService(repairs, vehicleSvc, images, validate, logr)),
			Services:   handler.NewServiceItemHandler(service.NewServiceItemService(serviceItems, repairs, spareParts, metrics, validate, logr)),
			SpareParts: handler.NewSparePartHandler(service.NewSparePartService(spareParts, categories, listCache, validate, logr)),
			Categories: handler.NewCategoryHandler(service.NewCategoryService(categories, spareParts, listCache, logr)),
			Invoices:   handler.NewInvoiceHandler(invoiceSvc),
			Ops:        handler.NewMetricsHandler(metrics, db, logr).WithCache(cacheRepo),
		},
	}
}
