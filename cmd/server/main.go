package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/yfgao/invoice-extract/internal/auth"
	"github.com/yfgao/invoice-extract/internal/classify"
	"github.com/yfgao/invoice-extract/internal/config"
	"github.com/yfgao/invoice-extract/internal/export"
	httpiface "github.com/yfgao/invoice-extract/internal/interfaces/http"
	"github.com/yfgao/invoice-extract/internal/invoice"
	"github.com/yfgao/invoice-extract/internal/pdftext"
	"github.com/yfgao/invoice-extract/internal/repository"
	"github.com/yfgao/invoice-extract/internal/service"
	"github.com/yfgao/invoice-extract/pkg/database"
	"github.com/yfgao/invoice-extract/pkg/utils"
)

func main() {
	// Load .env if present, then the YAML config.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting invoice extraction system",
		zap.String("version", "2.0.0"),
		zap.Int("port", cfg.Server.Port))

	if err := os.MkdirAll(cfg.Storage.UploadDir, 0755); err != nil {
		logger.Fatal("Failed to create upload directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db.DB, logger)
	invoiceRepo := repository.NewInvoiceRepository(db.DB, logger)
	configRepo := repository.NewConfigRepository(db.DB, logger)
	logRepo := repository.NewOperationLogRepository(db.DB, logger)

	// Core services.
	reader := pdftext.NewFitzReader(logger)
	extractor := invoice.NewExtractor(reader, logger)
	invoiceService := service.NewInvoiceService(extractor, invoiceRepo, logRepo, logger)
	batchMigrator := classify.NewMigrator(reader, cfg.Storage.OutputDir, logger)
	authService := auth.NewService(userRepo, cfg.Auth.Secret, cfg.Auth.TokenTTL, logger)
	exporter := export.NewExporter(logger)

	handlers := httpiface.NewHandlers(
		authService,
		invoiceService,
		batchMigrator,
		exporter,
		configRepo,
		logRepo,
		cfg.Storage.UploadDir,
		logger,
	)

	server := httpiface.NewServer(httpiface.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}
