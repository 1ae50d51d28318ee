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

	"go.uber.org/zap"

	_ "billforge/docs"
	"billforge/internal/config"
	"billforge/internal/domain"
	"billforge/internal/email/noop"
	"billforge/internal/email/ses"
	"billforge/internal/extract"
	_ "billforge/internal/extract/claude"
	_ "billforge/internal/extract/openai"
	"billforge/internal/handler"
	"billforge/internal/logging"
	"billforge/internal/port"
	"billforge/internal/render"
	"billforge/internal/repository/postgres"
	"billforge/internal/router"
	"billforge/internal/service"
)

// @title BillForge API
// @version 1.0
// @description Invoice and quote drafting API with free-text extraction, entity matching, PDF rendering and email delivery.
// @BasePath /api/v1
// @securityDefinitions.apikey UserIDAuth
// @in header
// @name X-User-ID
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	docRepo := postgres.NewDocumentRepo(db)
	clientRepo := postgres.NewClientRepo(db)
	productRepo := postgres.NewProductRepo(db)

	// Extraction is optional: without a configured provider, manual document
	// creation keeps working and the extraction endpoints answer 503.
	extractor, err := extract.NewFromConfig(&cfg.Extract, logger)
	if err != nil {
		if !errors.Is(err, domain.ErrExtractionUnavailable) {
			return fmt.Errorf("failed to initialize extractor: %w", err)
		}
		logger.Warn("no extraction provider configured, free-text intake disabled")
		extractor = nil
	}

	renderer := render.NewRenderer(cfg.PDF)

	var sender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		sender, err = ses.NewSender(context.Background(), cfg.Email)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		sender = noop.NewSender(logger)
	}

	// Initialize services
	documentSvc := service.NewDocumentService(docRepo, clientRepo, productRepo, extractor, renderer, sender, logger)
	clientSvc := service.NewClientService(clientRepo, logger)
	productSvc := service.NewProductService(productRepo, logger)

	// Initialize handlers
	documentH := handler.NewDocumentHandler(documentSvc, logger)
	clientH := handler.NewClientHandler(clientSvc, logger)
	productH := handler.NewProductHandler(productSvc, logger)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, logger, documentH, clientH, productH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
