package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/cache"
	"github.com/mamadbah2/optica/internal/config"
	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/repository/mongodb"
	"github.com/mamadbah2/optica/internal/repository/sheets"
	"github.com/mamadbah2/optica/internal/scheduler"
	"github.com/mamadbah2/optica/internal/server/handlers"
	"github.com/mamadbah2/optica/internal/server/router"
	"github.com/mamadbah2/optica/internal/service/catalog"
	"github.com/mamadbah2/optica/internal/service/dashboard"
	"github.com/mamadbah2/optica/internal/service/notify"
	"github.com/mamadbah2/optica/internal/service/payments"
	"github.com/mamadbah2/optica/internal/service/wizard"
	"github.com/mamadbah2/optica/pkg/clients/backend"
	whatsappclient "github.com/mamadbah2/optica/pkg/clients/whatsapp"
	"github.com/mamadbah2/optica/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	backendClient := backend.NewClient(cfg.Backend, logger.Named(baseLogger, "client.backend"))
	listCache := cache.New(cfg.Console.ListCacheTTL)
	paging := catalog.Paging{DefaultSize: cfg.Console.DefaultPageSize, MaxSize: cfg.Console.MaxPageSize}
	cat := catalog.New(backendClient, listCache, paging, logger.Named(baseLogger, "svc.catalog"))

	var (
		drafts    wizard.DraftStore = wizard.NewMemoryStore()
		summaries mongodb.SummaryRepository
	)
	if cfg.MongoDB.URI != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		drafts = mongoRepo
		summaries = mongoRepo
		baseLogger.Info("mongodb enabled, drafts are persisted")
	} else {
		baseLogger.Warn("MONGODB_URI missing, drafts are kept in memory")
	}

	var notifier wizard.Notifier
	if cfg.WhatsApp.Enabled() {
		notifier = notify.NewReceipts(whatsappclient.NewClient(cfg.WhatsApp), logger.Named(baseLogger, "svc.receipts"))
		baseLogger.Info("whatsapp receipts enabled")
	}

	var sheetRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	}

	wizardSvc := wizard.NewService(drafts, cat, notifier, logger.Named(baseLogger, "svc.wizard"))
	paymentSvc := payments.NewService(backendClient, cat, logger.Named(baseLogger, "svc.payments"))
	dashboardSvc := dashboard.NewService(backendClient, paymentSvc, cfg.Console.LowStockThreshold, cfg.Reporting.Location(), logger.Named(baseLogger, "svc.dashboard"))

	handlerLogger := logger.Named(baseLogger, "handlers")
	engine := router.New(router.Handlers{
		Clients:       handlers.NewResourceHandler[models.Client](cat.Clients, "Client", handlerLogger),
		Products:      handlers.NewResourceHandler[models.Product](cat.Products, "Product", handlerLogger),
		Brands:        handlers.NewResourceHandler[models.Brand](cat.Brands, "Brand", handlerLogger),
		Services:      handlers.NewResourceHandler[models.Service](cat.Services, "Service", handlerLogger),
		Prescriptions: handlers.NewPrescriptionHandler(cat.Prescriptions, handlerLogger),
		Sales: handlers.NewSalesHandler(
			handlers.NewResourceHandler[models.Sale](cat.Sales, "Sale", handlerLogger),
			paymentSvc,
			handlerLogger,
		),
		Wizard:    handlers.NewWizardHandler(wizardSvc, handlerLogger),
		Dashboard: handlers.NewDashboardHandler(dashboardSvc, handlerLogger),
	}, logger.Named(baseLogger, "router"))

	sched := scheduler.NewScheduler(cfg.Reporting, dashboardSvc, summaries, sheetRepo, logger.Named(baseLogger, "scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("backend", cfg.Backend.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	wizardSvc.Wait()
}
