package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/stocktrack/stocktrack-backend/internal/inventory/handler"
	"github.com/stocktrack/stocktrack-backend/internal/inventory/notify"
	"github.com/stocktrack/stocktrack-backend/internal/inventory/repository"
	"github.com/stocktrack/stocktrack-backend/internal/inventory/scan"
	"github.com/stocktrack/stocktrack-backend/internal/inventory/service"
	"github.com/stocktrack/stocktrack-backend/pkg/config"
	"github.com/stocktrack/stocktrack-backend/pkg/database"
	"github.com/stocktrack/stocktrack-backend/pkg/dispatch"
	"github.com/stocktrack/stocktrack-backend/pkg/httputil"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
	"github.com/stocktrack/stocktrack-backend/pkg/messaging"
)

func main() {
	cfg, err := config.Load("inventory-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("inventory-service", cfg.Server.Environment)
	log.Info().Msg("starting inventory service")

	// Open the store; migrations run on open
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	// Single-writer dispatch loop; every mutation funnels through it
	loop := dispatch.New(log)
	loop.Start()
	defer loop.Stop()

	// Notification transport: AMQP when a broker is configured, log-only
	// otherwise. Alert delivery failures never block a scan either way.
	var (
		transport notify.Transport
		rmq       *messaging.RabbitMQ
		publisher *messaging.Publisher
	)
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		transport, err = notify.NewAMQPTransport(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create AMQP transport")
		}
		publisher, err = messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "inventory-service", log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	} else {
		transport = notify.NewLogTransport(log)
	}

	// Repositories
	itemRepo := repository.NewItemRepository(db)
	tagRepo := repository.NewTagRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)

	// Services
	inventoryService := service.NewInventoryService(db, loop, itemRepo, tagRepo, movementRepo, log)
	biddingService := service.NewBiddingService(db, loop, supplierRepo, publisher, log)
	reportService := service.NewReportService(itemRepo, movementRepo, log)
	transferService := service.NewTransferService(inventoryService, log)
	alertEngine := service.NewAlertEngine(itemRepo, movementRepo, transport, cfg.Alerts.Destination, log)

	// Scan coordinator with simulated collaborators
	coordinator := scan.NewCoordinator(
		loop,
		inventoryService,
		&scan.TextDecoder{},
		scan.NewSimulatedRFIDReader([]string{"RF-1001", "RF-1002", "RF-1003"}, 2*time.Second),
		cfg.Scan.Timeout,
		nil,
		log,
	)

	// Handlers
	itemHandler := handler.NewItemHandler(inventoryService, log)
	movementHandler := handler.NewMovementHandler(inventoryService, log)
	tagHandler := handler.NewTagHandler(inventoryService, log)
	supplierHandler := handler.NewSupplierHandler(biddingService, log)
	alertHandler := handler.NewAlertHandler(alertEngine, log)
	reportHandler := handler.NewReportHandler(reportService, log)
	scanHandler := handler.NewScanHandler(coordinator, log)
	transferHandler := handler.NewTransferHandler(transferService, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Periodic alert scans
	scheduler := service.NewAlertScheduler(alertEngine, cfg.Alerts.ScanInterval, cfg.Alerts.Threshold, log)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// Router
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(httputil.ActorMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Actor-ID", "X-Actor-Name"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":   "healthy",
			"service":  "inventory-service",
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemHandler.List)
			r.Post("/", itemHandler.Create)
			r.Get("/{id}", itemHandler.Get)
			r.Put("/{id}", itemHandler.Update)
			r.Delete("/{id}", itemHandler.Delete)
			r.Get("/{id}/stock", movementHandler.Stock)
			r.Get("/{id}/movements", movementHandler.List)
			r.Post("/{id}/movements", movementHandler.Append)
			r.Put("/{id}/tag", tagHandler.Bind)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/{tag}", tagHandler.Resolve)
			r.Delete("/{tag}", tagHandler.Unbind)
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", supplierHandler.List)
			r.Post("/", supplierHandler.Create)
			r.Get("/{id}", supplierHandler.Get)
			r.Put("/{id}/bid", supplierHandler.UpdateBid)
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", supplierHandler.ListContracts)
			r.Post("/approve-best", supplierHandler.ApproveBest)
		})

		r.Post("/alerts/scan", alertHandler.Scan)

		r.Get("/reports/summary", reportHandler.Summary)
		r.Get("/reports/distribution", reportHandler.Distribution)

		r.Route("/scan", func(r chi.Router) {
			r.Get("/", scanHandler.Status)
			r.Post("/barcode", scanHandler.StartBarcode)
			r.Post("/rfid", scanHandler.StartRFID)
			r.Delete("/", scanHandler.Cancel)
		})

		r.Post("/transfer/import", transferHandler.Import)
		r.Get("/transfer/export", transferHandler.Export)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
