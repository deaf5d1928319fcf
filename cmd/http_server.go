package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/debtflow/collections/internal"
	"github.com/debtflow/collections/internal/card"
	cardPostgres "github.com/debtflow/collections/internal/card/postgres"
	"github.com/debtflow/collections/internal/core/events"
	"github.com/debtflow/collections/internal/debtor"
	debtorPostgres "github.com/debtflow/collections/internal/debtor/postgres"
	"github.com/debtflow/collections/internal/gateway"
	"github.com/debtflow/collections/internal/payment"
	paymentPostgres "github.com/debtflow/collections/internal/payment/postgres"
	"github.com/debtflow/collections/internal/remittance"
	"github.com/debtflow/collections/internal/transport/rest"
	"github.com/debtflow/collections/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	eventBus := events.NewEventBus(deps.Logger)

	paymentRepo := paymentPostgres.NewPaymentRepository(deps.GormDB)
	cardRepo := cardPostgres.NewCardRepository(deps.GormDB)
	debtorRepo := debtorPostgres.NewDebtorRepository(deps.GormDB)

	cardService := card.NewCardService(cardRepo, deps.Logger)
	gatewayClient := gateway.NewClient(deps.Config.Gateway, deps.Logger)
	paymentService := payment.NewPaymentService(paymentRepo, cardService, gatewayClient, eventBus, deps.Logger)
	registryService := debtor.NewRegistryService(debtorRepo, deps.Logger)
	remittanceService := remittance.NewRemittanceService(paymentRepo, registryService, deps.Logger)

	paymentEventHandler := payment.NewEventHandler(deps.Logger)
	paymentEventHandler.RegisterEventHandlers(eventBus)

	paymentHandler := payment.NewHandler(paymentService, paymentEventHandler, deps.Logger)
	cardHandler := card.NewHandler(cardService, deps.Logger)
	remittanceHandler := remittance.NewHandler(remittanceService, deps.Logger)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Config.Server.AllowedOrigins, paymentHandler, cardHandler, remittanceHandler, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	router := chi.NewRouter()

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		GormDB: gormDB,
		Router: router,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
