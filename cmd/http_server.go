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

	"github.com/frahmantamala/claim-management/internal"
	"github.com/frahmantamala/claim-management/internal/autoreview"
	autoreviewPostgres "github.com/frahmantamala/claim-management/internal/autoreview/postgres"
	"github.com/frahmantamala/claim-management/internal/claim"
	claimPostgres "github.com/frahmantamala/claim-management/internal/claim/postgres"
	"github.com/frahmantamala/claim-management/internal/core/events"
	"github.com/frahmantamala/claim-management/internal/identity"
	identityPostgres "github.com/frahmantamala/claim-management/internal/identity/postgres"
	"github.com/frahmantamala/claim-management/internal/module"
	modulePostgres "github.com/frahmantamala/claim-management/internal/module/postgres"
	"github.com/frahmantamala/claim-management/internal/transport"
	"github.com/frahmantamala/claim-management/internal/transport/rest"
	"github.com/frahmantamala/claim-management/internal/transport/swagger"
	"github.com/frahmantamala/claim-management/pkg/logger"

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
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

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

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	// A broken API document should stop the server before it serves anything
	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		return nil, err
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	identityService := identity.NewService(identityPostgres.NewRepository(gormDB), lg)

	moduleService := module.NewService(modulePostgres.NewModuleRepository(gormDB), lg)
	moduleHandler := module.NewHandler(transport.NewBaseHandler(lg), moduleService)

	claimRepo := claimPostgres.NewClaimRepository(gormDB)
	claimService := claim.NewService(claimRepo, identityService, moduleService, eventBus, lg)
	claimHandler := claim.NewHandler(claimService)

	engine := autoreview.NewEngine(claimService, lg)
	ruleService := autoreview.NewService(autoreviewPostgres.NewRuleRepository(gormDB), claimService, identityService, engine, eventBus, lg)
	ruleHandler := autoreview.NewHandler(ruleService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, identityService, claimHandler, ruleHandler, moduleHandler, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
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
