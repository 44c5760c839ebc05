package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/claim-management/internal/autoreview"
	autoreviewPostgres "github.com/frahmantamala/claim-management/internal/autoreview/postgres"
	"github.com/frahmantamala/claim-management/internal/claim"
	claimPostgres "github.com/frahmantamala/claim-management/internal/claim/postgres"
	"github.com/frahmantamala/claim-management/internal/core/events"
	"github.com/frahmantamala/claim-management/internal/identity"
	identityPostgres "github.com/frahmantamala/claim-management/internal/identity/postgres"
	"github.com/frahmantamala/claim-management/pkg/logger"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers like the auto-review sweep.`,
}

// Auto-review sweep worker command
var autoReviewWorkerCmd = &cobra.Command{
	Use:   "autoreview",
	Short: "Start the auto-review sweep worker",
	Long:  `Periodically runs every reviewer's auto-review rules against open claims`,
	Run: func(cmd *cobra.Command, args []string) {
		startAutoReviewWorker()
	},
}

var (
	maxWorkers     int
	jobQueueSize   int
	workerPoolSize int
	sweepInterval  time.Duration
)

func startAutoReviewWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize orm: %v\n", err)
		os.Exit(1)
	}

	eventBus := events.NewEventBus(lg)
	identityService := identity.NewService(identityPostgres.NewRepository(gormDB), lg)
	claimService := claim.NewService(claimPostgres.NewClaimRepository(gormDB), identityService, nil, eventBus, lg)
	engine := autoreview.NewEngine(claimService, lg)
	ruleService := autoreview.NewService(autoreviewPostgres.NewRuleRepository(gormDB), claimService, identityService, engine, eventBus, lg)

	dispatcherConfig := autoreview.DispatcherConfig{
		MaxWorkers:     getIntFlag(maxWorkers, config.AutoReview.MaxWorkers),
		JobQueueSize:   getIntFlag(jobQueueSize, config.AutoReview.JobQueueSize),
		WorkerPoolSize: getIntFlag(workerPoolSize, config.AutoReview.WorkerPoolSize),
	}

	interval := config.AutoReview.SweepInterval
	if sweepInterval > 0 {
		interval = sweepInterval
	}

	lg.Info("starting auto-review worker",
		"max_workers", dispatcherConfig.MaxWorkers,
		"job_queue_size", dispatcherConfig.JobQueueSize,
		"worker_pool_size", dispatcherConfig.WorkerPoolSize,
		"sweep_interval", interval)

	dispatcher := autoreview.NewDispatcher(dispatcherConfig, ruleService, lg)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// first sweep immediately, then on every tick
	if err := dispatcher.Sweep(); err != nil {
		lg.Error("initial sweep failed", "error", err)
	}

	lg.Info("auto-review worker is running. Press Ctrl+C to stop.")

	for {
		select {
		case <-ticker.C:
			if err := dispatcher.Sweep(); err != nil {
				lg.Error("sweep failed", "error", err)
			}
		case sig := <-sigChan:
			lg.Info("received signal, shutting down auto-review worker", "signal", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			shutdownDone := make(chan struct{})
			go func() {
				dispatcher.Shutdown()
				close(shutdownDone)
			}()

			select {
			case <-shutdownDone:
				lg.Info("auto-review worker pool shutdown complete")
			case <-ctx.Done():
				lg.Warn("shutdown timeout reached, forcing exit")
			}

			if err := db.Close(); err != nil {
				lg.Error("database close error", "error", err)
			}
			return
		}
	}
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	autoReviewWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	autoReviewWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	autoReviewWorkerCmd.Flags().IntVar(&workerPoolSize, "worker-pool-size", 0, "Worker pool channel size (overrides config)")
	autoReviewWorkerCmd.Flags().DurationVar(&sweepInterval, "sweep-interval", 0, "Interval between sweeps (overrides config)")

	workerCmd.AddCommand(autoReviewWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
