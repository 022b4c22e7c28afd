package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Haianh25/quanlychungcu-sub001/internal/config"
	"github.com/Haianh25/quanlychungcu-sub001/internal/jobs"
	"github.com/Haianh25/quanlychungcu-sub001/internal/logger"
	"github.com/Haianh25/quanlychungcu-sub001/internal/observability"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository/postgres"
	"github.com/Haianh25/quanlychungcu-sub001/internal/scheduler"
	"github.com/Haianh25/quanlychungcu-sub001/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'generate-monthly-bills', 'run-penalty-escalation')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Billing Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	emailService := service.NewEmailService(
		cfg.SendGrid.APIKey,
		cfg.SendGrid.FromEmail,
		cfg.SendGrid.FromName,
	)

	billingService := service.NewBillingService(db, store, emailService, cfg.Billing)
	penaltyService := service.NewPenaltyService(db, store)

	jobServices := &jobs.Services{
		Billing: billingService,
		Penalty: penaltyService,
	}

	// Initialize Job Runner with metrics
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	jobRunner := jobs.NewJobRunner(db, store, jobServices, cfg, metrics)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "generate-monthly-bills":
		jobRunner.GenerateMonthlyBills()
	case "run-penalty-escalation":
		jobRunner.RunPenaltyEscalation()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - generate-monthly-bills\n")
		fmt.Printf("  - run-penalty-escalation\n")
		os.Exit(1)
	}
}
