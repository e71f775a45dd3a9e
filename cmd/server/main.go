/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the absence engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load YAML configuration
  2. Build the structured logger
  3. Initialize SQLite store
  4. Wire domain services (accounts, applications, sick notes,
     departments, overtime, mail, calendar sync)
  5. Start the sick pay watch
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to the YAML configuration file (default: config.yaml)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sick pay watch
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with an explicit configuration file
  ./server -config=./deploy/config.yaml

ENVIRONMENT:
  ABSENCE_SIGN_SECRET  Overrides sign.secret
  ABSENCE_DB_PATH      Overrides database.path
  ABSENCE_MAIL_SENDER  Overrides mail.sender_address

SEE ALSO:
  - config/config.go: Configuration keys and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/harborhq/absence-engine/account"
	"github.com/harborhq/absence-engine/api"
	"github.com/harborhq/absence-engine/application"
	"github.com/harborhq/absence-engine/calsync"
	"github.com/harborhq/absence-engine/config"
	"github.com/harborhq/absence-engine/department"
	"github.com/harborhq/absence-engine/logging"
	"github.com/harborhq/absence-engine/mail"
	"github.com/harborhq/absence-engine/overtime"
	"github.com/harborhq/absence-engine/sicknote"
	"github.com/harborhq/absence-engine/sign"
	"github.com/harborhq/absence-engine/store/sqlite"
	"github.com/harborhq/absence-engine/workdays"
)

func main() {
	configPath := pflag.String("config", "config.yaml", "Path to configuration file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	signer, err := sign.NewHMACSigner(cfg.Sign.Secret)
	if err != nil {
		logger.Fatal("failed to build signer", zap.Error(err))
	}

	// Domain wiring. The store doubles as the holiday calendar, the
	// person directory and the calendar event mapping store.
	workDays := workdays.NewService(store)
	sender := mail.NewLogSender(logger)
	mailSvc := mail.NewService(sender, store,
		fmt.Sprintf("%s <%s>", cfg.Mail.SenderName, cfg.Mail.SenderAddress))
	calendar := calsync.NewService(calendarProvider(cfg.Calendar), store, logger)

	usage := application.NewUsageCalculator(store, workDays)
	vacationDays := account.NewVacationDaysService(usage)
	accounts := account.NewInteractionService(store, vacationDays, logger)

	departments := department.NewService(store, store, logger)
	applications := application.NewInteractionService(
		store, store, store, mailSvc, signer, accounts, departments, calendar, logger)
	sickNotes := sicknote.NewInteractionService(
		store, store, store, store, store, mailSvc, signer, workDays, calendar, logger)
	sickDays := sicknote.NewSickDaysService(
		store, workDays, cfg.SickNote.SickPayLimitDays, cfg.SickNote.NotificationDays)
	overtimeSvc := overtime.NewService(store, logger)

	handler := &api.Handler{
		Store:        store,
		Applications: applications,
		Accounts:     accounts,
		VacationDays: vacationDays,
		SickNotes:    sickNotes,
		SickDays:     sickDays,
		Departments:  departments,
		Overtime:     overtimeSvc,
		Logger:       logger,
	}

	watch := api.NewSickPayWatch(sickDays, sender, store, logger)
	watch.Start()
	defer watch.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// calendarProvider builds the configured calendar backend. Only the noop
// backend ships today; the provider seam exists so a CalDAV or Exchange
// client can slot in without touching the wiring above.
func calendarProvider(cfg config.CalendarConfig) calsync.Provider {
	switch cfg.Provider {
	default:
		return calsync.NoopProvider{}
	}
}
