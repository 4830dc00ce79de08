package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DukeRupert/gascert/internal"
	"github.com/DukeRupert/gascert/internal/email"
	"github.com/DukeRupert/gascert/internal/handler"
	"github.com/DukeRupert/gascert/internal/metrics"
	"github.com/DukeRupert/gascert/internal/middleware"
	"github.com/DukeRupert/gascert/internal/repository"
	"github.com/DukeRupert/gascert/internal/service"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize template renderer
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		TemplatesDir: "web/templates",
		Logger:       logger,
		IsDev:        cfg.Env == "development",
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}

	// Initialize services
	adminService := service.NewAdminService(cfg.AdminUsername, cfg.AdminPassword, cfg.SessionDuration, logger)
	leadService := service.NewLeadService(repo, logger)
	bookingService := service.NewBookingService(repo, logger)

	// Quote email delivery: SMTP when configured, mailto fallback otherwise
	var quoteEmailService email.QuoteEmailService
	if cfg.MailConfigured() {
		quoteEmailService, err = email.NewSMTPQuoteEmailService(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		}, cfg.BaseURL, "web/templates/email", logger)
		if err != nil {
			return fmt.Errorf("email service initialization failed: %w", err)
		}
		logger.Info("Quote email delivery enabled", "host", cfg.SMTPHost)
	} else {
		quoteEmailService = email.NotConfiguredQuoteEmailService{}
		logger.Warn("SMTP not configured; quote emails fall back to mailto links")
	}

	// Initialize middleware
	isSecure := cfg.Env != "development"
	authMw := middleware.NewAuthMiddleware(adminService, logger, isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(adminService, renderer, logger, isSecure)
	intakeHandler := handler.NewIntakeHandler(leadService, renderer, logger, isSecure)
	adminHandler := handler.NewAdminHandler(
		leadService,
		bookingService,
		quoteEmailService,
		renderer,
		logger,
		cfg.BaseURL,
		cfg.MailConfigured(),
		isSecure,
	)
	completionHandler := handler.NewCompletionHandler(bookingService, renderer, logger, isSecure)

	// Create router and register routes
	mux := http.NewServeMux()

	// Static files
	staticFS := http.FileServer(http.Dir("web/static"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFS))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics (basic auth, skipped by request logging)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Public routes
	mux.HandleFunc("GET /{$}", intakeHandler.ShowForm)
	mux.HandleFunc("POST /leads", intakeHandler.CreateLead)
	mux.HandleFunc("GET /thank-you", intakeHandler.ShowThankYou)

	mux.Handle("GET /login", authMw.WithAdmin(http.HandlerFunc(authHandler.ShowLogin)))
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("POST /logout", authHandler.Logout)

	mux.HandleFunc("GET /complete-booking/{token}", completionHandler.Show)
	mux.HandleFunc("POST /complete-booking/{token}", completionHandler.Complete)

	// Admin routes
	requireAdmin := middleware.Stack(authMw.WithAdmin, authMw.RequireAdmin)
	mux.Handle("GET /admin", requireAdmin(http.HandlerFunc(adminHandler.Dashboard)))
	mux.Handle("POST /admin/quote", requireAdmin(http.HandlerFunc(adminHandler.ApplyQuote)))
	mux.Handle("POST /admin/delete", requireAdmin(http.HandlerFunc(adminHandler.DeleteLeads)))
	mux.Handle("POST /admin/leads/{id}/email", requireAdmin(http.HandlerFunc(adminHandler.SendQuoteEmail)))
	mux.Handle("GET /admin/bookings/{id}", requireAdmin(http.HandlerFunc(adminHandler.ShowBooking)))

	// Outermost middleware applies to every route
	root := middleware.Stack(
		securityMw.Handler,
		loggingMw.Handler,
		metrics.Middleware,
	)(mux)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
