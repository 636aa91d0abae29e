package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/BradenHooton/jobboard/internal/auth"
	"github.com/BradenHooton/jobboard/internal/background"
	"github.com/BradenHooton/jobboard/internal/config"
	"github.com/BradenHooton/jobboard/internal/database"
	"github.com/BradenHooton/jobboard/internal/handlers"
	middlewareCustom "github.com/BradenHooton/jobboard/internal/middleware"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/repositories"
	"github.com/BradenHooton/jobboard/internal/routes"
	"github.com/BradenHooton/jobboard/internal/services"
	"github.com/BradenHooton/jobboard/internal/views"
	pkgauth "github.com/BradenHooton/jobboard/pkg/auth"
	pkghttp "github.com/BradenHooton/jobboard/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("default_timezone", cfg.Board.DefaultTimezone.String()),
	)

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		err := database.Migrate(ctx, db.Pool, logger)
		cancel()
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	creditRepo := repositories.NewCreditRepository(db)
	referralRepo := repositories.NewReferralRepository(db)
	feedbackRepo := repositories.NewFeedbackRepository(db)
	statsRepo := repositories.NewStatsRepository(db)

	// Auth primitives
	tokenManager := auth.NewTokenManager(cfg.Session.Secret, cfg.Session.TTL)
	loginDelay := auth.NewLoginDelay(250*time.Millisecond, 100*time.Millisecond)
	cookies := auth.CookieConfig{
		Domain:   cfg.Session.CookieDomain,
		Secure:   cfg.Session.CookieSecure,
		SameSite: "lax",
	}

	// Optional AWS SES email
	var emailService services.EmailService
	if cfg.Email.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ses, err := services.NewAWSSESEmailService(ctx, cfg.Email.AWSRegion, cfg.Email.FromAddress, cfg.Server.PublicBaseURL, logger)
		cancel()
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
		emailService = ses
	} else {
		logger.Info("EMAIL_FROM not set, feedback responses will not be emailed")
	}

	dataValidator, err := services.NewApplicationDataValidator()
	if err != nil {
		logger.Error("failed to load application data schema", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	defaultLoc := cfg.Board.DefaultTimezone
	notificationService := services.NewNotificationService(notificationRepo, views.NewUnreadCache(cfg.Board.UnreadCacheTTL), logger)
	authService := services.NewAuthService(userRepo, sessionRepo, tokenManager, loginDelay, notificationService, logger)
	userService := services.NewUserService(userRepo, logger)
	referralService := services.NewReferralService(referralRepo, userRepo, cfg.Server.PublicBaseURL, logger)
	jobService := services.NewJobService(jobRepo, logger)
	reportService := services.NewReportService(reportRepo, jobRepo, notificationService, logger)
	applicationService := services.NewApplicationService(appRepo, jobRepo, userRepo, dataValidator, notificationService, defaultLoc, logger)
	creditService := services.NewCreditService(userRepo, appRepo, creditRepo, notificationService, defaultLoc, logger)
	feedbackService := services.NewFeedbackService(feedbackRepo, userRepo, notificationService, emailService, logger)
	adminService := services.NewAdminService(statsRepo, defaultLoc, logger)

	// Bootstrap first admin user if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(ctx, userRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService, cookies),
		Users:         handlers.NewUserHandler(userService, referralService),
		Jobs:          handlers.NewJobHandler(jobService),
		Reports:       handlers.NewReportHandler(reportService),
		Applications:  handlers.NewApplicationHandler(applicationService),
		Credits:       handlers.NewCreditHandler(creditService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Feedback:      handlers.NewFeedbackHandler(feedbackService),
		Admin:         handlers.NewAdminHandler(adminService),
	}, routes.Deps{
		Tokens:   tokenManager,
		Sessions: sessionRepo,
		Users:    userRepo,
		IPConfig: ipConfig,
		Limits: routes.Limits{
			Auth:   cfg.Board.AuthRatePerMinute,
			Apply:  cfg.Board.ApplyRatePerMinute,
			Report: cfg.Board.ReportRatePerMinute,
		},
	})

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","database":"up","connections":%d}`, db.Stats().TotalConns())
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupManager := background.NewCleanupManager(
		sessionRepo,
		notificationRepo,
		cfg.Board.NotificationRetention,
		logger,
		cfg.Session.CleanupInterval,
	)
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupManager.Stop()
	cleanupCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ensureAdminUser creates the first admin user if ADMIN_EMAIL and ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	_, err := userRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Username:     getEnvOr("ADMIN_USERNAME", "admin"),
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Role:         models.RoleAdmin,
	}
	if _, _, err := userRepo.Register(ctx, admin, ""); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
