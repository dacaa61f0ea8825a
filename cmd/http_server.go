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

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/request-management/internal"
	"github.com/frahmantamala/request-management/internal/auth"
	authPostgres "github.com/frahmantamala/request-management/internal/auth/postgres"
	"github.com/frahmantamala/request-management/internal/core/events"
	"github.com/frahmantamala/request-management/internal/notification"
	"github.com/frahmantamala/request-management/internal/request"
	requestPostgres "github.com/frahmantamala/request-management/internal/request/postgres"
	"github.com/frahmantamala/request-management/internal/transport/rest"
	"github.com/frahmantamala/request-management/pkg/logger"
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
	Config              *internal.Config
	DB                  *sqlx.DB
	GormDB              *gorm.DB
	Router              *chi.Mux
	Logger              *slog.Logger
	AuthHandler         *auth.Handler
	RequestHandler      *request.Handler
	NotificationHandler *notification.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

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
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.Config.Server.AllowedOrigins,
		deps.AuthHandler,
		deps.RequestHandler,
		deps.NotificationHandler,
		deps.Logger,
	)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	router := chi.NewRouter()
	eventBus := events.NewEventBus(appLogger)

	// Identity and tokens
	identityRepo := authPostgres.NewIdentityRepository(gormDB)
	tokenCodec := auth.NewJWTCodec(config.Security.TokenSecret, config.Security.TokenDuration)
	consentProvider := auth.NewGoogleProvider(config.OAuth)
	authService := auth.NewService(identityRepo, tokenCodec, consentProvider, appLogger)
	authHandler := auth.NewHandler(authService, config.Server.FrontendURL)

	// Request workflow
	requestRepo := requestPostgres.NewRequestRepository(gormDB)
	requestService := request.NewService(requestRepo, eventBus, appLogger)
	requestHandler := request.NewHandler(requestService)

	// Delegated mail
	delegate := notification.NewOAuthDelegate(consentProvider.TokenConfig(), config.OAuth.ExchangeTimeout, appLogger)
	mailer := notification.NewSMTPMailer(config.Mail.SMTPHost, config.Mail.SMTPPort, config.Mail.SendTimeout, appLogger)
	notificationService := notification.NewService(identityRepo, delegate, mailer, config.Mail.SendTimeout, appLogger)
	notificationHandler := notification.NewHandler(notificationService)

	// Lifecycle mails ride on the event bus so workflow writes never
	// wait on (or roll back for) delivery.
	notificationEventHandler := notification.NewEventHandler(notificationService, appLogger)
	notificationEventHandler.RegisterEventHandlers(eventBus)

	return &Dependencies{
		Config:              config,
		Logger:              appLogger,
		DB:                  db,
		GormDB:              gormDB,
		Router:              router,
		AuthHandler:         authHandler,
		RequestHandler:      requestHandler,
		NotificationHandler: notificationHandler,
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

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
