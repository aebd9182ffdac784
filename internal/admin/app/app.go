package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/peakform/peakform/internal/admin/http"
	"github.com/peakform/peakform/internal/admin/service"
	"github.com/peakform/peakform/internal/admin/storage"
	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/internal/admin/store/drivers/sqlite"
	"github.com/peakform/peakform/pkg/cryptox"
	"github.com/peakform/peakform/pkg/jwtx"
	"github.com/peakform/peakform/pkg/mailx"
	"github.com/peakform/peakform/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the admin service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	avatars *storage.AvatarStore
	signer  *jwtx.HS256
	mailer  mailx.Mailer

	authService         *service.AuthService
	registerService     *service.RegisterService
	inviteService       *service.InviteService
	userService         *service.UserService
	exportService       *service.ExportService
	coachService        *service.CoachService
	customerService     *service.CustomerService
	profileService      *service.ProfileService
	mfaService          *service.MFAService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "admin-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	signer, err := jwtx.NewHS256([]byte(cfg.JWTSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.signer = signer

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	avatars, err := storage.NewAvatarStore(cfg.AvatarDir)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.avatars = avatars

	if cfg.SendGridAPIKey != "" {
		app.mailer = mailx.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFromAddr)
	} else {
		app.logger.Warn("SENDGRID_API_KEY not set, invitation emails will only be logged")
		app.mailer = &mailx.LogMailer{Logger: app.logger}
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	ctx := context.Background()
	if err := app.bootstrapService.EnsureAdmin(
		ctx,
		app.cfg.BootstrapAdminName,
		app.cfg.BootstrapAdminEmail,
		app.cfg.BootstrapAdminPassword,
	); err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	app.housekeepingService.Start()

	app.logger.Info("admin service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down admin service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("admin service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.signer,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}
	app.registerService = &service.RegisterService{Store: app.db}
	app.inviteService = &service.InviteService{
		Store:   app.db,
		Mailer:  app.mailer,
		BaseURL: app.cfg.BaseURL,
	}
	app.userService = &service.UserService{Store: app.db}
	app.exportService = &service.ExportService{Store: app.db}
	app.coachService = &service.CoachService{Store: app.db}
	app.customerService = &service.CustomerService{Store: app.db}
	app.profileService = &service.ProfileService{Store: app.db}
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: app.cfg.Issuer,
	}
	app.bootstrapService = &service.BootstrapService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		BuildVersion,
		app.db,
		app.avatars,
		app.logger,
	)

	router.AuthService = app.authService
	router.RegisterService = app.registerService
	router.InviteService = app.inviteService
	router.UserService = app.userService
	router.ExportService = app.exportService
	router.CoachService = app.coachService
	router.CustomerService = app.customerService
	router.ProfileService = app.profileService
	router.MFAService = app.mfaService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
