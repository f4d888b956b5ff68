package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/amat/amat/internal/config"
	"github.com/amat/amat/internal/domain/appointment"
	"github.com/amat/amat/internal/domain/patient"
	"github.com/amat/amat/internal/domain/practitioner"
	"github.com/amat/amat/internal/platform/auth"
	"github.com/amat/amat/internal/platform/db"
	"github.com/amat/amat/internal/platform/middleware"
)

const shutdownTimeout = 10 * time.Second

func main() {
	root := &cobra.Command{
		Use:   "amat-server",
		Short: "Appointment booking API server",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	var migrationsDir string
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema",
	}
	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(migrationsDir, true)
		},
	}
	migrateStatusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(migrationsDir, false)
		},
	}
	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "migrations directory")
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)

	root.AddCommand(serveCmd, migrateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	if cfg.JWTSecret == "" && cfg.IsDev() {
		// Dev convenience only. Tokens do not survive a restart.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generate dev secret: %w", err)
		}
		cfg.JWTSecret = hex.EncodeToString(buf)
		logger.Warn().Msg("JWT_SECRET not set, using an ephemeral development secret")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("database connection established")

	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL())

	practitionerRepo := practitioner.NewRepoPG(pool)
	practitionerSvc := practitioner.NewService(practitionerRepo, cfg.BcryptCost)

	patientRepo := patient.NewRepoPG(pool)
	patientSvc := patient.NewService(patientRepo, cfg.BcryptCost)

	appointmentRepo := appointment.NewRepoPG(pool)
	appointmentSvc := appointment.NewService(appointmentRepo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	requireToken := auth.RequireToken(issuer)
	requirePractitioner := auth.RequirePractitioner(practitionerSvc)
	requireDoctor := auth.RequirePractitioner(practitionerSvc, auth.RoleDoctor)

	patient.NewHandler(patientSvc, issuer, appointmentSvc).RegisterRoutes(e, requireToken)
	practitioner.NewHandler(practitionerSvc, issuer).RegisterRoutes(e, requireToken, requirePractitioner)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(e, requireToken, requirePractitioner, requireDoctor)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func runMigrate(dir string, apply bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	migrator := db.NewMigrator(pool, dir)
	if apply {
		applied, err := migrator.Up(ctx)
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		logger.Info().Int("applied", applied).Msg("migrations complete")
		return nil
	}

	statuses, err := migrator.Status(ctx)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		logger.Info().Int("version", s.Version).Str("name", s.Name).Str("state", state).Msg("migration")
	}
	return nil
}
