package main

import (
	"context"
	cryptorand "crypto/rand"
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

	"github.com/caretech/carechart/internal/config"
	"github.com/caretech/carechart/internal/domain/audit"
	"github.com/caretech/carechart/internal/domain/chart"
	"github.com/caretech/carechart/internal/domain/medication"
	"github.com/caretech/carechart/internal/domain/order"
	"github.com/caretech/carechart/internal/domain/resident"
	"github.com/caretech/carechart/internal/domain/user"
	"github.com/caretech/carechart/internal/platform/auth"
	"github.com/caretech/carechart/internal/platform/db"
	"github.com/caretech/carechart/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "carechart-server",
		Short: "Residential care charting API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the charting API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	secret := cfg.JWTSecret
	if secret == "" {
		// Development only; Validate rejects an empty secret elsewhere.
		// Tokens do not survive a restart with a generated secret.
		buf := make([]byte, 32)
		if _, err := cryptorand.Read(buf); err != nil {
			logger.Fatal().Err(err).Msg("failed to generate dev JWT secret")
		}
		secret = hex.EncodeToString(buf)
		logger.Warn().Msg("JWT_SECRET not set, using a generated development secret")
	}
	tokens := auth.NewTokenIssuer(secret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	e.GET("/health", db.HealthHandler(pool))

	// Wiring
	auditSvc := audit.NewService(audit.NewRepoPG(pool), logger)
	residentH := resident.NewHandler(resident.NewService(resident.NewRepoPG(pool)), auditSvc)
	medicationH := medication.NewHandler(medication.NewService(medication.NewRepoPG(pool)), auditSvc)
	orderH := order.NewHandler(order.NewService(order.NewRepoPG(pool)), auditSvc)
	chartH := chart.NewHandler(chart.NewService(chart.NewRepoPG(pool)), auditSvc)
	userH := user.NewHandler(user.NewService(user.NewRepoPG(pool), tokens), auditSvc)
	auditH := audit.NewHandler(auditSvc)

	// Sign-in and first-run setup work without a token.
	public := e.Group("/api/v1")
	public.Use(middleware.RateLimit(rateLimitCfg))
	userH.RegisterPublicRoutes(public)

	api := e.Group("/api/v1")
	api.Use(middleware.RateLimit(rateLimitCfg))
	if cfg.IsDev() {
		api.Use(auth.DevAuthMiddleware(tokens))
	} else {
		api.Use(auth.JWTMiddleware(tokens))
	}
	api.Use(middleware.RequestTimeout(30 * time.Second))

	residentH.RegisterRoutes(api)
	medicationH.RegisterRoutes(api)
	orderH.RegisterRoutes(api)
	chartH.RegisterRoutes(api)
	userH.RegisterRoutes(api)
	auditH.RegisterRoutes(api)

	// Serve with graceful shutdown.
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
