package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/siesta94/aioc-hospital-microservices/internal/config"
	"github.com/siesta94/aioc-hospital-microservices/internal/domain/identity"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/auth"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/db"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/server"
)

const serviceName = "login-service"

func main() {
	root := &cobra.Command{
		Use:   serviceName,
		Short: "Authentication and user administration service",
	}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd(serviceName, "migrations/login"))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := server.NewLogger(cfg.Env).With().Str("service", serviceName).Logger()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool, identity.Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	svc := identity.NewService(identity.NewRepoPG(pool), logger)
	if cfg.SeedDefaultUsers {
		if err := svc.SeedDefaults(ctx); err != nil {
			return fmt.Errorf("seed default users: %w", err)
		}
	}

	signer := auth.NewSigner(cfg.SecretKey, time.Duration(cfg.AccessTokenExpireMinutes)*time.Minute)
	verifier := auth.NewVerifier(cfg.SecretKey)
	// This service owns the users table, so tokens are checked against the
	// live user row instead of trusting the claims alone.
	authn := auth.Authenticate(verifier, auth.NewDirectoryResolver(svc))

	e := server.New(serviceName, cfg, logger)
	e.GET("/health", db.HealthHandler(pool))
	identity.NewHandler(svc, signer).RegisterRoutes(e, authn)

	return server.Run(e, cfg.Port, logger)
}
