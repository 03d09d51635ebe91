package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/siesta94/aioc-hospital-microservices/internal/config"
	"github.com/siesta94/aioc-hospital-microservices/internal/domain/patient"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/auth"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/db"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/server"
)

const serviceName = "management-service"

func main() {
	root := &cobra.Command{
		Use:   serviceName,
		Short: "Patient management service",
	}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd(serviceName, "migrations/management"))

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

	if cfg.InternalAPIKey == "" {
		logger.Warn().Msg("INTERNAL_API_KEY is not set; /internal endpoints are open")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool, patient.Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	svc := patient.NewService(patient.NewRepoPG(pool))

	verifier := auth.NewVerifier(cfg.SecretKey)
	authn := auth.Authenticate(verifier, &auth.ClaimsResolver{})

	e := server.New(serviceName, cfg, logger)
	e.GET("/health", db.HealthHandler(pool))
	patient.NewHandler(svc).RegisterRoutes(e, authn, cfg.InternalAPIKey)

	return server.Run(e, cfg.Port, logger)
}
