package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/siesta94/aioc-hospital-microservices/internal/config"
	"github.com/siesta94/aioc-hospital-microservices/internal/domain/scheduling"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/auth"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/db"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/registry"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/server"
)

const serviceName = "scheduling-service"

func main() {
	root := &cobra.Command{
		Use:   serviceName,
		Short: "Doctor and appointment scheduling service",
	}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd(serviceName, "migrations/scheduling"))

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

	if err := db.EnsureSchema(ctx, pool, scheduling.Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	patients, err := patientSource(cfg, logger)
	if err != nil {
		return err
	}

	svc := scheduling.NewService(
		scheduling.NewDoctorRepoPG(pool),
		scheduling.NewAppointmentRepoPG(pool),
		patients,
		logger,
	)

	verifier := auth.NewVerifier(cfg.SecretKey)
	authn := auth.Authenticate(verifier, &auth.ClaimsResolver{})

	e := server.New(serviceName, cfg, logger)
	e.GET("/health", db.HealthHandler(pool))
	scheduling.NewHandler(svc).RegisterRoutes(e, authn)

	return server.Run(e, cfg.Port, logger)
}

// patientSource builds the registry client against the management service,
// wrapped in the Redis read-through cache when REDIS_URL is configured.
func patientSource(cfg *config.Config, logger zerolog.Logger) (registry.Source, error) {
	timeout := time.Duration(cfg.InternalTimeoutSecs) * time.Second
	client := registry.NewClient(cfg.ManagementServiceURL, cfg.InternalAPIKey, timeout, logger)
	if cfg.RedisURL == "" {
		return client, nil
	}
	cache, err := registry.NewCache(client, cfg.RedisURL, logger)
	if err != nil {
		return nil, fmt.Errorf("init registry cache: %w", err)
	}
	return cache, nil
}
