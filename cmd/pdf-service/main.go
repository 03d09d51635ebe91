package main

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/siesta94/aioc-hospital-microservices/internal/config"
	"github.com/siesta94/aioc-hospital-microservices/internal/domain/pdfgen"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/server"
)

const serviceName = "pdf-service"

func main() {
	root := &cobra.Command{
		Use:   serviceName,
		Short: "PDF rendering service",
	}
	root.AddCommand(serveCmd())

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
	logger := server.NewLogger(cfg.Env).With().Str("service", serviceName).Logger()

	builder := pdfgen.NewBuilder(pdfgen.Letterhead{
		Name:    cfg.HospitalName,
		Address: cfg.HospitalAddress,
		Phone:   cfg.HospitalPhone,
	})

	e := server.New(serviceName, cfg, logger)
	// No database behind this service, so health is unconditional.
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	pdfgen.NewHandler(builder, logger).RegisterRoutes(e)

	return server.Run(e, cfg.Port, logger)
}
