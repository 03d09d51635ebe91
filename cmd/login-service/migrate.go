package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siesta94/aioc-hospital-microservices/internal/config"
	"github.com/siesta94/aioc-hospital-microservices/internal/platform/db"
)

func migrateCmd(service, defaultDir string) *cobra.Command {
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
			version, err := db.MigrateUp(cfg.DatabaseURL, dir)
			if err != nil {
				return err
			}
			fmt.Printf("%s: database at version %d\n", service, version)
			return nil
		},
	}
	upCmd.Flags().String("dir", defaultDir, "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			version, dirty, err := db.MigrateVersion(cfg.DatabaseURL, dir)
			if err != nil {
				return err
			}
			state := "clean"
			if dirty {
				state = "dirty"
			}
			fmt.Printf("%s: version %d (%s)\n", service, version, state)
			return nil
		},
	}
	statusCmd.Flags().String("dir", defaultDir, "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}
