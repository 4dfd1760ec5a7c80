package commands

import (
	"github.com/spf13/cobra"

	"livestream-pipeline/pkg/migrate"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return migrate.Up(cfg.Database.GetMigrateURL(), cfg.Database.MigrationsPath)
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the given number of migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return migrate.Down(cfg.Database.GetMigrateURL(), cfg.Database.MigrationsPath, steps)
		},
	}
	down.Flags().Int("steps", 1, "Number of versions to roll back")
	migrateCmd.AddCommand(down)
	return migrateCmd
}
