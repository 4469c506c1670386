package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/adoption-service/internal/app"
)

func migrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), func(c *app.Container) error {
				if dir != "" {
					c.Config.Postgres.MigrationsDir = dir
				}
				applied, err := c.Migrate(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (defaults to POSTGRES_MIGRATIONS_DIR)")
	return cmd
}
