package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/adoption-service/internal/app"
)

func unbanSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unban-sweep",
		Short: "Lift every ban whose scheduled unban time has passed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), func(c *app.Container) error {
				lifted, err := c.Services.Users.UnbanDue(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "lifted %d ban(s)\n", lifted)
				return nil
			})
		},
	}
}
