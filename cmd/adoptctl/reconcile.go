package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/adoption-service/internal/app"
)

func reconcileCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Rebuild adopted-pet memberships from approved requests",
		Long: `Reconcile makes every user's adopted pets match the approved adoption
requests: missing memberships are added and memberships without an approved
request are removed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), func(c *app.Container) error {
				report, err := c.Services.Adoptions.Reconcile(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(report)
				}
				fmt.Fprintf(out, "added %d, removed %d\n", len(report.Added), len(report.Removed))
				for _, pair := range report.Added {
					fmt.Fprintf(out, "  + %s %s\n", pair.UserID, pair.PetID)
				}
				for _, pair := range report.Removed {
					fmt.Fprintf(out, "  - %s %s\n", pair.UserID, pair.PetID)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "print the report as JSON")
	return cmd
}
