package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the leads table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(false); err != nil {
				return err
			}
			defer a.sync()
			if err := requireDatabase(a.cfg); err != nil {
				return err
			}

			leads, err := newLeadRepository(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			defer leads.Close()

			if err := leads.Migrate(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "leads table is up to date")
			return err
		},
	}
}
