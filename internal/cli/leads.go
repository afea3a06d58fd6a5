package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/usecase/list_leads"
)

func newLeadsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Inspect stored leads",
	}
	cmd.AddCommand(newLeadsListCmd(a))
	return cmd
}

func newLeadsListCmd(a *app) *cobra.Command {
	var input list_leads.Input

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print recent leads, newest first",
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

			out, err := list_leads.NewUseCase(leads).Execute(cmd.Context(), input)
			if err != nil {
				return err
			}
			renderLeads(cmd.OutOrStdout(), out.Leads)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Kind, "kind", "", "Only contact or quote leads")
	cmd.Flags().IntVar(&input.Limit, "limit", list_leads.DefaultLimit, "Rows to print")
	cmd.Flags().IntVar(&input.Offset, "offset", 0, "Rows to skip")
	return cmd
}

func renderLeads(w io.Writer, leads []entity.Lead) {
	if len(leads) == 0 {
		_, _ = fmt.Fprintln(w, "(no leads)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Created", "Kind", "Name", "Company", "Email", "Phone", "Service", "ID"})
	for _, lead := range leads {
		t.AppendRow(table.Row{
			lead.CreatedAt.UTC().Format(time.RFC3339),
			string(lead.Kind),
			lead.Name,
			orDash(lead.Company),
			orDash(lead.Email),
			orDash(lead.Phone),
			orDash(lead.ServiceType),
			lead.ID,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "Total", len(leads)})
	t.Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
