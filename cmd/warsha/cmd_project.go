package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"warsha/internal/config"
	"warsha/internal/core"
	"warsha/internal/services"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			id, err := ledger.AddProject(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("project %d created\n", id)
			return nil
		})
	},
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			return ledger.RenameProject(ctx, id, args[1])
		})
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a project and everything it owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			return ledger.DeleteProject(ctx, id)
		})
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects with cached totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			projects, err := ledger.Projects(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tASSIGNED\tPAID\tREMAINING")
			for _, p := range projects {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					p.ID, p.Name,
					core.FormatAmount(p.TotalAssigned),
					core.FormatAmount(p.TotalPaid),
					core.FormatAmount(p.TotalAssigned-p.TotalPaid))
			}
			return w.Flush()
		})
	},
}

func init() {
	projectCmd.AddCommand(projectAddCmd, projectRenameCmd, projectDeleteCmd, projectListCmd)
	rootCmd.AddCommand(projectCmd)
}
