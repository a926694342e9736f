package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"warsha/internal/config"
	"warsha/internal/core"
	"warsha/internal/services"
)

var (
	workerProjectID   int64
	workerJob         string
	importerProjectID int64
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Manage project workers",
}

var workerAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a worker to a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			id, err := ledger.AddWorker(ctx, workerProjectID, args[0], workerJob)
			if err != nil {
				return err
			}
			fmt.Printf("worker %d created\n", id)
			return nil
		})
	},
}

var workerRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a worker",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "worker")
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			return ledger.RenameWorker(ctx, id, args[1])
		})
	},
}

var workerDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a worker, its assignments and their payments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "worker")
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			return ledger.DeleteWorker(ctx, id)
		})
	},
}

var workerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a project's workers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			workers, err := ledger.Workers(ctx, workerProjectID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tJOB")
			for _, wk := range workers {
				fmt.Fprintf(w, "%d\t%s\t%s\n", wk.ID, wk.Name, wk.Job)
			}
			return w.Flush()
		})
	},
}

var importerCmd = &cobra.Command{
	Use:   "importer",
	Short: "Manage project importers (suppliers)",
}

var importerAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add an importer to a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			id, err := ledger.AddImporter(ctx, importerProjectID, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("importer %d created\n", id)
			return nil
		})
	},
}

var importerRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename an importer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "importer")
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			return ledger.RenameImporter(ctx, id, args[1])
		})
	},
}

var importerDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an importer, its assignments and their payments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "importer")
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			return ledger.DeleteImporter(ctx, id)
		})
	},
}

var importerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a project's importers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			importers, err := ledger.Importers(ctx, importerProjectID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, imp := range importers {
				fmt.Fprintf(w, "%d\t%s\n", imp.ID, imp.Name)
			}
			return w.Flush()
		})
	},
}

// crew reports the cross-project identities the resolver computes.
var crewCmd = &cobra.Command{
	Use:   "crew",
	Short: "Cross-project reports grouped by identity",
}

var crewWorkersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Workers grouped by (name, job) across all projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			groups, err := services.NewResolver(ledger.Store()).WorkerGroups(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tJOB\tPROJECTS\tASSIGNED\tPAID\tREMAINING")
			for _, g := range groups {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					g.Name, g.Job, joinProjectNames(g.Projects),
					core.FormatAmount(g.TotalAssigned),
					core.FormatAmount(g.TotalPaid),
					core.FormatAmount(g.TotalRemaining))
			}
			return w.Flush()
		})
	},
}

var crewImportersCmd = &cobra.Command{
	Use:   "importers",
	Short: "Importers grouped by name across all projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			groups, err := services.NewResolver(ledger.Store()).ImporterGroups(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGOODS\tPROJECTS\tASSIGNED\tPAID\tREMAINING")
			for _, g := range groups {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					g.Name, strings.Join(g.Goods, ", "), joinProjectNames(g.Projects),
					core.FormatAmount(g.TotalAssigned),
					core.FormatAmount(g.TotalPaid),
					core.FormatAmount(g.TotalRemaining))
			}
			return w.Flush()
		})
	},
}

func joinProjectNames(refs []core.ProjectRef) string {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return strings.Join(names, ", ")
}

func init() {
	workerAddCmd.Flags().Int64Var(&workerProjectID, "project", 0, "owning project id")
	workerAddCmd.MarkFlagRequired("project")
	workerAddCmd.Flags().StringVar(&workerJob, "job", "", "worker's job label")
	workerListCmd.Flags().Int64Var(&workerProjectID, "project", 0, "owning project id")
	workerListCmd.MarkFlagRequired("project")
	workerCmd.AddCommand(workerAddCmd, workerRenameCmd, workerDeleteCmd, workerListCmd)

	importerAddCmd.Flags().Int64Var(&importerProjectID, "project", 0, "owning project id")
	importerAddCmd.MarkFlagRequired("project")
	importerListCmd.Flags().Int64Var(&importerProjectID, "project", 0, "owning project id")
	importerListCmd.MarkFlagRequired("project")
	importerCmd.AddCommand(importerAddCmd, importerRenameCmd, importerDeleteCmd, importerListCmd)

	crewCmd.AddCommand(crewWorkersCmd, crewImportersCmd)
	rootCmd.AddCommand(workerCmd, importerCmd, crewCmd)
}
