package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"warsha/internal/config"
	"warsha/internal/core"
	"warsha/internal/export"
	"warsha/internal/services"
)

var exportDir string

var summaryCmd = &cobra.Command{
	Use:   "summary PROJECT_ID",
	Short: "Show a project's totals, crew summary and customer summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			p, err := ledger.Project(ctx, id)
			if err != nil {
				return err
			}
			crew, err := ledger.Rollup().CrewSummary(ctx, id)
			if err != nil {
				return err
			}
			customer, err := ledger.Rollup().CustomerSummary(ctx, id)
			if err != nil {
				return err
			}

			fmt.Printf("%s (project %d)\n", p.Name, p.ID)
			fmt.Printf("  total     assigned %s  paid %s  remaining %s\n",
				core.FormatAmount(p.TotalAssigned),
				core.FormatAmount(p.TotalPaid),
				core.FormatAmount(p.TotalAssigned-p.TotalPaid))
			fmt.Printf("  crew      assigned %s  paid %s\n",
				core.FormatAmount(crew.Assigned), core.FormatAmount(crew.Paid))
			fmt.Printf("  customer  assigned %s  paid %s\n",
				core.FormatAmount(customer.Assigned), core.FormatAmount(customer.Paid))
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a spreadsheet snapshot of the whole ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(ctx context.Context, cfg *config.Config, ledger *services.Ledger) error {
			dir := exportDir
			if dir == "" {
				dir = cfg.ExportDir
			}
			exporter := export.NewExporter(ledger.Store(), services.NewResolver(ledger.Store()))
			path, err := exporter.Snapshot(ctx, dir)
			if err != nil {
				return err
			}
			fmt.Printf("exported %s\n", path)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "out", "", "output directory (defaults to WARSHA_EXPORT_DIR)")
	rootCmd.AddCommand(summaryCmd, exportCmd)
}
