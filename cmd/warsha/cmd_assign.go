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

var (
	assignType        string
	assignEntityID    int64
	assignDescription string
	assignGood        string

	paymentAssignmentID int64
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Manage contracted assignments",
}

var assignAddCmd = &cobra.Command{
	Use:   "add AMOUNT DATE",
	Short: "Record a contracted amount for an entity (DATE is DD-MM-YYYY)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := core.ParseAmount(args[0])
		if err != nil {
			return fmt.Errorf("amount %q: %w", args[0], err)
		}
		date, err := core.ParseDate(args[1])
		if err != nil {
			return fmt.Errorf("date %q: %w", args[1], err)
		}
		ref, err := parseEntityRef(assignType, assignEntityID)
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			id, err := ledger.AddAssignment(ctx, ref, amount, date, assignDescription, assignGood)
			if err != nil {
				return err
			}
			fmt.Printf("assignment %d created\n", id)
			return nil
		})
	},
}

var assignDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an assignment and its payments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "assignment")
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			return ledger.DeleteAssignment(ctx, id)
		})
	},
}

var assignListCmd = &cobra.Command{
	Use:   "list",
	Short: "List an entity's assignments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := parseEntityRef(assignType, assignEntityID)
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			assignments, err := ledger.Assignments(ctx, ref)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tAMOUNT\tDATE\tDESCRIPTION\tGOOD")
			for _, a := range assignments {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					a.ID, core.FormatAmount(a.Amount), a.Date, a.Description, a.Good)
			}
			return w.Flush()
		})
	},
}

var paymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Manage payments against assignments",
}

var paymentAddCmd = &cobra.Command{
	Use:   "add AMOUNT DATE",
	Short: "Record a payment against an assignment (DATE is DD-MM-YYYY)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := core.ParseAmount(args[0])
		if err != nil {
			return fmt.Errorf("amount %q: %w", args[0], err)
		}
		date, err := core.ParseDate(args[1])
		if err != nil {
			return fmt.Errorf("date %q: %w", args[1], err)
		}
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			id, err := ledger.AddPayment(ctx, paymentAssignmentID, amount, date)
			if err != nil {
				return err
			}
			fmt.Printf("payment %d created\n", id)
			return nil
		})
	},
}

var paymentDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "payment")
		if err != nil {
			return err
		}
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			return ledger.DeletePayment(ctx, id)
		})
	},
}

var paymentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List an assignment's payments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(ctx context.Context, _ *config.Config, ledger *services.Ledger) error {
			payments, err := ledger.Payments(ctx, paymentAssignmentID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tAMOUNT\tDATE")
			for _, p := range payments {
				fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, core.FormatAmount(p.Amount), p.Date)
			}
			return w.Flush()
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{assignAddCmd, assignListCmd} {
		c.Flags().StringVar(&assignType, "type", "", "entity type: worker, importer or customer")
		c.Flags().Int64Var(&assignEntityID, "entity", 0, "entity id (project id when type is customer)")
		c.MarkFlagRequired("type")
		c.MarkFlagRequired("entity")
	}
	assignAddCmd.Flags().StringVar(&assignDescription, "description", "", "what the amount covers")
	assignAddCmd.Flags().StringVar(&assignGood, "good", "", "good label (importer assignments only)")
	assignCmd.AddCommand(assignAddCmd, assignDeleteCmd, assignListCmd)

	for _, c := range []*cobra.Command{paymentAddCmd, paymentListCmd} {
		c.Flags().Int64Var(&paymentAssignmentID, "assignment", 0, "assignment id")
		c.MarkFlagRequired("assignment")
	}
	paymentCmd.AddCommand(paymentAddCmd, paymentDeleteCmd, paymentListCmd)

	rootCmd.AddCommand(assignCmd, paymentCmd)
}
