// warsha is a single-user bookkeeping CLI for construction-style projects:
// each project has a customer, workers and importers, and each of those can
// carry contracted assignments with partial payments against them.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"warsha/internal/cli"
	"warsha/internal/config"
	"warsha/internal/core"
	"warsha/internal/services"
)

var rootCmd = &cobra.Command{
	Use:           "warsha",
	Short:         "Project bookkeeping: assignments, payments and rollups",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withLedger loads env + config, sets up logging, opens the store and hands
// a ready ledger to the command. The store handle is sequential; every
// command runs start to finish on it and closes it.
func withLedger(fn func(ctx context.Context, cfg *config.Config, ledger *services.Ledger) error) error {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	cli.SetupLogger(cfg.SlogLevel())

	ledger, _, err := cli.OpenLedger(cfg.DBPath)
	if err != nil {
		return err
	}
	defer ledger.Close()

	return fn(context.Background(), cfg, ledger)
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

func parseEntityRef(kind string, id int64) (core.EntityRef, error) {
	ref := core.EntityRef{Kind: core.EntityKind(kind), ID: id}
	if err := ref.Validate(); err != nil {
		return core.EntityRef{}, fmt.Errorf("entity type must be worker, importer or customer: %w", err)
	}
	return ref, nil
}
