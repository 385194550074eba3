package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/FluidXR/wearctl/internal/config"
	"github.com/FluidXR/wearctl/internal/journal"
	"github.com/FluidXR/wearctl/internal/logfields"
	"github.com/FluidXR/wearctl/internal/packages"

	"github.com/spf13/cobra"
)

type batchFunc func(context.Context, packages.Runner, []string, packages.Observer) []packages.Result

// withJournal opens the journal and a connected watch for fn.
func withJournal(ctx context.Context, fn func(*journal.DB, *watchSession) error) error {
	db, err := journal.Open(config.ConfigDir())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer db.Close()

	w, err := connectWatch(ctx)
	if err != nil {
		return err
	}
	defer w.Close()
	return fn(db, w)
}

// batchTarget is the connected watch a batch runs against.
type batchTarget interface {
	packages.Runner
	Serial() string
	Name() string
}

// runBatch applies op to pkgs and records every outcome in the journal. A
// package only counts as done when the package manager reports the new state.
// It fails if any package failed, after all of them were attempted.
func runBatch(ctx context.Context, db *journal.DB, w batchTarget, pkgs []string, op batchFunc) error {
	failed := 0
	observe := func(action string, res packages.Result) {
		err := res.Err
		if err == nil {
			err = packages.Confirm(action, res.Output)
		}
		ok := err == nil
		recorder.IncPackageOperation(action, ok)

		detail := res.Output
		if ok {
			fmt.Printf("  ✓ %s\n", res.Package)
		} else {
			failed++
			if res.Err != nil || detail == "" {
				detail = err.Error()
			}
			fmt.Fprintf(os.Stderr, "  ✗ %s: %s\n", res.Package, describeError(err))
		}
		if _, err := db.Record(w.Serial(), res.Package, action, ok, detail); err != nil {
			slog.Warn("Could not record package operation", logfields.Package(res.Package), logfields.Action(action), logfields.Error(err))
		}
	}

	results := op(ctx, w, pkgs, observe)
	fmt.Printf("\n%s: %d succeeded, %d failed\n", w.Name(), len(results)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d packages failed", failed, len(results))
	}
	return nil
}

var disableCmd = &cobra.Command{
	Use:   "disable [package...]",
	Short: "Disable packages on the watch (default: the configured package list)",
	Long: `Disables each package for the primary user. A failure on one package does not
stop the others. With no arguments the packages listed in the config are used.`,
	PersistentPreRunE: requireDeps(),
	RunE: func(cmd *cobra.Command, args []string) error {
		pkgs := args
		if len(pkgs) == 0 {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			pkgs = cfg.Packages
		}
		if len(pkgs) == 0 {
			return fmt.Errorf("no packages given and none configured; add some with 'wearctl config add-package'")
		}
		return withJournal(cmd.Context(), func(db *journal.DB, w *watchSession) error {
			fmt.Printf("Disabling %d packages on %s...\n", len(pkgs), w.Name())
			return runBatch(cmd.Context(), db, w, pkgs, packages.DisableAll)
		})
	},
}

var enableCmd = &cobra.Command{
	Use:               "enable <package...>",
	Short:             "Re-enable packages on the watch",
	Args:              cobra.MinimumNArgs(1),
	PersistentPreRunE: requireDeps(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(cmd.Context(), func(db *journal.DB, w *watchSession) error {
			fmt.Printf("Enabling %d packages on %s...\n", len(args), w.Name())
			return runBatch(cmd.Context(), db, w, args, packages.EnableAll)
		})
	},
}

var disabledCmd = &cobra.Command{
	Use:               "disabled",
	Short:             "List disabled packages on the watch",
	PersistentPreRunE: requireDeps(),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := connectWatch(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		out, err := packages.ListDisabled(cmd.Context(), w)
		if err != nil {
			return err
		}
		names := packages.ParseList(out)
		if len(names) == 0 {
			fmt.Println("No disabled packages.")
			return nil
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Re-enable every package wearctl disabled on the watch",
	Long: `Looks up the packages the journal records as disabled by wearctl on the
connected watch and enables them again.`,
	PersistentPreRunE: requireDeps(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(cmd.Context(), func(db *journal.DB, w *watchSession) error {
			pkgs, err := db.DisabledPackages(w.Serial())
			if err != nil {
				return err
			}
			if len(pkgs) == 0 {
				fmt.Printf("Nothing to restore on %s.\n", w.Name())
				return nil
			}
			fmt.Printf("Enabling %d packages on %s...\n", len(pkgs), w.Name())
			return runBatch(cmd.Context(), db, w, pkgs, packages.EnableAll)
		})
	},
}

func init() {
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disabledCmd)
	rootCmd.AddCommand(restoreCmd)
}
