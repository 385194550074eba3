package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/FluidXR/wearctl/internal/metrics"

	"github.com/spf13/cobra"
)

// Version of wearctl.
const Version = "0.1.0"

var (
	flagDevice  string
	flagVerbose bool
	flagMetrics bool

	// recorder is set up by the root PersistentPreRun.
	recorder metrics.Recorder = metrics.NoopRecorder{}
	promRec  *metrics.PrometheusRecorder
)

var rootCmd = &cobra.Command{
	Use:     "wearctl",
	Short:   "Inspect and debloat Wear OS watches over ADB",
	Version: Version,
	Long: `wearctl connects to a Wear OS watch through the adb server, waits for the
debugging prompt to be accepted on the watch, then runs shell commands on it:
device stats, arbitrary commands, and enabling or disabling packages.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if flagMetrics {
			promRec = metrics.NewPrometheusRecorder(nil)
			recorder = promRec
		}
	},
}

func setupLogging() {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// requireDeps returns a PersistentPreRunE that sets up logging, checks for adb
// and prompts to nickname any new devices.
func requireDeps() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rootCmd.PersistentPreRun(cmd, args)
		if err := checkDeps(); err != nil {
			return err
		}
		checkNewDevices(cmd.Context())
		return nil
	}
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if promRec != nil {
		if werr := promRec.WriteText(os.Stderr); werr != nil {
			slog.Warn("Writing metrics failed", "error", werr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDevice, "device", "d", "", "Device serial or nickname (default: config, then the only attached device)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every command and its output")
	rootCmd.PersistentFlags().BoolVar(&flagMetrics, "metrics", false, "Print Prometheus metrics to stderr on exit")
}
