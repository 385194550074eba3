package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:               "run <command...>",
	Short:             "Run a shell command on the watch and print its output",
	Example:           `  wearctl run getprop ro.product.model`,
	Args:              cobra.MinimumNArgs(1),
	PersistentPreRunE: requireDeps(),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := connectWatch(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		out, err := w.RunCommand(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Print(out)
		if out != "" && !strings.HasSuffix(out, "\n") {
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
