package cmd

import (
	"fmt"

	"github.com/FluidXR/wearctl/internal/device"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:               "stats",
	Short:             "Show model, serial number, Android version and battery level",
	PersistentPreRunE: requireDeps(),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := connectWatch(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		stats, err := device.Query(cmd.Context(), w)
		if err != nil {
			return fmt.Errorf("get device stats from %s: %w", w.Name(), err)
		}
		fmt.Printf("Model:           %s\n", stats.Model)
		fmt.Printf("Serial number:   %s\n", stats.SerialNumber)
		fmt.Printf("Android version: %s\n", stats.PlatformVersion)
		fmt.Printf("Battery:         %s %%\n", stats.BatteryPercent)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
