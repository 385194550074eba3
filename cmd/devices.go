package cmd

import (
	"fmt"

	"github.com/FluidXR/wearctl/internal/adb"
	"github.com/FluidXR/wearctl/internal/config"
	"github.com/FluidXR/wearctl/internal/journal"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List attached watches and what wearctl has changed on them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		adbClient := adb.NewClient(cfg.ADBPath)
		devices, err := adbClient.Devices(cmd.Context())
		if err != nil {
			return err
		}

		if len(devices) == 0 {
			fmt.Println("No devices connected.")
			return nil
		}

		db, err := journal.Open(config.ConfigDir())
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer db.Close()

		for _, d := range devices {
			nickname := ""
			if dc, ok := cfg.Devices[d.Serial]; ok && dc.Nickname != "" {
				nickname = fmt.Sprintf(" (%s)", dc.Nickname)
			}

			status := d.State
			switch {
			case d.State == adb.StateUnauthorized:
				status = "UNAUTHORIZED (accept the prompt on the watch)"
			case !d.IsProtocolCapable():
				status = fmt.Sprintf("UNAVAILABLE: %s", d.State)
			}

			fmt.Printf("%-20s %s  [%s] [%s]%s\n",
				d.Serial, d.DisplayName(), d.ConnType, status, nickname)

			summary, err := db.Summary(cfg.SerialFor(d.Serial))
			if err == nil && summary.Operations > 0 {
				fmt.Printf("  Disabled by wearctl: %d | Operations: %d | Failed: %d\n",
					summary.Disabled, summary.Operations, summary.Failures)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
