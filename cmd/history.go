package cmd

import (
	"fmt"

	"github.com/FluidXR/wearctl/internal/config"
	"github.com/FluidXR/wearctl/internal/journal"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show package operations recorded by wearctl",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := journal.Open(config.ConfigDir())
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer db.Close()

		serial := ""
		if flagDevice != "" {
			serial = cfg.SerialFor(flagDevice)
		}
		entries, err := db.History(serial)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No package operations recorded.")
			return nil
		}
		for _, e := range entries {
			result := "ok"
			if !e.Success {
				result = "FAILED"
			}
			fmt.Printf("%s  %-16s %-8s %-6s %s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.DeviceSerial, e.Action, result, e.Package)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
