package cmd

import (
	"fmt"
	"slices"

	"github.com/FluidXR/wearctl/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage wearctl configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		fmt.Printf("Config file: %s\n\n", config.ConfigPath())
		adbPath := cfg.ADBPath
		if adbPath == "" {
			adbPath = "adb (from PATH)"
		}
		fmt.Printf("adb: %s\n", adbPath)
		fmt.Printf("Banner: %s\n", cfg.Banner)
		if cfg.Device != "" {
			fmt.Printf("Default device: %s\n", cfg.Device)
		}
		fmt.Printf("Authorization timeout: %s\n", durationOrNone(cfg.AuthTimeout.String(), cfg.AuthTimeout == 0))
		fmt.Printf("Command timeout: %s\n", durationOrNone(cfg.CommandTimeout.String(), cfg.CommandTimeout == 0))
		fmt.Printf("\nPackages to disable:\n")
		if len(cfg.Packages) == 0 {
			fmt.Println("  (none configured)")
		}
		for _, p := range cfg.Packages {
			fmt.Printf("  - %s\n", p)
		}
		fmt.Printf("\nDevices:\n")
		if len(cfg.Devices) == 0 {
			fmt.Println("  (none configured)")
		}
		for serial, dc := range cfg.Devices {
			fmt.Printf("  - %s", serial)
			if dc.Nickname != "" {
				fmt.Printf(" (%s)", dc.Nickname)
			}
			if dc.WiFiAddr != "" {
				fmt.Printf(" [wifi: %s]", dc.WiFiAddr)
			}
			fmt.Println()
		}
		return nil
	},
}

func durationOrNone(d string, none bool) string {
	if none {
		return "none (wait indefinitely)"
	}
	return d
}

// updateConfig loads the config, applies fn and saves the result.
func updateConfig(fn func(cfg *config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return config.Save(cfg)
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("Config created at %s\n", config.ConfigPath())
		return nil
	},
}

var configNicknameCmd = &cobra.Command{
	Use:   "nickname <serial> <name>",
	Short: "Set a nickname for a device",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		serial, name := args[0], args[1]
		err := updateConfig(func(cfg *config.Config) error {
			dc := cfg.Devices[serial]
			dc.Nickname = name
			cfg.Devices[serial] = dc
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Printf("Set nickname for %s: %s\n", serial, name)
		return nil
	},
}

var configSetWiFiCmd = &cobra.Command{
	Use:   "set-wifi <serial> <ip:port>",
	Short: "Set the wireless debugging address for a device",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		serial, addr := args[0], args[1]
		err := updateConfig(func(cfg *config.Config) error {
			dc := cfg.Devices[serial]
			dc.WiFiAddr = addr
			cfg.Devices[serial] = dc
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Printf("Set wireless address for %s: %s\n", serial, addr)
		return nil
	},
}

var configSetADBCmd = &cobra.Command{
	Use:   "set-adb <path>",
	Short: "Use a specific adb binary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := updateConfig(func(cfg *config.Config) error {
			cfg.ADBPath = args[0]
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Printf("Using adb at %s\n", args[0])
		return nil
	},
}

var configAddPackageCmd = &cobra.Command{
	Use:   "add-package <package...>",
	Short: "Add packages to the default disable list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateConfig(func(cfg *config.Config) error {
			for _, p := range args {
				if slices.Contains(cfg.Packages, p) {
					fmt.Printf("Already listed: %s\n", p)
					continue
				}
				cfg.Packages = append(cfg.Packages, p)
				fmt.Printf("Added package: %s\n", p)
			}
			return nil
		})
	},
}

var configRemovePackageCmd = &cobra.Command{
	Use:   "remove-package <package>",
	Short: "Remove a package from the default disable list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		return updateConfig(func(cfg *config.Config) error {
			i := slices.Index(cfg.Packages, name)
			if i < 0 {
				return fmt.Errorf("package %q not found", name)
			}
			cfg.Packages = slices.Delete(cfg.Packages, i, i+1)
			fmt.Printf("Removed package: %s\n", name)
			return nil
		})
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configNicknameCmd)
	configCmd.AddCommand(configSetWiFiCmd)
	configCmd.AddCommand(configSetADBCmd)
	configCmd.AddCommand(configAddPackageCmd)
	configCmd.AddCommand(configRemovePackageCmd)
	rootCmd.AddCommand(configCmd)
}
