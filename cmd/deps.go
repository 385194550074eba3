package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/FluidXR/wearctl/internal/adb"
	"github.com/FluidXR/wearctl/internal/config"
)

type dependency struct {
	name       string
	binary     string
	installCmd map[string]string // GOOS -> install command
}

var adbDependency = dependency{
	name:   "ADB (Android Debug Bridge)",
	binary: "adb",
	installCmd: map[string]string{
		"darwin":  "brew install android-platform-tools",
		"linux":   "sudo apt install android-tools-adb",
		"windows": "winget install Google.PlatformTools",
	},
}

// checkDeps verifies that adb is installed, offering to install it.
func checkDeps() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.ADBPath != "" {
		if _, err := os.Stat(cfg.ADBPath); err != nil {
			return fmt.Errorf("configured adb %s: %w", cfg.ADBPath, err)
		}
		return nil
	}

	dep := adbDependency
	if _, err := exec.LookPath(dep.binary); err == nil {
		return nil
	}

	fmt.Printf("wearctl requires %s (%s), which is not installed.\n\n", dep.name, dep.binary)
	cmd, ok := dep.installCmd[runtime.GOOS]
	if !ok {
		return fmt.Errorf("please install %s manually and try again", dep.name)
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("Install %s with: %s\n", dep.name, cmd)
	fmt.Print("Run now? [Y/n] ")
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer != "" && answer != "y" && answer != "yes" {
		return fmt.Errorf("%s is required but not installed", dep.binary)
	}

	fmt.Printf("Running: %s\n", cmd)
	parts := strings.Fields(cmd)
	install := exec.Command(parts[0], parts[1:]...)
	install.Stdout = os.Stdout
	install.Stderr = os.Stderr
	install.Stdin = os.Stdin
	if err := install.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to install %s: %v\n", dep.name, err)
	}

	if _, err := exec.LookPath(dep.binary); err != nil {
		return fmt.Errorf("%s is required but not installed", dep.binary)
	}
	fmt.Printf("%s installed successfully.\n\n", dep.name)
	return nil
}

// checkNewDevices prompts the user to nickname any newly discovered devices.
func checkNewDevices(ctx context.Context) {
	cfg, err := config.Load()
	if err != nil {
		return
	}

	client := adb.NewClient(cfg.ADBPath)
	devices, err := client.Devices(ctx)
	if err != nil {
		return
	}

	reader := bufio.NewReader(os.Stdin)
	changed := false

	for _, d := range devices {
		if !d.IsOnline() {
			continue
		}
		if _, known := cfg.Devices[d.Serial]; known {
			continue
		}

		fmt.Printf("\nNew device detected: %s (%s)\n", d.Serial, d.DisplayName())
		fmt.Print("Give it a nickname (or press Enter to skip): ")
		name, _ := reader.ReadString('\n')
		name = strings.TrimSpace(name)

		dc := cfg.Devices[d.Serial]
		if name != "" {
			dc.Nickname = name
		}
		cfg.Devices[d.Serial] = dc
		changed = true
	}

	if changed {
		if err := config.Save(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not save config: %v\n", err)
		}
	}
}
