package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salmatx/bmsnode/internal/config"
	"github.com/salmatx/bmsnode/internal/netstation"
)

func newValidateConfigCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Load a configuration file and report any problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(path)
		},
	}
	cmd.Flags().StringVar(&path, "config", "config.json", "path to the configuration file to validate (JSON or YAML)")
	return cmd
}

func validateConfig(path string) error {
	cfg, err := config.LoadAny(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	var problems []string
	if !netstation.ValidateStaticIP(cfg.Wifi.StaticIP) {
		problems = append(problems, fmt.Sprintf("wifi.static_ip %q is not a valid IPv4 address", cfg.Wifi.StaticIP))
	}
	if !netstation.ValidateStaticIP(cfg.Wifi.Gateway) {
		problems = append(problems, fmt.Sprintf("wifi.gateway %q is not a valid IPv4 address", cfg.Wifi.Gateway))
	}
	if !netstation.ValidateStaticIP(cfg.Wifi.Netmask) {
		problems = append(problems, fmt.Sprintf("wifi.netmask %q is not a valid IPv4 address", cfg.Wifi.Netmask))
	}
	if cfg.Battery.CellVMin >= cfg.Battery.CellVMax {
		problems = append(problems, "battery.cell_v_min must be less than battery.cell_v_max")
	}
	if cfg.Battery.CurrentMin >= cfg.Battery.CurrentMax {
		problems = append(problems, "battery.current_min must be less than battery.current_max")
	}

	if len(problems) == 0 {
		fmt.Println("configuration is valid")
		return nil
	}
	for _, p := range problems {
		fmt.Println("- " + p)
	}
	return fmt.Errorf("%d problem(s) found in %s", len(problems), path)
}
