package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/syntaxis/am"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage syntaxis configuration",
	Long: `am — Manage syntaxis configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (SYNTAXIS_* prefix)
3. Project config (./am.toml, searching up directories)
4. User config (~/.syntaxis/am.toml)
5. System config (/etc/syntaxis/am.toml)
6. Default values

Examples:
  syntaxis am show                    # Show current configuration
  syntaxis am show --format json      # Show configuration in JSON format
  syntaxis am get server.port         # Get specific config value
  syntaxis am validate                # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective syntaxis configuration from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., database.path, server.rate_limit)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", am.FormatTOML, "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	data, err := am.Marshal(am.GetViper(), configFormat)
	if err != nil {
		return err
	}

	if configFormat != am.FormatJSON {
		fmt.Println("# syntaxis configuration")
		for _, f := range am.LoadedFiles() {
			fmt.Printf("# merged from %s\n", f)
		}
	}
	fmt.Print(string(data))
	if configFormat == am.FormatJSON {
		fmt.Println()
	}
	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v := am.GetViper()
	if !v.IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}

	fmt.Println(am.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	pterm.Success.Println("Configuration is valid")
	return nil
}
