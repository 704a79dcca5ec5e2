package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/syntaxis/cmd/syntaxis/commands"
	"github.com/teranos/syntaxis/logger"
)

var rootCmd = &cobra.Command{
	Use:   "syntaxis",
	Short: "syntaxis - Greek word generator driven by grammatical templates",
	Long: `syntaxis - Generate Greek words from grammatical templates.

Templates describe the words to draw from the lexicon, either one
bracket per word or as groups sharing features:

  [article:nom:masc:sg] [noun:nom:masc:sg]
  (article noun)@{nom:masc:sg} | (adjective{pl})@$1

Available commands:
  generate  - Generate words from a template
  parse     - Show how a template parses
  templates - Manage saved templates
  db        - Create, seed and inspect the lexicon database
  serve     - Start the HTTP and WebSocket service
  am        - Manage syntaxis configuration ("I am")
  version   - Show version information

Examples:
  syntaxis db seed                                  # Load the built-in lexicon
  syntaxis generate "[noun:nom:masc:sg]"            # One masculine noun
  syntaxis generate "(art noun)@{gen:pl}" -n 5      # Five article+noun pairs
  syntaxis serve --watch-seeds                      # Serve, re-importing edited seeds`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonLogs, logger.VerbosityToLevel(verbosity)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().String("db-path", "", "Database path (overrides config)")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.ParseCmd)
	rootCmd.AddCommand(commands.TemplatesCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, commands.FormatError(err))
		os.Exit(1)
	}
}
