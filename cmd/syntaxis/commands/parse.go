package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/syntaxis/display"
	"github.com/teranos/syntaxis/template"
)

// ParseCmd prints a template's AST without touching the lexicon
var ParseCmd = &cobra.Command{
	Use:   "parse <template>",
	Short: "Show how a template parses",
	Long: `Parse a template and print its groups, tokens and features.

Useful for checking abbreviations and inheritance before generating.

Examples:
  syntaxis parse "[adj:acc:fem:pl]"
  syntaxis parse "(art noun)@{nom:sg} | (adj)@$1" --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

var parseFormat string

func init() {
	ParseCmd.Flags().StringVar(&parseFormat, "format", "json", "Output format: json, yaml")
}

// parseOutput is the AST with its syntax spelled out
type parseOutput struct {
	Template      string           `json:"template" yaml:"template"`
	SyntaxVersion string           `json:"syntax_version" yaml:"syntax_version"`
	Tokens        int              `json:"tokens" yaml:"tokens"`
	Groups        []template.Group `json:"groups" yaml:"groups"`
}

func runParse(cmd *cobra.Command, args []string) error {
	ast, err := template.Parse(args[0])
	if err != nil {
		return err
	}

	out := parseOutput{
		Template:      args[0],
		SyntaxVersion: ast.Version.String(),
		Tokens:        ast.TokenCount(),
		Groups:        ast.Groups,
	}

	switch parseFormat {
	case "json":
		return display.OutputJSON(os.Stdout, out)
	case "yaml":
		data, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to marshal AST to YAML: %w", err)
		}
		fmt.Print(string(data))
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: json, yaml)", parseFormat)
	}
}
