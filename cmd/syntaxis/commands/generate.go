package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/syntaxis/am"
	"github.com/teranos/syntaxis/display"
	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/generator"
	"github.com/teranos/syntaxis/grammar"
	"github.com/teranos/syntaxis/logger"
	"github.com/teranos/syntaxis/storage"
)

// GenerateCmd draws words for a template from the lexicon
var GenerateCmd = &cobra.Command{
	Use:   "generate <template>",
	Short: "Generate words from a template",
	Long: `Generate Greek words matching a template.

Each token draws one lemma uniformly at random among those having a form
with every requested feature. Wildcards (*gender*, *number*, *person*)
leave a category unconstrained.

Examples:
  syntaxis generate "[noun:nom:masc:sg]"
  syntaxis generate "(art adj noun)@{acc:fem:sg}" --count 3
  syntaxis generate "(art noun)@{nom:masc:sg} | (art{pl} noun)@$1" --show-overrides
  syntaxis generate "[verb:present:active:pri:*number*]" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var (
	generateCount         int
	generateShowOverrides bool
)

func init() {
	GenerateCmd.Flags().IntVarP(&generateCount, "count", "n", 1, "Number of independent generations")
	GenerateCmd.Flags().Bool("json", false, "Output results as JSON")
	GenerateCmd.Flags().BoolVar(&generateShowOverrides, "show-overrides", false, "List direct features that replaced inherited ones")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if generateCount < 1 || generateCount > cfg.GetMaxCount() {
		return errors.Newf("--count must be between 1 and %d, got %d", cfg.GetMaxCount(), generateCount)
	}

	database, _, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	lexicon := storage.NewLexiconStore(database, logger.ComponentLogger("lexicon"))
	gen := generator.New(lexicon,
		generator.WithLogger(logger.ComponentLogger("generator")),
		generator.WithOverrideLogging(cfg.Generator.LogOverrides))

	ctx := commandContext(cmd)

	results, err := gen.GenerateN(ctx, args[0], generateCount)
	if err != nil {
		return withSeedHint(ctx, lexicon, err)
	}

	if display.ShouldOutputJSON(cmd) {
		if len(results) == 1 {
			return display.OutputJSON(os.Stdout, results[0])
		}
		return display.OutputJSON(os.Stdout, results)
	}

	for _, res := range results {
		printResult(res)
	}
	return nil
}

// withSeedHint points at db seed when generation failed against an empty lexicon
func withSeedHint(ctx context.Context, lexicon *storage.LexiconStore, err error) error {
	if _, ok := generator.AsGenerationError(err); !ok {
		return err
	}
	stats, countErr := lexicon.CountWords(ctx)
	if countErr == nil && stats.Total == 0 {
		return errors.WithHint(err, "the lexicon is empty, run 'syntaxis db seed' first")
	}
	return err
}

// printResult writes the surface forms on one line, then the details
func printResult(res *generator.Result) {
	words := res.Words()
	surface := make([]string, len(words))
	for i, w := range words {
		surface[i] = w.String()
	}
	fmt.Println(pterm.Bold.Sprint(strings.Join(surface, " ")))

	for _, sel := range res.Selections {
		w := sel.Word
		fmt.Printf("  %s %s %s %s\n",
			pterm.LightCyan(w.Lemma),
			pterm.Gray("("+w.LexicalType+")"),
			strings.Join(w.Translations, ", "),
			pterm.Gray(formatFeatureMap(w.Features)))
	}

	if generateShowOverrides {
		for _, o := range res.Overrides {
			fmt.Printf("  %s group %d token %d %s: %s -> %s\n",
				pterm.Yellow("override"), o.Group, o.Token+1, o.Category, o.OldValue, o.NewValue)
		}
	}
}

func formatFeatureMap(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m))
	for _, c := range grammar.Categories {
		if v, ok := m[string(c)]; ok {
			parts = append(parts, v)
		}
	}
	return "[" + strings.Join(parts, ":") + "]"
}
