package commands

import (
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/syntaxis/am"
	"github.com/teranos/syntaxis/display"
	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/generator"
	"github.com/teranos/syntaxis/logger"
	"github.com/teranos/syntaxis/storage"
)

// TemplatesCmd manages saved templates
var TemplatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"tpl"},
	Short:   "Manage saved templates",
	Long: `templates — Save, list and run templates

Templates are validated before they are saved; a template that does not
parse is rejected with the same error generate would print.

Examples:
  syntaxis templates save "(art noun)@{nom:sg}" -d "subject"
  syntaxis templates ls
  syntaxis templates run 1 --count 5
  syntaxis templates rm 1`,
}

var templatesSaveCmd = &cobra.Command{
	Use:   "save <template>",
	Short: "Validate and save a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesSave,
}

var templatesLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List saved templates, newest first",
	Args:    cobra.NoArgs,
	RunE:    runTemplatesLs,
}

var templatesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one saved template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesGet,
}

var templatesRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a saved template",
	Args:    cobra.ExactArgs(1),
	RunE:    runTemplatesRm,
}

var templatesRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Generate from a saved template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesRun,
}

var (
	templateDescription string
	templateRunCount    int
)

func init() {
	templatesSaveCmd.Flags().StringVarP(&templateDescription, "description", "d", "", "Short description")
	templatesLsCmd.Flags().Bool("json", false, "Output as JSON")
	templatesRunCmd.Flags().IntVarP(&templateRunCount, "count", "n", 1, "Number of independent generations")

	TemplatesCmd.AddCommand(templatesSaveCmd)
	TemplatesCmd.AddCommand(templatesLsCmd)
	TemplatesCmd.AddCommand(templatesGetCmd)
	TemplatesCmd.AddCommand(templatesRmCmd)
	TemplatesCmd.AddCommand(templatesRunCmd)
}

func parseTemplateID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.Newf("invalid template id %q", arg)
	}
	return id, nil
}

func withTemplateStore(cmd *cobra.Command, fn func(*storage.TemplateStore) error) error {
	database, _, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(storage.NewTemplateStore(database))
}

func runTemplatesSave(cmd *cobra.Command, args []string) error {
	return withTemplateStore(cmd, func(store *storage.TemplateStore) error {
		saved, err := store.Save(commandContext(cmd), args[0], templateDescription)
		if err != nil {
			return err
		}
		pterm.Success.Printf("Saved template %d: %s\n", saved.ID, saved.Template)
		return nil
	})
}

func runTemplatesLs(cmd *cobra.Command, args []string) error {
	return withTemplateStore(cmd, func(store *storage.TemplateStore) error {
		list, err := store.List(commandContext(cmd))
		if err != nil {
			return err
		}

		if display.ShouldOutputJSON(cmd) {
			if list == nil {
				list = []*storage.SavedTemplate{}
			}
			return display.OutputJSON(os.Stdout, list)
		}

		if len(list) == 0 {
			pterm.Info.Println("No saved templates")
			return nil
		}
		data := pterm.TableData{{"ID", "Syntax", "Template", "Description", "Created"}}
		for _, t := range list {
			data = append(data, []string{
				strconv.FormatInt(t.ID, 10),
				t.SyntaxVersion,
				t.Template,
				t.Description,
				t.CreatedAt.Local().Format("2006-01-02 15:04"),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	})
}

func runTemplatesGet(cmd *cobra.Command, args []string) error {
	id, err := parseTemplateID(args[0])
	if err != nil {
		return err
	}
	return withTemplateStore(cmd, func(store *storage.TemplateStore) error {
		t, err := store.Get(commandContext(cmd), id)
		if err != nil {
			return err
		}
		return display.OutputJSON(os.Stdout, t)
	})
}

func runTemplatesRm(cmd *cobra.Command, args []string) error {
	id, err := parseTemplateID(args[0])
	if err != nil {
		return err
	}
	return withTemplateStore(cmd, func(store *storage.TemplateStore) error {
		deleted, err := store.Delete(commandContext(cmd), id)
		if err != nil {
			return err
		}
		if !deleted {
			return errors.NewNotFoundError("template %d not found", id)
		}
		pterm.Success.Printf("Deleted template %d\n", id)
		return nil
	})
}

func runTemplatesRun(cmd *cobra.Command, args []string) error {
	id, err := parseTemplateID(args[0])
	if err != nil {
		return err
	}
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if templateRunCount < 1 || templateRunCount > cfg.GetMaxCount() {
		return errors.Newf("--count must be between 1 and %d, got %d", cfg.GetMaxCount(), templateRunCount)
	}

	database, _, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := commandContext(cmd)
	t, err := storage.NewTemplateStore(database).Get(ctx, id)
	if err != nil {
		return err
	}

	lexicon := storage.NewLexiconStore(database, logger.ComponentLogger("lexicon"))
	gen := generator.New(lexicon,
		generator.WithLogger(logger.ComponentLogger("generator")),
		generator.WithOverrideLogging(cfg.Generator.LogOverrides))

	results, err := gen.GenerateN(ctx, t.Template, templateRunCount)
	if err != nil {
		return withSeedHint(ctx, lexicon, err)
	}
	for _, res := range results {
		printResult(res)
	}
	return nil
}
