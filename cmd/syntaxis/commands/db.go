package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/syntaxis/am"
	"github.com/teranos/syntaxis/db"
	"github.com/teranos/syntaxis/display"
	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/logger"
	"github.com/teranos/syntaxis/storage"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Create, seed and inspect the lexicon database",
	Long: `db — Manage the lexicon database

The lexicon is a SQLite database of lemmas, their inflected forms and
their translations. Seed files (.yaml, .yml, .toml) list words with an
explicit form per feature combination.

Examples:
  syntaxis db create                        # Create the schema
  syntaxis db seed                          # Load built-in and configured seeds
  syntaxis db seed words/ extra.toml        # Load specific seed files
  syntaxis db import-csv adverbs.csv        # Import invariable words
  syntaxis db stats                         # Lemma counts per lexical type`,
}

var dbCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the database and apply migrations",
	Args:  cobra.NoArgs,
	RunE:  runDbCreate,
}

var dbSeedCmd = &cobra.Command{
	Use:   "seed [path...]",
	Short: "Import seed files into the lexicon",
	Long: `Import seed files into the lexicon, replacing words that already exist.

Without arguments the built-in seeds and every path in lexicon.seed_paths
are imported. Directories are expanded to the seed files they contain.`,
	RunE: runDbSeed,
}

var dbImportCSVCmd = &cobra.Command{
	Use:   "import-csv <file>",
	Short: "Import invariable words from CSV (lexical,translations,lemma)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDbImportCSV,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lexicon statistics",
	Args:  cobra.NoArgs,
	RunE:  runDbStats,
}

var (
	seedNoBuiltin bool
	seedClear     bool
)

func init() {
	dbSeedCmd.Flags().BoolVar(&seedNoBuiltin, "no-builtin", false, "Skip the built-in seeds")
	dbSeedCmd.Flags().BoolVar(&seedClear, "clear", false, "Delete every word before importing")

	dbStatsCmd.Flags().Bool("json", false, "Output statistics as JSON")

	DbCmd.AddCommand(dbCreateCmd)
	DbCmd.AddCommand(dbSeedCmd)
	DbCmd.AddCommand(dbImportCSVCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbCreate(cmd *cobra.Command, args []string) error {
	database, dbPath, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	schema, err := db.SchemaVersion(database)
	if err != nil {
		return err
	}
	pterm.Success.Printf("Database ready at %s (schema %s)\n", dbPath, schema)
	return nil
}

func runDbSeed(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	paths := args
	if len(paths) == 0 {
		cfg, err := am.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}
		paths = cfg.Lexicon.SeedPaths
	}

	var seeds []*storage.SeedFile
	if !seedNoBuiltin && len(args) == 0 {
		builtin, err := storage.BuiltinSeeds()
		if err != nil {
			return err
		}
		seeds = append(seeds, builtin...)
	}
	if len(paths) > 0 {
		loaded, err := storage.LoadSeedFiles(ctx, paths)
		if err != nil {
			return err
		}
		seeds = append(seeds, loaded...)
	}
	if len(seeds) == 0 {
		return errors.WithHint(errors.New("no seed files to import"),
			"pass seed paths or set lexicon.seed_paths in am.toml")
	}

	database, _, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()
	lexicon := storage.NewLexiconStore(database, logger.ComponentLogger("lexicon"))

	if seedClear {
		if err := lexicon.Clear(ctx); err != nil {
			return err
		}
	}

	spinner, _ := pterm.DefaultSpinner.Start("Importing seeds...")
	total := 0
	for _, sf := range seeds {
		n, err := lexicon.Seed(ctx, sf)
		if err != nil {
			spinner.Fail(fmt.Sprintf("Failed to import %s", sf.Path))
			return err
		}
		total += n
		logger.Infow("Seed imported", logger.FieldFile, sf.Path, logger.FieldCount, n)
	}
	spinner.Success(fmt.Sprintf("Imported %d words from %d seed files", total, len(seeds)))
	return nil
}

func runDbImportCSV(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", args[0])
	}
	defer f.Close()

	entries, err := storage.ParseCSV(f)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", args[0])
	}

	database, _, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	lexicon := storage.NewLexiconStore(database, logger.ComponentLogger("lexicon"))
	n, err := lexicon.ImportWords(commandContext(cmd), entries)
	if err != nil {
		return err
	}
	pterm.Success.Printf("Imported %d words from %s\n", n, args[0])
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	database, dbPath, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := storage.NewLexiconStore(database, logger.ComponentLogger("lexicon")).CountWords(commandContext(cmd))
	if err != nil {
		return err
	}
	schema, _ := db.SchemaVersion(database)

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(os.Stdout, map[string]interface{}{
			"database":       dbPath,
			"schema_version": schema,
			"stats":          stats,
		})
	}

	pterm.DefaultSection.Println("Lexicon statistics")
	pterm.Printf("Database: %s (schema %s)\n", dbPath, schema)
	pterm.Printf("Lemmas:   %d\n", stats.Total)
	pterm.Printf("Forms:    %d\n\n", stats.Forms)

	lexicals := make([]string, 0, len(stats.ByLexical))
	for lt := range stats.ByLexical {
		lexicals = append(lexicals, lt)
	}
	sort.Strings(lexicals)

	data := pterm.TableData{{"Lexical type", "Lemmas"}}
	for _, lt := range lexicals {
		data = append(data, []string{lt, strconv.Itoa(stats.ByLexical[lt])})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// commandContext returns the command's context, or Background outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
