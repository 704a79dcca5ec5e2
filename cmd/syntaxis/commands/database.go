package commands

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/syntaxis/am"
	"github.com/teranos/syntaxis/db"
	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/generator"
	"github.com/teranos/syntaxis/logger"
	"github.com/teranos/syntaxis/template"
)

// resolveDatabasePath returns the --db-path flag, falling back to config
func resolveDatabasePath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("db-path"); path != "" {
		return path, nil
	}
	cfg, err := am.Load()
	if err != nil {
		return "", errors.Wrap(err, "failed to load config")
	}
	return cfg.GetDatabasePath(), nil
}

// openDatabase opens and migrates the lexicon database named by --db-path
// or the am config. Uses logger.Logger for db operations.
func openDatabase(cmd *cobra.Command) (*sql.DB, string, error) {
	dbPath, err := resolveDatabasePath(cmd)
	if err != nil {
		return nil, "", err
	}

	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return nil, dbPath, err
	}
	return database, dbPath, nil
}

// FormatError renders a command error for the terminal. Parse errors get
// a caret under the offending fragment; hints attached with
// errors.WithHint are listed below the message.
func FormatError(err error) string {
	if pe, ok := template.AsParseError(err); ok {
		return pe.FormatError(template.ErrorContextTerminal)
	}

	var b strings.Builder
	if ge, ok := generator.AsGenerationError(err); ok {
		b.WriteString(pterm.Yellow(ge.Error()))
	} else {
		b.WriteString(pterm.Red(fmt.Sprintf("Error: %v", err)))
	}
	for _, hint := range errors.GetAllHints(err) {
		b.WriteString("\n")
		b.WriteString(pterm.LightCyan("hint: "))
		b.WriteString(hint)
	}
	return b.String()
}
