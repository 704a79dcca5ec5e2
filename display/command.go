// Package display renders command results for people or for other programs.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// EnvJSON forces JSON output for every command when set to 1 or true
const EnvJSON = "SYNTAXIS_JSON"

// ShouldOutputJSON reports whether a command should print JSON: an
// explicit --json flag wins, otherwise SYNTAXIS_JSON decides.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd != nil && cmd.Flags().Lookup("json") != nil && cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}
	switch os.Getenv(EnvJSON) {
	case "1", "true":
		return true
	}
	return false
}

// OutputJSON marshals v with MarshalJSON and prints it to w
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
