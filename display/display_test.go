package display

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalJSONKeepsTemplateText(t *testing.T) {
	data, err := MarshalJSON(map[string]string{"template": "(art noun)@{nom:sg} | (adj)@$1", "word": "άνθρωπος"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"(art noun)@{nom:sg} | (adj)@$1"`)
	assert.Contains(t, string(data), "άνθρωπος")
	assert.NotContains(t, string(data), `\u`)
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OutputJSON(&buf, []int{1, 2}))
	assert.Equal(t, "[\n  1,\n  2\n]\n", buf.String())
}

func TestShouldOutputJSON(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "generate"}
		cmd.Flags().Bool("json", false, "")
		return cmd
	}

	t.Setenv(EnvJSON, "")
	assert.False(t, ShouldOutputJSON(newCmd()))
	assert.False(t, ShouldOutputJSON(nil))

	cmd := newCmd()
	require.NoError(t, cmd.Flags().Set("json", "true"))
	assert.True(t, ShouldOutputJSON(cmd))

	t.Setenv(EnvJSON, "1")
	assert.True(t, ShouldOutputJSON(newCmd()))
	assert.True(t, ShouldOutputJSON(&cobra.Command{Use: "stats"}))

	cmd = newCmd()
	require.NoError(t, cmd.Flags().Set("json", "false"))
	assert.False(t, ShouldOutputJSON(cmd), "explicit flag beats the environment")
}
