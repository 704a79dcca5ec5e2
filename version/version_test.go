package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	dev := Info{Version: "dev", CommitHash: "0123456789abcdef", BuildTime: "unknown"}
	assert.Equal(t, "syntaxis dev (commit 0123456, built unknown)", dev.String())
	assert.Equal(t, "0123456", dev.Short())

	tagged := Info{Version: "v1.2.0", CommitHash: "abc", BuildTime: "2026-01-02"}
	assert.Equal(t, "syntaxis v1.2.0 (commit abc, built 2026-01-02)", tagged.String())
}

func TestIsRelease(t *testing.T) {
	tests := map[string]bool{
		"dev":          false,
		"v1.2.0":       true,
		"1.2.0":        true,
		"v1.3.0-rc.1":  false,
		"not-a-semver": false,
	}
	for v, want := range tests {
		assert.Equal(t, want, Info{Version: v}.IsRelease(), v)
	}
}
