package commands

import (
	"fmt"

	"github.com/teranos/syntaxis/logger"
	"github.com/teranos/syntaxis/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity int, dbPath, addr string, lemmas int) {
	cyan := "\033[36m"
	green := "\033[32m"
	yellow := "\033[33m"
	blue := "\033[34m"
	bold := "\033[1m"
	reset := "\033[0m"

	versionInfo := version.Get()

	fmt.Printf("\n%s%s", cyan, bold)
	fmt.Printf("   ╔═══════════════════════════════════════════╗\n")
	fmt.Printf("   ║                                           ║\n")
	fmt.Printf("   ║      Σ Υ Ν Τ Α Ξ Ι Σ    syntaxis          ║\n")
	fmt.Printf("   ║      [τύπος:πτώση:γένος:αριθμός]          ║\n")
	fmt.Printf("   ║                                           ║\n")
	fmt.Printf("   ╚═══════════════════════════════════════════╝%s\n\n", reset)

	fmt.Printf("%s%s┌─ syntaxis ─────────────────────────────────────┐%s\n", green, bold, reset)
	fmt.Printf("%s│%s Version:   %s (commit %s)\n", green, reset, versionInfo.Version, versionInfo.Short())
	fmt.Printf("%s│%s Built:     %s\n", green, reset, versionInfo.BuildTime)
	fmt.Printf("%s│%s Verbosity: %s\n", green, reset, logger.LevelName(verbosity))
	fmt.Printf("%s│%s Database:  %s (%d lemmas)\n", green, reset, dbPath, lemmas)
	fmt.Printf("%s│%s Listening: http://%s\n", green, reset, addr)
	fmt.Printf("%s└────────────────────────────────────────────────┘%s\n", green, reset)

	fmt.Printf("\n%s%s✨ POST templates to /api/v1/generate%s\n", yellow, bold, reset)
	fmt.Printf("%s💡 Press Ctrl+C to stop%s\n\n", blue, reset)
}
