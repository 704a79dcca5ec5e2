// Package am ("am" as in "I am") holds the syntaxis configuration: where the
// lexicon lives, how the HTTP service listens and how generation is logged.
package am

// Config represents the syntaxis configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Lexicon   LexiconConfig   `mapstructure:"lexicon"`
}

// DatabaseConfig configures the SQLite lexicon database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig configures the HTTP service
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	LogTheme       string   `mapstructure:"log_theme"` // Color theme: gruvbox, everforest

	// Token bucket for the generate endpoints. RateLimit 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"` // requests per second
	RateBurst int     `mapstructure:"rate_burst"`
}

// GeneratorConfig configures template generation
type GeneratorConfig struct {
	LogOverrides bool `mapstructure:"log_overrides"` // log direct-feature overrides at debug level
	MaxCount     int  `mapstructure:"max_count"`     // upper bound for --count and batch requests
}

// LexiconConfig configures lexicon seeding
type LexiconConfig struct {
	SeedPaths  []string `mapstructure:"seed_paths"`  // seed files or directories (.yaml, .yml, .toml)
	WatchSeeds bool     `mapstructure:"watch_seeds"` // re-import seed files when they change (serve only)
}

// Server port constants
const (
	DefaultServerPort = 8540
	DefaultServerHost = "127.0.0.1"
)

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
