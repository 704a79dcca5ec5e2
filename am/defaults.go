package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "syntaxis.db")

	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	})
	v.SetDefault("server.log_theme", "everforest")
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)

	v.SetDefault("generator.log_overrides", true)
	v.SetDefault("generator.max_count", 100)

	v.SetDefault("lexicon.seed_paths", []string{})
	v.SetDefault("lexicon.watch_seeds", false)
}

// BindEnvVars binds the settings most often overridden in containers
func BindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("database.path", "SYNTAXIS_DATABASE_PATH")
	_ = v.BindEnv("server.port", "SYNTAXIS_SERVER_PORT")
	_ = v.BindEnv("server.host", "SYNTAXIS_SERVER_HOST")
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return "syntaxis.db"
	}
	return c.Database.Path
}

// GetServerAddress returns host:port for the HTTP listener
func (c *Config) GetServerAddress() string {
	host := c.Server.Host
	if host == "" {
		host = DefaultServerHost
	}
	port := c.Server.Port
	if port == 0 {
		port = DefaultServerPort
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// GetServerAllowedOrigins returns the allowed CORS origins
func (c *Config) GetServerAllowedOrigins() []string {
	if len(c.Server.AllowedOrigins) == 0 {
		return []string{
			"http://localhost",
			"https://localhost",
			"http://127.0.0.1",
			"https://127.0.0.1",
		}
	}
	return c.Server.AllowedOrigins
}

// GetMaxCount returns the generation batch limit (default: 100)
func (c *Config) GetMaxCount() int {
	if c.Generator.MaxCount <= 0 {
		return 100
	}
	return c.Generator.MaxCount
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Server: %s, Seeds: %d}",
		c.Database.Path, c.GetServerAddress(), len(c.Lexicon.SeedPaths))
}
