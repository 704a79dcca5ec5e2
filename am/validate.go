package am

import "github.com/teranos/syntaxis/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Empty path falls back to syntaxis.db in GetDatabasePath
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	// 0 = unlimited, negative = invalid
	if c.Server.RateLimit < 0 {
		return errors.Newf("server.rate_limit must be >= 0, got %f", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		return errors.Newf("server.rate_burst must be > 0 when rate_limit is set, got %d", c.Server.RateBurst)
	}

	if c.Generator.MaxCount < 0 {
		return errors.Newf("generator.max_count must be >= 0, got %d", c.Generator.MaxCount)
	}

	switch c.Server.LogTheme {
	case "", "everforest", "gruvbox":
	default:
		return errors.WithHint(
			errors.Newf("server.log_theme %q is not a known theme", c.Server.LogTheme),
			"use everforest or gruvbox")
	}

	for i, p := range c.Lexicon.SeedPaths {
		if p == "" {
			return errors.Newf("lexicon.seed_paths[%d] cannot be empty", i)
		}
	}

	return nil
}
