package am

import (
	"encoding/json"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/teranos/syntaxis/errors"
	"gopkg.in/yaml.v3"
)

// Supported output formats for Marshal
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Marshal renders the effective settings of v in the requested format.
// Keys are the dotted mapstructure names, so the TOML output can be used
// as an am.toml as-is.
func Marshal(v *viper.Viper, format string) ([]byte, error) {
	settings := v.AllSettings()

	switch strings.ToLower(format) {
	case FormatTOML, "":
		out, err := toml.Marshal(settings)
		return out, errors.Wrap(err, "failed to encode config as toml")
	case FormatJSON:
		out, err := json.MarshalIndent(settings, "", "  ")
		return out, errors.Wrap(err, "failed to encode config as json")
	case FormatYAML, "yml":
		out, err := yaml.Marshal(settings)
		return out, errors.Wrap(err, "failed to encode config as yaml")
	default:
		return nil, errors.WithHint(
			errors.NewInvalidRequestError("unknown format %q", format),
			"use toml, json or yaml")
	}
}
