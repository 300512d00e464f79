package config

import (
	"encoding/json"
	"fmt"

	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// Encode renders the configuration in one of the supported formats: json, yaml or toml.
func (c *Config) Encode(format string) ([]byte, error) {
	switch format {
	case "", "json":
		raw, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		return pretty.PrettyOptions(raw, &pretty.Options{Width: 80, Indent: "  "}), nil
	case "yaml", "yml":
		return yaml.Marshal(c)
	case "toml":
		return gotoml.Marshal(c)
	default:
		return nil, fmt.Errorf("unsupported format %q (want json, yaml or toml)", format)
	}
}
