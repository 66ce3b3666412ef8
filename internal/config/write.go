package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// WriteConfig serializes cfg and writes it to path. Files ending in .toml
// are written as TOML, everything else as YAML.
func WriteConfig(cfg *Config, path string) error {
	data, err := Marshal(cfg, formatFor(path))
	if err != nil {
		return err
	}
	content := "# nuktatestify configuration\n" + string(data)
	return os.WriteFile(path, []byte(content), 0644)
}

// Marshal encodes cfg as "yaml" or "toml".
func Marshal(cfg *Config, format string) ([]byte, error) {
	switch format {
	case "yaml", "yml":
		return yaml.Marshal(cfg)
	case "toml":
		return toml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

func formatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}
