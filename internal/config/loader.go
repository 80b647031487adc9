package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ConfigPaths are searched in order when no path is given
var ConfigPaths = []string{
	"raycon.toml",
	"config.toml",
	"./config/raycon.toml",
	"/etc/raycon/raycon.toml",
}

// LoadFromFile decodes path over the defaults
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}
	return cfg, nil
}

// Load resolves configuration as defaults < file < environment.
// An empty path falls back to RAYCON_CONFIG, then ConfigPaths.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("RAYCON_CONFIG")
	}
	if path == "" {
		for _, p := range ConfigPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		cfg = fileCfg
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
