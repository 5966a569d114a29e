package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

type Config struct {
	// Roots are scanned by `index` and `doctor` for transcript files.
	Roots  []string `toml:"roots"`
	DBPath string   `toml:"db_path"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Roots:  []string{filepath.Join(home, ".claude", "projects")},
		DBPath: filepath.Join(home, ".config", "jsonl2md", "jsonl2md.db"),
	}

	cfgPath := filepath.Join(home, ".config", "jsonl2md", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", cfgPath)
		}
	}

	for i, root := range cfg.Roots {
		cfg.Roots[i] = expandHome(root, home)
	}
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
