// Package config loads the katalorg configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/katalorg/katalorg/internal/constants"
	"github.com/katalorg/katalorg/internal/parser"
)

// Config holds the per-user settings. Everything has a sensible
// default, so an empty (or absent) file is a valid configuration.
type Config struct {
	VaultDir    string        `yaml:"vaultdir"     json:"vault_dir"`
	Extension   string        `yaml:"extension"    json:"extension"`
	IndexPrefix string        `yaml:"index_prefix" json:"index_prefix"`
	Parser      parser.Config `yaml:"parser"       json:"parser"`
}

func GetConfigPath(homeDir string) string {
	return filepath.Join(
		homeDir,
		constants.ConfigDir,
		constants.ConfigFile+"."+constants.ConfigFileType,
	)
}

// EnsureConfigExists creates the config directory and an empty config
// file on first run.
func EnsureConfigExists(homeDir string) error {
	configPath := GetConfigPath(homeDir)
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		file, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		file.Close()
	} else if err != nil {
		return fmt.Errorf("failed to check config file existence: %w", err)
	}

	return nil
}

// Load reads the config file under homeDir and applies defaults. The
// file is also handed to viper, so its values are readable through
// the keys the commands bind their flags to.
func Load(homeDir string) (*Config, error) {
	path := GetConfigPath(homeDir)

	viper.SetConfigFile(path)
	viper.SetConfigType(constants.ConfigFileType)
	viper.ReadInConfig()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.ensureDefaults()
	return cfg, nil
}

func (cfg *Config) ensureDefaults() {
	if cfg.Extension == "" {
		cfg.Extension = constants.DefaultExtension
	}
	if cfg.IndexPrefix == "" {
		cfg.IndexPrefix = constants.DefaultIndexPrefix
	}
}

// Save writes the configuration back to its file.
func (cfg *Config) Save(homeDir string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(GetConfigPath(homeDir), data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
