package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

var (
	homePath       string
	configHomePath string
	dataHomePath   string
	stateHomePath  string
)

type Config struct {
	// Maximum characters per slide chunk
	MaxChars int `yaml:"maxChars,omitempty" json:"maxChars,omitempty"`
	// Minimum characters per slide chunk
	MinChars int `yaml:"minChars,omitempty" json:"minChars,omitempty"`
	// Tokens recognized in templates (overrides the built-in set)
	Tokens []string `yaml:"tokens,omitempty" json:"tokens,omitempty"`
	// Tokens expanded across multiple slides
	WaterfallTokens []string `yaml:"waterfallTokens,omitempty" json:"waterfallTokens,omitempty"`
	// Token chunked by refrain/stanza alternation
	RefrainToken string `yaml:"refrainToken,omitempty" json:"refrainToken,omitempty"`
	// Abbreviations protected from sentence splitting
	Abbreviations []string `yaml:"abbreviations,omitempty" json:"abbreviations,omitempty"`
	// Feed URL for the fetch command
	FeedURL string `yaml:"feedURL,omitempty" json:"feedURL,omitempty"`
}

func init() {
	var err error
	homePath, err = os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("failed to get home directory: %v", err))
	}
}

// Load loads the configuration from the config file.
// It searches for config files in the following order:
// 1. $XDG_CONFIG_HOME/lectio/config-{profile}.yml
// 2. $XDG_CONFIG_HOME/lectio/config.yml
// If no config file is found, it returns an empty Config struct.
func Load(profile string) (*Config, error) {
	var configBasePaths []string
	if profile != "" {
		configBasePaths = append(configBasePaths, filepath.Join(configPath(), fmt.Sprintf("config-%s", profile)))
	}
	configBasePaths = append(configBasePaths, filepath.Join(configPath(), "config"))
	cfg := &Config{}
	for _, basePath := range configBasePaths {
		for _, ext := range []string{".yml", ".yaml"} {
			configPath := basePath + ext
			if b, err := os.ReadFile(configPath); err == nil {
				if err := yaml.Unmarshal(b, cfg); err != nil {
					return nil, fmt.Errorf("failed to unmarshal config: %w", err)
				}
				return cfg, nil
			}
		}
	}
	// If no config file is found, return an empty config
	return cfg, nil
}

// configPath returns the path to the configuration directory.
func configPath() string {
	if configHomePath != "" {
		return configHomePath
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		configHomePath = filepath.Join(v, "lectio")
	} else {
		configHomePath = filepath.Join(homePath, ".config", "lectio")
	}
	return configHomePath
}

// DataHomePath returns the path to the data home directory.
func DataHomePath() string {
	if dataHomePath != "" {
		return dataHomePath
	}
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		dataHomePath = filepath.Join(v, "lectio")
	} else {
		dataHomePath = filepath.Join(homePath, ".local", "share", "lectio")
	}
	return dataHomePath
}

func StateHomePath() string {
	if stateHomePath != "" {
		return stateHomePath
	}
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		stateHomePath = filepath.Join(v, "lectio")
	} else {
		stateHomePath = filepath.Join(homePath, ".local", "state", "lectio")
	}
	return stateHomePath
}
