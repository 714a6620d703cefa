// ABOUTME: Bridge configuration from environment variables and optional TOML file.
// ABOUTME: Environment always wins; the file only supplies connection defaults.

package bridge

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joeshaw/envdecode"
)

// Config holds the bridge process configuration. The API key and vault
// path are required; missing either is fatal at startup.
type Config struct {
	APIKey    string `env:"OBSIDIAN_API_KEY,required"`
	VaultPath string `env:"OBSIDIAN_VAULT_PATH,required"`
	Host      string `env:"OBSIDIAN_HOST,default=localhost"`
	Port      int    `env:"OBSIDIAN_PORT,default=28734"`
}

// fileConfig is the optional TOML file shape. Only connection defaults
// live here; secrets stay in the environment.
type fileConfig struct {
	Gateway struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	} `toml:"gateway"`
}

// LoadConfig reads the bridge configuration. OBSIDIAN_BRIDGE_CONFIG may
// point at a TOML file supplying host/port defaults; explicit environment
// variables override it.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if path := os.Getenv("OBSIDIAN_BRIDGE_CONFIG"); path != "" {
		fc, err := loadFileConfig(path)
		if err != nil {
			return nil, err
		}
		if os.Getenv("OBSIDIAN_HOST") == "" && fc.Gateway.Host != "" {
			cfg.Host = fc.Gateway.Host
		}
		if os.Getenv("OBSIDIAN_PORT") == "" && fc.Gateway.Port != 0 {
			cfg.Port = fc.Gateway.Port
		}
	}

	return &cfg, nil
}

// loadFileConfig parses the TOML file, expanding ${VAR} references.
func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bridge config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var fc fileConfig
	if _, err := toml.Decode(expanded, &fc); err != nil {
		return nil, fmt.Errorf("parsing bridge config file: %w", err)
	}
	return &fc, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// BaseURL returns the gateway base URL for the configured host and port.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}
