package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Provider backend types accepted in [ProviderConfig.Type].
const (
	ProviderFS      = "fs"
	ProviderLibrary = "library"
	ProviderRemote  = "remote"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Browse    BrowseConfig     `toml:"browse"`
	Player    PlayerConfig     `toml:"player"`
	Database  DatabaseConfig   `toml:"database"`
	Server    ServerConfig     `toml:"server"`
	Log       LogConfig        `toml:"log"`
	Providers []ProviderConfig `toml:"providers"`
}

// BrowseConfig controls browse sessions and the navigation event queue.
type BrowseConfig struct {
	PageSize  int `toml:"page_size"`
	QueueSize int `toml:"queue_size"`
}

// PlayerConfig names the external command that plays leaves.
//
// An empty command falls back to the platform opener.
type PlayerConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// DatabaseConfig contains database connection settings for the library catalog.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP settings for the provider export server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// ProviderConfig declares one content provider.
type ProviderConfig struct {
	Name        string `toml:"name"`
	Type        string `toml:"type"`
	Description string `toml:"description"`
	Browsable   *bool  `toml:"browsable"`

	// fs
	Root string `toml:"root"`

	// remote
	URL          string  `toml:"url"`
	RemoteName   string  `toml:"remote_name"`
	RateLimit    float64 `toml:"rate_limit"`
	ClientID     string  `toml:"client_id"`
	ClientSecret string  `toml:"client_secret"`
	TokenURL     string  `toml:"token_url"`
}

// CanBrowse reports whether the provider should advertise browsing. Defaults to true.
func (p ProviderConfig) CanBrowse() bool {
	return p.Browsable == nil || *p.Browsable
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Unset browse values are filled from the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	config.Providers = nil
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks page sizes and provider declarations.
func (c *Config) Validate() error {
	if c.Browse.PageSize <= 0 {
		return fmt.Errorf("%w: browse.page_size must be positive, got %d", ErrInvalidConfig, c.Browse.PageSize)
	}
	if c.Browse.QueueSize < 0 {
		return fmt.Errorf("%w: browse.queue_size must not be negative", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: providers[%d] has no name", ErrInvalidConfig, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate provider %q", ErrInvalidConfig, p.Name)
		}
		seen[p.Name] = true

		switch p.Type {
		case ProviderFS:
			if p.Root == "" {
				return fmt.Errorf("%w: provider %q needs a root", ErrInvalidConfig, p.Name)
			}
		case ProviderLibrary:
		case ProviderRemote:
			if p.URL == "" {
				return fmt.Errorf("%w: provider %q needs a url", ErrInvalidConfig, p.Name)
			}
		default:
			return fmt.Errorf("%w: provider %q has unknown type %q", ErrInvalidConfig, p.Name, p.Type)
		}
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
