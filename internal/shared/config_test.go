package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Browse.PageSize != 100 {
			t.Errorf("expected page size 100, got %d", config.Browse.PageSize)
		}

		if config.Database.Path != "./mbx.db" {
			t.Errorf("expected database path ./mbx.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "127.0.0.1:7070" {
			t.Errorf("expected server addr 127.0.0.1:7070, got %s", config.Server.Addr())
		}

		if len(config.Providers) != 2 {
			t.Fatalf("expected 2 example providers, got %d", len(config.Providers))
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[browse]
page_size = 5

[player]
command = "mpv"
args = ["--really-quiet"]

[[providers]]
name = "Movies"
type = "fs"
root = "/srv/movies"

[[providers]]
name = "Upstairs"
type = "remote"
url = "http://10.0.0.2:7070"
remote_name = "Movies"
rate_limit = 2.5
browsable = false
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Browse.PageSize != 5 {
			t.Errorf("expected page size 5, got %d", config.Browse.PageSize)
		}
		if config.Browse.QueueSize != 64 {
			t.Errorf("expected default queue size 64, got %d", config.Browse.QueueSize)
		}
		if config.Player.Command != "mpv" || len(config.Player.Args) != 1 {
			t.Errorf("unexpected player config: %+v", config.Player)
		}
		if len(config.Providers) != 2 {
			t.Fatalf("expected 2 providers, got %d", len(config.Providers))
		}
		if !config.Providers[0].CanBrowse() {
			t.Error("browsable should default to true")
		}
		if config.Providers[1].CanBrowse() {
			t.Error("expected remote provider to be marked not browsable")
		}
		if config.Providers[1].RateLimit != 2.5 {
			t.Errorf("expected rate limit 2.5, got %v", config.Providers[1].RateLimit)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("LoadConfig invalid toml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[browse\npage_size = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tc := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero page size", mutate: func(c *Config) { c.Browse.PageSize = 0 }, wantErr: true},
		{name: "negative queue", mutate: func(c *Config) { c.Browse.QueueSize = -1 }, wantErr: true},
		{
			name:    "unnamed provider",
			mutate:  func(c *Config) { c.Providers = []ProviderConfig{{Type: ProviderLibrary}} },
			wantErr: true,
		},
		{
			name: "duplicate provider",
			mutate: func(c *Config) {
				c.Providers = []ProviderConfig{{Name: "a", Type: ProviderLibrary}, {Name: "a", Type: ProviderLibrary}}
			},
			wantErr: true,
		},
		{
			name:    "fs without root",
			mutate:  func(c *Config) { c.Providers = []ProviderConfig{{Name: "a", Type: ProviderFS}} },
			wantErr: true,
		},
		{
			name:    "remote without url",
			mutate:  func(c *Config) { c.Providers = []ProviderConfig{{Name: "a", Type: ProviderRemote}} },
			wantErr: true,
		},
		{
			name:    "unknown type",
			mutate:  func(c *Config) { c.Providers = []ProviderConfig{{Name: "a", Type: "ftp"}} },
			wantErr: true,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
