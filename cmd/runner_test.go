package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/mbx/internal/registry"
	"github.com/desertthunder/mbx/internal/services"
	"github.com/desertthunder/mbx/internal/shared"
	tu "github.com/desertthunder/mbx/internal/testing"
)

// setupWorkspace writes a media tree and a config pointing at it, returning the config path.
func setupWorkspace(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	for _, rel := range []string{"media/Movies/clip.mp4", "media/Movies/Series/pilot.mkv", "media/song.mp3"} {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}

	config := fmt.Sprintf(`
[browse]
page_size = 10
queue_size = 8

[database]
path = %q

[log]
level = "error"

[[providers]]
name = "Disk"
type = "fs"
description = "Test media"
root = %q

[[providers]]
name = "Lib"
type = "library"

[[providers]]
name = "Radio"
type = "remote"
url = "http://127.0.0.1:1"
browsable = false
`, filepath.Join(dir, "mbx.db"), filepath.Join(dir, "media"))

	configPath = filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return dir, configPath
}

func run(t *testing.T, opts RunnerOpts, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	opts.Output = out
	if opts.Logger == nil {
		opts.Logger = shared.NewDiscardLogger()
	}
	r := NewRunner(opts)
	defer r.Close()

	err := newApp(r).Run(context.Background(), append([]string{"mbx"}, args...))
	return out.String(), err
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			reg := registry.New()
			player := &tu.RecordingPlayer{}

			runner := NewRunner(RunnerOpts{
				Config:   config,
				Logger:   logger,
				Output:   output,
				Registry: reg,
				Player:   player,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if got, _ := runner.providers(); got != reg {
				t.Error("expected registry to be reused")
			}
			if got, _ := runner.newPlayer(); got != player {
				t.Error("expected player to be reused")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil || runner.config.Browse.PageSize != 100 {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("Load", func(t *testing.T) {
		t.Run("missing file keeps defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: shared.NewDiscardLogger()})
			if err := runner.Load(filepath.Join(t.TempDir(), "nope.toml")); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if runner.config.Browse.PageSize != 100 {
				t.Errorf("page size = %d", runner.config.Browse.PageSize)
			}
		})

		t.Run("reads providers", func(t *testing.T) {
			_, configPath := setupWorkspace(t)
			runner := NewRunner(RunnerOpts{Logger: shared.NewDiscardLogger()})
			if err := runner.Load(configPath); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(runner.config.Providers) != 3 || runner.config.Browse.PageSize != 10 {
				t.Errorf("config = %+v", runner.config)
			}
			if runner.configPath != configPath {
				t.Errorf("configPath = %s", runner.configPath)
			}
		})

		t.Run("invalid file fails", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			os.WriteFile(path, []byte("[[providers]]\nname = \"x\"\ntype = \"ftp\"\n"), 0644)
			runner := NewRunner(RunnerOpts{Logger: shared.NewDiscardLogger()})
			if err := runner.Load(path); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})
		runner.writePlainHeader("Title")
		if !strings.Contains(output.String(), "Title\n") {
			t.Errorf("got %q", output.String())
		}

		runner = NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := runner.writePlain("x"); err == nil {
			t.Error("expected error from failing writer")
		}
	})
}

func TestProvidersCommand(t *testing.T) {
	_, configPath := setupWorkspace(t)

	t.Run("table", func(t *testing.T) {
		out, err := run(t, RunnerOpts{}, "--config", configPath, "providers")
		if err != nil {
			t.Fatalf("providers error = %v", err)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 3 || !strings.HasPrefix(lines[0], "Disk") || !strings.Contains(lines[2], "play") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, RunnerOpts{}, "--config", configPath, "providers", "--format", "json")
		if err != nil {
			t.Fatalf("providers error = %v", err)
		}
		var infos []services.ProviderInfo
		if err := json.Unmarshal([]byte(out), &infos); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(infos) != 3 || infos[2].Name != "Radio" || infos[2].Browsable {
			t.Errorf("infos = %+v", infos)
		}
	})
}

func TestListCommand(t *testing.T) {
	dir, configPath := setupWorkspace(t)

	t.Run("top level", func(t *testing.T) {
		out, err := run(t, RunnerOpts{}, "--config", configPath, "ls")
		if err != nil {
			t.Fatalf("ls error = %v", err)
		}
		for _, want := range []string{"/\n", "  Disk/\n", "  Lib/\n", "  Radio/\n", "3 providers"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("walks a path", func(t *testing.T) {
		out, err := run(t, RunnerOpts{}, "--config", configPath, "ls", "Disk", "movies")
		if err != nil {
			t.Fatalf("ls error = %v", err)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 4 {
			t.Fatalf("output = %q", out)
		}
		if lines[0] != "Disk / Movies" || strings.TrimSpace(lines[1]) != "Series/" {
			t.Errorf("output = %q", out)
		}
		if fields := strings.Fields(lines[2]); len(fields) != 3 || fields[0] != "clip" || fields[1] != "video" {
			t.Errorf("leaf line = %q", lines[2])
		}
		if lines[3] != "2 items" {
			t.Errorf("status = %q", lines[3])
		}
	})

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "movies.json")
		if _, err := run(t, RunnerOpts{}, "--config", configPath, "ls", "--format", "json", "--output", path, "Disk", "Movies"); err != nil {
			t.Fatalf("ls error = %v", err)
		}
		tu.AssertFileExists(t, path)

		var listing struct {
			Path  []string            `json:"path"`
			Nodes []services.WireNode `json:"nodes"`
		}
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, path)), &listing); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if strings.Join(listing.Path, ">") != "Disk>Movies" || len(listing.Nodes) != 2 {
			t.Errorf("listing = %+v", listing)
		}
	})

	t.Run("leaf as last segment", func(t *testing.T) {
		out, err := run(t, RunnerOpts{}, "--config", configPath, "ls", "Disk", "song.mp3")
		if err != nil {
			t.Fatalf("ls error = %v", err)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 2 || lines[0] != "Disk" || strings.Contains(out, "Movies") {
			t.Fatalf("output = %q", out)
		}
		if fields := strings.Fields(lines[1]); len(fields) != 3 || fields[0] != "song" || fields[1] != "audio" {
			t.Errorf("leaf line = %q", lines[1])
		}
	})

	playTests := []struct {
		name string
		args []string
	}{
		{"play by file name", []string{"Disk", "Movies", "clip.mp4"}},
		{"play by title", []string{"Disk", "Movies", "clip"}},
		{"play by id", []string{"Disk", "Movies", "Movies/clip.mp4"}},
	}

	for _, tt := range playTests {
		t.Run(tt.name, func(t *testing.T) {
			player := &tu.RecordingPlayer{}
			args := append([]string{"--config", configPath, "ls", "--play"}, tt.args...)
			out, err := run(t, RunnerOpts{Player: player}, args...)
			if err != nil {
				t.Fatalf("ls error = %v", err)
			}
			played := player.Played()
			if len(played) != 1 || !strings.HasSuffix(played[0].URL, "/media/Movies/clip.mp4") {
				t.Errorf("played = %+v", played)
			}
			if !strings.Contains(out, "Playing clip (video)") {
				t.Errorf("output = %q", out)
			}
		})
	}

	t.Run("play failure", func(t *testing.T) {
		player := &tu.RecordingPlayer{Err: errors.New("no display")}
		_, err := run(t, RunnerOpts{Player: player}, "--config", configPath, "ls", "--play", "Disk", "song.mp3")
		if err == nil || !strings.Contains(err.Error(), "no display") {
			t.Errorf("expected player error, got %v", err)
		}
	})

	errorTests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown name", []string{"Disk", "nope"}, shared.ErrNotFound},
		{"leaf in the middle", []string{"Disk", "song.mp3", "x"}, shared.ErrInvalidArgument},
		{"not browsable", []string{"Radio"}, shared.ErrNotBrowsable},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", configPath, "ls"}, tt.args...)
			if _, err := run(t, RunnerOpts{}, args...); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("library provider after import", func(t *testing.T) {
		media := filepath.Join(dir, "media")
		out, err := run(t, RunnerOpts{}, "--config", configPath, "library", "import", media)
		if err != nil {
			t.Fatalf("import error = %v", err)
		}
		if !strings.HasPrefix(out, "✓ Imported") || !strings.Contains(out, "3 items") {
			t.Errorf("import output = %q", out)
		}

		out, err = run(t, RunnerOpts{}, "--config", configPath, "ls", "Lib", "media", "Movies")
		if err != nil {
			t.Fatalf("ls error = %v", err)
		}
		if !strings.HasPrefix(out, "Lib / media / Movies\n") || !strings.Contains(out, "  clip ") {
			t.Errorf("output = %q", out)
		}

		player := &tu.RecordingPlayer{}
		if _, err := run(t, RunnerOpts{Player: player}, "--config", configPath, "ls", "--play", "Lib", "media", "Movies", "clip.mp4"); err != nil {
			t.Fatalf("ls --play error = %v", err)
		}
		if played := player.Played(); len(played) != 1 || !strings.HasSuffix(played[0].URL, "/media/Movies/clip.mp4") {
			t.Errorf("played = %+v", played)
		}

		out, err = run(t, RunnerOpts{}, "--config", configPath, "library", "stats", "--json")
		if err != nil {
			t.Fatalf("stats error = %v", err)
		}
		var stats libraryStats
		if err := json.Unmarshal([]byte(out), &stats); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if stats.Total != 3 || stats.Items["video"] != 2 || stats.Items["audio"] != 1 || stats.Containers != 3 {
			t.Errorf("stats = %+v", stats)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		out, err := run(t, RunnerOpts{}, "--config", path, "setup", "config")
		if err != nil {
			t.Fatalf("setup config error = %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(out, path) {
			t.Errorf("output = %q", out)
		}

		if _, err := run(t, RunnerOpts{}, "--config", path, "setup", "config"); err == nil {
			t.Error("expected error when the config already exists")
		}
	})

	t.Run("database", func(t *testing.T) {
		_, configPath := setupWorkspace(t)
		out, err := run(t, RunnerOpts{}, "--config", configPath, "setup", "database")
		if err != nil {
			t.Fatalf("setup database error = %v", err)
		}
		if !strings.Contains(out, "at migration") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("database rollback", func(t *testing.T) {
		_, configPath := setupWorkspace(t)
		if _, err := run(t, RunnerOpts{}, "--config", configPath, "setup", "database"); err != nil {
			t.Fatalf("setup database error = %v", err)
		}

		out, err := run(t, RunnerOpts{}, "--config", configPath, "setup", "database", "--rollback", "1")
		if err != nil {
			t.Fatalf("rollback error = %v", err)
		}
		if !strings.Contains(out, "rolled back to migration 0") {
			t.Errorf("output = %q", out)
		}

		if _, err := run(t, RunnerOpts{}, "--config", configPath, "setup", "database", "--rollback", "1"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument with nothing to roll back, got %v", err)
		}

		out, err = run(t, RunnerOpts{}, "--config", configPath, "setup", "database")
		if err != nil || !strings.Contains(out, "at migration 1") {
			t.Errorf("re-applying migrations: out=%q err=%v", out, err)
		}
	})

	t.Run("library import needs a directory", func(t *testing.T) {
		_, configPath := setupWorkspace(t)
		if _, err := run(t, RunnerOpts{}, "--config", configPath, "library", "import"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
