package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"fivepack/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("FIVEPACK_DESTINATION", "")
	t.Setenv("FIVEPACK_RESOURCE", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "fivepack", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "fivepack", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.Resource.Name != "my_pack" {
		t.Fatalf("unexpected default resource name %q", cfg.Resource.Name)
	}
	if cfg.Build.Mode != config.ModeMerge {
		t.Fatalf("unexpected default mode %q", cfg.Build.Mode)
	}
	if cfg.Build.Move {
		t.Fatal("expected copy mode by default")
	}
	if cfg.Build.ClassifyMaxBytes != 800_000 {
		t.Fatalf("unexpected classify limit %d", cfg.Build.ClassifyMaxBytes)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, filepath.Dir(cfg.Paths.HistoryDB)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "fivepack.toml")

	type payload struct {
		Paths struct {
			Destination string `toml:"destination"`
		} `toml:"paths"`
		Resource struct {
			Name string `toml:"name"`
		} `toml:"resource"`
		Build struct {
			Mode string `toml:"mode"`
			Move bool   `toml:"move"`
		} `toml:"build"`
	}
	custom := payload{}
	custom.Paths.Destination = filepath.Join(tempDir, "resources", "cars")
	custom.Resource.Name = "cars"
	custom.Build.Mode = "REPLACE"
	custom.Build.Move = true
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.Destination != custom.Paths.Destination {
		t.Fatalf("unexpected destination %q", cfg.Paths.Destination)
	}
	if cfg.Resource.Name != "cars" {
		t.Fatalf("unexpected resource name %q", cfg.Resource.Name)
	}
	if cfg.Build.Mode != config.ModeReplace {
		t.Fatalf("expected mode to be lowercased, got %q", cfg.Build.Mode)
	}
	if !cfg.Build.Move {
		t.Fatal("expected move to be true")
	}
}

func TestEnvFallbackForDestinationAndResource(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dest := filepath.Join(t.TempDir(), "pack")
	t.Setenv("FIVEPACK_DESTINATION", dest)
	t.Setenv("FIVEPACK_RESOURCE", "env_pack")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.Destination != dest {
		t.Fatalf("expected destination from env, got %q", cfg.Paths.Destination)
	}
	if cfg.Resource.Name != "env_pack" {
		t.Fatalf("expected resource name from env, got %q", cfg.Resource.Name)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"spaces in name": "[resource]\nname = \"my pack\"\n",
		"unknown mode":   "[build]\nmode = \"overwrite\"\n",
		"bad level":      "[logging]\nlevel = \"loud\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fivepack.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSetAndSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.Default()
	dest := filepath.Join(t.TempDir(), "dest")

	if err := cfg.Set("paths.destination", dest); err != nil {
		t.Fatalf("Set destination: %v", err)
	}
	if err := cfg.Set("resource.name", "cars"); err != nil {
		t.Fatalf("Set name: %v", err)
	}
	if err := cfg.Set("build.move", "true"); err != nil {
		t.Fatalf("Set move: %v", err)
	}
	if err := cfg.Set("resource.name", "bad name"); err == nil {
		t.Fatal("expected invalid resource name to be rejected")
	}
	if cfg.Resource.Name != "cars" {
		t.Fatalf("rejected Set must leave config unchanged, got %q", cfg.Resource.Name)
	}
	if err := cfg.Set("nope", "1"); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Fatalf("expected unknown key error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "conf", "config.toml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected saved file to exist")
	}
	if loaded.Paths.Destination != dest || loaded.Resource.Name != "cars" || !loaded.Build.Move {
		t.Fatalf("unexpected round trip: %+v", loaded)
	}
	got, err := loaded.Get("build.move")
	if err != nil || got != "true" {
		t.Fatalf("Get build.move = %q, %v", got, err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "sample", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Resource.Name != "my_pack" {
		t.Fatalf("unexpected sample resource %q", cfg.Resource.Name)
	}
}

func TestValidateResourceName(t *testing.T) {
	for _, tc := range []struct {
		name string
		ok   bool
	}{
		{"my_pack", true},
		{"cars-2024", true},
		{"", false},
		{"   ", false},
		{"my pack", false},
		{"tab\tname", false},
	} {
		err := config.ValidateResourceName(tc.name)
		if tc.ok && err != nil {
			t.Fatalf("%q: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error", tc.name)
		}
	}
}
