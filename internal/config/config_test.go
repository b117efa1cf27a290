package config

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragdoll.toml")
	doc := `
base_dir = "/srv/ragdoll"
texture_dirs = ["skins", "/abs/tex"]
render_size = 512
supersample = 4
max_vertices = 1024
log_level = "warn"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseDir != "/srv/ragdoll" || cfg.RenderSize != 512 || cfg.Supersample != 4 || cfg.MaxVertices != 1024 {
		t.Fatalf("loaded %+v", cfg)
	}
	if cfg.Workers != 0 {
		t.Fatalf("unset keys keep zero values before Resolve")
	}

	cfg.Resolve(Flags{Workers: 3})
	if cfg.RigDir != filepath.Join("/srv/ragdoll", "rigs") {
		t.Fatalf("rig dir = %q", cfg.RigDir)
	}
	if cfg.TextureDirs[0] != filepath.Join("/srv/ragdoll", "skins") || cfg.TextureDirs[1] != "/abs/tex" {
		t.Fatalf("texture dirs = %v", cfg.TextureDirs)
	}
	if cfg.Workers != 3 || cfg.Supersample != 4 || cfg.MaxSpines != 128 || cfg.LogLevel != "warn" {
		t.Fatalf("resolved %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected read error")
	}

	cases := []struct {
		name string
		doc  string
	}{
		{"syntax", "render_size = \n"},
		{"type", "render_size = \"big\"\n"},
		{"unknown_key", "render_sise = 3\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(dir, c.name+".toml")
			if err := os.WriteFile(path, []byte(c.doc), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected parse error")
			}
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	cfg := Config{BaseDir: "/data"}
	cfg.Resolve(Flags{})

	want := Config{
		BaseDir:     "/data",
		RigDir:      filepath.Join("/data", "rigs"),
		OutputDir:   filepath.Join("/data", "renders"),
		RenderSize:  256,
		Supersample: 2,
		Workers:     runtime.NumCPU(),
		MaxSpines:   128,
		MaxVertices: 512,
		LogLevel:    "info",
	}
	if len(cfg.TextureDirs) != 1 || cfg.TextureDirs[0] != want.RigDir {
		t.Fatalf("texture dirs default to the rig dir, got %v", cfg.TextureDirs)
	}
	cfg.TextureDirs = nil
	if !reflect.DeepEqual(cfg, want) {
		t.Fatalf("resolved %+v\nwant     %+v", cfg, want)
	}
}

func TestResolveFlagsOverride(t *testing.T) {
	cfg := Config{BaseDir: "/data", OutputDir: "out", Workers: 2, LogLevel: "error"}
	cfg.Resolve(Flags{DataDir: "/other", OutputDir: "/tmp/x", Verbose: true})

	if cfg.BaseDir != "/other" || cfg.OutputDir != "/tmp/x" {
		t.Fatalf("paths = %q %q", cfg.BaseDir, cfg.OutputDir)
	}
	if cfg.Workers != 2 {
		t.Fatalf("file value should survive without a flag, got %d", cfg.Workers)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("verbose should force debug, got %q", cfg.LogLevel)
	}
}
