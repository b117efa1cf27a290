package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir     string   `toml:"base_dir"`
	RigDir      string   `toml:"rig_dir"`
	TextureDirs []string `toml:"texture_dirs"`
	OutputDir   string   `toml:"output_dir"`

	// Render settings
	RenderSize  int `toml:"render_size"`
	Supersample int `toml:"supersample"`
	Workers     int `toml:"workers"`

	// Ragdoll capacity
	MaxSpines   int `toml:"max_spines"`
	MaxVertices int `toml:"max_vertices"`

	LogLevel string `toml:"log_level"`
}

// Load reads a TOML config file and returns Config.
// Fields not set in the file keep their zero values. Unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.DataDir != "" {
		c.BaseDir = flags.DataDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Verbose {
		c.LogLevel = "debug"
	}

	// Auto-detect base dir if still empty
	if c.BaseDir == "" {
		c.BaseDir = detectBaseDir()
	}

	// Resolve relative paths against base dir
	c.RigDir = c.underBase(c.RigDir, "rigs")
	if len(c.TextureDirs) == 0 {
		c.TextureDirs = []string{c.RigDir}
	} else {
		for i, d := range c.TextureDirs {
			c.TextureDirs[i] = c.underBase(d, "")
		}
	}
	c.OutputDir = c.underBase(c.OutputDir, "renders")

	// Defaults for render settings
	if c.RenderSize <= 0 {
		c.RenderSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MaxSpines <= 0 {
		c.MaxSpines = 128
	}
	if c.MaxVertices <= 0 {
		c.MaxVertices = 512
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// underBase joins a relative path onto BaseDir, using def when p is empty.
func (c *Config) underBase(p, def string) string {
	if p == "" {
		p = def
	}
	if filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	DataDir   string
	OutputDir string
	Workers   int
	Verbose   bool
}

// detectBaseDir looks for a directory holding "rigs", next to the executable
// first and then from the working directory.
func detectBaseDir() string {
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir)} {
			if isDir(filepath.Join(base, "rigs")) {
				return base
			}
		}
	}

	cwd, _ := os.Getwd()
	if isDir(filepath.Join(cwd, "rigs")) {
		return cwd
	}
	return ""
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
