package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ragdoll-renderer/internal/batch"
	"ragdoll-renderer/internal/config"
	"ragdoll-renderer/internal/logging"
	"ragdoll-renderer/internal/ragdoll"
	"ragdoll-renderer/internal/rig"
	"ragdoll-renderer/internal/texture"
	"ragdoll-renderer/internal/watch"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a TOML config file")
	rigFile := flag.String("rig", "", "Render only this rig file (default: every rig in rig_dir)")
	frame := flag.String("frame", "", "Render only this frame")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	dataDir := flag.String("data", "", "Path to base directory (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory (default: renders)")
	texTimeout := flag.Duration("texture-timeout", 30*time.Second, "How long to wait for textures to load")
	watchMode := flag.Bool("watch", false, "Re-render when rigs or textures change")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		DataDir:   *dataDir,
		OutputDir: *outputDir,
		Workers:   *workers,
		Verbose:   *verbose,
	})
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &renderer{cfg: cfg, rigFile: *rigFile, frame: *frame, texTimeout: *texTimeout}
	r.reindex()

	failed, err := r.run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !*watchMode {
		if failed > 0 {
			os.Exit(1)
		}
		return
	}
	if err := r.watch(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type renderer struct {
	cfg        config.Config
	rigFile    string
	frame      string
	texTimeout time.Duration

	index *texture.Index
	cache *texture.Cache
}

func (r *renderer) reindex() {
	r.index = texture.BuildIndex(r.cfg.TextureDirs...)
	r.cache = texture.NewCache(r.index)
	fmt.Printf("Textures: %d indexed\n", r.index.Len())
}

// rigFiles lists the rigs to render, sorted for stable output.
func (r *renderer) rigFiles() ([]string, error) {
	if r.rigFile != "" {
		return []string{r.rigFile}, nil
	}
	entries, err := os.ReadDir(r.cfg.RigDir)
	if err != nil {
		return nil, fmt.Errorf("read rig dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && watch.IsRigFile(e.Name()) {
			files = append(files, filepath.Join(r.cfg.RigDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (r *renderer) loadRigs() ([]*rig.Rig, error) {
	files, err := r.rigFiles()
	if err != nil {
		return nil, err
	}
	var rigs []*rig.Rig
	for _, f := range files {
		rg, err := rig.Load(f)
		if err != nil {
			return nil, err
		}
		if rg.Name == "" {
			rg.Name = strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		}
		rigs = append(rigs, rg)
	}
	return rigs, nil
}

// preload starts every rig texture loading at once and waits for all of them,
// so workers only hit the warm cache.
func (r *renderer) preload(ctx context.Context, rigs []*rig.Rig) {
	ctx, cancel := context.WithTimeout(ctx, r.texTimeout)
	defer cancel()

	pending := make(map[string]*texture.Pending)
	for _, rg := range rigs {
		if _, ok := pending[rg.Texture]; !ok {
			pending[rg.Texture] = texture.ResolveAsync(r.cache, rg.Texture)
		}
	}
	for name, p := range pending {
		if _, err := p.Wait(ctx); err != nil {
			logging.Warnf("texture %q: %v", name, err)
		}
	}
}

func (r *renderer) run(ctx context.Context) (int, error) {
	rigs, err := r.loadRigs()
	if err != nil {
		return 0, err
	}
	jobs := batch.Jobs(rigs, r.frame)
	if len(jobs) == 0 {
		fmt.Println("No frames to render.")
		return 0, nil
	}

	r.preload(ctx, rigs)

	fmt.Printf("Ragdoll renderer → WebP\n")
	fmt.Printf("Rigs: %d, Frames: %d, Workers: %d\n", len(rigs), len(jobs), r.cfg.Workers)
	fmt.Printf("Output: %s\n", r.cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	batchCfg := batch.Config{
		OutputDir:   r.cfg.OutputDir,
		TexResolver: r.cache,
		Ragdoll:     ragdoll.Config{MaxSpines: r.cfg.MaxSpines, MaxVertices: r.cfg.MaxVertices},
		RenderSize:  r.cfg.RenderSize,
		Supersample: r.cfg.Supersample,
		Workers:     r.cfg.Workers,
	}
	results := batch.Run(batchCfg, jobs)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	manifest := batch.NewManifest(results)
	fmt.Printf("Rendered: %d/%d\n", manifest.Rendered, len(jobs))

	if manifest.Failed > 0 {
		fmt.Printf("\nFailed (%d):\n", manifest.Failed)
		shown := 0
		for _, res := range results {
			if res.Success {
				continue
			}
			fmt.Printf("  %s/%s: %s\n", res.Rig, res.Frame, res.Error)
			if shown++; shown == 20 {
				break
			}
		}
	}

	// Write manifest
	manifestPath := filepath.Join(r.cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		logging.Warnf("manifest: %v", err)
	} else if err := batch.WriteManifest(manifestPath, manifest); err != nil {
		logging.Warnf("manifest write failed: %v", err)
	} else {
		fmt.Printf("Manifest: %s (run %s)\n", manifestPath, manifest.RunID)
	}

	return manifest.Failed, nil
}

// watch re-renders whenever a rig or texture changes until ctx is cancelled.
func (r *renderer) watch(ctx context.Context) error {
	dirs := []string{r.cfg.RigDir}
	if r.rigFile != "" {
		dirs = []string{filepath.Dir(r.rigFile)}
	}
	for _, d := range r.cfg.TextureDirs {
		if !contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}

	w, err := watch.New(nil, dirs...)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	logging.Infof("watching %s", strings.Join(dirs, ", "))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warnf("watch: %v", err)
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			logging.Infof("changed: %s", path)
			if watch.IsTextureFile(path) {
				if indexed, known := r.index.ResolvePath(path); known {
					r.cache.Invalidate(indexed)
				} else {
					r.reindex()
				}
			}
			if _, err := r.run(ctx); err != nil {
				logging.Errorf("render: %v", err)
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
