package batch

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"ragdoll-renderer/internal/logging"
	"ragdoll-renderer/internal/postprocess"
	"ragdoll-renderer/internal/ragdoll"
	"ragdoll-renderer/internal/raster"
	"ragdoll-renderer/internal/rig"
	"ragdoll-renderer/internal/texture"

	"github.com/HugoSmits86/nativewebp"
)

// RestFrame names the output of a rig that declares no frames.
const RestFrame = "rest"

// ErrMissingTexture is reported for a rig whose texture cannot be resolved.
var ErrMissingTexture = errors.New("batch: texture not found")

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir   string
	TexResolver texture.Resolver
	Ragdoll     ragdoll.Config
	RenderSize  int
	Supersample int
	Workers     int
}

// Job is one frame of one rig. An empty Frame renders the rest pose.
type Job struct {
	Rig   *rig.Rig
	Frame string
}

// Name is the output stem for the job.
func (j Job) Name() string {
	if j.Frame == "" {
		return RestFrame
	}
	return j.Frame
}

// Result holds the outcome of processing one job.
type Result struct {
	Rig     string
	Frame   string
	Image   string
	Success bool
	Error   string
}

// Jobs expands rigs into one job per frame. When only is set, just that frame
// is kept for every rig that has it.
func Jobs(rigs []*rig.Rig, only string) []Job {
	var jobs []Job
	for _, r := range rigs {
		if len(r.Frames) == 0 {
			if only == "" || only == RestFrame {
				jobs = append(jobs, Job{Rig: r})
			}
			continue
		}
		for _, f := range r.Frames {
			if only != "" && f.Name != only {
				continue
			}
			jobs = append(jobs, Job{Rig: r, Frame: f.Name})
		}
	}
	return jobs
}

// OutputPath is where a job's image is written.
func OutputPath(outputDir string, j Job) string {
	return filepath.Join(outputDir, j.Rig.Name, j.Name()+".webp")
}

// Run processes all jobs using a worker pool. Each worker builds and owns its
// own Ragdoll per rig; nothing mutable is shared between workers.
func Run(cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					logging.Infof("[%d/%d] %.1f frames/sec", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			built := make(map[*rig.Rig]*rig.Instance)
			for idx := range jobChan {
				results[idx] = processJob(cfg, built, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(cfg Config, built map[*rig.Rig]*rig.Instance, job Job) Result {
	res := Result{Rig: job.Rig.Name, Frame: job.Name()}
	fail := func(err error) Result {
		res.Error = err.Error()
		logging.Debugf("%s/%s: %v", res.Rig, res.Frame, err)
		return res
	}

	inst, ok := built[job.Rig]
	if !ok {
		var err error
		inst, err = rig.Build(job.Rig, cfg.Ragdoll)
		if err != nil {
			return fail(err)
		}
		img := cfg.TexResolver.Resolve(job.Rig.Texture)
		if img == nil {
			return fail(fmt.Errorf("%w: %q", ErrMissingTexture, job.Rig.Texture))
		}
		inst.Ragdoll.SetTexture(texture.Loaded(job.Rig.Texture, img))
		built[job.Rig] = inst
	}

	img, err := RenderFrame(inst, job.Frame, cfg.RenderSize, cfg.Supersample)
	if err != nil {
		return fail(err)
	}

	outPath := OutputPath(cfg.OutputDir, job)
	if err := Save(outPath, img); err != nil {
		return fail(err)
	}

	rel, err := filepath.Rel(cfg.OutputDir, outPath)
	if err != nil {
		rel = outPath
	}
	res.Image = filepath.ToSlash(rel)
	res.Success = true
	return res
}

// RenderFrame poses inst at frame (the rest pose when empty) and rasterizes
// it at size×supersample before downsampling to size×size.
func RenderFrame(inst *rig.Instance, frame string, size, supersample int) (*image.NRGBA, error) {
	if supersample < 1 {
		supersample = 1
	}
	job := Job{Rig: inst.Rig, Frame: frame}
	var err error
	if frame == "" {
		err = inst.ApplyRest()
	} else {
		err = inst.ApplyFrame(frame)
	}
	if err != nil {
		return nil, err
	}

	b := raster.NewBackend(size*supersample, size*supersample)
	if err := inst.Ragdoll.Render(b, inst.RenderTransform()); err != nil {
		return nil, fmt.Errorf("batch: render %s/%s: %w", inst.Rig.Name, job.Name(), err)
	}
	return postprocess.Downsample(b.Image(), supersample), nil
}

// Save writes img as lossless WebP, creating parent directories.
func Save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("batch: WebP encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("batch: close %s: %w", path, err)
	}
	return nil
}
