// Package rig loads ragdoll descriptions from YAML files.
package rig

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidRig marks a rig file that parses but cannot be built.
var ErrInvalidRig = errors.New("invalid rig")

// Rig is the on-disk description of one skinned mesh.
type Rig struct {
	Name     string       `yaml:"name"`
	Texture  string       `yaml:"texture"`
	Render   RenderSpec   `yaml:"render"`
	Spines   []SpineSpec  `yaml:"spines"`
	Vertices []VertexSpec `yaml:"vertices"`
	Faces    [][3]int     `yaml:"faces"`
	Frames   []FrameSpec  `yaml:"frames"`
}

// TransformSpec is a bone transform with rotation in degrees. A missing
// scale means 1.
type TransformSpec struct {
	Translation [2]float64 `yaml:"translation"`
	Rotation    float64    `yaml:"rotation"`
	Scale       *float64   `yaml:"scale,omitempty"`
}

// SpineSpec declares one bone. The first spine is the root and must not name
// a parent.
type SpineSpec struct {
	Name      string        `yaml:"name"`
	Parent    string        `yaml:"parent,omitempty"`
	Transform TransformSpec `yaml:"transform"`
}

// VertexSpec declares one vertex with its bind weights keyed by spine name.
type VertexSpec struct {
	Position [2]float64         `yaml:"position"`
	UV       [2]float64         `yaml:"uv"`
	Weights  map[string]float64 `yaml:"weights"`
}

// FrameSpec is a named discrete pose. Spines not listed keep their rest
// transform.
type FrameSpec struct {
	Name  string                   `yaml:"name"`
	Poses map[string]TransformSpec `yaml:"poses"`
}

// RenderSpec places the whole mesh in clip space.
type RenderSpec struct {
	Translation [2]float32  `yaml:"translation"`
	Scale       *[2]float32 `yaml:"scale,omitempty"`
	Rotation    float32     `yaml:"rotation"`
}

// Load reads and validates a rig file.
func Load(path string) (*Rig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rig: read %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rig: %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates rig YAML.
func Parse(data []byte) (*Rig, error) {
	var r Rig
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// FrameNames lists frames in file order.
func (r *Rig) FrameNames() []string {
	names := make([]string, len(r.Frames))
	for i, f := range r.Frames {
		names[i] = f.Name
	}
	return names
}

// Validate checks references between sections. Cycles are left to the
// skeleton, which rejects them while building.
func (r *Rig) Validate() error {
	if len(r.Spines) == 0 {
		return fmt.Errorf("%w: no spines", ErrInvalidRig)
	}
	if r.Spines[0].Parent != "" {
		return fmt.Errorf("%w: root spine %q has parent %q", ErrInvalidRig, r.Spines[0].Name, r.Spines[0].Parent)
	}

	spines := make(map[string]struct{}, len(r.Spines))
	for i, s := range r.Spines {
		if s.Name == "" {
			return fmt.Errorf("%w: spine %d has no name", ErrInvalidRig, i)
		}
		if _, dup := spines[s.Name]; dup {
			return fmt.Errorf("%w: duplicate spine %q", ErrInvalidRig, s.Name)
		}
		spines[s.Name] = struct{}{}
	}
	for _, s := range r.Spines {
		if s.Parent == "" {
			continue
		}
		if s.Parent == s.Name {
			return fmt.Errorf("%w: spine %q is its own parent", ErrInvalidRig, s.Name)
		}
		if _, ok := spines[s.Parent]; !ok {
			return fmt.Errorf("%w: spine %q: unknown parent %q", ErrInvalidRig, s.Name, s.Parent)
		}
	}

	for i, v := range r.Vertices {
		if !finite(v.Position[:]...) || !finite(v.UV[:]...) {
			return fmt.Errorf("%w: vertex %d: position %v uv %v must be finite", ErrInvalidRig, i, v.Position, v.UV)
		}
		for name, w := range v.Weights {
			if _, ok := spines[name]; !ok {
				return fmt.Errorf("%w: vertex %d: weight for unknown spine %q", ErrInvalidRig, i, name)
			}
			if math.IsNaN(w) || w < 0 || w > 1 {
				return fmt.Errorf("%w: vertex %d: weight %g for %q outside [0,1]", ErrInvalidRig, i, w, name)
			}
		}
	}

	for i, f := range r.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(r.Vertices) {
				return fmt.Errorf("%w: face %d: vertex %d out of range", ErrInvalidRig, i, idx)
			}
		}
	}

	frames := make(map[string]struct{}, len(r.Frames))
	for i, f := range r.Frames {
		if f.Name == "" {
			return fmt.Errorf("%w: frame %d has no name", ErrInvalidRig, i)
		}
		if _, dup := frames[f.Name]; dup {
			return fmt.Errorf("%w: duplicate frame %q", ErrInvalidRig, f.Name)
		}
		frames[f.Name] = struct{}{}
		for name := range f.Poses {
			if _, ok := spines[name]; !ok {
				return fmt.Errorf("%w: frame %q: unknown spine %q", ErrInvalidRig, f.Name, name)
			}
		}
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
