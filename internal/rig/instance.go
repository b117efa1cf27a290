package rig

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-renderer/internal/logging"
	"ragdoll-renderer/internal/mathutil"
	"ragdoll-renderer/internal/ragdoll"
	"ragdoll-renderer/internal/render"
	"ragdoll-renderer/internal/skeleton"
	"ragdoll-renderer/internal/skin"
)

const weightSumEpsilon = 1e-6

// Instance is a Ragdoll built from a Rig, with name lookups for its spines.
type Instance struct {
	Rig     *Rig
	Ragdoll *ragdoll.Ragdoll

	spines   map[string]skeleton.BoneID
	vertices []skin.VertexID
	frames   map[string]int
}

// Transform converts the file form to a skeleton transform.
func (t TransformSpec) Transform() skeleton.Transform {
	s := 1.0
	if t.Scale != nil {
		s = *t.Scale
	}
	return skeleton.Uniform(mgl64.Vec2{t.Translation[0], t.Translation[1]}, mathutil.Deg2Rad(t.Rotation), s)
}

// Transform converts the file form to a render transform.
func (r RenderSpec) Transform() render.Transform {
	t := render.DefaultTransform()
	t.Translation = mgl32.Vec2{r.Translation[0], r.Translation[1]}
	t.Rotation = float32(mathutil.Deg2Rad(float64(r.Rotation)))
	if r.Scale != nil {
		t.Scale = mgl32.Vec2{r.Scale[0], r.Scale[1]}
	}
	return t
}

// Build validates r and assembles a Ragdoll in the rest pose.
func Build(r *Rig, cfg ragdoll.Config) (*Instance, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("rig: build %s: %w", r.Name, err)
	}
	rd, err := ragdoll.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("rig: build %s: %w", r.Name, err)
	}

	inst := &Instance{
		Rig:      r,
		Ragdoll:  rd,
		spines:   make(map[string]skeleton.BoneID, len(r.Spines)),
		vertices: make([]skin.VertexID, 0, len(r.Vertices)),
		frames:   make(map[string]int, len(r.Frames)),
	}
	for i, f := range r.Frames {
		inst.frames[f.Name] = i
	}

	for _, s := range r.Spines {
		id, err := rd.AddSpine()
		if err != nil {
			return nil, fmt.Errorf("rig: spine %q: %w", s.Name, err)
		}
		inst.spines[s.Name] = id
		if err := rd.SetSpineTransform(id, s.Transform.Transform()); err != nil {
			return nil, fmt.Errorf("rig: spine %q: %w", s.Name, err)
		}
	}
	for _, s := range r.Spines {
		if s.Parent == "" {
			if s.Name != r.Spines[0].Name {
				logging.Warnf("rig %s: spine %q has no parent and will not move with the root", r.Name, s.Name)
			}
			continue
		}
		if err := rd.SetSpineParent(inst.spines[s.Name], inst.spines[s.Parent]); err != nil {
			return nil, fmt.Errorf("rig: spine %q under %q: %w", s.Name, s.Parent, err)
		}
	}

	for i, v := range r.Vertices {
		id, err := rd.AddVertex()
		if err != nil {
			return nil, fmt.Errorf("rig: vertex %d: %w", i, err)
		}
		inst.vertices = append(inst.vertices, id)
		if err := rd.SetVertexPosition(id, mgl64.Vec2{v.Position[0], v.Position[1]}); err != nil {
			return nil, fmt.Errorf("rig: vertex %d: %w", i, err)
		}
		if err := rd.SetVertexTextureCoordinates(id, mgl64.Vec2{v.UV[0], v.UV[1]}); err != nil {
			return nil, fmt.Errorf("rig: vertex %d: %w", i, err)
		}
		for name, w := range v.Weights {
			if err := rd.SetWeight(id, inst.spines[name], w); err != nil {
				return nil, fmt.Errorf("rig: vertex %d weight %q: %w", i, name, err)
			}
		}
		if sum := rd.WeightTable().RowSum(int(id)); !mathutil.ApproxEqual(sum, 1, weightSumEpsilon) {
			logging.Warnf("rig %s: vertex %d weights sum to %.3f", r.Name, i, sum)
		}
	}

	for i, f := range r.Faces {
		face := ragdoll.Face{inst.vertices[f[0]], inst.vertices[f[1]], inst.vertices[f[2]]}
		if err := rd.AddFace(face); err != nil {
			return nil, fmt.Errorf("rig: face %d: %w", i, err)
		}
	}

	if err := inst.ApplyRest(); err != nil {
		return nil, err
	}
	logging.Debugf("rig %s: %d spines, %d vertices, %d faces", r.Name, rd.SpineCount(), rd.VertexCount(), len(r.Faces))
	return inst, nil
}

// Spine returns the handle of the named spine.
func (i *Instance) Spine(name string) (skeleton.BoneID, bool) {
	id, ok := i.spines[name]
	return id, ok
}

// Vertex returns the handle of the n-th vertex in file order.
func (i *Instance) Vertex(n int) (skin.VertexID, bool) {
	if n < 0 || n >= len(i.vertices) {
		return 0, false
	}
	return i.vertices[n], true
}

// RenderTransform returns the rig's whole-mesh placement.
func (i *Instance) RenderTransform() render.Transform {
	return i.Rig.Render.Transform()
}

// ApplyRest poses every spine at its declared transform and recomputes the mesh.
func (i *Instance) ApplyRest() error {
	return i.apply(nil)
}

// ApplyFrame poses the named frame and recomputes the mesh.
func (i *Instance) ApplyFrame(name string) error {
	n, ok := i.frames[name]
	if !ok {
		return fmt.Errorf("rig: %s: %w: unknown frame %q", i.Rig.Name, ErrInvalidRig, name)
	}
	return i.apply(i.Rig.Frames[n].Poses)
}

func (i *Instance) apply(poses map[string]TransformSpec) error {
	for _, s := range i.Rig.Spines {
		t := s.Transform
		if p, ok := poses[s.Name]; ok {
			t = p
		}
		if err := i.Ragdoll.SetSpineTransform(i.spines[s.Name], t.Transform()); err != nil {
			return fmt.Errorf("rig: pose %q: %w", s.Name, err)
		}
	}
	if err := i.Ragdoll.UpdateSpineTransform(); err != nil {
		return fmt.Errorf("rig: %s: %w", i.Rig.Name, err)
	}
	i.Ragdoll.UpdateVertexPositions()
	return nil
}
