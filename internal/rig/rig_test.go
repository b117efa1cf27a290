package rig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-renderer/internal/mathutil"
	"ragdoll-renderer/internal/ragdoll"
	"ragdoll-renderer/internal/skeleton"
)

const armRig = `
name: arm
texture: arm.png
render:
  translation: [0.5, 0]
  scale: [0.1, 0.1]
spines:
  - name: root
  - name: arm
    parent: root
    transform:
      translation: [10, 0]
vertices:
  - position: [0, 0]
    uv: [0, 0]
    weights: {arm: 1}
  - position: [1, 0]
    uv: [1, 0]
    weights: {arm: 1}
  - position: [0, 1]
    uv: [0, 1]
    weights: {root: 0.5, arm: 0.5}
faces:
  - [0, 1, 2]
frames:
  - name: rest
  - name: raise
    poses:
      root:
        rotation: 90
`

func vertexPos(t *testing.T, inst *Instance, n int) mgl64.Vec2 {
	t.Helper()
	id, ok := inst.Vertex(n)
	if !ok {
		t.Fatalf("vertex %d missing", n)
	}
	v, err := inst.Ragdoll.FindVertex(id)
	if err != nil {
		t.Fatalf("find vertex: %v", err)
	}
	p := inst.Ragdoll.Positions()
	return mgl64.Vec2{float64(p[v.Offset()]), float64(p[v.Offset()+1])}
}

func TestBuildRestPose(t *testing.T) {
	r, err := Parse([]byte(armRig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	inst, err := Build(r, ragdoll.Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if inst.Ragdoll.SpineCount() != 2 || inst.Ragdoll.VertexCount() != 3 {
		t.Fatalf("counts = %d spines, %d vertices", inst.Ragdoll.SpineCount(), inst.Ragdoll.VertexCount())
	}
	if got := len(inst.Ragdoll.Indices()); got != 3 {
		t.Fatalf("indices = %d, want 3", got)
	}
	if inst.Ragdoll.State() != ragdoll.Animating {
		t.Fatalf("state = %v, want Animating", inst.Ragdoll.State())
	}

	if got := vertexPos(t, inst, 0); !got.ApproxEqualThreshold(mgl64.Vec2{10, 0}, 1e-5) {
		t.Fatalf("vertex 0 = %v, want (10,0)", got)
	}
	// Half root (0,1), half arm (10,1).
	if got := vertexPos(t, inst, 2); !got.ApproxEqualThreshold(mgl64.Vec2{5, 1}, 1e-5) {
		t.Fatalf("vertex 2 = %v, want (5,1)", got)
	}

	rt := inst.RenderTransform()
	if rt.Translation[0] != 0.5 || rt.Scale[0] != 0.1 {
		t.Fatalf("render transform = %+v", rt)
	}
	if _, ok := inst.Spine("arm"); !ok {
		t.Fatalf("spine lookup by name failed")
	}
	root, _ := inst.Ragdoll.Root()
	if id, _ := inst.Spine("root"); id != root {
		t.Fatalf("first spine should be the root")
	}
}

func TestApplyFrame(t *testing.T) {
	r, err := Parse([]byte(armRig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	inst, err := Build(r, ragdoll.Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if err := inst.ApplyFrame("raise"); err != nil {
		t.Fatalf("raise: %v", err)
	}
	if got := vertexPos(t, inst, 0); !got.ApproxEqualThreshold(mgl64.Vec2{0, 10}, 1e-5) {
		t.Fatalf("raised vertex 0 = %v, want (0,10)", got)
	}

	// Frames are absolute poses, so going back restores the rest layout.
	if err := inst.ApplyFrame("rest"); err != nil {
		t.Fatalf("rest: %v", err)
	}
	if got := vertexPos(t, inst, 0); !got.ApproxEqualThreshold(mgl64.Vec2{10, 0}, 1e-5) {
		t.Fatalf("rest vertex 0 = %v, want (10,0)", got)
	}

	if err := inst.ApplyFrame("wave"); !errors.Is(err, ErrInvalidRig) {
		t.Fatalf("expected ErrInvalidRig for unknown frame, got %v", err)
	}
	if names := r.FrameNames(); len(names) != 2 || names[1] != "raise" {
		t.Fatalf("frame names = %v", names)
	}
}

func TestTransformSpecDefaults(t *testing.T) {
	got := TransformSpec{Translation: [2]float64{1, 2}, Rotation: 180}.Transform()
	want := skeleton.Uniform(mgl64.Vec2{1, 2}, mathutil.Deg2Rad(180), 1)
	if got != want {
		t.Fatalf("transform = %+v, want %+v", got, want)
	}
	half := 0.5
	if s := (TransformSpec{Scale: &half}).Transform().Scale; s != (mgl64.Vec2{0.5, 0.5}) {
		t.Fatalf("scale = %v", s)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"no_spines", "name: x\n"},
		{"root_parent", "spines:\n  - {name: a, parent: b}\n  - {name: b}\n"},
		{"duplicate_spine", "spines:\n  - {name: a}\n  - {name: a}\n"},
		{"unnamed_spine", "spines:\n  - {name: a}\n  - {parent: a}\n"},
		{"unknown_parent", "spines:\n  - {name: a}\n  - {name: b, parent: c}\n"},
		{"self_parent", "spines:\n  - {name: a}\n  - {name: b, parent: b}\n"},
		{"weight_spine", "spines:\n  - {name: a}\nvertices:\n  - {weights: {z: 1}}\n"},
		{"weight_range", "spines:\n  - {name: a}\nvertices:\n  - {weights: {a: 2}}\n"},
		{"face_range", "spines:\n  - {name: a}\nvertices:\n  - {}\nfaces:\n  - [0, 0, 1]\n"},
		{"frame_spine", "spines:\n  - {name: a}\nframes:\n  - {name: f, poses: {z: {}}}\n"},
		{"frame_duplicate", "spines:\n  - {name: a}\nframes:\n  - {name: f}\n  - {name: f}\n"},
		{"nonfinite_uv", "spines:\n  - {name: a}\nvertices:\n  - {uv: [.inf, 0]}\n"},
		{"nan_position", "spines:\n  - {name: a}\nvertices:\n  - {position: [0, .nan]}\n"},
		{"nan_weight", "spines:\n  - {name: a}\nvertices:\n  - {weights: {a: .nan}}\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Parse([]byte(c.doc)); !errors.Is(err, ErrInvalidRig) {
				t.Fatalf("expected ErrInvalidRig, got %v", err)
			}
		})
	}
}

func TestBuildCycle(t *testing.T) {
	doc := "spines:\n  - {name: root}\n  - {name: a, parent: b}\n  - {name: b, parent: a}\n"
	r, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := Build(r, ragdoll.Config{}); !errors.Is(err, skeleton.ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arm.yaml")
	if err := os.WriteFile(path, []byte(armRig), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.Name != "arm" || r.Texture != "arm.png" || len(r.Faces) != 1 {
		t.Fatalf("loaded %+v", r)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("spines: [\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
