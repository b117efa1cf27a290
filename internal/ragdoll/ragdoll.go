package ragdoll

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-renderer/internal/handle"
	"ragdoll-renderer/internal/render"
	"ragdoll-renderer/internal/skeleton"
	"ragdoll-renderer/internal/skin"
)

const (
	DefaultMaxSpines   = 128
	DefaultMaxVertices = 512

	// maxIndexable is the number of vertices a uint16 index buffer can address.
	maxIndexable = 1 << 16
)

var (
	ErrNoRoot          = errors.New("ragdoll: no root spine")
	ErrInvalidSpine    = errors.New("ragdoll: invalid spine id")
	ErrInvalidVertex   = errors.New("ragdoll: invalid vertex id")
	ErrRootParent      = errors.New("ragdoll: root spine cannot have a parent")
	ErrRootHasChildren = errors.New("ragdoll: root spine still has children")
	ErrNoTexture       = errors.New("ragdoll: no texture")
	ErrConfig          = errors.New("ragdoll: invalid config")
	ErrNonFinite       = errors.New("ragdoll: coordinate is NaN or infinite")
)

// Config fixes the handle capacities of a Ragdoll. Zero values take the defaults.
type Config struct {
	MaxSpines   int
	MaxVertices int
}

func (c Config) withDefaults() Config {
	if c.MaxSpines <= 0 {
		c.MaxSpines = DefaultMaxSpines
	}
	if c.MaxVertices <= 0 {
		c.MaxVertices = DefaultMaxVertices
	}
	return c
}

// Face is a triangle given by three vertex handles.
type Face [3]skin.VertexID

// Ragdoll owns a skeleton, a skinned mesh and the weights binding them.
// It is not safe for concurrent use; one goroutine owns it for its lifetime.
type Ragdoll struct {
	cfg Config

	spineIDs  *handle.Allocator[skeleton.BoneID]
	vertexIDs *handle.Allocator[skin.VertexID]

	spines []*skeleton.Bone // indexed by BoneID, nil when free
	root   *skeleton.Bone

	vertices    []*skin.Vertex // insertion order
	vertexTable []int          // VertexID -> index into vertices, -1 when free
	weights     *skin.WeightTable

	faces     []Face
	positions []float32
	texcoords []float32
	indices   []uint16

	texture render.Texture
	state   State
}

// New creates an empty Ragdoll.
func New(cfg Config) (*Ragdoll, error) {
	cfg = cfg.withDefaults()
	if cfg.MaxVertices > maxIndexable {
		return nil, fmt.Errorf("%w: max vertices %d exceeds %d", ErrConfig, cfg.MaxVertices, maxIndexable)
	}

	vt := make([]int, cfg.MaxVertices)
	for i := range vt {
		vt[i] = -1
	}

	return &Ragdoll{
		cfg:         cfg,
		spineIDs:    handle.New[skeleton.BoneID](cfg.MaxSpines),
		vertexIDs:   handle.New[skin.VertexID](cfg.MaxVertices),
		spines:      make([]*skeleton.Bone, cfg.MaxSpines),
		vertexTable: vt,
		weights:     skin.NewWeightTable(cfg.MaxVertices, cfg.MaxSpines),
	}, nil
}

// Config returns the capacities the Ragdoll was created with.
func (r *Ragdoll) Config() Config { return r.cfg }

// WeightTable returns the vertex×spine weight table.
func (r *Ragdoll) WeightTable() *skin.WeightTable { return r.weights }

// State reports where the Ragdoll is in its build/animate cycle.
func (r *Ragdoll) State() State { return r.state }

// touch records a topology change.
func (r *Ragdoll) touch() {
	if r.spineIDs.Len() == 0 && r.vertexIDs.Len() == 0 {
		r.state = Empty
		return
	}
	r.state = Building
}

// UpdateSpineTransform propagates world transforms from the root down.
func (r *Ragdoll) UpdateSpineTransform() error {
	if r.root == nil {
		return ErrNoRoot
	}
	if _, err := skeleton.Propagate(r.root, r.spineIDs.Cap()); err != nil {
		return fmt.Errorf("ragdoll: propagate: %w", err)
	}
	r.state = Posable
	return nil
}

// UpdateVertexPositions recomputes every vertex's current position from the
// world transforms of the last UpdateSpineTransform.
func (r *Ragdoll) UpdateVertexPositions() {
	for _, v := range r.vertices {
		v.CalculatePosition(r, r.weights.Row(int(v.ID())), r.positions)
	}
	if r.state == Posable {
		r.state = Animating
	}
}

// BoneWorld implements skin.Pose.
func (r *Ragdoll) BoneWorld(id skeleton.BoneID) (mgl64.Mat3, bool) {
	if !r.spineIDs.IsLive(id) {
		return mgl64.Mat3{}, false
	}
	return r.spines[id].World(), true
}

// Positions returns the stride-2 current position array in vertex insertion
// order. The slice is owned by the Ragdoll and must not be modified.
func (r *Ragdoll) Positions() []float32 { return r.positions }

// TexCoords returns the stride-2 texture coordinate array. Read only.
func (r *Ragdoll) TexCoords() []float32 { return r.texcoords }

// Indices returns the triangle index buffer. Read only.
func (r *Ragdoll) Indices() []uint16 { return r.indices }

// Faces returns a copy of the face list.
func (r *Ragdoll) Faces() []Face {
	out := make([]Face, len(r.faces))
	copy(out, r.faces)
	return out
}

// SpineCount returns the number of live spines.
func (r *Ragdoll) SpineCount() int { return r.spineIDs.Len() }

// VertexCount returns the number of live vertices.
func (r *Ragdoll) VertexCount() int { return r.vertexIDs.Len() }
