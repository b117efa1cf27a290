package skeleton

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrCycle is returned when a link would make a bone its own ancestor,
	// or when propagation visits more bones than its budget allows.
	ErrCycle = errors.New("skeleton: cycle in bone hierarchy")
	// ErrNilBone is returned when a nil bone is passed where one is required.
	ErrNilBone = errors.New("skeleton: nil bone")
)

// BoneID identifies a bone inside its owning skeleton.
type BoneID int

// Bone is one node of the skeleton tree. Parent and child edges are only
// created through Link so both sides always agree.
type Bone struct {
	id       BoneID
	local    Transform
	world    mgl64.Mat3
	parent   *Bone
	children []*Bone
}

// NewBone creates a detached bone with an identity local and world transform.
func NewBone(id BoneID) *Bone {
	return &Bone{
		id:    id,
		local: Identity(),
		world: mgl64.Ident3(),
	}
}

func (b *Bone) ID() BoneID { return b.id }

// Local returns the transform relative to the parent.
func (b *Bone) Local() Transform { return b.local }

// SetLocal replaces the local transform. World transforms are stale until the
// next Propagate.
func (b *Bone) SetLocal(t Transform) { b.local = t }

// World returns the world matrix computed by the last Propagate.
func (b *Bone) World() mgl64.Mat3 { return b.world }

// Apply transforms a rest-space point by the bone's world matrix.
func (b *Bone) Apply(p mgl64.Vec2) mgl64.Vec2 {
	return ApplyPoint(b.world, p)
}

// Parent returns the parent bone, or nil for a root or detached bone.
func (b *Bone) Parent() *Bone { return b.parent }

// Children returns a copy of the child list in insertion order.
func (b *Bone) Children() []*Bone {
	out := make([]*Bone, len(b.children))
	copy(out, b.children)
	return out
}

// IsAncestorOf reports whether b appears on other's parent chain.
func (b *Bone) IsAncestorOf(other *Bone) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == b {
			return true
		}
	}
	return false
}

// Link makes parent the parent of child, detaching child from any previous
// parent. Nothing is changed when the link would create a cycle.
func Link(child, parent *Bone) error {
	if child == nil || parent == nil {
		return ErrNilBone
	}
	if child == parent || child.IsAncestorOf(parent) {
		return ErrCycle
	}
	if child.parent == parent {
		return nil
	}
	Unlink(child)
	child.parent = parent
	parent.children = append(parent.children, child)
	return nil
}

// Unlink detaches child from its parent. It is a no-op for a bone without one.
func Unlink(child *Bone) {
	if child == nil || child.parent == nil {
		return
	}
	p := child.parent
	for i, c := range p.children {
		if c == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	child.parent = nil
}

// Propagate computes world transforms for root and every descendant in
// pre-order: world = parent.world · local, with the root using its local
// transform directly. budget bounds the number of visits; exceeding it means
// the tree is malformed. It returns the number of bones visited.
func Propagate(root *Bone, budget int) (int, error) {
	if root == nil {
		return 0, ErrNilBone
	}

	root.world = root.local.Matrix()
	stack := []*Bone{root}
	visited := 0
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visited++
		if visited > budget {
			return visited, ErrCycle
		}

		for _, c := range b.children {
			c.world = b.world.Mul3(c.local.Matrix())
			stack = append(stack, c)
		}
	}
	return visited, nil
}
