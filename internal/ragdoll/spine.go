package ragdoll

import (
	"fmt"

	"ragdoll-renderer/internal/logging"
	"ragdoll-renderer/internal/skeleton"
)

// AddSpine allocates a spine with an identity local transform. The first
// spine added to a skeleton without a root becomes the root.
func (r *Ragdoll) AddSpine() (skeleton.BoneID, error) {
	id, err := r.spineIDs.Allocate()
	if err != nil {
		return id, fmt.Errorf("ragdoll: add spine: %w", err)
	}
	b := skeleton.NewBone(id)
	r.spines[id] = b
	if r.root == nil {
		r.root = b
	}
	r.touch()
	return id, nil
}

// FindSpine returns the live spine for id.
func (r *Ragdoll) FindSpine(id skeleton.BoneID) (*skeleton.Bone, error) {
	if !r.spineIDs.IsLive(id) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSpine, id)
	}
	return r.spines[id], nil
}

// Root returns the id of the root spine.
func (r *Ragdoll) Root() (skeleton.BoneID, bool) {
	if r.root == nil {
		return -1, false
	}
	return r.root.ID(), true
}

// SetSpineParent makes parentID the parent of childID. Both handles are
// validated and the edge is checked for cycles before anything changes.
func (r *Ragdoll) SetSpineParent(childID, parentID skeleton.BoneID) error {
	child, err := r.FindSpine(childID)
	if err != nil {
		return fmt.Errorf("ragdoll: set parent: child: %w", err)
	}
	parent, err := r.FindSpine(parentID)
	if err != nil {
		return fmt.Errorf("ragdoll: set parent: parent: %w", err)
	}
	if child == r.root {
		return ErrRootParent
	}
	if err := skeleton.Link(child, parent); err != nil {
		return fmt.Errorf("ragdoll: set parent %d -> %d: %w", childID, parentID, err)
	}
	r.touch()
	return nil
}

// SetSpineTransform replaces a spine's local transform.
func (r *Ragdoll) SetSpineTransform(id skeleton.BoneID, t skeleton.Transform) error {
	b, err := r.FindSpine(id)
	if err != nil {
		return fmt.Errorf("ragdoll: set transform: %w", err)
	}
	b.SetLocal(t)
	return nil
}

// SpineTransform returns a spine's local transform.
func (r *Ragdoll) SpineTransform(id skeleton.BoneID) (skeleton.Transform, error) {
	b, err := r.FindSpine(id)
	if err != nil {
		return skeleton.Transform{}, fmt.Errorf("ragdoll: get transform: %w", err)
	}
	return b.Local(), nil
}

// RemoveSpine releases a spine. Its children move to its parent, and its
// weight column is cleared. The root can only be removed once it has no
// children; the next AddSpine then becomes the new root.
func (r *Ragdoll) RemoveSpine(id skeleton.BoneID) error {
	b, err := r.FindSpine(id)
	if err != nil {
		return fmt.Errorf("ragdoll: remove spine: %w", err)
	}
	children := b.Children()
	if b == r.root && len(children) > 0 {
		return fmt.Errorf("ragdoll: remove spine %d: %w", id, ErrRootHasChildren)
	}

	parent := b.Parent()
	for _, c := range children {
		if parent == nil {
			skeleton.Unlink(c)
			continue
		}
		// parent is an ancestor of c, so this cannot cycle.
		if err := skeleton.Link(c, parent); err != nil {
			return fmt.Errorf("ragdoll: remove spine %d: reparent %d: %w", id, c.ID(), err)
		}
	}
	skeleton.Unlink(b)

	if b == r.root {
		r.root = nil
	}
	r.weights.ClearColumn(int(id))
	r.spines[id] = nil
	if err := r.spineIDs.Release(id); err != nil {
		return fmt.Errorf("ragdoll: remove spine %d: %w", id, err)
	}
	logging.Debugf("ragdoll: removed spine %d, moved %d children", id, len(children))
	r.touch()
	return nil
}
