package ragdoll

// State is the lifecycle stage of a Ragdoll.
type State int

const (
	// Empty has no spines and no vertices.
	Empty State = iota
	// Building has topology changes not yet propagated.
	Building
	// Posable has a propagated skeleton.
	Posable
	// Animating has vertex positions computed from a propagated skeleton.
	Animating
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Building:
		return "building"
	case Posable:
		return "posable"
	case Animating:
		return "animating"
	}
	return "unknown"
}
