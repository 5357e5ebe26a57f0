// Package stage implements the registry of named, dependency-ordered render
// stages.
//
// Stages form a forest: each stage optionally has a parent, and a stage's
// commands must execute after every ancestor's commands. Ordering is encoded
// in a 16-bit order key with the tree depth in the high bits and the dense
// registration index in the low bits, so sorting recorded commands by key
// executes ancestors strictly before descendants, and stages of equal depth
// in registration order.
//
// The registry is an index-based arena: stages are addressed by Handle and
// linked by handles, never by pointer. Stages are registered once at setup
// and live until the registry is dropped.
package stage

import "hash/fnv"

// Limits on the registry. The order key reserves 6 bits for depth and
// 10 bits for the stage index, so both limits are hard.
const (
	// MaxStages is the maximum number of registered stages.
	MaxStages = 1024
	// MaxDepth is the maximum stage tree depth.
	MaxDepth = 64
)

// Order key packing: depth-major, id-minor.
const (
	orderIDBits = 10
	orderIDMask = 1<<orderIDBits - 1
)

// Handle identifies a registered stage. The zero Handle is invalid.
type Handle uint32

// IsValid returns true if the handle refers to a registered stage.
func (h Handle) IsValid() bool { return h != 0 }

func (h Handle) index() int { return int(h) - 1 }

func handleFromIndex(i int) Handle { return Handle(i + 1) }

// State is the per-frame submission lifecycle of a stage.
type State int32

// Stage states. A stage moves None -> Submitting on Begin and
// Submitting -> Done on End; all stages reset to None once per frame after
// execution.
const (
	StateNone State = iota
	StateSubmitting
	StateDone
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	default:
		return "invalid"
	}
}

// stage is one arena record. Tree links are handles into the same arena.
type stage struct {
	name     string
	nameHash uint32
	order    uint16
	state    State

	// enabled is the effective flag; singleEnabled remembers the node's
	// own last explicit request, independent of ancestor propagation.
	enabled       bool
	singleEnabled bool

	parent Handle
	child  Handle
	next   Handle
	prev   Handle
}

func (s *stage) depth() uint16 { return s.order >> orderIDBits }

// packOrder builds the depth-major, id-minor order key.
func packOrder(depth uint16, index int) uint16 {
	return depth<<orderIDBits | uint16(index)&orderIDMask
}

// hashName is the stage name hash used by Find.
func hashName(name string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name)) // fnv.Write never returns an error
	return h.Sum32()
}
