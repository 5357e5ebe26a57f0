package recording

// Op identifies the type of a recorded command.
// Each opcode corresponds to one driver operation and one replay handler.
type Op uint8

// Opcodes. The order is load-bearing: it indexes the replay handler table.
const (
	OpBeginDefaultPass Op = iota // Begin the default (swapchain) pass
	OpBeginPass                  // Begin an offscreen pass
	OpApplyViewport              // Set the viewport rectangle
	OpApplyScissorRect           // Set the scissor rectangle
	OpApplyPipeline              // Bind a render/compute pipeline
	OpApplyBindings              // Bind vertex/index buffers and images
	OpApplyUniforms              // Upload a uniform block
	OpDraw                       // Draw call
	OpDispatch                   // Compute dispatch
	OpEndPass                    // End the current pass
	OpUpdateBuffer               // Overwrite a buffer's contents
	OpUpdateImage                // Overwrite an image's contents
	OpAppendBuffer               // Write into a streaming buffer sub-range
	OpBeginProfile               // Open a profiling sample
	OpEndProfile                 // Close a profiling sample
	OpStagePush                  // Stage entry marker (GPU debug group)
	OpStagePop                   // Stage exit marker

	opCount
)

// opNames maps Op values to their string representation.
var opNames = [opCount]string{
	OpBeginDefaultPass: "BeginDefaultPass",
	OpBeginPass:        "BeginPass",
	OpApplyViewport:    "ApplyViewport",
	OpApplyScissorRect: "ApplyScissorRect",
	OpApplyPipeline:    "ApplyPipeline",
	OpApplyBindings:    "ApplyBindings",
	OpApplyUniforms:    "ApplyUniforms",
	OpDraw:             "Draw",
	OpDispatch:         "Dispatch",
	OpEndPass:          "EndPass",
	OpUpdateBuffer:     "UpdateBuffer",
	OpUpdateImage:      "UpdateImage",
	OpAppendBuffer:     "AppendBuffer",
	OpBeginProfile:     "BeginProfile",
	OpEndProfile:       "EndProfile",
	OpStagePush:        "StagePush",
	OpStagePop:         "StagePop",
}

// String returns the string representation of an opcode.
func (op Op) String() string {
	if op < opCount {
		return opNames[op]
	}
	return "Unknown"
}

// MaxCommandsPerBuffer caps the per-thread command count for one frame.
// The command index occupies the low 16 bits of the sort key, so crossing
// this limit would corrupt ordering; recording past it panics.
const MaxCommandsPerBuffer = 1 << 16

// Ref is one recorded command reference: the dependency-and-sequence sort
// key, the owning buffer's index, the opcode, and the byte offset of the
// command's arguments in that buffer's parameter blob.
type Ref struct {
	// Key is stageOrder<<16 | commandIndex.
	Key uint32
	// Buffer is the index of the originating command buffer.
	Buffer int
	// Op selects the replay handler.
	Op Op
	// Offset locates the command's arguments in the parameter blob.
	Offset int
}
