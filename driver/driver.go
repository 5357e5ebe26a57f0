package driver

// Backend identifies the graphics API behind a Driver.
type Backend uint8

// Backends.
const (
	BackendUnknown Backend = iota
	BackendWGPU
	BackendVulkan
	BackendMetal
	BackendD3D12
	BackendGL
	BackendTest
)

// String returns a human-readable backend name.
func (b Backend) String() string {
	switch b {
	case BackendWGPU:
		return "wgpu"
	case BackendVulkan:
		return "vulkan"
	case BackendMetal:
		return "metal"
	case BackendD3D12:
		return "d3d12"
	case BackendGL:
		return "gl"
	case BackendTest:
		return "test"
	default:
		return "unknown"
	}
}

// Driver is the command-execution surface of a GPU backend.
//
// The staged core issues every call on a single goroutine (the execution
// thread) during dispatch, and on the caller's goroutine for the immediate
// surface; implementations may therefore assume external serialization for
// the pass/draw operations. Resource creation and the frame-stamp accessors
// can be called from any goroutine and must synchronize internally if the
// backend requires it.
type Driver interface {
	// Backend identifies the underlying graphics API.
	Backend() Backend

	// Resource creation. A zero handle reports failure.
	MakeBuffer(desc *BufferDesc) Buffer
	MakeImage(desc *ImageDesc) Image
	MakeShader(desc *ShaderDesc) Shader
	MakePipeline(desc *PipelineDesc) Pipeline
	MakePass(desc *PassDesc) Pass

	// Immediate resource destruction. The core only calls these once the
	// frame-delayed sweep has proven no in-flight command references the
	// resource.
	DestroyBuffer(Buffer)
	DestroyImage(Image)
	DestroyShader(Shader)
	DestroyPipeline(Pipeline)
	DestroyPass(Pass)

	// PipelineShader reports the shader a pipeline was created with, so
	// applying a pipeline can stamp both resources.
	PipelineShader(Pipeline) Shader

	// Last-used frame stamps. The core stamps resources at record time and
	// the destruction sweep reads the stamps back.
	SetLastUsed(res Resource, frame int64)
	LastUsed(res Resource) int64

	// Pass and draw state.
	BeginDefaultPass(action *PassAction, width, height int)
	BeginPass(pass Pass, action *PassAction)
	ApplyViewport(x, y, width, height int, originTopLeft bool)
	ApplyScissorRect(x, y, width, height int, originTopLeft bool)
	ApplyPipeline(Pipeline)
	ApplyBindings(*Bindings)
	ApplyUniforms(stage ShaderStage, slot int, data []byte)
	Draw(baseElement, numElements, numInstances int)
	Dispatch(groupsX, groupsY, groupsZ int)
	EndPass()

	// Data updates.
	UpdateBuffer(buf Buffer, data []byte)
	// MapBuffer writes data into buf at a byte offset previously reserved
	// through the streaming append path.
	MapBuffer(buf Buffer, offset int, data []byte)
	UpdateImage(img Image, content *ImageContent)

	// Debug annotation, emitted around stage replay.
	PushDebugGroup(name string)
	PopDebugGroup()

	// Commit finishes the frame on the GPU queue.
	Commit()
}
