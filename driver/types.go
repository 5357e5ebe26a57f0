package driver

// Resource IDs
//
// These opaque IDs represent GPU resources. Each driver implementation
// maintains a mapping between IDs and actual backend resources.
// The zero value is never a valid live resource.

// Buffer is an opaque handle to a GPU buffer.
type Buffer uint32

// Image is an opaque handle to a GPU image or texture.
type Image uint32

// Shader is an opaque handle to a compiled shader program.
type Shader uint32

// Pipeline is an opaque handle to a render or compute pipeline.
type Pipeline uint32

// Pass is an opaque handle to a render pass (framebuffer plus attachments).
type Pass uint32

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// IsValid returns true if the handle refers to a live resource.
func (b Buffer) IsValid() bool   { return b != InvalidID }
func (i Image) IsValid() bool    { return i != InvalidID }
func (s Shader) IsValid() bool   { return s != InvalidID }
func (p Pipeline) IsValid() bool { return p != InvalidID }
func (p Pass) IsValid() bool     { return p != InvalidID }

// ResourceKind discriminates the handle types for APIs that operate on any
// resource, such as the last-used frame stamps.
type ResourceKind uint8

// Resource kinds.
const (
	KindBuffer ResourceKind = iota + 1
	KindImage
	KindShader
	KindPipeline
	KindPass
)

// String returns a human-readable name for the resource kind.
func (k ResourceKind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindImage:
		return "image"
	case KindShader:
		return "shader"
	case KindPipeline:
		return "pipeline"
	case KindPass:
		return "pass"
	default:
		return "unknown"
	}
}

// Resource pairs a kind with a raw handle value so any resource can be
// addressed uniformly.
type Resource struct {
	Kind ResourceKind
	ID   uint32
}

// BufferType specifies what a buffer binds as.
type BufferType uint8

// Buffer types.
const (
	BufferTypeVertex BufferType = iota
	BufferTypeIndex
	BufferTypeUniform
	BufferTypeStorage
)

// Usage specifies the update pattern of a buffer or image.
type Usage uint8

// Usage patterns.
const (
	// UsageImmutable resources are written once at creation.
	UsageImmutable Usage = iota
	// UsageDynamic resources are updated at most once per frame.
	UsageDynamic
	// UsageStream resources receive multiple incremental writes per frame
	// through the append path.
	UsageStream
)

// ShaderStage identifies which shader stage a uniform block targets.
type ShaderStage uint8

// Shader stages.
const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
)

// Binding limits. These bound the fixed-size arrays in Bindings.
const (
	// MaxVertexBuffers is the number of vertex buffer bind slots.
	MaxVertexBuffers = 8
	// MaxShaderImages is the number of image bind slots per shader stage.
	MaxShaderImages = 12
	// MaxMipmaps is the number of mip levels carried by ImageContent.
	MaxMipmaps = 16
	// CubeFaceCount is the number of cube map faces (1 for 2D images).
	CubeFaceCount = 6
)

// BufferDesc describes a buffer to create.
type BufferDesc struct {
	// Size is the buffer capacity in bytes.
	Size int
	// Type is the bind point of the buffer.
	Type BufferType
	// Usage is the buffer's update pattern. UsageStream buffers are
	// registered with the streaming append table by the core.
	Usage Usage
	// Data is the optional initial content for immutable buffers.
	Data []byte
	// Label is an optional debug name.
	Label string
}

// ImageDesc describes an image to create.
type ImageDesc struct {
	Width, Height, Layers int
	// Mipmaps is the mip level count; 0 means 1.
	Mipmaps int
	// BytesPerPixel sizes the image for the usage statistics.
	BytesPerPixel int
	// RenderTarget marks the image as a pass attachment.
	RenderTarget bool
	Usage        Usage
	Label        string
}

// ShaderDesc describes a shader program to create.
type ShaderDesc struct {
	// VertexSource and FragmentSource carry backend-specific shader text
	// or bytecode. ComputeSource is set instead for compute shaders.
	VertexSource   []byte
	FragmentSource []byte
	ComputeSource  []byte
	Label          string
}

// PipelineDesc describes a render or compute pipeline.
type PipelineDesc struct {
	Shader  Shader
	Compute bool
	Label   string
}

// PassDesc describes a render pass and its attachments.
type PassDesc struct {
	ColorAttachments []Image
	DepthAttachment  Image
	Label            string
}

// LoadAction selects how an attachment is treated at pass begin.
type LoadAction uint8

// Load actions.
const (
	LoadDefault LoadAction = iota
	LoadClear
	LoadKeep
	LoadDontCare
)

// ColorAction pairs a load action with a clear color.
type ColorAction struct {
	Action LoadAction
	R      float32
	G      float32
	B      float32
	A      float32
}

// DepthAction pairs a load action with a clear depth value.
type DepthAction struct {
	Action LoadAction
	Value  float32
}

// StencilAction pairs a load action with a clear stencil value.
type StencilAction struct {
	Action LoadAction
	Value  uint8
}

// PassAction describes what happens to every attachment when a pass begins.
type PassAction struct {
	Colors  [4]ColorAction
	Depth   DepthAction
	Stencil StencilAction
}

// Bindings describes the complete resource binding set for draw calls:
// vertex buffers with offsets, an optional index buffer, and per-stage
// images.
type Bindings struct {
	VertexBuffers       [MaxVertexBuffers]Buffer
	VertexBufferOffsets [MaxVertexBuffers]int32
	IndexBuffer         Buffer
	IndexBufferOffset   int32
	VertexImages        [MaxShaderImages]Image
	FragmentImages      [MaxShaderImages]Image
}

// SubimageContent is the pixel payload for one face/mip slot.
type SubimageContent struct {
	Data []byte
}

// ImageContent carries the full pixel payload of an image update, one slot
// per cube face and mip level. Unused slots stay nil.
type ImageContent struct {
	Subimage [CubeFaceCount][MaxMipmaps]SubimageContent
}
