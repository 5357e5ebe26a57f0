package recording

import (
	"fmt"

	"github.com/gogpu/staged/driver"
	"github.com/gogpu/staged/stage"
)

// Buffer is one thread's command buffer: the parameter blob, the ordered
// reference list, and the stage currently open on that thread. Exactly one
// worker thread owns a Buffer at a time, selected by a stable thread
// index, so recording needs no locking at this layer.
//
// All recording calls must happen between OpenStage and CloseStage;
// recording outside an open stage panics.
type Buffer struct {
	index  int
	params encoder
	refs   []Ref

	runningStage stage.Handle
	stageOrder   uint16
	cmdIdx       uint32
}

// NewBuffer creates an empty command buffer owned by the thread with the
// given stable index.
func NewBuffer(index int) *Buffer {
	return &Buffer{index: index, refs: make([]Ref, 0, 256)}
}

// Index returns the owning thread's buffer index.
func (b *Buffer) Index() int { return b.index }

// Len returns the number of recorded commands.
func (b *Buffer) Len() int { return len(b.refs) }

// BlobSize returns the current parameter blob size in bytes.
func (b *Buffer) BlobSize() int { return b.params.offset() }

// Refs returns the recorded references. Read-only; owned by the buffer.
func (b *Buffer) Refs() []Ref { return b.refs }

// OpenStage marks a stage as open on this thread and latches its order key
// into subsequent commands' sort keys.
func (b *Buffer) OpenStage(h stage.Handle, order uint16) {
	if b.runningStage.IsValid() {
		panic("recording: a stage is already open on this command buffer")
	}
	b.runningStage = h
	b.stageOrder = order
}

// CloseStage closes the currently open stage.
func (b *Buffer) CloseStage() {
	if !b.runningStage.IsValid() {
		panic("recording: no open stage on this command buffer")
	}
	b.runningStage = 0
}

// RunningStage returns the stage currently open on this buffer, or the
// zero handle.
func (b *Buffer) RunningStage() stage.Handle { return b.runningStage }

// Reset clears the parameter blob and reference list and rewinds the
// command index, keeping allocations for the next frame.
func (b *Buffer) Reset() {
	b.params.reset()
	b.refs = b.refs[:0]
	b.cmdIdx = 0
}

// begin appends a reference for op pointing at the current blob offset and
// returns the encoder positioned for the command's arguments.
func (b *Buffer) begin(op Op) *encoder {
	if !b.runningStage.IsValid() {
		panic(fmt.Sprintf("recording: %s outside begin/end stage", op))
	}
	if b.cmdIdx >= MaxCommandsPerBuffer-1 {
		panic("recording: per-thread command count exceeded for this frame")
	}

	b.refs = append(b.refs, Ref{
		Key:    uint32(b.stageOrder)<<16 | b.cmdIdx,
		Buffer: b.index,
		Op:     op,
		Offset: b.params.offset(),
	})
	b.cmdIdx++
	return &b.params
}

// BeginDefaultPass records a default-pass begin.
func (b *Buffer) BeginDefaultPass(action *driver.PassAction, width, height int) {
	e := b.begin(OpBeginDefaultPass)
	encodePassAction(e, action)
	e.i32(int32(width))
	e.i32(int32(height))
}

// BeginPass records an offscreen-pass begin.
func (b *Buffer) BeginPass(pass driver.Pass, action *driver.PassAction) {
	e := b.begin(OpBeginPass)
	e.u32(uint32(pass))
	encodePassAction(e, action)
}

// ApplyViewport records a viewport change.
func (b *Buffer) ApplyViewport(x, y, width, height int, originTopLeft bool) {
	e := b.begin(OpApplyViewport)
	e.i32(int32(x))
	e.i32(int32(y))
	e.i32(int32(width))
	e.i32(int32(height))
	e.bool(originTopLeft)
}

// ApplyScissorRect records a scissor change.
func (b *Buffer) ApplyScissorRect(x, y, width, height int, originTopLeft bool) {
	e := b.begin(OpApplyScissorRect)
	e.i32(int32(x))
	e.i32(int32(y))
	e.i32(int32(width))
	e.i32(int32(height))
	e.bool(originTopLeft)
}

// ApplyPipeline records a pipeline bind.
func (b *Buffer) ApplyPipeline(pip driver.Pipeline) {
	e := b.begin(OpApplyPipeline)
	e.u32(uint32(pip))
}

// ApplyBindings records a resource binding set.
func (b *Buffer) ApplyBindings(bind *driver.Bindings) {
	e := b.begin(OpApplyBindings)
	encodeBindings(e, bind)
}

// ApplyUniforms records a uniform block upload. The data is copied into
// the blob; the caller may reuse its slice immediately.
func (b *Buffer) ApplyUniforms(stg driver.ShaderStage, slot int, data []byte) {
	e := b.begin(OpApplyUniforms)
	e.u8(uint8(stg))
	e.i32(int32(slot))
	e.bytes(data)
}

// Draw records a draw call.
func (b *Buffer) Draw(baseElement, numElements, numInstances int) {
	e := b.begin(OpDraw)
	e.i32(int32(baseElement))
	e.i32(int32(numElements))
	e.i32(int32(numInstances))
}

// Dispatch records a compute dispatch.
func (b *Buffer) Dispatch(groupsX, groupsY, groupsZ int) {
	e := b.begin(OpDispatch)
	e.i32(int32(groupsX))
	e.i32(int32(groupsY))
	e.i32(int32(groupsZ))
}

// EndPass records a pass end.
func (b *Buffer) EndPass() {
	b.begin(OpEndPass)
}

// UpdateBuffer records a full buffer update. The data is copied.
func (b *Buffer) UpdateBuffer(buf driver.Buffer, data []byte) {
	e := b.begin(OpUpdateBuffer)
	e.u32(uint32(buf))
	e.bytes(data)
}

// UpdateImage records an image update. Every subimage payload is copied
// into the blob; the source slices are only valid at record time.
func (b *Buffer) UpdateImage(img driver.Image, content *driver.ImageContent) {
	e := b.begin(OpUpdateImage)
	e.u32(uint32(img))
	for face := 0; face < driver.CubeFaceCount; face++ {
		for mip := 0; mip < driver.MaxMipmaps; mip++ {
			e.bytes(content.Subimage[face][mip].Data)
		}
	}
}

// AppendBuffer records a streaming write at a pre-reserved byte offset.
// The offset has already been claimed from the buffer's stream cursor, so
// concurrent recorders never alias ranges.
func (b *Buffer) AppendBuffer(buf driver.Buffer, streamOffset int, data []byte) {
	e := b.begin(OpAppendBuffer)
	e.u32(uint32(buf))
	e.i32(int32(streamOffset))
	e.bytes(data)
}

// BeginProfileSample records the opening of a named profiling sample.
func (b *Buffer) BeginProfileSample(name string) {
	e := b.begin(OpBeginProfile)
	e.str(name)
}

// EndProfileSample records the close of the innermost profiling sample.
func (b *Buffer) EndProfileSample() {
	b.begin(OpEndProfile)
}

// PushStageMarker records a stage entry marker carrying the stage name for
// GPU debug annotation.
func (b *Buffer) PushStageMarker(name string) {
	e := b.begin(OpStagePush)
	e.str(name)
}

// PopStageMarker records a stage exit marker.
func (b *Buffer) PopStageMarker() {
	b.begin(OpStagePop)
}

func encodePassAction(e *encoder, a *driver.PassAction) {
	for i := range a.Colors {
		c := &a.Colors[i]
		e.u8(uint8(c.Action))
		e.u32(floatBits(c.R))
		e.u32(floatBits(c.G))
		e.u32(floatBits(c.B))
		e.u32(floatBits(c.A))
	}
	e.u8(uint8(a.Depth.Action))
	e.u32(floatBits(a.Depth.Value))
	e.u8(uint8(a.Stencil.Action))
	e.u8(a.Stencil.Value)
}

func decodePassAction(d *decoder) driver.PassAction {
	var a driver.PassAction
	for i := range a.Colors {
		c := &a.Colors[i]
		c.Action = driver.LoadAction(d.u8())
		c.R = floatFromBits(d.u32())
		c.G = floatFromBits(d.u32())
		c.B = floatFromBits(d.u32())
		c.A = floatFromBits(d.u32())
	}
	a.Depth.Action = driver.LoadAction(d.u8())
	a.Depth.Value = floatFromBits(d.u32())
	a.Stencil.Action = driver.LoadAction(d.u8())
	a.Stencil.Value = d.u8()
	return a
}

func encodeBindings(e *encoder, b *driver.Bindings) {
	for i := 0; i < driver.MaxVertexBuffers; i++ {
		e.u32(uint32(b.VertexBuffers[i]))
		e.i32(b.VertexBufferOffsets[i])
	}
	e.u32(uint32(b.IndexBuffer))
	e.i32(b.IndexBufferOffset)
	for i := 0; i < driver.MaxShaderImages; i++ {
		e.u32(uint32(b.VertexImages[i]))
	}
	for i := 0; i < driver.MaxShaderImages; i++ {
		e.u32(uint32(b.FragmentImages[i]))
	}
}

func decodeBindings(d *decoder) driver.Bindings {
	var b driver.Bindings
	for i := 0; i < driver.MaxVertexBuffers; i++ {
		b.VertexBuffers[i] = driver.Buffer(d.u32())
		b.VertexBufferOffsets[i] = d.i32()
	}
	b.IndexBuffer = driver.Buffer(d.u32())
	b.IndexBufferOffset = d.i32()
	for i := 0; i < driver.MaxShaderImages; i++ {
		b.VertexImages[i] = driver.Image(d.u32())
	}
	for i := 0; i < driver.MaxShaderImages; i++ {
		b.FragmentImages[i] = driver.Image(d.u32())
	}
	return b
}
