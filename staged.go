package staged

import (
	"github.com/gogpu/staged/driver"
	"github.com/gogpu/staged/recording"
	"github.com/gogpu/staged/stage"
)

// Staged is the deferred call surface: every operation is recorded into
// the calling thread's feed command buffer and executed in dependency
// order after the next SwapCommandBuffers/Commit.
//
// A Staged value is bound to one stable thread index; each recording
// goroutine must use its own. All draw-related calls must happen between a
// successful BeginStage and the matching EndStage, or they panic.
type Staged struct {
	ctx    *Context
	thread int
}

// Staged returns the deferred surface for the given recording thread.
// Thread indices are stable and must lie in [0, Threads()).
func (c *Context) Staged(thread int) Staged {
	if thread < 0 || thread >= c.cfg.threads {
		panic("staged: thread index out of range")
	}
	return Staged{ctx: c, thread: thread}
}

// buffer resolves the thread's current feed buffer. Resolved per call
// because the swap exchanges the sets between frames.
func (s Staged) buffer() *recording.Buffer {
	return s.ctx.feed[s.thread]
}

// BeginStage opens a stage for recording on this thread. It reports false
// when the stage is disabled; the caller must then skip the stage's body
// entirely. Exactly one stage may be open per thread.
//
// A stage entry marker and a profiling sample are recorded automatically.
func (s Staged) BeginStage(h stage.Handle) bool {
	name, order, ok := s.ctx.registry.BeginSubmit(h)
	if !ok {
		return false
	}

	b := s.buffer()
	b.OpenStage(h, order)
	b.PushStageMarker(name)
	b.BeginProfileSample("Stage: " + name)
	return true
}

// EndStage closes the stage opened on this thread and marks it Done in the
// registry.
func (s Staged) EndStage() {
	b := s.buffer()
	h := b.RunningStage()
	if !h.IsValid() {
		panic("staged: EndStage without a matching BeginStage")
	}

	b.EndProfileSample()
	b.PopStageMarker()
	s.ctx.registry.EndSubmit(h)
	b.CloseStage()
}

// BeginDefaultPass records a begin of the default (swapchain) pass.
func (s Staged) BeginDefaultPass(action *driver.PassAction, width, height int) {
	s.buffer().BeginDefaultPass(action, width, height)
}

// BeginPass records a begin of an offscreen pass and stamps the pass's
// last-used frame.
func (s Staged) BeginPass(pass driver.Pass, action *driver.PassAction) {
	s.buffer().BeginPass(pass, action)
	s.ctx.stamp(driver.KindPass, uint32(pass))
}

// ApplyViewport records a viewport change.
func (s Staged) ApplyViewport(x, y, width, height int, originTopLeft bool) {
	s.buffer().ApplyViewport(x, y, width, height, originTopLeft)
}

// ApplyScissorRect records a scissor change.
func (s Staged) ApplyScissorRect(x, y, width, height int, originTopLeft bool) {
	s.buffer().ApplyScissorRect(x, y, width, height, originTopLeft)
}

// ApplyPipeline records a pipeline bind and stamps the pipeline and its
// shader.
func (s Staged) ApplyPipeline(pip driver.Pipeline) {
	s.buffer().ApplyPipeline(pip)
	s.ctx.stamp(driver.KindPipeline, uint32(pip))
	s.ctx.stamp(driver.KindShader, uint32(s.ctx.drv.PipelineShader(pip)))
}

// ApplyBindings records a binding set and stamps every bound buffer and
// image.
func (s Staged) ApplyBindings(bind *driver.Bindings) {
	s.buffer().ApplyBindings(bind)

	for i := range bind.VertexBuffers {
		s.ctx.stamp(driver.KindBuffer, uint32(bind.VertexBuffers[i]))
	}
	s.ctx.stamp(driver.KindBuffer, uint32(bind.IndexBuffer))
	for i := range bind.VertexImages {
		s.ctx.stamp(driver.KindImage, uint32(bind.VertexImages[i]))
	}
	for i := range bind.FragmentImages {
		s.ctx.stamp(driver.KindImage, uint32(bind.FragmentImages[i]))
	}
}

// ApplyUniforms records a uniform block upload. The data is copied.
func (s Staged) ApplyUniforms(stg driver.ShaderStage, slot int, data []byte) {
	s.buffer().ApplyUniforms(stg, slot, data)
}

// Draw records a draw call.
func (s Staged) Draw(baseElement, numElements, numInstances int) {
	s.buffer().Draw(baseElement, numElements, numInstances)
}

// Dispatch records a compute dispatch.
func (s Staged) Dispatch(groupsX, groupsY, groupsZ int) {
	s.buffer().Dispatch(groupsX, groupsY, groupsZ)
}

// EndPass records a pass end.
func (s Staged) EndPass() {
	s.buffer().EndPass()
}

// UpdateBuffer records a full buffer update and stamps the buffer. The
// data is copied; the caller may reuse its slice immediately.
func (s Staged) UpdateBuffer(buf driver.Buffer, data []byte) {
	s.buffer().UpdateBuffer(buf, data)
	s.ctx.stamp(driver.KindBuffer, uint32(buf))
}

// UpdateImage records an image update and stamps the image. All subimage
// payloads are copied.
func (s Staged) UpdateImage(img driver.Image, content *driver.ImageContent) {
	s.buffer().UpdateImage(img, content)
	s.ctx.stamp(driver.KindImage, uint32(img))
}

// AppendBuffer atomically reserves len(data) bytes in the streaming
// buffer's frame range, records the write, stamps the buffer, and returns
// the reserved byte offset so the caller can build bindings referencing
// the sub-range before the command executes.
//
// The buffer must have been created with UsageStream. Exceeding the
// buffer's capacity within one frame panics.
func (s Staged) AppendBuffer(buf driver.Buffer, data []byte) int {
	sb := s.ctx.streams.lookup(buf)
	offset := sb.reserve(len(data))

	s.buffer().AppendBuffer(buf, offset, data)
	s.ctx.stamp(driver.KindBuffer, uint32(buf))
	return offset
}

// BeginProfileSample records the opening of a named profiling sample.
func (s Staged) BeginProfileSample(name string) {
	s.buffer().BeginProfileSample(name)
}

// EndProfileSample records the close of the innermost profiling sample.
func (s Staged) EndProfileSample() {
	s.buffer().EndProfileSample()
}
