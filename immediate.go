package staged

import "github.com/gogpu/staged/driver"

// Immediate is the direct call surface: the same operation set as Staged,
// forwarded straight to the driver with no recording. It is meant for
// single-threaded setup work and tools; nothing here participates in stage
// ordering or the frame pipeline.
//
// Resources are still stamped so the frame-delayed destruction sweep
// treats immediately-used resources the same as recorded ones.
type Immediate struct {
	ctx *Context
}

// Immediate returns the direct call surface.
func (c *Context) Immediate() Immediate { return Immediate{ctx: c} }

// BeginDefaultPass begins the default (swapchain) pass.
func (im Immediate) BeginDefaultPass(action *driver.PassAction, width, height int) {
	im.ctx.drv.BeginDefaultPass(action, width, height)
}

// BeginPass begins an offscreen pass.
func (im Immediate) BeginPass(pass driver.Pass, action *driver.PassAction) {
	im.ctx.drv.BeginPass(pass, action)
	im.ctx.stamp(driver.KindPass, uint32(pass))
}

// ApplyViewport sets the viewport rectangle.
func (im Immediate) ApplyViewport(x, y, width, height int, originTopLeft bool) {
	im.ctx.drv.ApplyViewport(x, y, width, height, originTopLeft)
}

// ApplyScissorRect sets the scissor rectangle.
func (im Immediate) ApplyScissorRect(x, y, width, height int, originTopLeft bool) {
	im.ctx.drv.ApplyScissorRect(x, y, width, height, originTopLeft)
}

// ApplyPipeline binds a pipeline.
func (im Immediate) ApplyPipeline(pip driver.Pipeline) {
	im.ctx.drv.ApplyPipeline(pip)
	im.ctx.stamp(driver.KindPipeline, uint32(pip))
	im.ctx.stamp(driver.KindShader, uint32(im.ctx.drv.PipelineShader(pip)))
}

// ApplyBindings binds buffers and images.
func (im Immediate) ApplyBindings(bind *driver.Bindings) {
	im.ctx.drv.ApplyBindings(bind)

	for i := range bind.VertexBuffers {
		im.ctx.stamp(driver.KindBuffer, uint32(bind.VertexBuffers[i]))
	}
	im.ctx.stamp(driver.KindBuffer, uint32(bind.IndexBuffer))
	for i := range bind.VertexImages {
		im.ctx.stamp(driver.KindImage, uint32(bind.VertexImages[i]))
	}
	for i := range bind.FragmentImages {
		im.ctx.stamp(driver.KindImage, uint32(bind.FragmentImages[i]))
	}
}

// ApplyUniforms uploads a uniform block.
func (im Immediate) ApplyUniforms(stg driver.ShaderStage, slot int, data []byte) {
	im.ctx.drv.ApplyUniforms(stg, slot, data)
}

// Draw issues a draw call.
func (im Immediate) Draw(baseElement, numElements, numInstances int) {
	im.ctx.drv.Draw(baseElement, numElements, numInstances)
}

// Dispatch issues a compute dispatch.
func (im Immediate) Dispatch(groupsX, groupsY, groupsZ int) {
	im.ctx.drv.Dispatch(groupsX, groupsY, groupsZ)
}

// EndPass ends the current pass.
func (im Immediate) EndPass() {
	im.ctx.drv.EndPass()
}

// UpdateBuffer overwrites a buffer's contents.
func (im Immediate) UpdateBuffer(buf driver.Buffer, data []byte) {
	im.ctx.drv.UpdateBuffer(buf, data)
	im.ctx.stamp(driver.KindBuffer, uint32(buf))
}

// UpdateImage overwrites an image's contents.
func (im Immediate) UpdateImage(img driver.Image, content *driver.ImageContent) {
	im.ctx.drv.UpdateImage(img, content)
	im.ctx.stamp(driver.KindImage, uint32(img))
}

// AppendBuffer reserves a range in a streaming buffer, writes data into it
// right away, and returns the offset.
func (im Immediate) AppendBuffer(buf driver.Buffer, data []byte) int {
	sb := im.ctx.streams.lookup(buf)
	offset := sb.reserve(len(data))

	im.ctx.drv.MapBuffer(buf, offset, data)
	im.ctx.stamp(driver.KindBuffer, uint32(buf))
	return offset
}

// BeginProfileSample opens a named profiling sample immediately.
func (im Immediate) BeginProfileSample(name string) {
	if p := im.ctx.cfg.profiler; p != nil {
		p.BeginSample(name)
	}
}

// EndProfileSample closes the innermost profiling sample immediately.
func (im Immediate) EndProfileSample() {
	if p := im.ctx.cfg.profiler; p != nil {
		p.EndSample()
	}
}
