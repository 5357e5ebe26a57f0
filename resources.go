package staged

import "github.com/gogpu/staged/driver"

// Resource creation and destruction.
//
// Creation forwards to the driver, registers streaming buffers with the
// append table, and feeds the usage statistics. Destruction never reaches
// the driver synchronously: the handle is queued and reclaimed by the
// frame-delayed sweep once no in-flight command can reference it.

// MakeBuffer creates a GPU buffer. Buffers created with UsageStream are
// registered for AppendBuffer writes. Returns the zero handle on failure.
func (c *Context) MakeBuffer(desc *driver.BufferDesc) driver.Buffer {
	buf := c.drv.MakeBuffer(desc)
	if !buf.IsValid() {
		Logger().Warn("staged: buffer creation failed", "label", desc.Label)
		return buf
	}
	if desc.Usage == driver.UsageStream {
		c.streams.add(buf, desc.Size)
	}
	c.trace.addBuffer(buf, desc.Size)
	return buf
}

// MakeImage creates a GPU image. Returns the zero handle on failure.
func (c *Context) MakeImage(desc *driver.ImageDesc) driver.Image {
	img := c.drv.MakeImage(desc)
	if !img.IsValid() {
		Logger().Warn("staged: image creation failed", "label", desc.Label)
		return img
	}
	c.trace.addImage(img, imageByteSize(desc), desc.RenderTarget)
	return img
}

// MakeShader creates a shader program. Returns the zero handle on failure.
func (c *Context) MakeShader(desc *driver.ShaderDesc) driver.Shader {
	shd := c.drv.MakeShader(desc)
	if !shd.IsValid() {
		Logger().Warn("staged: shader creation failed", "label", desc.Label)
		return shd
	}
	c.trace.addShader()
	return shd
}

// MakePipeline creates a render or compute pipeline. Returns the zero
// handle on failure.
func (c *Context) MakePipeline(desc *driver.PipelineDesc) driver.Pipeline {
	pip := c.drv.MakePipeline(desc)
	if !pip.IsValid() {
		Logger().Warn("staged: pipeline creation failed", "label", desc.Label)
		return pip
	}
	c.trace.addPipeline()
	return pip
}

// MakePass creates a render pass. Returns the zero handle on failure.
func (c *Context) MakePass(desc *driver.PassDesc) driver.Pass {
	pass := c.drv.MakePass(desc)
	if !pass.IsValid() {
		Logger().Warn("staged: pass creation failed", "label", desc.Label)
		return pass
	}
	c.trace.addPass()
	return pass
}

// DestroyBuffer queues a buffer for frame-delayed destruction.
func (c *Context) DestroyBuffer(buf driver.Buffer) {
	if buf.IsValid() {
		c.garbage.pushBuffer(buf)
	}
}

// DestroyImage queues an image for frame-delayed destruction.
func (c *Context) DestroyImage(img driver.Image) {
	if img.IsValid() {
		c.garbage.pushImage(img)
	}
}

// DestroyShader queues a shader for frame-delayed destruction.
func (c *Context) DestroyShader(shd driver.Shader) {
	if shd.IsValid() {
		c.garbage.pushShader(shd)
	}
}

// DestroyPipeline queues a pipeline for frame-delayed destruction.
func (c *Context) DestroyPipeline(pip driver.Pipeline) {
	if pip.IsValid() {
		c.garbage.pushPipeline(pip)
	}
}

// DestroyPass queues a pass for frame-delayed destruction.
func (c *Context) DestroyPass(pass driver.Pass) {
	if pass.IsValid() {
		c.garbage.pushPass(pass)
	}
}

// imageByteSize estimates the GPU memory an image occupies, for the usage
// statistics only.
func imageByteSize(desc *driver.ImageDesc) int64 {
	bpp := desc.BytesPerPixel
	if bpp == 0 {
		bpp = 4
	}
	layers := desc.Layers
	if layers == 0 {
		layers = 1
	}
	return int64(desc.Width) * int64(desc.Height) * int64(layers) * int64(bpp)
}
