package staged

import (
	"sync"

	"github.com/gogpu/staged/driver"
)

// Stats is a snapshot of aggregate GPU resource usage, updated by the
// Context's resource creation and destruction hooks.
type Stats struct {
	// Live object counts.
	NumBuffers   int
	NumImages    int
	NumShaders   int
	NumPipelines int
	NumPasses    int

	// Live byte totals. Render-target images are accounted separately
	// from sampled textures.
	BufferBytes       int64
	TextureBytes      int64
	RenderTargetBytes int64

	// High-water marks over the Context's lifetime.
	BufferBytesPeak       int64
	TextureBytesPeak      int64
	RenderTargetBytesPeak int64
}

// traceState backs Stats. Sizes are remembered per handle so destruction
// can subtract what creation added.
type traceState struct {
	mu          sync.Mutex
	cur         Stats
	bufferSizes map[driver.Buffer]int64
	imageSizes  map[driver.Image]int64
	imageRT     map[driver.Image]bool
}

func (t *traceState) init() {
	t.bufferSizes = make(map[driver.Buffer]int64)
	t.imageSizes = make(map[driver.Image]int64)
	t.imageRT = make(map[driver.Image]bool)
}

// Stats returns a snapshot of the current resource usage.
func (c *Context) Stats() Stats {
	c.trace.mu.Lock()
	defer c.trace.mu.Unlock()
	return c.trace.cur
}

func (t *traceState) addBuffer(buf driver.Buffer, size int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cur.NumBuffers++
	t.cur.BufferBytes += int64(size)
	t.cur.BufferBytesPeak = max(t.cur.BufferBytesPeak, t.cur.BufferBytes)
	t.bufferSizes[buf] = int64(size)
}

func (t *traceState) removeBuffer(buf driver.Buffer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cur.NumBuffers--
	t.cur.BufferBytes -= t.bufferSizes[buf]
	delete(t.bufferSizes, buf)
}

func (t *traceState) addImage(img driver.Image, size int64, renderTarget bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cur.NumImages++
	if renderTarget {
		t.cur.RenderTargetBytes += size
		t.cur.RenderTargetBytesPeak = max(t.cur.RenderTargetBytesPeak, t.cur.RenderTargetBytes)
	} else {
		t.cur.TextureBytes += size
		t.cur.TextureBytesPeak = max(t.cur.TextureBytesPeak, t.cur.TextureBytes)
	}
	t.imageSizes[img] = size
	t.imageRT[img] = renderTarget
}

func (t *traceState) removeImage(img driver.Image) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cur.NumImages--
	if t.imageRT[img] {
		t.cur.RenderTargetBytes -= t.imageSizes[img]
	} else {
		t.cur.TextureBytes -= t.imageSizes[img]
	}
	delete(t.imageSizes, img)
	delete(t.imageRT, img)
}

func (t *traceState) addShader() {
	t.mu.Lock()
	t.cur.NumShaders++
	t.mu.Unlock()
}

func (t *traceState) removeShader() {
	t.mu.Lock()
	t.cur.NumShaders--
	t.mu.Unlock()
}

func (t *traceState) addPipeline() {
	t.mu.Lock()
	t.cur.NumPipelines++
	t.mu.Unlock()
}

func (t *traceState) removePipeline() {
	t.mu.Lock()
	t.cur.NumPipelines--
	t.mu.Unlock()
}

func (t *traceState) addPass() {
	t.mu.Lock()
	t.cur.NumPasses++
	t.mu.Unlock()
}

func (t *traceState) removePass() {
	t.mu.Lock()
	t.cur.NumPasses--
	t.mu.Unlock()
}
