package staged

import (
	"testing"

	"github.com/gogpu/staged/driver"
)

func TestStatsTrackLiveResources(t *testing.T) {
	drv := newTestDriver()
	c, _ := New(drv, WithThreads(1))

	c.MakeBuffer(&driver.BufferDesc{Size: 1024})
	c.MakeBuffer(&driver.BufferDesc{Size: 512})
	c.MakeImage(&driver.ImageDesc{Width: 16, Height: 16, BytesPerPixel: 4})
	c.MakeImage(&driver.ImageDesc{Width: 8, Height: 8, BytesPerPixel: 4, RenderTarget: true})
	c.MakeShader(&driver.ShaderDesc{})
	shd := c.MakeShader(&driver.ShaderDesc{})
	c.MakePipeline(&driver.PipelineDesc{Shader: shd})
	c.MakePass(&driver.PassDesc{})

	got := c.Stats()
	want := Stats{
		NumBuffers:            2,
		NumImages:             2,
		NumShaders:            2,
		NumPipelines:          1,
		NumPasses:             1,
		BufferBytes:           1536,
		TextureBytes:          1024,
		RenderTargetBytes:     256,
		BufferBytesPeak:       1536,
		TextureBytesPeak:      1024,
		RenderTargetBytesPeak: 256,
	}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestStatsPeaksSurviveDestruction(t *testing.T) {
	drv := newTestDriver()
	c, _ := New(drv, WithThreads(1))

	buf := c.MakeBuffer(&driver.BufferDesc{Size: 2048})
	img := c.MakeImage(&driver.ImageDesc{Width: 32, Height: 32, BytesPerPixel: 4})

	c.DestroyBuffer(buf)
	c.DestroyImage(img)
	advanceFrames(t, c, 3)

	got := c.Stats()
	if got.NumBuffers != 0 || got.BufferBytes != 0 {
		t.Errorf("live buffers = %d (%d bytes), want 0 after reclaim", got.NumBuffers, got.BufferBytes)
	}
	if got.NumImages != 0 || got.TextureBytes != 0 {
		t.Errorf("live images = %d (%d bytes), want 0 after reclaim", got.NumImages, got.TextureBytes)
	}
	if got.BufferBytesPeak != 2048 {
		t.Errorf("BufferBytesPeak = %d, want 2048", got.BufferBytesPeak)
	}
	if got.TextureBytesPeak != 4096 {
		t.Errorf("TextureBytesPeak = %d, want 4096", got.TextureBytesPeak)
	}
}

func TestStatsDefaultImageSizing(t *testing.T) {
	drv := newTestDriver()
	c, _ := New(drv, WithThreads(1))

	// BytesPerPixel and Layers default to 4 and 1.
	c.MakeImage(&driver.ImageDesc{Width: 10, Height: 10})
	if got := c.Stats().TextureBytes; got != 400 {
		t.Errorf("TextureBytes = %d, want 400", got)
	}

	c.MakeImage(&driver.ImageDesc{Width: 10, Height: 10, Layers: 6, BytesPerPixel: 2})
	if got := c.Stats().TextureBytes; got != 400+1200 {
		t.Errorf("TextureBytes = %d, want 1600", got)
	}
}

func TestFailedCreationNotCounted(t *testing.T) {
	drv := newTestDriver()
	c, _ := New(drv, WithThreads(1))

	drv.failNext = true
	if buf := c.MakeBuffer(&driver.BufferDesc{Size: 64, Usage: driver.UsageStream}); buf.IsValid() {
		t.Fatalf("MakeBuffer = %d, want the zero handle on backend failure", buf)
	}

	got := c.Stats()
	if got.NumBuffers != 0 || got.BufferBytes != 0 {
		t.Errorf("Stats() = %+v, want no accounting for a failed creation", got)
	}

	drv.failNext = true
	if img := c.MakeImage(&driver.ImageDesc{Width: 4, Height: 4}); img.IsValid() {
		t.Fatalf("MakeImage = %d, want the zero handle on backend failure", img)
	}
	if got := c.Stats().NumImages; got != 0 {
		t.Errorf("NumImages = %d, want 0", got)
	}
}
