package staged

import (
	"reflect"
	"testing"

	"github.com/gogpu/staged/driver"
)

func stampOf(drv *testDriver, kind driver.ResourceKind, id uint32) int64 {
	return drv.LastUsed(driver.Resource{Kind: kind, ID: id})
}

func TestStagedStampsResources(t *testing.T) {
	drv := newTestDriver()
	c, _ := New(drv, WithThreads(1))
	main := c.RegisterStage("main", 0)

	shd := c.MakeShader(&driver.ShaderDesc{})
	pip := c.MakePipeline(&driver.PipelineDesc{Shader: shd})
	vbuf := c.MakeBuffer(&driver.BufferDesc{Size: 64})
	ibuf := c.MakeBuffer(&driver.BufferDesc{Size: 64})
	img := c.MakeImage(&driver.ImageDesc{Width: 4, Height: 4})
	pass := c.MakePass(&driver.PassDesc{})

	// Move off frame 0 so a stamp is distinguishable from the map's zero
	// value.
	advanceFrames(t, c, 3)

	var bind driver.Bindings
	bind.VertexBuffers[0] = vbuf
	bind.IndexBuffer = ibuf
	bind.FragmentImages[0] = img

	s := c.Staged(0)
	s.BeginStage(main)
	s.BeginPass(pass, &driver.PassAction{})
	s.ApplyPipeline(pip)
	s.ApplyBindings(&bind)
	s.EndPass()
	s.EndStage()

	checks := []struct {
		name string
		kind driver.ResourceKind
		id   uint32
	}{
		{"pass", driver.KindPass, uint32(pass)},
		{"pipeline", driver.KindPipeline, uint32(pip)},
		{"shader via pipeline", driver.KindShader, uint32(shd)},
		{"vertex buffer", driver.KindBuffer, uint32(vbuf)},
		{"index buffer", driver.KindBuffer, uint32(ibuf)},
		{"fragment image", driver.KindImage, uint32(img)},
	}
	for _, tc := range checks {
		if got := stampOf(drv, tc.kind, tc.id); got != 3 {
			t.Errorf("%s stamped at frame %d, want 3", tc.name, got)
		}
	}
}

func TestStagedUpdateStamps(t *testing.T) {
	drv := newTestDriver()
	c, _ := New(drv, WithThreads(1))
	main := c.RegisterStage("main", 0)

	buf := c.MakeBuffer(&driver.BufferDesc{Size: 64, Usage: driver.UsageDynamic})
	img := c.MakeImage(&driver.ImageDesc{Width: 2, Height: 2})

	advanceFrames(t, c, 2)

	s := c.Staged(0)
	s.BeginStage(main)
	s.UpdateBuffer(buf, make([]byte, 64))
	s.UpdateImage(img, &driver.ImageContent{})
	s.EndStage()

	if got := stampOf(drv, driver.KindBuffer, uint32(buf)); got != 2 {
		t.Errorf("buffer stamped at frame %d, want 2", got)
	}
	if got := stampOf(drv, driver.KindImage, uint32(img)); got != 2 {
		t.Errorf("image stamped at frame %d, want 2", got)
	}
}

func TestStagedRecordingIsDeferred(t *testing.T) {
	drv := newTestDriver()
	c, _ := New(drv, WithThreads(1))
	main := c.RegisterStage("main", 0)

	s := c.Staged(0)
	s.BeginStage(main)
	s.Draw(0, 3, 1)
	s.EndStage()

	// Nothing reaches the driver until the set is swapped and committed.
	if got := drv.callLog(); len(got) != 0 {
		t.Errorf("driver calls before commit = %v, want none", got)
	}

	c.SwapCommandBuffers()
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if got := drv.callLog(); len(got) == 0 {
		t.Error("driver received no calls after commit")
	}
}

func TestImmediateForwardsDirectly(t *testing.T) {
	drv := newTestDriver()
	c, _ := New(drv, WithThreads(1))
	im := c.Immediate()

	im.BeginDefaultPass(&driver.PassAction{}, 640, 480)
	im.ApplyViewport(0, 0, 640, 480, true)
	im.Draw(0, 3, 1)
	im.EndPass()

	want := []string{
		"BeginDefaultPass(640x480)",
		"ApplyViewport(0,0,640,480,true)",
		"Draw(0,3,1)",
		"EndPass",
	}
	if got := drv.callLog(); !reflect.DeepEqual(got, want) {
		t.Errorf("driver calls = %v, want %v", got, want)
	}

	// Nothing was recorded.
	if got := c.feed[0].Len(); got != 0 {
		t.Errorf("immediate calls recorded %d commands, want 0", got)
	}
}

func TestImmediateStampsResources(t *testing.T) {
	drv := newTestDriver()
	c, _ := New(drv, WithThreads(1))

	shd := c.MakeShader(&driver.ShaderDesc{})
	pip := c.MakePipeline(&driver.PipelineDesc{Shader: shd})

	advanceFrames(t, c, 4)
	c.Immediate().ApplyPipeline(pip)

	if got := stampOf(drv, driver.KindPipeline, uint32(pip)); got != 4 {
		t.Errorf("pipeline stamped at frame %d, want 4", got)
	}
	if got := stampOf(drv, driver.KindShader, uint32(shd)); got != 4 {
		t.Errorf("shader stamped at frame %d, want 4", got)
	}
}

type recordingProfiler struct {
	events []string
}

func (p *recordingProfiler) BeginSample(name string) { p.events = append(p.events, "begin:"+name) }
func (p *recordingProfiler) EndSample()              { p.events = append(p.events, "end") }

func TestStageProfileSamples(t *testing.T) {
	drv := newTestDriver()
	prof := &recordingProfiler{}
	c, _ := New(drv, WithThreads(1), WithProfiler(prof))
	main := c.RegisterStage("main", 0)

	s := c.Staged(0)
	s.BeginStage(main)
	s.BeginProfileSample("geometry")
	s.Draw(0, 3, 1)
	s.EndProfileSample()
	s.EndStage()

	c.SwapCommandBuffers()
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	want := []string{"begin:Stage: main", "begin:geometry", "end", "end"}
	if !reflect.DeepEqual(prof.events, want) {
		t.Errorf("profiler events = %v, want %v", prof.events, want)
	}
}

func TestImmediateProfileSamples(t *testing.T) {
	drv := newTestDriver()
	prof := &recordingProfiler{}
	c, _ := New(drv, WithThreads(1), WithProfiler(prof))

	im := c.Immediate()
	im.BeginProfileSample("upload")
	im.EndProfileSample()

	want := []string{"begin:upload", "end"}
	if !reflect.DeepEqual(prof.events, want) {
		t.Errorf("profiler events = %v, want %v", prof.events, want)
	}
}
