package recording

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/gogpu/staged/driver"
	"github.com/gogpu/staged/stage"
)

// callDriver is a driver.Driver that records every execution-side call as
// a formatted string, so tests can assert on the exact replay sequence.
type callDriver struct {
	mu    sync.Mutex
	calls []string

	lastAction   driver.PassAction
	lastBindings driver.Bindings
	lastUniforms []byte
	lastImage    driver.ImageContent

	nextID uint32
	stamps map[driver.Resource]int64
}

func newCallDriver() *callDriver {
	return &callDriver{stamps: make(map[driver.Resource]int64)}
}

func (c *callDriver) log(format string, args ...any) {
	c.mu.Lock()
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
	c.mu.Unlock()
}

func (c *callDriver) Backend() driver.Backend { return driver.BackendTest }

func (c *callDriver) handle() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	return c.nextID
}

func (c *callDriver) MakeBuffer(*driver.BufferDesc) driver.Buffer {
	return driver.Buffer(c.handle())
}
func (c *callDriver) MakeImage(*driver.ImageDesc) driver.Image {
	return driver.Image(c.handle())
}
func (c *callDriver) MakeShader(*driver.ShaderDesc) driver.Shader {
	return driver.Shader(c.handle())
}
func (c *callDriver) MakePipeline(*driver.PipelineDesc) driver.Pipeline {
	return driver.Pipeline(c.handle())
}
func (c *callDriver) MakePass(*driver.PassDesc) driver.Pass {
	return driver.Pass(c.handle())
}

func (c *callDriver) DestroyBuffer(b driver.Buffer)     { c.log("DestroyBuffer(%d)", b) }
func (c *callDriver) DestroyImage(i driver.Image)       { c.log("DestroyImage(%d)", i) }
func (c *callDriver) DestroyShader(s driver.Shader)     { c.log("DestroyShader(%d)", s) }
func (c *callDriver) DestroyPipeline(p driver.Pipeline) { c.log("DestroyPipeline(%d)", p) }
func (c *callDriver) DestroyPass(p driver.Pass)         { c.log("DestroyPass(%d)", p) }

func (c *callDriver) PipelineShader(driver.Pipeline) driver.Shader { return 0 }

func (c *callDriver) SetLastUsed(res driver.Resource, frame int64) {
	c.mu.Lock()
	c.stamps[res] = frame
	c.mu.Unlock()
}

func (c *callDriver) LastUsed(res driver.Resource) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stamps[res]
}

func (c *callDriver) BeginDefaultPass(action *driver.PassAction, width, height int) {
	c.lastAction = *action
	c.log("BeginDefaultPass(%dx%d)", width, height)
}

func (c *callDriver) BeginPass(pass driver.Pass, action *driver.PassAction) {
	c.lastAction = *action
	c.log("BeginPass(%d)", pass)
}

func (c *callDriver) ApplyViewport(x, y, width, height int, originTopLeft bool) {
	c.log("ApplyViewport(%d,%d,%d,%d,%t)", x, y, width, height, originTopLeft)
}

func (c *callDriver) ApplyScissorRect(x, y, width, height int, originTopLeft bool) {
	c.log("ApplyScissorRect(%d,%d,%d,%d,%t)", x, y, width, height, originTopLeft)
}

func (c *callDriver) ApplyPipeline(pip driver.Pipeline) { c.log("ApplyPipeline(%d)", pip) }

func (c *callDriver) ApplyBindings(bind *driver.Bindings) {
	c.lastBindings = *bind
	c.log("ApplyBindings")
}

func (c *callDriver) ApplyUniforms(stg driver.ShaderStage, slot int, data []byte) {
	c.lastUniforms = append([]byte(nil), data...)
	c.log("ApplyUniforms(%d,%d,%d bytes)", stg, slot, len(data))
}

func (c *callDriver) Draw(baseElement, numElements, numInstances int) {
	c.log("Draw(%d,%d,%d)", baseElement, numElements, numInstances)
}

func (c *callDriver) Dispatch(groupsX, groupsY, groupsZ int) {
	c.log("Dispatch(%d,%d,%d)", groupsX, groupsY, groupsZ)
}

func (c *callDriver) EndPass() { c.log("EndPass") }

func (c *callDriver) UpdateBuffer(buf driver.Buffer, data []byte) {
	c.log("UpdateBuffer(%d,%d bytes)", buf, len(data))
}

func (c *callDriver) MapBuffer(buf driver.Buffer, offset int, data []byte) {
	c.log("MapBuffer(%d,%d,%d bytes)", buf, offset, len(data))
}

func (c *callDriver) UpdateImage(img driver.Image, content *driver.ImageContent) {
	c.lastImage = *content
	c.log("UpdateImage(%d)", img)
}

func (c *callDriver) PushDebugGroup(name string) { c.log("PushDebugGroup(%s)", name) }
func (c *callDriver) PopDebugGroup()             { c.log("PopDebugGroup") }
func (c *callDriver) Commit()                    { c.log("Commit") }

type testProfiler struct {
	events []string
}

func (p *testProfiler) BeginSample(name string) { p.events = append(p.events, "begin:"+name) }
func (p *testProfiler) EndSample()              { p.events = append(p.events, "end") }

func TestExecuteEmpty(t *testing.T) {
	drv := newCallDriver()
	d := NewDispatcher(drv, nil)

	if got := d.Execute([]*Buffer{NewBuffer(0), NewBuffer(1)}); got != 0 {
		t.Errorf("Execute() = %d, want 0", got)
	}
	if len(drv.calls) != 0 {
		t.Errorf("driver received %v, want no calls", drv.calls)
	}
}

func TestExecuteOrdersByStageKey(t *testing.T) {
	drv := newCallDriver()
	d := NewDispatcher(drv, nil)

	// Thread 0 records the later stage, thread 1 the earlier one; replay
	// must follow stage order, not buffer order.
	b0 := NewBuffer(0)
	b0.OpenStage(stage.Handle(1), 2)
	b0.Draw(200, 3, 1)
	b0.CloseStage()

	b1 := NewBuffer(1)
	b1.OpenStage(stage.Handle(2), 1)
	b1.Draw(100, 3, 1)
	b1.CloseStage()

	if got := d.Execute([]*Buffer{b0, b1}); got != 2 {
		t.Fatalf("Execute() = %d, want 2", got)
	}

	want := []string{"Draw(100,3,1)", "Draw(200,3,1)"}
	if !reflect.DeepEqual(drv.calls, want) {
		t.Errorf("replay order = %v, want %v", drv.calls, want)
	}
}

func TestExecuteAncestorBeforeDescendant(t *testing.T) {
	reg := stage.NewRegistry()
	root := reg.Register("root", 0)
	child := reg.Register("child", root)
	leaf := reg.Register("leaf", child)

	record := func(b *Buffer, h stage.Handle, base int) {
		_, order, ok := reg.BeginSubmit(h)
		if !ok {
			t.Fatalf("BeginSubmit(%v) failed", h)
		}
		b.OpenStage(h, order)
		b.Draw(base, 3, 1)
		b.CloseStage()
		reg.EndSubmit(h)
	}

	drv := newCallDriver()
	d := NewDispatcher(drv, nil)

	// Deepest stage recorded first, on the first buffer.
	b0 := NewBuffer(0)
	record(b0, leaf, 300)
	b1 := NewBuffer(1)
	record(b1, root, 100)
	record(b1, child, 200)

	d.Execute([]*Buffer{b0, b1})

	want := []string{"Draw(100,3,1)", "Draw(200,3,1)", "Draw(300,3,1)"}
	if !reflect.DeepEqual(drv.calls, want) {
		t.Errorf("replay order = %v, want %v", drv.calls, want)
	}
}

func TestExecuteStableForEqualKeys(t *testing.T) {
	// Two threads record into the same stage; their first commands carry
	// identical keys. The stable sort must keep buffer-set order, so the
	// replay is deterministic run to run.
	run := func() []string {
		drv := newCallDriver()
		d := NewDispatcher(drv, nil)

		bufs := make([]*Buffer, 4)
		for i := range bufs {
			bufs[i] = NewBuffer(i)
			bufs[i].OpenStage(stage.Handle(1), 3)
			bufs[i].Draw(i*100, 3, 1)
			bufs[i].Draw(i*100+1, 3, 1)
			bufs[i].CloseStage()
		}
		d.Execute(bufs)
		return drv.calls
	}

	first := run()
	for i := 0; i < 5; i++ {
		if got := run(); !reflect.DeepEqual(got, first) {
			t.Fatalf("replay order changed between runs:\n%v\n%v", first, got)
		}
	}

	// Per-thread command sequences survive interleaving.
	want := []string{
		"Draw(0,3,1)", "Draw(100,3,1)", "Draw(200,3,1)", "Draw(300,3,1)",
		"Draw(1,3,1)", "Draw(101,3,1)", "Draw(201,3,1)", "Draw(301,3,1)",
	}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("replay order = %v, want %v", first, want)
	}
}

func TestExecuteReplaysAllOps(t *testing.T) {
	drv := newCallDriver()
	prof := &testProfiler{}
	d := NewDispatcher(drv, prof)

	action := driver.PassAction{}
	action.Colors[0] = driver.ColorAction{Action: driver.LoadClear, R: 0.25, G: 0.5, B: 0.75, A: 1}
	action.Depth = driver.DepthAction{Action: driver.LoadClear, Value: 1}
	action.Stencil = driver.StencilAction{Action: driver.LoadDontCare, Value: 3}

	var bind driver.Bindings
	bind.VertexBuffers[0] = 11
	bind.VertexBufferOffsets[0] = 64
	bind.IndexBuffer = 12
	bind.IndexBufferOffset = 128
	bind.FragmentImages[1] = 21

	var content driver.ImageContent
	content.Subimage[0][0].Data = []byte{1, 2, 3, 4}
	content.Subimage[0][1].Data = []byte{5, 6}

	b := NewBuffer(0)
	b.OpenStage(stage.Handle(1), 1)
	b.PushStageMarker("geometry")
	b.BeginProfileSample("Stage: geometry")
	b.BeginDefaultPass(&action, 1280, 720)
	b.ApplyViewport(0, 0, 1280, 720, true)
	b.ApplyScissorRect(10, 10, 100, 100, false)
	b.ApplyPipeline(31)
	b.ApplyBindings(&bind)
	b.ApplyUniforms(driver.StageVertex, 0, []byte{9, 9, 9, 9})
	b.Draw(0, 36, 2)
	b.Dispatch(8, 8, 1)
	b.UpdateBuffer(11, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	b.UpdateImage(41, &content)
	b.AppendBuffer(13, 256, []byte{7, 7})
	b.EndPass()
	b.EndProfileSample()
	b.PopStageMarker()
	b.CloseStage()

	if got := d.Execute([]*Buffer{b}); got != 16 {
		t.Fatalf("Execute() = %d, want 16", got)
	}

	want := []string{
		"PushDebugGroup(geometry)",
		"BeginDefaultPass(1280x720)",
		"ApplyViewport(0,0,1280,720,true)",
		"ApplyScissorRect(10,10,100,100,false)",
		"ApplyPipeline(31)",
		"ApplyBindings",
		"ApplyUniforms(0,0,4 bytes)",
		"Draw(0,36,2)",
		"Dispatch(8,8,1)",
		"UpdateBuffer(11,8 bytes)",
		"UpdateImage(41)",
		"MapBuffer(13,256,2 bytes)",
		"EndPass",
		"PopDebugGroup",
	}
	if !reflect.DeepEqual(drv.calls, want) {
		t.Errorf("driver calls = %v, want %v", drv.calls, want)
	}

	if !reflect.DeepEqual(drv.lastAction, action) {
		t.Errorf("pass action = %+v, want %+v", drv.lastAction, action)
	}
	if !reflect.DeepEqual(drv.lastBindings, bind) {
		t.Errorf("bindings = %+v, want %+v", drv.lastBindings, bind)
	}
	if !reflect.DeepEqual(drv.lastUniforms, []byte{9, 9, 9, 9}) {
		t.Errorf("uniforms = %v, want [9 9 9 9]", drv.lastUniforms)
	}
	if !reflect.DeepEqual(drv.lastImage.Subimage[0][0].Data, []byte{1, 2, 3, 4}) {
		t.Errorf("subimage[0][0] = %v, want [1 2 3 4]", drv.lastImage.Subimage[0][0].Data)
	}
	if !reflect.DeepEqual(drv.lastImage.Subimage[0][1].Data, []byte{5, 6}) {
		t.Errorf("subimage[0][1] = %v, want [5 6]", drv.lastImage.Subimage[0][1].Data)
	}

	wantProf := []string{"begin:Stage: geometry", "end"}
	if !reflect.DeepEqual(prof.events, wantProf) {
		t.Errorf("profiler events = %v, want %v", prof.events, wantProf)
	}
}

func TestExecuteNilProfilerDropsSamples(t *testing.T) {
	drv := newCallDriver()
	d := NewDispatcher(drv, nil)

	b := NewBuffer(0)
	b.OpenStage(stage.Handle(1), 1)
	b.BeginProfileSample("frame")
	b.EndProfileSample()
	b.CloseStage()

	if got := d.Execute([]*Buffer{b}); got != 2 {
		t.Fatalf("Execute() = %d, want 2", got)
	}
	if len(drv.calls) != 0 {
		t.Errorf("profile samples reached the driver: %v", drv.calls)
	}
}

func TestExecuteCopiesRecordedData(t *testing.T) {
	drv := newCallDriver()
	d := NewDispatcher(drv, nil)

	data := []byte{1, 2, 3, 4}
	b := NewBuffer(0)
	b.OpenStage(stage.Handle(1), 1)
	b.ApplyUniforms(driver.StageFragment, 2, data)
	b.CloseStage()

	// Mutating the caller's slice after recording must not affect replay.
	data[0] = 99

	d.Execute([]*Buffer{b})
	if !reflect.DeepEqual(drv.lastUniforms, []byte{1, 2, 3, 4}) {
		t.Errorf("uniforms = %v, want the bytes captured at record time", drv.lastUniforms)
	}
}

func TestExecuteResetsBuffers(t *testing.T) {
	drv := newCallDriver()
	d := NewDispatcher(drv, nil)

	b := NewBuffer(0)
	b.OpenStage(stage.Handle(1), 1)
	b.Draw(0, 3, 1)
	b.CloseStage()

	d.Execute([]*Buffer{b})
	if b.Len() != 0 || b.BlobSize() != 0 {
		t.Errorf("buffer not reset after Execute: %d refs, %d bytes", b.Len(), b.BlobSize())
	}

	// The buffer records a fresh frame afterwards.
	b.OpenStage(stage.Handle(1), 1)
	b.Draw(1, 3, 1)
	b.CloseStage()
	if got := d.Execute([]*Buffer{b}); got != 1 {
		t.Errorf("second Execute() = %d, want 1", got)
	}
}

func TestExecuteOpenStagePanics(t *testing.T) {
	d := NewDispatcher(newCallDriver(), nil)

	b := NewBuffer(0)
	b.OpenStage(stage.Handle(1), 1)
	b.Draw(0, 3, 1)

	defer func() {
		if recover() == nil {
			t.Fatal("Execute with an open stage should panic")
		}
	}()
	d.Execute([]*Buffer{b})
}

func TestOpString(t *testing.T) {
	if got := OpDraw.String(); got != "Draw" {
		t.Errorf("OpDraw.String() = %q, want %q", got, "Draw")
	}
	if got := Op(200).String(); got != "Unknown" {
		t.Errorf("Op(200).String() = %q, want %q", got, "Unknown")
	}
	for op := Op(0); op < opCount; op++ {
		if op.String() == "" {
			t.Errorf("Op(%d) has no name", op)
		}
	}
}
