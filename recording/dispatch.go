package recording

import (
	"slices"

	"github.com/gogpu/staged/driver"
)

// Profiler receives the begin/end sample pairs recorded around stages and
// explicit profile scopes. Implementations hook an external profiler;
// samples are strictly nested.
type Profiler interface {
	BeginSample(name string)
	EndSample()
}

// runner replays one opcode: it decodes the arguments the recorder wrote
// and issues the driver call.
type runner func(*Dispatcher, *decoder)

// runners is the opcode-indexed replay table. Indexed by Op.
var runners = [opCount]runner{
	OpBeginDefaultPass: runBeginDefaultPass,
	OpBeginPass:        runBeginPass,
	OpApplyViewport:    runApplyViewport,
	OpApplyScissorRect: runApplyScissorRect,
	OpApplyPipeline:    runApplyPipeline,
	OpApplyBindings:    runApplyBindings,
	OpApplyUniforms:    runApplyUniforms,
	OpDraw:             runDraw,
	OpDispatch:         runDispatch,
	OpEndPass:          runEndPass,
	OpUpdateBuffer:     runUpdateBuffer,
	OpUpdateImage:      runUpdateImage,
	OpAppendBuffer:     runAppendBuffer,
	OpBeginProfile:     runBeginProfile,
	OpEndProfile:       runEndProfile,
	OpStagePush:        runStagePush,
	OpStagePop:         runStagePop,
}

// Dispatcher merges, sorts and replays a set of per-thread command
// buffers against a driver. It must run on a single designated thread
// after all producers for the buffer set have finished.
type Dispatcher struct {
	drv  driver.Driver
	prof Profiler

	// scratch is the sort buffer, reused across frames.
	scratch []Ref
}

// NewDispatcher creates a dispatcher replaying against drv. prof may be
// nil to drop profile samples.
func NewDispatcher(drv driver.Driver, prof Profiler) *Dispatcher {
	return &Dispatcher{drv: drv, prof: prof}
}

// Execute replays every command recorded in the given buffer set and
// resets each buffer's blob, reference list and command index for the next
// frame. It returns the number of commands executed.
//
// Execute panics if any buffer still has an open stage: all producers must
// have closed their stages before the set is dispatched.
func (d *Dispatcher) Execute(buffers []*Buffer) int {
	total := 0
	for _, b := range buffers {
		if b.RunningStage().IsValid() {
			panic("recording: command buffer dispatched with an open stage")
		}
		total += len(b.refs)
	}

	if total > 0 {
		refs := d.scratch[:0]
		for _, b := range buffers {
			refs = append(refs, b.refs...)
		}

		// The sort must be stable: references with equal keys (same stage,
		// same local index, different threads) keep their buffer-set order
		// so replay is deterministic for a fixed thread assignment.
		slices.SortStableFunc(refs, func(a, b Ref) int {
			switch {
			case a.Key < b.Key:
				return -1
			case a.Key > b.Key:
				return 1
			default:
				return 0
			}
		})

		for i := range refs {
			ref := &refs[i]
			dec := decoder{buf: buffers[ref.Buffer].params.buf, off: ref.Offset}
			runners[ref.Op](d, &dec)
		}

		d.scratch = refs[:0]
	}

	for _, b := range buffers {
		b.Reset()
	}
	return total
}

func runBeginDefaultPass(d *Dispatcher, dec *decoder) {
	action := decodePassAction(dec)
	width := int(dec.i32())
	height := int(dec.i32())
	d.drv.BeginDefaultPass(&action, width, height)
}

func runBeginPass(d *Dispatcher, dec *decoder) {
	pass := driver.Pass(dec.u32())
	action := decodePassAction(dec)
	d.drv.BeginPass(pass, &action)
}

func runApplyViewport(d *Dispatcher, dec *decoder) {
	x := int(dec.i32())
	y := int(dec.i32())
	w := int(dec.i32())
	h := int(dec.i32())
	d.drv.ApplyViewport(x, y, w, h, dec.bool())
}

func runApplyScissorRect(d *Dispatcher, dec *decoder) {
	x := int(dec.i32())
	y := int(dec.i32())
	w := int(dec.i32())
	h := int(dec.i32())
	d.drv.ApplyScissorRect(x, y, w, h, dec.bool())
}

func runApplyPipeline(d *Dispatcher, dec *decoder) {
	d.drv.ApplyPipeline(driver.Pipeline(dec.u32()))
}

func runApplyBindings(d *Dispatcher, dec *decoder) {
	bind := decodeBindings(dec)
	d.drv.ApplyBindings(&bind)
}

func runApplyUniforms(d *Dispatcher, dec *decoder) {
	stg := driver.ShaderStage(dec.u8())
	slot := int(dec.i32())
	d.drv.ApplyUniforms(stg, slot, dec.bytes())
}

func runDraw(d *Dispatcher, dec *decoder) {
	base := int(dec.i32())
	num := int(dec.i32())
	inst := int(dec.i32())
	d.drv.Draw(base, num, inst)
}

func runDispatch(d *Dispatcher, dec *decoder) {
	x := int(dec.i32())
	y := int(dec.i32())
	z := int(dec.i32())
	d.drv.Dispatch(x, y, z)
}

func runEndPass(d *Dispatcher, _ *decoder) {
	d.drv.EndPass()
}

func runUpdateBuffer(d *Dispatcher, dec *decoder) {
	buf := driver.Buffer(dec.u32())
	d.drv.UpdateBuffer(buf, dec.bytes())
}

func runUpdateImage(d *Dispatcher, dec *decoder) {
	img := driver.Image(dec.u32())
	var content driver.ImageContent
	for face := 0; face < driver.CubeFaceCount; face++ {
		for mip := 0; mip < driver.MaxMipmaps; mip++ {
			if data := dec.bytes(); len(data) > 0 {
				content.Subimage[face][mip].Data = data
			}
		}
	}
	d.drv.UpdateImage(img, &content)
}

func runAppendBuffer(d *Dispatcher, dec *decoder) {
	buf := driver.Buffer(dec.u32())
	offset := int(dec.i32())
	d.drv.MapBuffer(buf, offset, dec.bytes())
}

func runBeginProfile(d *Dispatcher, dec *decoder) {
	name := dec.str()
	if d.prof != nil {
		d.prof.BeginSample(name)
	}
}

func runEndProfile(d *Dispatcher, _ *decoder) {
	if d.prof != nil {
		d.prof.EndSample()
	}
}

func runStagePush(d *Dispatcher, dec *decoder) {
	d.drv.PushDebugGroup(dec.str())
}

func runStagePop(d *Dispatcher, _ *decoder) {
	d.drv.PopDebugGroup()
}
