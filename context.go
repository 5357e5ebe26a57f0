package staged

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/staged/driver"
	"github.com/gogpu/staged/recording"
	"github.com/gogpu/staged/stage"
)

// Context is the rendering core. It owns the stage registry, both
// command-buffer sets, the streaming-buffer table, the deferred-destroy
// queues and the resource statistics, all allocated as one unit.
//
// Recording through the Staged surface is safe from multiple goroutines as
// long as each uses its own thread index. SwapCommandBuffers, Commit,
// Flush and Release must run on the single execution thread while no
// recording is in flight; this is a caller contract backed by an external
// frame barrier.
type Context struct {
	drv      driver.Driver
	cfg      config
	registry *stage.Registry

	// feed receives the frame being recorded; render holds the previous
	// frame's commands awaiting execution. SwapCommandBuffers exchanges
	// them.
	feed   []*recording.Buffer
	render []*recording.Buffer

	dispatcher *recording.Dispatcher
	streams    streamTable
	garbage    destroyQueues
	trace      traceState

	frame atomic.Int64
}

// New creates a Context executing against drv.
func New(drv driver.Driver, opts ...Option) (*Context, error) {
	if drv == nil {
		return nil, fmt.Errorf("staged: driver is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Context{
		drv:        drv,
		cfg:        cfg,
		registry:   stage.NewRegistry(),
		feed:       newBufferSet(cfg.threads),
		render:     newBufferSet(cfg.threads),
		dispatcher: recording.NewDispatcher(drv, cfg.profiler),
	}
	c.trace.init()

	Logger().Debug("staged: context created",
		"backend", drv.Backend(), "threads", cfg.threads, "pipelineDepth", cfg.pipelineDepth)
	return c, nil
}

func newBufferSet(threads int) []*recording.Buffer {
	set := make([]*recording.Buffer, threads)
	for i := range set {
		set[i] = recording.NewBuffer(i)
	}
	return set
}

// Driver returns the backing driver.
func (c *Context) Driver() driver.Driver { return c.drv }

// Backend identifies the graphics API behind the driver.
func (c *Context) Backend() driver.Backend { return c.drv.Backend() }

// Threads returns the number of recording threads the Context was built
// for; valid thread indices are [0, Threads()).
func (c *Context) Threads() int { return c.cfg.threads }

// FrameIndex returns the current frame index. It advances once per Commit.
func (c *Context) FrameIndex() int64 { return c.frame.Load() }

// Stage management

// RegisterStage creates a named stage as a child of parent, or as a root
// when parent is the zero handle. Stages are registered once at setup.
func (c *Context) RegisterStage(name string, parent stage.Handle) stage.Handle {
	return c.registry.Register(name, parent)
}

// EnableStage re-enables a stage; descendants recover their own last
// explicitly requested state.
func (c *Context) EnableStage(h stage.Handle) { c.registry.Enable(h) }

// DisableStage disables a stage and all of its descendants.
func (c *Context) DisableStage(h stage.Handle) { c.registry.Disable(h) }

// StageEnabled reports the effective enabled flag of a stage.
func (c *Context) StageEnabled(h stage.Handle) bool { return c.registry.Enabled(h) }

// FindStage looks a stage up by name.
func (c *Context) FindStage(name string) (stage.Handle, bool) { return c.registry.Find(name) }

// Frame control

// SwapCommandBuffers exchanges the feed and render sets, presenting the
// recorded feed set for execution. Must be called from the execution
// thread while no other thread is recording; the swap itself is what lets
// frame N+1 recording begin while frame N is still being committed.
func (c *Context) SwapCommandBuffers() {
	c.feed, c.render = c.render, c.feed
}

// Commit validates stage dependencies, executes the render set, performs
// the per-frame resets (stage states, stream cursors), commits the GPU
// queue, sweeps the destroy queues and advances the frame index.
//
// A dependency violation (a stage submitted whose parent never was) is
// logged and returned; it indicates an inconsistent begin/end-stage
// sequence in the caller, not a recoverable runtime condition.
func (c *Context) Commit() error {
	if err := c.validateStages(); err != nil {
		return err
	}

	executed := c.dispatcher.Execute(c.render)

	c.registry.ResetStates()
	c.streams.resetAll()

	if executed > 0 {
		c.drv.Commit()
	}

	frame := c.frame.Load()
	c.collectGarbage(frame)
	c.frame.Store(frame + 1)

	Logger().Debug("staged: frame committed", "frame", frame, "commands", executed)
	return nil
}

// Flush drains both command-buffer sets through the dispatcher, render set
// first. Used on shutdown so no recorded command is leaked unexecuted, and
// usable mid-run after a swap-less frame.
func (c *Context) Flush() error {
	if err := c.validateStages(); err != nil {
		return err
	}

	executed := c.dispatcher.Execute(c.render)
	executed += c.dispatcher.Execute(c.feed)

	c.registry.ResetStates()
	c.streams.resetAll()

	if executed > 0 {
		c.drv.Commit()
	}
	return nil
}

// Release flushes any unexecuted commands and force-collects every queued
// resource. The Context must not be used afterwards.
func (c *Context) Release() {
	if err := c.Flush(); err != nil {
		Logger().Error("staged: flush on release failed", "err", err)
	}

	// Sweep with a frame far enough ahead that every queued resource
	// qualifies, whatever its stamp.
	c.collectGarbage(c.frame.Load() + c.cfg.pipelineDepth + 100)
}

func (c *Context) validateStages() error {
	err := c.registry.Validate()
	if err != nil {
		Logger().Error("staged: stage dependency violation", "err", err)
	}
	return err
}

// stamp records the current frame as the last-used frame of a resource.
// Stamping happens at record time, not execution time: the destruction
// sweep adds the pipeline depth on top to cover the recording-to-execution
// lag.
func (c *Context) stamp(kind driver.ResourceKind, id uint32) {
	if id == driver.InvalidID {
		return
	}
	c.drv.SetLastUsed(driver.Resource{Kind: kind, ID: id}, c.frame.Load())
}
