package staged

import (
	"sync"

	"github.com/gogpu/staged/driver"
)

// destroyQueues holds the per-kind pending-destroy lists. Destroy requests
// can arrive from any goroutine; the sweep runs on the execution thread.
type destroyQueues struct {
	mu        sync.Mutex
	buffers   []driver.Buffer
	images    []driver.Image
	shaders   []driver.Shader
	pipelines []driver.Pipeline
	passes    []driver.Pass
}

func (q *destroyQueues) pushBuffer(b driver.Buffer) {
	q.mu.Lock()
	q.buffers = append(q.buffers, b)
	q.mu.Unlock()
}

func (q *destroyQueues) pushImage(i driver.Image) {
	q.mu.Lock()
	q.images = append(q.images, i)
	q.mu.Unlock()
}

func (q *destroyQueues) pushShader(s driver.Shader) {
	q.mu.Lock()
	q.shaders = append(q.shaders, s)
	q.mu.Unlock()
}

func (q *destroyQueues) pushPipeline(p driver.Pipeline) {
	q.mu.Lock()
	q.pipelines = append(q.pipelines, p)
	q.mu.Unlock()
}

func (q *destroyQueues) pushPass(p driver.Pass) {
	q.mu.Lock()
	q.passes = append(q.passes, p)
	q.mu.Unlock()
}

// collectGarbage reclaims queued resources whose last-used frame is old
// enough that no in-flight command can still reference them. Commands
// execute pipelineDepth frames after being recorded, so destruction lags
// by at least that margin:
//
//	frame > lastUsed + pipelineDepth
//
// Streaming buffers also drop their entry from the append table when
// reclaimed. Runs once per frame on the execution thread.
func (c *Context) collectGarbage(frame int64) {
	lag := c.cfg.pipelineDepth
	q := &c.garbage

	q.mu.Lock()
	defer q.mu.Unlock()

	reclaimed := 0

	q.buffers = sweep(q.buffers, func(b driver.Buffer) bool {
		if frame <= c.lastUsed(driver.KindBuffer, uint32(b))+lag {
			return false
		}
		c.streams.remove(b)
		c.trace.removeBuffer(b)
		c.drv.DestroyBuffer(b)
		reclaimed++
		return true
	})

	q.images = sweep(q.images, func(i driver.Image) bool {
		if frame <= c.lastUsed(driver.KindImage, uint32(i))+lag {
			return false
		}
		c.trace.removeImage(i)
		c.drv.DestroyImage(i)
		reclaimed++
		return true
	})

	q.shaders = sweep(q.shaders, func(s driver.Shader) bool {
		if frame <= c.lastUsed(driver.KindShader, uint32(s))+lag {
			return false
		}
		c.trace.removeShader()
		c.drv.DestroyShader(s)
		reclaimed++
		return true
	})

	q.pipelines = sweep(q.pipelines, func(p driver.Pipeline) bool {
		if frame <= c.lastUsed(driver.KindPipeline, uint32(p))+lag {
			return false
		}
		c.trace.removePipeline()
		c.drv.DestroyPipeline(p)
		reclaimed++
		return true
	})

	q.passes = sweep(q.passes, func(p driver.Pass) bool {
		if frame <= c.lastUsed(driver.KindPass, uint32(p))+lag {
			return false
		}
		c.trace.removePass()
		c.drv.DestroyPass(p)
		reclaimed++
		return true
	})

	if reclaimed > 0 {
		Logger().Debug("staged: destroyed deferred resources", "frame", frame, "count", reclaimed)
	}
}

func (c *Context) lastUsed(kind driver.ResourceKind, id uint32) int64 {
	return c.drv.LastUsed(driver.Resource{Kind: kind, ID: id})
}

// sweep removes every element reclaim reports true for, preserving the
// order of the survivors.
func sweep[T any](queue []T, reclaim func(T) bool) []T {
	kept := queue[:0]
	for _, item := range queue {
		if !reclaim(item) {
			kept = append(kept, item)
		}
	}
	return kept
}
