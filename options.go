package staged

import (
	"runtime"

	"github.com/gogpu/staged/recording"
)

// config holds the resolved Context configuration.
type config struct {
	// threads is the number of recording threads, one command buffer per
	// thread per set.
	threads int

	// pipelineDepth is how many frames recording runs ahead of execution.
	// The destruction sweep frees a resource only once
	// frame > lastUsed+pipelineDepth.
	pipelineDepth int64

	// profiler receives begin/end sample pairs during replay. Nil drops
	// them.
	profiler recording.Profiler
}

// Option configures a Context.
type Option func(*config)

// defaultConfig returns the configuration used when no options are given.
func defaultConfig() config {
	return config{
		threads:       runtime.GOMAXPROCS(0),
		pipelineDepth: 1,
	}
}

// WithThreads sets the number of recording threads. Each thread owns one
// command buffer per set, addressed by its stable index in [0, n).
// Values below 1 are ignored.
func WithThreads(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.threads = n
		}
	}
}

// WithPipelineDepth sets how many frames of command pipelining the
// destruction sweep must account for. The default of 1 matches the
// feed/render double buffer: commands execute one frame after recording.
// Values below 1 are ignored.
func WithPipelineDepth(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.pipelineDepth = int64(n)
		}
	}
}

// WithProfiler installs a profiler receiving the sample pairs recorded
// around stages and explicit profile scopes.
func WithProfiler(p recording.Profiler) Option {
	return func(c *config) { c.profiler = p }
}
