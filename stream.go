package staged

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/staged/driver"
)

// streamBuffer maps a GPU buffer to an atomically advanced write cursor
// and a fixed capacity, emulating incremental append writes within a
// frame. Cursors rewind to zero once per frame after execution.
type streamBuffer struct {
	buf    driver.Buffer
	size   int
	offset atomic.Int64
}

// reserve claims n bytes and returns the range's starting offset. The
// fetch-and-add guarantees concurrent recording threads never receive
// overlapping ranges. Exceeding the declared capacity is unrecoverable
// within the frame and panics.
func (s *streamBuffer) reserve(n int) int {
	end := s.offset.Add(int64(n))
	if end > int64(s.size) {
		panic(fmt.Sprintf("staged: streaming buffer overflow: %d > capacity %d", end, s.size))
	}
	return int(end) - n
}

// streamTable tracks every streaming buffer. Entries are added when a
// UsageStream buffer is created and removed when the destruction sweep
// reclaims it; lookups happen on every append from any recording thread.
type streamTable struct {
	mu   sync.RWMutex
	bufs []*streamBuffer
}

func (t *streamTable) add(buf driver.Buffer, size int) {
	t.mu.Lock()
	t.bufs = append(t.bufs, &streamBuffer{buf: buf, size: size})
	t.mu.Unlock()
}

func (t *streamTable) remove(buf driver.Buffer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.bufs {
		if s.buf == buf {
			t.bufs = append(t.bufs[:i], t.bufs[i+1:]...)
			return
		}
	}
}

// lookup finds the stream record for a buffer. A miss means the buffer is
// not UsageStream or was destroyed mid-render, which is caller misuse.
func (t *streamTable) lookup(buf driver.Buffer) *streamBuffer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, s := range t.bufs {
		if s.buf == buf {
			return s
		}
	}
	panic(fmt.Sprintf("staged: append to non-streaming or destroyed buffer %d", buf))
}

// resetAll rewinds every cursor. Runs once per frame, after the frame's
// commands have been fully executed.
func (t *streamTable) resetAll() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, s := range t.bufs {
		s.offset.Store(0)
	}
}
