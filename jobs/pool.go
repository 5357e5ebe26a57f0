// Package jobs provides the worker pool collaborating with the staged
// rendering core: a fixed set of goroutines with stable thread indices and
// a frame barrier.
//
// The core's recording surface is addressed by thread index, one command
// buffer per index. Pool guarantees that tasks submitted to it run on
// goroutines whose indices are stable for the pool's lifetime and lie in
// [0, Workers()), so a task can record through staged.Context.Staged with
// its worker's index. Wait is the frame barrier: it returns once every
// task submitted so far has finished, which is the precondition for
// swapping and committing the command buffers.
package jobs

import (
	"runtime"
	"sync"
)

// Task is a unit of work executed on a pool worker. The thread argument is
// the worker's stable index.
type Task func(thread int)

// Pool is a fixed-size worker pool with stable worker indices.
//
// Pool is safe for concurrent use. Submit may be called from any
// goroutine, including from running tasks.
type Pool struct {
	workers int
	tasks   chan Task
	done    chan struct{}

	// running waits for the worker goroutines on Close.
	running sync.WaitGroup

	// pending is the frame barrier: incremented per Submit, decremented
	// when a task finishes.
	pending sync.WaitGroup
}

// NewPool creates a pool with the given number of workers and starts them.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		workers: workers,
		tasks:   make(chan Task, workers*4),
		done:    make(chan struct{}),
	}

	p.running.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

// Workers returns the number of workers; valid thread indices are
// [0, Workers()).
func (p *Pool) Workers() int { return p.workers }

// Submit queues a task for execution on some worker. It panics if the
// pool has been closed.
func (p *Pool) Submit(t Task) {
	select {
	case <-p.done:
		panic("jobs: Submit on closed pool")
	default:
	}

	p.pending.Add(1)
	select {
	case <-p.done:
		p.pending.Done()
		panic("jobs: Submit on closed pool")
	case p.tasks <- t:
	}
}

// Wait blocks until every task submitted so far has finished. This is the
// frame barrier between recording and the command-buffer swap.
func (p *Pool) Wait() { p.pending.Wait() }

// Close waits for outstanding tasks, stops the workers and releases the
// pool. The pool must not be used afterwards.
func (p *Pool) Close() {
	p.pending.Wait()
	close(p.done)
	p.running.Wait()
}

// worker is the main loop of one worker goroutine; thread is its stable
// index.
func (p *Pool) worker(thread int) {
	defer p.running.Done()

	for {
		select {
		case <-p.done:
			return
		case t := <-p.tasks:
			t(thread)
			p.pending.Done()
		}
	}
}
