// Package staged is a deferred render-command recording and execution core.
//
// Application and worker threads record rendering operations (pass
// begin/end, pipeline and binding application, draws, dispatches, buffer
// and image updates) into per-thread command buffers during a frame. A
// single designated thread later sorts the recorded commands by declared
// stage dependencies and replays them against a GPU backend.
//
// # Stages
//
// Commands are grouped into named stages registered in a dependency
// forest: a stage's commands always execute after every ancestor's
// commands. Stages can be disabled at runtime; BeginStage on a disabled
// stage reports false and the caller skips the stage's body.
//
// # Frame pipeline
//
// Two command-buffer sets alternate: the feed set receives the frame being
// recorded while the render set holds the previous frame, ready for
// execution. SwapCommandBuffers exchanges them, so recording frame N+1
// overlaps executing frame N.
//
// # Resource lifetime
//
// Destroy requests never free a resource synchronously. Each resource
// carries a last-used frame stamp written at record time; a once-per-frame
// sweep reclaims a queued resource only after enough frames have passed
// that no pipelined command can still reference it.
//
// # Threading contract
//
// Each recording thread owns one command buffer selected by a stable
// thread index. SwapCommandBuffers, Commit and Flush must run on the
// single execution thread, with an external frame barrier guaranteeing all
// recording has finished first. See the jobs package for a worker pool
// providing stable indices and such a barrier.
package staged
