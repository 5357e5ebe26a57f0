// Package recording captures GPU commands into per-thread buffers and
// replays them in dependency order.
//
// Worker threads record operations into their own Buffer during a frame:
// each operation serializes its arguments into the buffer's parameter blob
// and appends a reference carrying a sort key, the opcode and the blob
// offset. The key combines the owning stage's dependency order (high 16
// bits) with a monotonically increasing per-thread command index (low 16
// bits), so a stable ascending sort over all buffers linearizes
// concurrently recorded commands: ancestor stages first, then per-thread
// recording order within a stage.
//
// A single consumer thread later runs the Dispatcher, which merges every
// buffer's references, stable-sorts them, and replays each one through an
// opcode-indexed handler that decodes exactly the bytes its recorder
// produced and issues the call against the driver.
package recording
