// Package driver defines the GPU backend surface consumed by the staged
// rendering core.
//
// The core never talks to a graphics API directly. Everything it needs
// (resource creation and destruction, pass/pipeline/binding application,
// draws, dispatches, buffer and image updates) goes through the Driver
// interface. A Driver implementation translates these calls to a concrete
// backend (wgpu, a capture file, a test double).
//
// Resource handles are opaque numeric IDs. The driver owns the resources;
// the core only tracks their lifetime metadata through the last-used frame
// stamps (LastUsed/SetLastUsed), which gate the frame-delayed destruction
// sweep.
package driver
