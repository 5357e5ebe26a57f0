// Package wgpu provisions a GPU device for drivers built on gogpu/wgpu.
//
// The staged core talks to the GPU only through the driver.Driver
// interface; this package supplies the plumbing underneath a wgpu-based
// implementation of that interface: instance creation, adapter selection,
// device and queue acquisition, adapter identification, and teardown.
//
// A Device can own its GPU handles (Init) or borrow them from an
// application that already holds a device, via a gpucontext.DeviceProvider
// (FromProvider). Borrowed handles are never released by Close.
package wgpu
