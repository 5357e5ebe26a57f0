package wgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/staged/driver"
)

// ErrNoGPU indicates that no usable GPU adapter was found.
var ErrNoGPU = errors.New("wgpu: no compatible GPU adapter available")

// GPUInfo describes the selected GPU adapter.
type GPUInfo struct {
	// Name is the GPU name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// Vendor is the GPU vendor.
	Vendor string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType gputypes.DeviceType
	// Backend is the graphics API in use (Vulkan, Metal, DX12).
	Backend gputypes.Backend
	// Driver is the driver version string.
	Driver string
}

// String returns a human-readable description of the GPU.
func (g *GPUInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

// Device holds the GPU handles a wgpu-backed driver runs on.
//
// Device is safe for concurrent use.
type Device struct {
	mu sync.RWMutex

	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID

	info *GPUInfo

	// owned reports whether Close must release the handles. Borrowed
	// devices (FromProvider) stay alive after Close.
	owned       bool
	initialized bool
}

// NewDevice creates an empty Device. It must be initialized with Init
// before use.
func NewDevice() *Device { return &Device{} }

// Init creates an instance, selects a high-performance adapter, and
// acquires a device and its queue. The label names the device for GPU
// debug tooling.
func (d *Device) Init(label string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}

	d.instance = core.NewInstance(&gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
		Flags:    0,
	})

	adapterID, err := d.instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoGPU, err)
	}
	d.adapter = adapterID
	d.info, _ = adapterInfo(adapterID)

	deviceID, err := core.RequestDevice(adapterID, &gputypes.DeviceDescriptor{
		Label:            label,
		RequiredFeatures: nil,
		RequiredLimits:   gputypes.DefaultLimits(),
	})
	if err != nil {
		return fmt.Errorf("wgpu: device creation failed: %w", err)
	}
	d.device = deviceID

	queueID, err := core.GetDeviceQueue(deviceID)
	if err != nil {
		_ = core.DeviceDrop(deviceID)
		return fmt.Errorf("wgpu: queue retrieval failed: %w", err)
	}
	d.queue = queueID

	d.owned = true
	d.initialized = true

	if d.info != nil {
		logInfo(d.info)
	}
	return nil
}

// Close releases the GPU handles if this Device owns them. The Device
// must not be used afterwards.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return
	}

	// Queue handles are released with the device.
	if d.owned {
		if !d.device.IsZero() {
			_ = core.DeviceDrop(d.device)
		}
		if !d.adapter.IsZero() {
			_ = core.AdapterDrop(d.adapter)
		}
	}
	d.instance = nil
	d.device = core.DeviceID{}
	d.adapter = core.AdapterID{}
	d.queue = core.QueueID{}
	d.info = nil
	d.initialized = false
}

// Initialized reports whether the device is ready for use.
func (d *Device) Initialized() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.initialized
}

// Backend identifies this device for the staged core's backend query.
func (d *Device) Backend() driver.Backend { return driver.BackendWGPU }

// Info returns information about the selected GPU, or nil when it is not
// available (borrowed devices, uninitialized).
func (d *Device) Info() *GPUInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.info
}

// DeviceID returns the wgpu device handle. Zero when uninitialized.
func (d *Device) DeviceID() core.DeviceID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.device
}

// QueueID returns the wgpu queue handle. Zero when uninitialized.
func (d *Device) QueueID() core.QueueID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.queue
}

// CheckLimits verifies the device against the staged core's binding
// limits so misconfigured adapters fail at setup instead of mid-frame.
func (d *Device) CheckLimits() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.initialized || d.device.IsZero() {
		return errors.New("wgpu: device not initialized")
	}

	limits, err := core.GetDeviceLimits(d.device)
	if err != nil {
		return fmt.Errorf("wgpu: failed to get device limits: %w", err)
	}
	if limits.MaxBufferSize == 0 {
		return errors.New("wgpu: device reports a zero max buffer size")
	}
	if limits.MaxTextureDimension2D < minTextureDimension {
		return fmt.Errorf("wgpu: max 2D texture dimension %d below required %d",
			limits.MaxTextureDimension2D, minTextureDimension)
	}
	return nil
}

// minTextureDimension is the smallest 2D texture size a usable render
// target needs.
const minTextureDimension = 2048

// adapterInfo retrieves identification of the GPU adapter.
func adapterInfo(adapterID core.AdapterID) (*GPUInfo, error) {
	info, err := core.GetAdapterInfo(adapterID)
	if err != nil {
		return nil, fmt.Errorf("wgpu: failed to get adapter info: %w", err)
	}
	return &GPUInfo{
		Name:       info.Name,
		Vendor:     info.Vendor,
		DeviceType: info.DeviceType,
		Backend:    info.Backend,
		Driver:     info.Driver,
	}, nil
}
