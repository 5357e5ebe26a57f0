package wgpu

import (
	"errors"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/staged"
)

// logInfo reports the selected GPU through the staged logger.
func logInfo(info *GPUInfo) {
	staged.Logger().Info("wgpu: GPU selected",
		"name", info.Name, "backend", info.Backend, "driver", info.Driver)
}

// SharedDevice wraps GPU handles borrowed from an embedding application.
//
// An application that already owns a GPU device (a window toolkit, a
// larger engine) exposes it through gpucontext.DeviceProvider; wrapping it
// here lets a wgpu-backed driver submit on the same device instead of
// creating a second GPU instance. Close never releases borrowed handles.
type SharedDevice struct {
	provider gpucontext.DeviceProvider
}

// FromProvider borrows an application's GPU device.
func FromProvider(p gpucontext.DeviceProvider) (*SharedDevice, error) {
	if p == nil {
		return nil, errors.New("wgpu: nil device provider")
	}
	if p.Device() == nil {
		return nil, errors.New("wgpu: provider has no device")
	}
	return &SharedDevice{provider: p}, nil
}

// Device returns the borrowed device handle.
func (s *SharedDevice) Device() gpucontext.Device { return s.provider.Device() }

// Queue returns the borrowed queue handle.
func (s *SharedDevice) Queue() gpucontext.Queue { return s.provider.Queue() }

// Adapter returns the borrowed adapter handle.
func (s *SharedDevice) Adapter() gpucontext.Adapter { return s.provider.Adapter() }
