package wgpu

import (
	"fmt"
	"log"

	"github.com/gogpu/wgpu/core"
	"github.com/gogpu/wgpu/types"
)

// GPUInfo describes the selected GPU, mirroring the teacher's own
// device.go GPUInfo shape.
type GPUInfo struct {
	Name       string
	Vendor     string
	DeviceType types.DeviceType
	Backend    types.Backend
	Driver     string
}

func (g *GPUInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

func getGPUInfo(adapterID core.AdapterID) (*GPUInfo, error) {
	info, err := core.GetAdapterInfo(adapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get adapter info: %w", err)
	}
	return &GPUInfo{
		Name:       info.Name,
		Vendor:     info.Vendor,
		DeviceType: info.DeviceType,
		Backend:    info.Backend,
		Driver:     info.Driver,
	}, nil
}

func logGPUInfo(adapterID core.AdapterID) {
	info, err := getGPUInfo(adapterID)
	if err != nil {
		log.Printf("segmo/wgpu: failed to get GPU info: %v", err)
		return
	}
	log.Printf("segmo/wgpu: GPU: %s", info.String())
}

// Device wraps the logical device and queue acquired for one pipeline
// session, following the teacher's createDevice/getDeviceQueue/
// releaseDevice lifecycle (backend/wgpu/device.go) exactly.
type Device struct {
	adapter core.AdapterID
	device  core.DeviceID
	queue   core.QueueID
}

// RequestAdapterFunc acquires a GPU adapter. It is a package variable
// rather than a direct core.RequestAdapter call because this pack's
// gogpu/wgpu snapshot does not yet expose adapter enumeration — the
// teacher's own device.go starts one step later, from an
// already-acquired core.AdapterID. Production wiring overrides this once
// that entry point ships; until then it reports ErrDeviceUnavailable, so
// Backend.Init fails and Processor.Init falls back to the software
// backend.
var RequestAdapterFunc = func() (core.AdapterID, error) {
	return core.AdapterID{}, ErrDeviceUnavailable
}

// NewDevice acquires a logical device and queue from adapterID.
func NewDevice(adapterID core.AdapterID, label string) (*Device, error) {
	logGPUInfo(adapterID)

	desc := &types.DeviceDescriptor{
		Label:            label,
		RequiredFeatures: nil,
		RequiredLimits:   types.DefaultLimits(),
	}
	deviceID, err := core.RequestDevice(adapterID, desc)
	if err != nil {
		return nil, fmt.Errorf("segmo/wgpu: failed to create device: %w", err)
	}

	queueID, err := core.GetDeviceQueue(deviceID)
	if err != nil {
		_ = core.DeviceDrop(deviceID)
		return nil, fmt.Errorf("segmo/wgpu: failed to get device queue: %w", err)
	}

	return &Device{adapter: adapterID, device: deviceID, queue: queueID}, nil
}

// Raw returns the underlying device handle, used to seed shader
// compilation and pipeline creation.
func (d *Device) Raw() core.DeviceID { return d.device }

// Close releases the device and its adapter.
func (d *Device) Close() {
	if d == nil {
		return
	}
	if !d.device.IsZero() {
		_ = core.DeviceDrop(d.device)
	}
	if !d.adapter.IsZero() {
		_ = core.AdapterDrop(d.adapter)
	}
}
