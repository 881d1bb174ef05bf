package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_portability_subset"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// DeviceDescriptor configures RequestDevice.
type DeviceDescriptor struct {
	Label string

	// RequiredExtensions are enabled in addition to the swapchain extension,
	// which is always enabled when the adapter was requested with a surface.
	RequiredExtensions []string
}

type RequestDeviceStatus int

const (
	RequestDeviceStatusSuccess RequestDeviceStatus = iota
	RequestDeviceStatusError
)

func (s RequestDeviceStatus) String() string {
	switch s {
	case RequestDeviceStatusSuccess:
		return "Success"
	case RequestDeviceStatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// RequestDeviceCallback receives the outcome of RequestDevice.
type RequestDeviceCallback func(status RequestDeviceStatus, device *Device, message string)

// Device is the logical handle used to create resources and submit work.
type Device struct {
	label   string
	adapter *Adapter
	handle  core1_0.Device

	queue        *Queue
	presentQueue *Queue
	commandPool  core1_0.CommandPool

	swapchainExtension khr_swapchain.Extension
}

// RequestDevice creates the logical device, its queues and command pool, and
// reports it through callback before returning.
func (a *Adapter) RequestDevice(desc *DeviceDescriptor, callback RequestDeviceCallback) {
	if desc == nil {
		desc = &DeviceDescriptor{}
	}

	device, err := a.createDevice(desc)
	if err != nil {
		callback(RequestDeviceStatusError, nil, err.Error())
		return
	}

	callback(RequestDeviceStatusSuccess, device, "")
}

// RequestDeviceSync wraps RequestDevice, capturing the callback result.
func (a *Adapter) RequestDeviceSync(desc *DeviceDescriptor) (*Device, error) {
	return captureDevice(func(callback RequestDeviceCallback) {
		a.RequestDevice(desc, callback)
	})
}

func captureDevice(request func(RequestDeviceCallback)) (*Device, error) {
	var (
		device  *Device
		status  RequestDeviceStatus
		message string
		done    bool
	)

	request(func(s RequestDeviceStatus, d *Device, m string) {
		status, device, message = s, d, m
		done = true
	})

	switch {
	case !done:
		return nil, errors.New("request device: callback never fired")
	case status != RequestDeviceStatusSuccess:
		return nil, errors.Wrap(ErrDeviceRequestFailed, message)
	case device == nil:
		return nil, errors.New("request device: success without a device")
	}

	return device, nil
}

func (a *Adapter) createDevice(desc *DeviceDescriptor) (*Device, error) {
	if a.physicalDevice == nil {
		return nil, errors.New("create device: adapter has been released")
	}

	indices := a.queueFamilies
	if !indices.IsComplete() {
		return nil, errors.New("create device: adapter has no usable queue family")
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range indices.Unique() {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	extensions, _, err := a.physicalDevice.EnumerateDeviceExtensionProperties()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate device extensions")
	}

	var extensionNames []string
	if a.surface != nil {
		extensionNames = append(extensionNames, swapchainDeviceExtensions...)
	}

	for _, ext := range desc.RequiredExtensions {
		_, supported := extensions[ext]
		if !supported {
			return nil, errors.Wrapf(ErrMissingExtension, "create device: adapter lacks %s", ext)
		}
		extensionNames = append(extensionNames, ext)
	}

	// Required on portability implementations such as MoltenVK.
	_, supported := extensions[khr_portability_subset.ExtensionName]
	if supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	handle, _, err := a.physicalDevice.CreateDevice(nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create device %q", desc.Label)
	}

	device := &Device{
		label:   desc.Label,
		adapter: a,
		handle:  handle,
	}
	device.queue = &Queue{device: device, handle: handle.GetQueue(*indices.GraphicsFamily, 0), family: *indices.GraphicsFamily}
	device.presentQueue = &Queue{device: device, handle: handle.GetQueue(*indices.PresentFamily, 0), family: *indices.PresentFamily}

	device.commandPool, _, err = handle.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: *indices.GraphicsFamily,
	})
	if err != nil {
		handle.Destroy(nil)
		return nil, errors.Wrap(err, "create command pool")
	}

	if a.surface != nil {
		device.swapchainExtension = khr_swapchain.CreateExtensionFromDevice(handle)
	}

	return device, nil
}

// Release destroys the command pool and the device. Every resource created from
// the device must be released first.
func (d *Device) Release() {
	if d.commandPool != nil {
		d.commandPool.Destroy(nil)
		d.commandPool = nil
	}

	if d.handle != nil {
		d.handle.Destroy(nil)
		d.handle = nil
	}
}

func (d *Device) Label() string {
	return d.label
}

func (d *Device) Adapter() *Adapter {
	return d.adapter
}

// Queue returns the queue that accepts graphics work.
func (d *Device) Queue() *Queue {
	return d.queue
}

// WaitIdle blocks until all submitted work has finished.
func (d *Device) WaitIdle() error {
	_, err := d.handle.WaitIdle()
	return errors.Wrap(err, "wait for device idle")
}
