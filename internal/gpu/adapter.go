package gpu

import (
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// PowerPreference hints which kind of GPU RequestAdapter should favour.
type PowerPreference int

const (
	PowerPreferenceUndefined PowerPreference = iota
	PowerPreferenceLowPower
	PowerPreferenceHighPerformance
)

var powerPreferenceNames = map[PowerPreference]string{
	PowerPreferenceUndefined:       "undefined",
	PowerPreferenceLowPower:        "low-power",
	PowerPreferenceHighPerformance: "high-performance",
}

func (p PowerPreference) String() string {
	if name, ok := powerPreferenceNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePowerPreference accepts the names printed by PowerPreference.String.
func ParsePowerPreference(s string) (PowerPreference, error) {
	for pref, name := range powerPreferenceNames {
		if name == s {
			return pref, nil
		}
	}
	return PowerPreferenceUndefined, errors.Newf("unknown power preference %q", s)
}

// AdapterType classifies the physical GPU behind an adapter.
type AdapterType int

const (
	AdapterTypeUnknown AdapterType = iota
	AdapterTypeDiscreteGPU
	AdapterTypeIntegratedGPU
	AdapterTypeVirtualGPU
	AdapterTypeCPU
)

func (t AdapterType) String() string {
	switch t {
	case AdapterTypeDiscreteGPU:
		return "DiscreteGPU"
	case AdapterTypeIntegratedGPU:
		return "IntegratedGPU"
	case AdapterTypeVirtualGPU:
		return "VirtualGPU"
	case AdapterTypeCPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

func adapterTypeOf(deviceType core1_0.PhysicalDeviceType) AdapterType {
	switch deviceType {
	case core1_0.PhysicalDeviceTypeDiscreteGPU:
		return AdapterTypeDiscreteGPU
	case core1_0.PhysicalDeviceTypeIntegratedGPU:
		return AdapterTypeIntegratedGPU
	case core1_0.PhysicalDeviceTypeVirtualGPU:
		return AdapterTypeVirtualGPU
	case core1_0.PhysicalDeviceTypeCPU:
		return AdapterTypeCPU
	default:
		return AdapterTypeUnknown
	}
}

type RequestAdapterStatus int

const (
	RequestAdapterStatusSuccess RequestAdapterStatus = iota
	RequestAdapterStatusUnavailable
	RequestAdapterStatusError
)

func (s RequestAdapterStatus) String() string {
	switch s {
	case RequestAdapterStatusSuccess:
		return "Success"
	case RequestAdapterStatusUnavailable:
		return "Unavailable"
	case RequestAdapterStatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// RequestAdapterOptions narrows the adapters RequestAdapter may return.
type RequestAdapterOptions struct {
	// CompatibleSurface, when set, restricts the choice to adapters that can
	// present to it.
	CompatibleSurface *Surface
	PowerPreference   PowerPreference
}

// RequestAdapterCallback receives the outcome of RequestAdapter. adapter is nil
// unless status is RequestAdapterStatusSuccess.
type RequestAdapterCallback func(status RequestAdapterStatus, adapter *Adapter, message string)

// QueueFamilyIndices locates the queue families an adapter offers for drawing
// and presenting.
type QueueFamilyIndices struct {
	GraphicsFamily *int
	PresentFamily  *int
}

func (i *QueueFamilyIndices) IsComplete() bool {
	return i.GraphicsFamily != nil && i.PresentFamily != nil
}

// Unique returns the distinct families, graphics first.
func (i *QueueFamilyIndices) Unique() []int {
	uniqueQueueFamilies := []int{*i.GraphicsFamily}
	if uniqueQueueFamilies[0] != *i.PresentFamily {
		uniqueQueueFamilies = append(uniqueQueueFamilies, *i.PresentFamily)
	}
	return uniqueQueueFamilies
}

// Adapter represents one physical GPU.
type Adapter struct {
	instance       *Instance
	physicalDevice core1_0.PhysicalDevice
	surface        *Surface
	queueFamilies  QueueFamilyIndices
	info           AdapterInfo
}

// AdapterInfo describes an adapter for display.
type AdapterInfo struct {
	Name          string
	Type          AdapterType
	APIVersion    string
	DriverVersion string
	VendorID      uint32
	DeviceID      uint32
}

// AdapterLimits is the subset of device limits the tutorial inspects.
type AdapterLimits struct {
	MaxImageDimension2D      int
	MaxBoundDescriptorSets   int
	MaxVertexInputAttributes int
}

// RequestAdapter picks a physical GPU and reports it through callback. The
// callback always fires exactly once, before RequestAdapter returns.
func (i *Instance) RequestAdapter(options *RequestAdapterOptions, callback RequestAdapterCallback) {
	if options == nil {
		options = &RequestAdapterOptions{}
	}

	physicalDevices, _, err := i.handle.EnumeratePhysicalDevices()
	if err != nil {
		callback(RequestAdapterStatusError, nil, errors.Wrap(err, "enumerate physical devices").Error())
		return
	}

	candidates := make([]adapterCandidate, 0, len(physicalDevices))
	for _, device := range physicalDevices {
		candidate := adapterCandidate{physicalDevice: device}
		candidate.info, err = adapterInfoOf(device)
		if err != nil {
			logger.Printf("skipping adapter: %v", err)
			continue
		}
		candidate.queueFamilies, candidate.suitable = isDeviceSuitable(device, options.CompatibleSurface)
		candidates = append(candidates, candidate)
	}

	chosen := pickAdapter(candidates, options.PowerPreference)
	if chosen < 0 {
		callback(RequestAdapterStatusUnavailable, nil, "failed to find a suitable GPU")
		return
	}

	candidate := candidates[chosen]
	callback(RequestAdapterStatusSuccess, &Adapter{
		instance:       i,
		physicalDevice: candidate.physicalDevice,
		surface:        options.CompatibleSurface,
		queueFamilies:  candidate.queueFamilies,
		info:           candidate.info,
	}, "")
}

// RequestAdapterSync wraps RequestAdapter, capturing the callback result.
func (i *Instance) RequestAdapterSync(options *RequestAdapterOptions) (*Adapter, error) {
	return captureAdapter(func(callback RequestAdapterCallback) {
		i.RequestAdapter(options, callback)
	})
}

func captureAdapter(request func(RequestAdapterCallback)) (*Adapter, error) {
	var (
		adapter *Adapter
		status  RequestAdapterStatus
		message string
		done    bool
	)

	request(func(s RequestAdapterStatus, a *Adapter, m string) {
		status, adapter, message = s, a, m
		done = true
	})

	switch {
	case !done:
		return nil, errors.New("request adapter: callback never fired")
	case status == RequestAdapterStatusUnavailable:
		return nil, errors.Wrap(ErrAdapterUnavailable, message)
	case status != RequestAdapterStatusSuccess:
		return nil, errors.Newf("request adapter: %s: %s", status, message)
	case adapter == nil:
		return nil, errors.New("request adapter: success without an adapter")
	}

	return adapter, nil
}

// Release drops the adapter. Physical devices are owned by the instance, so
// there is nothing to destroy.
func (a *Adapter) Release() {
	a.physicalDevice = nil
}

func (a *Adapter) Info() AdapterInfo {
	return a.info
}

func (a *Adapter) QueueFamilies() QueueFamilyIndices {
	return a.queueFamilies
}

func (a *Adapter) Limits() (AdapterLimits, error) {
	properties, err := a.physicalDevice.Properties()
	if err != nil {
		return AdapterLimits{}, errors.Wrap(err, "query adapter properties")
	}

	return AdapterLimits{
		MaxImageDimension2D:      int(properties.Limits.MaxImageDimension2D),
		MaxBoundDescriptorSets:   int(properties.Limits.MaxBoundDescriptorSets),
		MaxVertexInputAttributes: int(properties.Limits.MaxVertexInputAttributes),
	}, nil
}

// Extensions returns the names of the device extensions the adapter supports,
// sorted.
func (a *Adapter) Extensions() ([]string, error) {
	extensions, _, err := a.physicalDevice.EnumerateDeviceExtensionProperties()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate device extensions")
	}

	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

type adapterCandidate struct {
	physicalDevice core1_0.PhysicalDevice
	info           AdapterInfo
	queueFamilies  QueueFamilyIndices
	suitable       bool
}

// pickAdapter returns the index of the best suitable candidate, or -1. The
// preferred type wins; otherwise the first suitable candidate is taken.
func pickAdapter(candidates []adapterCandidate, preference PowerPreference) int {
	var preferred AdapterType
	switch preference {
	case PowerPreferenceHighPerformance:
		preferred = AdapterTypeDiscreteGPU
	case PowerPreferenceLowPower:
		preferred = AdapterTypeIntegratedGPU
	}

	first := -1
	for idx, candidate := range candidates {
		if !candidate.suitable {
			continue
		}
		if preferred != AdapterTypeUnknown && candidate.info.Type == preferred {
			return idx
		}
		if first < 0 {
			first = idx
		}
	}

	return first
}

func adapterInfoOf(device core1_0.PhysicalDevice) (AdapterInfo, error) {
	properties, err := device.Properties()
	if err != nil {
		return AdapterInfo{}, errors.Wrap(err, "query adapter properties")
	}

	return AdapterInfo{
		Name:          properties.DriverName,
		Type:          adapterTypeOf(properties.DriverType),
		APIVersion:    fmt.Sprint(properties.APIVersion),
		DriverVersion: fmt.Sprint(properties.DriverVersion),
		VendorID:      properties.VendorID,
		DeviceID:      properties.DeviceID,
	}, nil
}

func isDeviceSuitable(device core1_0.PhysicalDevice, surface *Surface) (QueueFamilyIndices, bool) {
	indices, err := findQueueFamilies(device, surface)
	if err != nil {
		return indices, false
	}

	if surface == nil {
		return indices, indices.IsComplete()
	}

	if !checkDeviceExtensionSupport(device) {
		return indices, false
	}

	swapChainSupport, err := querySwapChainSupport(device, surface)
	if err != nil {
		return indices, false
	}

	swapChainAdequate := len(swapChainSupport.Formats) > 0 && len(swapChainSupport.PresentModes) > 0
	return indices, indices.IsComplete() && swapChainAdequate
}

var swapchainDeviceExtensions = []string{khr_swapchain.ExtensionName}

func checkDeviceExtensionSupport(device core1_0.PhysicalDevice) bool {
	extensions, _, err := device.EnumerateDeviceExtensionProperties()
	if err != nil {
		return false
	}

	for _, extension := range swapchainDeviceExtensions {
		_, hasExtension := extensions[extension]
		if !hasExtension {
			return false
		}
	}

	return true
}

// findQueueFamilies locates a graphics family and, with a surface, a family
// that can present to it. Without a surface the graphics family doubles as the
// present family.
func findQueueFamilies(device core1_0.PhysicalDevice, surface *Surface) (QueueFamilyIndices, error) {
	indices := QueueFamilyIndices{}
	queueFamilies := device.QueueFamilyProperties()

	for queueFamilyIdx, queueFamily := range queueFamilies {
		if (queueFamily.QueueFlags&core1_0.QueueGraphics) != 0 && indices.GraphicsFamily == nil {
			indices.GraphicsFamily = new(int)
			*indices.GraphicsFamily = queueFamilyIdx
		}

		if surface == nil {
			indices.PresentFamily = indices.GraphicsFamily
		} else {
			supported, _, err := surface.handle.PhysicalDeviceSurfaceSupport(device, queueFamilyIdx)
			if err != nil {
				return indices, err
			}

			if supported && indices.PresentFamily == nil {
				indices.PresentFamily = new(int)
				*indices.PresentFamily = queueFamilyIdx
			}
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices, nil
}
