package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2"
)

var validationLayers = []string{"VK_LAYER_KHRONOS_validation"}

// InstanceDescriptor configures CreateInstance.
type InstanceDescriptor struct {
	// Loader resolves the Vulkan entry points. When nil, the loader is taken
	// from SDL, which requires the video subsystem to be initialized.
	Loader core.Loader

	ApplicationName string

	// Extensions are instance extensions required by the window system.
	Extensions []string

	EnableValidation bool
}

// Instance is the entry point to the GPU API.
type Instance struct {
	handle         core1_0.Instance
	debugMessenger ext_debug_utils.DebugUtilsMessenger
	surfaceLoader  khr_surface.Extension
}

// CreateInstance creates the GPU instance. With validation enabled the Khronos
// validation layer is required and its messages are routed to the package logger.
func CreateInstance(desc InstanceDescriptor) (*Instance, error) {
	loader := desc.Loader
	if loader == nil {
		var err error
		loader, err = core.CreateLoaderFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
		if err != nil {
			return nil, errors.Wrap(err, "create loader")
		}
	}

	applicationName := desc.ApplicationName
	if applicationName == "" {
		applicationName = "Hello Triangle"
	}

	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    applicationName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "No Engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	extensions, _, err := loader.AvailableExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance extensions")
	}

	enabled, portability, err := selectInstanceExtensions(func(name string) bool {
		_, ok := extensions[name]
		return ok
	}, desc.Extensions, desc.EnableValidation)
	if err != nil {
		return nil, err
	}
	instanceOptions.EnabledExtensionNames = enabled
	if portability {
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if desc.EnableValidation {
		layers, _, err := loader.AvailableLayers()
		if err != nil {
			return nil, errors.Wrap(err, "enumerate instance layers")
		}

		for _, layer := range validationLayers {
			_, hasValidation := layers[layer]
			if !hasValidation {
				return nil, errors.Wrapf(ErrMissingLayer, "create instance: %s not available, install the LunarG Vulkan SDK", layer)
			}
			instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, layer)
		}

		// Covers messages emitted during vkCreateInstance itself.
		instanceOptions.Next = debugMessengerOptions()
	}

	handle, _, err := loader.CreateInstance(nil, instanceOptions)
	if err != nil {
		return nil, errors.Wrap(err, "create instance")
	}

	instance := &Instance{handle: handle}

	if desc.EnableValidation {
		debugLoader := ext_debug_utils.CreateExtensionFromInstance(handle)
		instance.debugMessenger, _, err = debugLoader.CreateDebugUtilsMessenger(handle, nil, debugMessengerOptions())
		if err != nil {
			handle.Destroy(nil)
			return nil, errors.Wrap(err, "create debug messenger")
		}
	}

	return instance, nil
}

// Release destroys the debug messenger and the instance. Everything created
// from the instance must be released first.
func (i *Instance) Release() {
	if i.debugMessenger != nil {
		i.debugMessenger.Destroy(nil)
		i.debugMessenger = nil
	}

	if i.handle != nil {
		i.handle.Destroy(nil)
		i.handle = nil
	}
}

// ValidationEnabled reports whether the debug messenger is installed.
func (i *Instance) ValidationEnabled() bool {
	return i.debugMessenger != nil
}

// Surface is a presentable target bound to a native window.
type Surface struct {
	handle khr_surface.Surface
}

// CreateSurface binds a surface to an SDL window created with the Vulkan flag.
func (i *Instance) CreateSurface(window *sdl.Window) (*Surface, error) {
	if i.surfaceLoader == nil {
		i.surfaceLoader = khr_surface.CreateExtensionFromInstance(i.handle)
	}

	handle, err := vkng_sdl2.CreateSurface(i.handle, i.surfaceLoader, window)
	if err != nil {
		return nil, errors.Wrap(err, "create surface")
	}

	return &Surface{handle: handle}, nil
}

func (s *Surface) Release() {
	if s.handle != nil {
		s.handle.Destroy(nil)
		s.handle = nil
	}
}

// selectInstanceExtensions checks the window system's extensions, and debug
// utils when validating, against what the loader offers. Portability
// enumeration is added when available; without it portability drivers such as
// MoltenVK enumerate no devices.
func selectInstanceExtensions(available func(name string) bool, required []string, validation bool) (enabled []string, portability bool, err error) {
	for _, ext := range required {
		if !available(ext) {
			return nil, false, errors.Wrapf(ErrMissingExtension, "create instance: window system requires %s", ext)
		}
		enabled = append(enabled, ext)
	}

	if validation {
		if !available(ext_debug_utils.ExtensionName) {
			return nil, false, errors.Wrapf(ErrMissingExtension, "create instance: validation requires %s", ext_debug_utils.ExtensionName)
		}
		enabled = append(enabled, ext_debug_utils.ExtensionName)
	}

	if available(khr_portability_enumeration.ExtensionName) {
		enabled = append(enabled, khr_portability_enumeration.ExtensionName)
		portability = true
	}

	return enabled, portability, nil
}

func debugMessengerOptions() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    logDebug,
	}
}

func logDebug(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	logger.Printf("[%s %s] - %s", severity, msgType, data.Message)
	return false
}
