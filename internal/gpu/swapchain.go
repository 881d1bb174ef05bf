package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// PresentMode selects how finished frames are queued for display.
type PresentMode int

const (
	PresentModeFIFO PresentMode = iota
	PresentModeMailbox
	PresentModeImmediate
)

var presentModeNames = map[PresentMode]string{
	PresentModeFIFO:      "fifo",
	PresentModeMailbox:   "mailbox",
	PresentModeImmediate: "immediate",
}

func (m PresentMode) String() string {
	if name, ok := presentModeNames[m]; ok {
		return name
	}
	return "unknown"
}

func ParsePresentMode(s string) (PresentMode, error) {
	for mode, name := range presentModeNames {
		if name == s {
			return mode, nil
		}
	}
	return PresentModeFIFO, errors.Newf("unknown present mode %q", s)
}

func (m PresentMode) surfaceMode() khr_surface.PresentMode {
	switch m {
	case PresentModeMailbox:
		return khr_surface.PresentModeMailbox
	case PresentModeImmediate:
		return khr_surface.PresentModeImmediate
	default:
		return khr_surface.PresentModeFIFO
	}
}

// SwapChainDescriptor configures CreateSwapChain.
type SwapChainDescriptor struct {
	// PresentMode is used when the surface supports it; FIFO otherwise.
	PresentMode PresentMode

	// Width and Height are the drawable size of the window, used only when
	// the surface leaves the extent up to the swap chain.
	Width, Height int

	// FramesInFlight bounds how many frames the CPU may record ahead of the GPU.
	FramesInFlight int
}

// SwapChainSupportDetails is what a surface offers a physical device.
type SwapChainSupportDetails struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

// SwapChain is the sequence of presentable images for a surface, with one
// texture view and framebuffer per image and the synchronization objects that
// pace frames.
type SwapChain struct {
	device  *Device
	surface *Surface

	handle      khr_swapchain.Swapchain
	format      core1_0.Format
	extent      core1_0.Extent2D
	presentMode khr_surface.PresentMode
	renderPass  core1_0.RenderPass
	views       []*TextureView

	frames         []frameSync
	imagesInFlight []core1_0.Fence
	currentFrame   int
	acquired       *TextureView
	submitted      bool
}

type frameSync struct {
	imageAvailable core1_0.Semaphore
	renderFinished core1_0.Semaphore
	inFlight       core1_0.Fence
	commands       *CommandBuffer
}

// TextureView is a swap chain image as a render target. It is owned by the
// swap chain and valid until the swap chain is released.
type TextureView struct {
	index       int
	handle      core1_0.ImageView
	framebuffer core1_0.Framebuffer
	renderPass  core1_0.RenderPass
	extent      core1_0.Extent2D
}

func (v *TextureView) Index() int {
	return v.index
}

// CreateSwapChain configures presentation to surface. The device must have
// been requested from an adapter bound to the same surface.
func (d *Device) CreateSwapChain(surface *Surface, desc SwapChainDescriptor) (*SwapChain, error) {
	if d.swapchainExtension == nil {
		return nil, errors.Wrapf(ErrMissingExtension, "create swap chain: device %q was requested without a surface", d.label)
	}

	framesInFlight := desc.FramesInFlight
	if framesInFlight <= 0 {
		framesInFlight = 2
	}

	swapChain := &SwapChain{
		device:  d,
		surface: surface,
	}

	err := swapChain.createSwapchain(desc)
	if err == nil {
		err = swapChain.createRenderPass()
	}
	if err == nil {
		err = swapChain.createViews()
	}
	if err == nil {
		err = swapChain.createSyncObjects(framesInFlight)
	}
	if err != nil {
		swapChain.Release()
		return nil, err
	}

	return swapChain, nil
}

func (s *SwapChain) createSwapchain(desc SwapChainDescriptor) error {
	physicalDevice := s.device.adapter.physicalDevice

	swapchainSupport, err := querySwapChainSupport(physicalDevice, s.surface)
	if err != nil {
		return errors.Wrap(err, "query swap chain support")
	}
	if len(swapchainSupport.Formats) == 0 || len(swapchainSupport.PresentModes) == 0 {
		return errors.New("create swap chain: surface offers no formats or present modes")
	}

	surfaceFormat := chooseSwapSurfaceFormat(swapchainSupport.Formats)
	presentMode := chooseSwapPresentMode(swapchainSupport.PresentModes, desc.PresentMode.surfaceMode())
	extent := chooseSwapExtent(swapchainSupport.Capabilities, desc.Width, desc.Height)
	imageCount := chooseImageCount(swapchainSupport.Capabilities)

	sharingMode := core1_0.SharingModeExclusive
	var queueFamilyIndices []int

	indices := s.device.adapter.queueFamilies
	if *indices.GraphicsFamily != *indices.PresentFamily {
		sharingMode = core1_0.SharingModeConcurrent
		queueFamilyIndices = append(queueFamilyIndices, *indices.GraphicsFamily, *indices.PresentFamily)
	}

	swapchain, _, err := s.device.swapchainExtension.CreateSwapchain(s.device.handle, nil, khr_swapchain.SwapchainCreateInfo{
		Surface: s.surface.handle,

		MinImageCount:    imageCount,
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   swapchainSupport.Capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    presentMode,
		Clipped:        true,
	})
	if err != nil {
		return errors.Wrap(err, "create swap chain")
	}

	s.handle = swapchain
	s.format = surfaceFormat.Format
	s.extent = extent
	s.presentMode = presentMode
	return nil
}

func (s *SwapChain) createRenderPass() error {
	renderPass, _, err := s.device.handle.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         s.format,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "create render pass")
	}

	s.renderPass = renderPass
	return nil
}

func (s *SwapChain) createViews() error {
	images, _, err := s.handle.SwapchainImages()
	if err != nil {
		return errors.Wrap(err, "get swap chain images")
	}

	for index, image := range images {
		imageView, _, err := s.device.handle.CreateImageView(nil, core1_0.ImageViewCreateInfo{
			Image:    image,
			ViewType: core1_0.ImageViewType2D,
			Format:   s.format,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			return errors.Wrapf(err, "create view for swap chain image %d", index)
		}

		view := &TextureView{
			index:      index,
			handle:     imageView,
			renderPass: s.renderPass,
			extent:     s.extent,
		}
		s.views = append(s.views, view)

		view.framebuffer, _, err = s.device.handle.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass: s.renderPass,
			Layers:     1,
			Attachments: []core1_0.ImageView{
				imageView,
			},
			Width:  s.extent.Width,
			Height: s.extent.Height,
		})
		if err != nil {
			return errors.Wrapf(err, "create framebuffer for swap chain image %d", index)
		}
	}

	s.imagesInFlight = make([]core1_0.Fence, len(images))
	return nil
}

func (s *SwapChain) createSyncObjects(framesInFlight int) error {
	for i := 0; i < framesInFlight; i++ {
		var frame frameSync
		var err error

		frame.imageAvailable, _, err = s.device.handle.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return errors.Wrap(err, "create semaphore")
		}
		s.frames = append(s.frames, frame)

		s.frames[i].renderFinished, _, err = s.device.handle.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return errors.Wrap(err, "create semaphore")
		}

		s.frames[i].inFlight, _, err = s.device.handle.CreateFence(nil, core1_0.FenceCreateInfo{
			Flags: core1_0.FenceCreateSignaled,
		})
		if err != nil {
			return errors.Wrap(err, "create fence")
		}
	}

	return nil
}

func (s *SwapChain) Format() core1_0.Format {
	return s.format
}

func (s *SwapChain) Extent() (width, height int) {
	return s.extent.Width, s.extent.Height
}

func (s *SwapChain) PresentMode() khr_surface.PresentMode {
	return s.presentMode
}

func (s *SwapChain) ImageCount() int {
	return len(s.views)
}

// GetCurrentTextureView waits until the current frame slot is free, then
// acquires the next swap chain image and returns its view.
func (s *SwapChain) GetCurrentTextureView() (*TextureView, error) {
	if s.acquired != nil {
		return nil, errors.New("acquire: previous frame was not presented")
	}

	frame := &s.frames[s.currentFrame]
	fences := []core1_0.Fence{frame.inFlight}

	_, err := s.device.handle.WaitForFences(true, common.NoTimeout, fences)
	if err != nil {
		return nil, errors.Wrap(err, "wait for frame fence")
	}

	if frame.commands != nil {
		frame.commands.Release()
		frame.commands = nil
	}

	imageIndex, _, err := s.handle.AcquireNextImage(common.NoTimeout, frame.imageAvailable, nil)
	if err != nil {
		return nil, errors.Wrap(err, "acquire next image")
	}

	if s.imagesInFlight[imageIndex] != nil {
		_, err := s.imagesInFlight[imageIndex].Wait(common.NoTimeout)
		if err != nil {
			return nil, errors.Wrap(err, "wait for image fence")
		}
	}
	s.imagesInFlight[imageIndex] = frame.inFlight

	s.acquired = s.views[imageIndex]
	s.submitted = false
	return s.acquired, nil
}

// Submit queues the frame's commands so they run once the acquired image is
// available. The swap chain takes ownership of commands and releases them when
// the frame slot comes round again.
func (s *SwapChain) Submit(commands *CommandBuffer) error {
	if s.acquired == nil {
		return errors.New("submit: no image acquired")
	}
	if s.submitted {
		return errors.New("submit: frame already submitted")
	}

	frame := &s.frames[s.currentFrame]

	_, err := s.device.handle.ResetFences([]core1_0.Fence{frame.inFlight})
	if err != nil {
		return errors.Wrap(err, "reset frame fence")
	}

	_, err = s.device.queue.handle.Submit(frame.inFlight, []core1_0.SubmitInfo{
		{
			WaitSemaphores:   []core1_0.Semaphore{frame.imageAvailable},
			WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
			CommandBuffers:   []core1_0.CommandBuffer{commands.handle},
			SignalSemaphores: []core1_0.Semaphore{frame.renderFinished},
		},
	})
	if err != nil {
		return errors.Wrap(err, "submit frame")
	}

	frame.commands = commands
	s.submitted = true
	return nil
}

// Present hands the acquired image to the display and advances to the next
// frame slot.
func (s *SwapChain) Present() error {
	if s.acquired == nil || !s.submitted {
		return errors.New("present: no submitted frame")
	}

	frame := &s.frames[s.currentFrame]
	_, err := s.device.swapchainExtension.QueuePresent(s.device.presentQueue.handle, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{frame.renderFinished},
		Swapchains:     []khr_swapchain.Swapchain{s.handle},
		ImageIndices:   []int{s.acquired.index},
	})
	if err != nil {
		return errors.Wrap(err, "present")
	}

	s.acquired = nil
	s.submitted = false
	s.currentFrame = (s.currentFrame + 1) % len(s.frames)
	return nil
}

// Release destroys the synchronization objects, framebuffers, views, render
// pass and swap chain. The device must be idle.
func (s *SwapChain) Release() {
	for i := range s.frames {
		frame := &s.frames[i]
		if frame.commands != nil {
			frame.commands.Release()
		}
		if frame.inFlight != nil {
			frame.inFlight.Destroy(nil)
		}
		if frame.renderFinished != nil {
			frame.renderFinished.Destroy(nil)
		}
		if frame.imageAvailable != nil {
			frame.imageAvailable.Destroy(nil)
		}
	}
	s.frames = nil
	s.imagesInFlight = nil

	for _, view := range s.views {
		if view.framebuffer != nil {
			view.framebuffer.Destroy(nil)
		}
		view.handle.Destroy(nil)
	}
	s.views = nil

	if s.renderPass != nil {
		s.renderPass.Destroy(nil)
		s.renderPass = nil
	}

	if s.handle != nil {
		s.handle.Destroy(nil)
		s.handle = nil
	}
}

func querySwapChainSupport(device core1_0.PhysicalDevice, surface *Surface) (SwapChainSupportDetails, error) {
	var details SwapChainSupportDetails
	var err error

	details.Capabilities, _, err = surface.handle.PhysicalDeviceSurfaceCapabilities(device)
	if err != nil {
		return details, err
	}

	details.Formats, _, err = surface.handle.PhysicalDeviceSurfaceFormats(device)
	if err != nil {
		return details, err
	}

	details.PresentModes, _, err = surface.handle.PhysicalDeviceSurfacePresentModes(device)
	return details, err
}

func chooseSwapSurfaceFormat(availableFormats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}

	return availableFormats[0]
}

func chooseSwapPresentMode(availablePresentModes []khr_surface.PresentMode, preferred khr_surface.PresentMode) khr_surface.PresentMode {
	for _, presentMode := range availablePresentModes {
		if presentMode == preferred {
			return presentMode
		}
	}

	return khr_surface.PresentModeFIFO
}

func chooseSwapExtent(capabilities *khr_surface.SurfaceCapabilities, width, height int) core1_0.Extent2D {
	if capabilities.CurrentExtent.Width != -1 {
		return capabilities.CurrentExtent
	}

	if width < capabilities.MinImageExtent.Width {
		width = capabilities.MinImageExtent.Width
	}
	if width > capabilities.MaxImageExtent.Width {
		width = capabilities.MaxImageExtent.Width
	}
	if height < capabilities.MinImageExtent.Height {
		height = capabilities.MinImageExtent.Height
	}
	if height > capabilities.MaxImageExtent.Height {
		height = capabilities.MaxImageExtent.Height
	}

	return core1_0.Extent2D{Width: width, Height: height}
}

// chooseImageCount asks for one image more than the minimum; a MaxImageCount
// of zero means no upper bound.
func chooseImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}
