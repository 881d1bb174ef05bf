// Package window opens the native window the tutorial renders into and runs
// the event loop.
package window

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// Config describes the window to open.
type Config struct {
	Title         string
	Width, Height int

	// Vulkan prepares the window for surface creation.
	Vulkan bool
}

// Window is a fixed-size native window. Resizing is disabled so the swap chain
// never has to be recreated.
type Window struct {
	handle      *sdl.Window
	shouldClose bool
}

// Open initializes SDL video and creates the window.
func Open(cfg Config) (*Window, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.Newf("open window: invalid size %dx%d", cfg.Width, cfg.Height)
	}

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "initialize SDL")
	}

	flags := uint32(sdl.WINDOW_SHOWN)
	if cfg.Vulkan {
		flags |= uint32(sdl.WINDOW_VULKAN)
	}

	handle, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(cfg.Width), int32(cfg.Height), flags)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	return &Window{handle: handle}, nil
}

// PollEvents drains pending events, raising the close flag on a quit request.
func (w *Window) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			w.shouldClose = true
		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_CLOSE {
				w.shouldClose = true
			}
		}
	}
}

func (w *Window) ShouldClose() bool {
	return w.shouldClose
}

// SetShouldClose lets the program end the loop itself.
func (w *Window) SetShouldClose(value bool) {
	w.shouldClose = value
}

// SDL exposes the underlying window for surface creation.
func (w *Window) SDL() *sdl.Window {
	return w.handle
}

// VulkanInstanceExtensions lists the instance extensions needed to present to
// this window.
func (w *Window) VulkanInstanceExtensions() []string {
	return w.handle.VulkanGetInstanceExtensions()
}

// DrawableSize is the window size in pixels, which may differ from the
// requested size on high-DPI displays.
func (w *Window) DrawableSize() (width, height int) {
	widthInt, heightInt := w.handle.VulkanGetDrawableSize()
	return int(widthInt), int(heightInt)
}

// Destroy closes the window and shuts SDL down. It is safe to call twice.
func (w *Window) Destroy() {
	if w.handle == nil {
		return
	}

	w.handle.Destroy()
	w.handle = nil
	sdl.Quit()
}
