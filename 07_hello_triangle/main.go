package main

import (
	"log"
	"os"
	"runtime"

	"github.com/vkngwrapper/gpu-tutorial/internal/config"
	"github.com/vkngwrapper/gpu-tutorial/internal/gpu"
	"github.com/vkngwrapper/gpu-tutorial/internal/shader"
	"github.com/vkngwrapper/gpu-tutorial/internal/stats"
	"github.com/vkngwrapper/gpu-tutorial/internal/window"
)

func init() {
	runtime.LockOSThread()
}

type HelloTriangleApplication struct {
	cfg      config.Config
	releaser gpu.Releaser

	window   *window.Window
	instance *gpu.Instance
	surface  *gpu.Surface
	adapter  *gpu.Adapter
	device   *gpu.Device

	swapChain *gpu.SwapChain
	pipeline  *gpu.RenderPipeline
	frames    *stats.FrameCounter
}

func (app *HelloTriangleApplication) Run() error {
	defer app.cleanup()

	err := app.initWindow()
	if err != nil {
		return err
	}

	err = app.initGPU()
	if err != nil {
		return err
	}

	return app.mainLoop()
}

func (app *HelloTriangleApplication) initWindow() error {
	var err error
	app.window, err = window.Open(window.Config{
		Title:  app.cfg.Title,
		Width:  app.cfg.Width,
		Height: app.cfg.Height,
		Vulkan: true,
	})
	if err != nil {
		return err
	}
	app.releaser.Push("window", app.window.Destroy)

	return nil
}

func (app *HelloTriangleApplication) initGPU() error {
	err := app.createInstance()
	if err != nil {
		return err
	}

	err = app.createSurface()
	if err != nil {
		return err
	}

	err = app.requestAdapter()
	if err != nil {
		return err
	}

	err = app.requestDevice()
	if err != nil {
		return err
	}

	err = app.createSwapChain()
	if err != nil {
		return err
	}

	return app.createRenderPipeline()
}

func (app *HelloTriangleApplication) createInstance() error {
	var err error
	app.instance, err = gpu.CreateInstance(gpu.InstanceDescriptor{
		ApplicationName:  app.cfg.Title,
		Extensions:       app.window.VulkanInstanceExtensions(),
		EnableValidation: app.cfg.EnableValidation,
	})
	if err != nil {
		return err
	}
	app.releaser.Push("instance", app.instance.Release)

	return nil
}

func (app *HelloTriangleApplication) createSurface() error {
	var err error
	app.surface, err = app.instance.CreateSurface(app.window.SDL())
	if err != nil {
		return err
	}
	app.releaser.Push("surface", app.surface.Release)

	return nil
}

func (app *HelloTriangleApplication) requestAdapter() error {
	preference, err := gpu.ParsePowerPreference(app.cfg.PowerPreference)
	if err != nil {
		return err
	}

	app.adapter, err = app.instance.RequestAdapterSync(&gpu.RequestAdapterOptions{
		CompatibleSurface: app.surface,
		PowerPreference:   preference,
	})
	if err != nil {
		return err
	}
	app.releaser.Push("adapter", app.adapter.Release)

	log.Printf("got adapter: %s (%s)", app.adapter.Info().Name, app.adapter.Info().Type)
	return nil
}

func (app *HelloTriangleApplication) requestDevice() error {
	var err error
	app.device, err = app.adapter.RequestDeviceSync(&gpu.DeviceDescriptor{Label: "My Device"})
	if err != nil {
		return err
	}
	app.releaser.Push("device", app.device.Release)

	return nil
}

func (app *HelloTriangleApplication) createSwapChain() error {
	presentMode, err := gpu.ParsePresentMode(app.cfg.PresentMode)
	if err != nil {
		return err
	}

	width, height := app.window.DrawableSize()
	app.swapChain, err = app.device.CreateSwapChain(app.surface, gpu.SwapChainDescriptor{
		PresentMode:    presentMode,
		Width:          width,
		Height:         height,
		FramesInFlight: app.cfg.FramesInFlight,
	})
	if err != nil {
		return err
	}
	app.releaser.Push("swap chain", app.swapChain.Release)

	w, h := app.swapChain.Extent()
	log.Printf("swap chain: %dx%d, %d images, present mode %v", w, h, app.swapChain.ImageCount(), app.swapChain.PresentMode())
	return nil
}

func (app *HelloTriangleApplication) createRenderPipeline() error {
	module, err := app.device.CreateShaderModule(gpu.ShaderModuleDescriptor{
		Label: "Triangle shader",
		WGSL:  shader.TriangleSource(app.cfg.TriangleColor),
	})
	if err != nil {
		return err
	}
	// The pipeline keeps its own copy of the compiled stages.
	defer module.Release()

	app.pipeline, err = app.device.CreateRenderPipeline(gpu.RenderPipelineDescriptor{
		Label: "Triangle pipeline",
		Vertex: gpu.ProgrammableStage{
			Module:     module,
			EntryPoint: shader.VertexEntryPoint,
		},
		Fragment: gpu.ProgrammableStage{
			Module:     module,
			EntryPoint: shader.FragmentEntryPoint,
		},
		Target: app.swapChain,
	})
	if err != nil {
		return err
	}
	app.releaser.Push("render pipeline", app.pipeline.Release)

	return nil
}

func (app *HelloTriangleApplication) mainLoop() error {
	app.frames = stats.NewFrameCounter(app.cfg.StatsInterval, func(fps float64) {
		log.Printf("%.1f fps", fps)
	})

	return window.Loop(app.window, app.drawFrame)
}

// drawFrame clears the next swap chain image, draws the triangle over it and
// presents it.
func (app *HelloTriangleApplication) drawFrame() error {
	view, err := app.swapChain.GetCurrentTextureView()
	if err != nil {
		return err
	}

	encoder, err := app.device.CreateCommandEncoder("Frame encoder")
	if err != nil {
		return err
	}

	renderPass, err := encoder.BeginRenderPass(gpu.RenderPassDescriptor{
		Label:      "Triangle pass",
		View:       view,
		ClearColor: app.cfg.ClearColor,
	})
	if err != nil {
		encoder.Release()
		return err
	}
	renderPass.SetPipeline(app.pipeline)
	renderPass.Draw(3, 1)
	renderPass.End()

	commands, err := encoder.Finish()
	if err != nil {
		encoder.Release()
		return err
	}

	err = app.swapChain.Submit(commands)
	if err != nil {
		commands.Release()
		return err
	}

	err = app.swapChain.Present()
	if err != nil {
		return err
	}

	app.frames.Tick()
	return nil
}

func (app *HelloTriangleApplication) cleanup() {
	if app.device != nil {
		err := app.device.WaitIdle()
		if err != nil {
			log.Printf("%+v", err)
		}
	}

	if app.frames != nil {
		log.Printf("presented %d frames", app.frames.Total())
	}

	app.releaser.ReleaseAll()
}

func main() {
	cfg, err := config.Parse(os.Args[0], os.Args[1:])
	if err != nil {
		log.Fatalf("%+v\n", err)
	}

	app := &HelloTriangleApplication{cfg: cfg}
	app.releaser.Trace = cfg.EnableValidation

	err = app.Run()
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}
