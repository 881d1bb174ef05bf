package main

import (
	"log"
	"os"
	"runtime"

	"github.com/vkngwrapper/gpu-tutorial/internal/config"
	"github.com/vkngwrapper/gpu-tutorial/internal/gpu"
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
	adapter  *gpu.Adapter
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

	err = app.requestAdapter()
	if err != nil {
		return err
	}

	return app.inspectAdapter()
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

func (app *HelloTriangleApplication) requestAdapter() error {
	preference, err := gpu.ParsePowerPreference(app.cfg.PowerPreference)
	if err != nil {
		return err
	}

	log.Printf("requesting adapter (%s)...", preference)
	app.adapter, err = app.instance.RequestAdapterSync(&gpu.RequestAdapterOptions{
		PowerPreference: preference,
	})
	if err != nil {
		return err
	}
	app.releaser.Push("adapter", app.adapter.Release)

	log.Printf("got adapter: %s", app.adapter.Info().Name)
	return nil
}

func (app *HelloTriangleApplication) inspectAdapter() error {
	info := app.adapter.Info()
	log.Printf("adapter properties:")
	log.Printf(" - name: %s", info.Name)
	log.Printf(" - type: %s", info.Type)
	log.Printf(" - vendorID: 0x%04x", info.VendorID)
	log.Printf(" - deviceID: 0x%04x", info.DeviceID)
	log.Printf(" - API version: %s", info.APIVersion)
	log.Printf(" - driver version: %s", info.DriverVersion)

	limits, err := app.adapter.Limits()
	if err != nil {
		return err
	}
	log.Printf("adapter limits:")
	log.Printf(" - maxImageDimension2D: %d", limits.MaxImageDimension2D)
	log.Printf(" - maxBoundDescriptorSets: %d", limits.MaxBoundDescriptorSets)
	log.Printf(" - maxVertexInputAttributes: %d", limits.MaxVertexInputAttributes)

	extensions, err := app.adapter.Extensions()
	if err != nil {
		return err
	}
	log.Printf("adapter extensions:")
	for _, extension := range extensions {
		log.Printf(" - %s", extension)
	}

	return nil
}

func (app *HelloTriangleApplication) mainLoop() error {
	return window.Loop(app.window, nil)
}

func (app *HelloTriangleApplication) cleanup() {
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
