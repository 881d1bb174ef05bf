package main

import (
	"log"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
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
	device   *gpu.Device
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

	return app.requestDevice()
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

	app.adapter, err = app.instance.RequestAdapterSync(&gpu.RequestAdapterOptions{
		PowerPreference: preference,
	})
	if err != nil {
		return err
	}
	app.releaser.Push("adapter", app.adapter.Release)

	log.Printf("got adapter: %s (%s)", app.adapter.Info().Name, app.adapter.Info().Type)
	return nil
}

func (app *HelloTriangleApplication) requestDevice() error {
	log.Printf("requesting device...")

	var message string
	app.adapter.RequestDevice(&gpu.DeviceDescriptor{Label: "My Device"}, func(status gpu.RequestDeviceStatus, device *gpu.Device, msg string) {
		if status == gpu.RequestDeviceStatusSuccess {
			app.device = device
			return
		}
		message = msg
	})
	if app.device == nil {
		return errors.Wrap(gpu.ErrDeviceRequestFailed, message)
	}
	app.releaser.Push("device", app.device.Release)

	families := app.adapter.QueueFamilies()
	log.Printf("got device: %s", app.device.Label())
	log.Printf(" - graphics queue family: %d", *families.GraphicsFamily)
	log.Printf(" - present queue family: %d", *families.PresentFamily)
	return nil
}

func (app *HelloTriangleApplication) mainLoop() error {
	return window.Loop(app.window, nil)
}

func (app *HelloTriangleApplication) cleanup() {
	if app.device != nil {
		err := app.device.WaitIdle()
		if err != nil {
			log.Printf("%+v", err)
		}
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
