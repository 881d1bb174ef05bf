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
	queue    *gpu.Queue
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

	err = app.requestDevice()
	if err != nil {
		return err
	}

	app.queue = app.device.Queue()
	return app.submitWork()
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
	var err error
	app.device, err = app.adapter.RequestDeviceSync(&gpu.DeviceDescriptor{Label: "My Device"})
	if err != nil {
		return err
	}
	app.releaser.Push("device", app.device.Release)

	log.Printf("got device: %s", app.device.Label())
	return nil
}

// submitWork records two empty command buffers, submits them and waits for the
// queue to report that they ran.
func (app *HelloTriangleApplication) submitWork() error {
	var buffers []*gpu.CommandBuffer
	defer func() {
		for _, buffer := range buffers {
			buffer.Release()
		}
	}()

	for _, label := range []string{"Command buffer 1", "Command buffer 2"} {
		encoder, err := app.device.CreateCommandEncoder(label)
		if err != nil {
			return err
		}

		buffer, err := encoder.Finish()
		if err != nil {
			encoder.Release()
			return err
		}
		buffers = append(buffers, buffer)
	}

	log.Printf("submitting %d command buffers...", len(buffers))
	err := app.queue.Submit(buffers...)
	if err != nil {
		return err
	}

	var status gpu.QueueWorkDoneStatus
	app.queue.OnSubmittedWorkDone(func(s gpu.QueueWorkDoneStatus) {
		log.Printf("queued work finished with status: %s", s)
		status = s
	})
	if status != gpu.QueueWorkDoneStatusSuccess {
		return errors.Newf("submitted work finished with status %s", status)
	}

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
