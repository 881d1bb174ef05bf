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
	// SDL must be driven from the thread that initialized it.
	runtime.LockOSThread()
}

type HelloTriangleApplication struct {
	cfg      config.Config
	releaser gpu.Releaser

	window *window.Window
}

func (app *HelloTriangleApplication) Run() error {
	defer app.cleanup()

	err := app.initWindow()
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
	})
	if err != nil {
		return err
	}
	app.releaser.Push("window", app.window.Destroy)

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
