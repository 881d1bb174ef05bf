// Package config holds the settings shared by every tutorial step.
package config

import (
	"flag"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalid = errors.New("invalid configuration")

var (
	powerPreferences = []string{"undefined", "low-power", "high-performance"}
	presentModes     = []string{"fifo", "mailbox", "immediate"}
)

// Config is the full set of knobs a step may read. Steps ignore what they do
// not use yet.
type Config struct {
	Title         string
	Width, Height int

	ClearColor    mgl32.Vec4
	TriangleColor mgl32.Vec4

	EnableValidation bool
	PowerPreference  string
	PresentMode      string
	FramesInFlight   int

	// StatsInterval is how often the frame rate is logged; zero disables it.
	StatsInterval time.Duration
}

func Default() Config {
	return Config{
		Title:            "Hello Triangle",
		Width:            800,
		Height:           600,
		ClearColor:       mgl32.Vec4{0.9, 0.1, 0.2, 1.0},
		TriangleColor:    mgl32.Vec4{0.0, 0.4, 1.0, 1.0},
		EnableValidation: true,
		PowerPreference:  "high-performance",
		PresentMode:      "mailbox",
		FramesInFlight:   2,
		StatsInterval:    5 * time.Second,
	}
}

// Parse overlays command-line flags on Default and validates the result.
func Parse(name string, args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Title, "title", cfg.Title, "window title")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "window width in pixels")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "window height in pixels")
	fs.Var((*colorValue)(&cfg.ClearColor), "clear", "clear colour as r,g,b,a")
	fs.Var((*colorValue)(&cfg.TriangleColor), "color", "triangle colour as r,g,b,a")
	fs.BoolVar(&cfg.EnableValidation, "validation", cfg.EnableValidation, "enable the validation layer")
	fs.StringVar(&cfg.PowerPreference, "power", cfg.PowerPreference, "adapter power preference: "+strings.Join(powerPreferences, ", "))
	fs.StringVar(&cfg.PresentMode, "present", cfg.PresentMode, "preferred present mode: "+strings.Join(presentModes, ", "))
	fs.IntVar(&cfg.FramesInFlight, "frames", cfg.FramesInFlight, "frames recorded ahead of the GPU")
	fs.DurationVar(&cfg.StatsInterval, "stats", cfg.StatsInterval, "frame rate log interval, 0 to disable")

	if err := fs.Parse(args); err != nil {
		return cfg, errors.Mark(errors.Wrap(err, "parse flags"), ErrInvalid)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Wrapf(ErrInvalid, "window size %dx%d", c.Width, c.Height)
	}
	if c.FramesInFlight < 1 || c.FramesInFlight > 3 {
		return errors.Wrapf(ErrInvalid, "frames in flight %d outside [1, 3]", c.FramesInFlight)
	}
	if c.StatsInterval < 0 {
		return errors.Wrapf(ErrInvalid, "negative stats interval %s", c.StatsInterval)
	}
	if err := validateColor("clear colour", c.ClearColor); err != nil {
		return err
	}
	if err := validateColor("triangle colour", c.TriangleColor); err != nil {
		return err
	}
	if !contains(powerPreferences, c.PowerPreference) {
		return errors.Wrapf(ErrInvalid, "unknown power preference %q", c.PowerPreference)
	}
	if !contains(presentModes, c.PresentMode) {
		return errors.Wrapf(ErrInvalid, "unknown present mode %q", c.PresentMode)
	}
	return nil
}

func validateColor(name string, color mgl32.Vec4) error {
	for i, component := range color {
		// Written this way round so NaN is rejected too.
		if !(component >= 0 && component <= 1) {
			return errors.Wrapf(ErrInvalid, "%s component %d is %g, want [0, 1]", name, i, component)
		}
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// colorValue parses "r,g,b" or "r,g,b,a" into a colour; alpha defaults to 1.
type colorValue mgl32.Vec4

func (c *colorValue) String() string {
	if c == nil {
		return ""
	}
	parts := make([]string, len(c))
	for i, component := range c {
		parts[i] = strconv.FormatFloat(float64(component), 'g', -1, 32)
	}
	return strings.Join(parts, ",")
}

func (c *colorValue) Set(s string) error {
	fields := strings.Split(s, ",")
	if len(fields) != 3 && len(fields) != 4 {
		return errors.Newf("colour %q: want r,g,b or r,g,b,a", s)
	}

	color := mgl32.Vec4{0, 0, 0, 1}
	for i, field := range fields {
		value, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return errors.Wrapf(err, "colour %q", s)
		}
		color[i] = float32(value)
	}

	*c = colorValue(color)
	return nil
}
