package config

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg Config)
	}{
		{
			name: "no flags",
			check: func(t *testing.T, cfg Config) {
				if cfg != Default() {
					t.Errorf("Parse() = %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "window",
			args: []string{"-title", "Triangle", "-width", "1024", "-height", "768"},
			check: func(t *testing.T, cfg Config) {
				if cfg.Title != "Triangle" || cfg.Width != 1024 || cfg.Height != 768 {
					t.Errorf("got %q %dx%d", cfg.Title, cfg.Width, cfg.Height)
				}
			},
		},
		{
			name: "colours",
			args: []string{"-clear", "0,0,0", "-color", "1, 0.5, 0, 0.25"},
			check: func(t *testing.T, cfg Config) {
				if want := (mgl32.Vec4{0, 0, 0, 1}); cfg.ClearColor != want {
					t.Errorf("ClearColor = %v, want %v", cfg.ClearColor, want)
				}
				if want := (mgl32.Vec4{1, 0.5, 0, 0.25}); cfg.TriangleColor != want {
					t.Errorf("TriangleColor = %v, want %v", cfg.TriangleColor, want)
				}
			},
		},
		{
			name: "gpu",
			args: []string{"-validation=false", "-power", "low-power", "-present", "fifo", "-frames", "3", "-stats", "0"},
			check: func(t *testing.T, cfg Config) {
				if cfg.EnableValidation {
					t.Error("EnableValidation = true")
				}
				if cfg.PowerPreference != "low-power" || cfg.PresentMode != "fifo" {
					t.Errorf("got power %q present %q", cfg.PowerPreference, cfg.PresentMode)
				}
				if cfg.FramesInFlight != 3 || cfg.StatsInterval != 0 {
					t.Errorf("got frames %d stats %s", cfg.FramesInFlight, cfg.StatsInterval)
				}
			},
		},
		{
			name: "stats interval",
			args: []string{"-stats", "250ms"},
			check: func(t *testing.T, cfg Config) {
				if cfg.StatsInterval != 250*time.Millisecond {
					t.Errorf("StatsInterval = %s", cfg.StatsInterval)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse("test", tt.args)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"-fullscreen"}},
		{name: "zero width", args: []string{"-width", "0"}},
		{name: "negative height", args: []string{"-height", "-10"}},
		{name: "short colour", args: []string{"-clear", "1,0"}},
		{name: "colour not a number", args: []string{"-color", "red,0,0"}},
		{name: "colour out of range", args: []string{"-clear", "2,0,0,1"}},
		{name: "colour NaN", args: []string{"-color", "nan,0,0,1"}},
		{name: "clear colour NaN", args: []string{"-clear", "0,NaN,0,1"}},
		{name: "unknown power preference", args: []string{"-power", "turbo"}},
		{name: "unknown present mode", args: []string{"-present", "vsync"}},
		{name: "no frames in flight", args: []string{"-frames", "0"}},
		{name: "too many frames in flight", args: []string{"-frames", "4"}},
		{name: "negative stats interval", args: []string{"-stats", "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test", tt.args)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Parse(%v) error = %v, want %v", tt.args, err, ErrInvalid)
			}
		})
	}
}
