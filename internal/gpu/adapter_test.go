package gpu

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestPickAdapter(t *testing.T) {
	candidate := func(typ AdapterType, suitable bool) adapterCandidate {
		return adapterCandidate{info: AdapterInfo{Type: typ}, suitable: suitable}
	}

	tests := []struct {
		name       string
		candidates []adapterCandidate
		preference PowerPreference
		want       int
	}{
		{
			name:       "no candidates",
			preference: PowerPreferenceHighPerformance,
			want:       -1,
		},
		{
			name: "none suitable",
			candidates: []adapterCandidate{
				candidate(AdapterTypeDiscreteGPU, false),
				candidate(AdapterTypeIntegratedGPU, false),
			},
			preference: PowerPreferenceHighPerformance,
			want:       -1,
		},
		{
			name: "high performance prefers discrete",
			candidates: []adapterCandidate{
				candidate(AdapterTypeIntegratedGPU, true),
				candidate(AdapterTypeDiscreteGPU, true),
			},
			preference: PowerPreferenceHighPerformance,
			want:       1,
		},
		{
			name: "low power prefers integrated",
			candidates: []adapterCandidate{
				candidate(AdapterTypeDiscreteGPU, true),
				candidate(AdapterTypeIntegratedGPU, true),
			},
			preference: PowerPreferenceLowPower,
			want:       1,
		},
		{
			name: "preferred type unsuitable falls back to first suitable",
			candidates: []adapterCandidate{
				candidate(AdapterTypeDiscreteGPU, false),
				candidate(AdapterTypeCPU, true),
				candidate(AdapterTypeIntegratedGPU, true),
			},
			preference: PowerPreferenceHighPerformance,
			want:       1,
		},
		{
			name: "undefined takes first suitable",
			candidates: []adapterCandidate{
				candidate(AdapterTypeVirtualGPU, false),
				candidate(AdapterTypeIntegratedGPU, true),
				candidate(AdapterTypeDiscreteGPU, true),
			},
			preference: PowerPreferenceUndefined,
			want:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickAdapter(tt.candidates, tt.preference); got != tt.want {
				t.Errorf("pickAdapter() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCaptureAdapter(t *testing.T) {
	adapter := &Adapter{info: AdapterInfo{Name: "test"}}

	tests := []struct {
		name    string
		request func(RequestAdapterCallback)
		want    *Adapter
		wantErr error
	}{
		{
			name: "success",
			request: func(cb RequestAdapterCallback) {
				cb(RequestAdapterStatusSuccess, adapter, "")
			},
			want: adapter,
		},
		{
			name: "unavailable",
			request: func(cb RequestAdapterCallback) {
				cb(RequestAdapterStatusUnavailable, nil, "no suitable adapter")
			},
			wantErr: ErrAdapterUnavailable,
		},
		{
			name: "error",
			request: func(cb RequestAdapterCallback) {
				cb(RequestAdapterStatusError, nil, "enumerate failed")
			},
		},
		{
			name:    "callback never fired",
			request: func(RequestAdapterCallback) {},
		},
		{
			name: "success without adapter",
			request: func(cb RequestAdapterCallback) {
				cb(RequestAdapterStatusSuccess, nil, "")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := captureAdapter(tt.request)
			if tt.want != nil {
				if err != nil {
					t.Fatalf("captureAdapter() error = %v", err)
				}
				if got != tt.want {
					t.Errorf("captureAdapter() = %p, want %p", got, tt.want)
				}
				return
			}

			if err == nil {
				t.Fatalf("captureAdapter() = %v, want error", got)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("captureAdapter() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCaptureDevice(t *testing.T) {
	device := &Device{label: "test"}

	got, err := captureDevice(func(cb RequestDeviceCallback) {
		cb(RequestDeviceStatusSuccess, device, "")
	})
	if err != nil {
		t.Fatalf("captureDevice() error = %v", err)
	}
	if got != device {
		t.Errorf("captureDevice() = %p, want %p", got, device)
	}

	_, err = captureDevice(func(cb RequestDeviceCallback) {
		cb(RequestDeviceStatusError, nil, "out of memory")
	})
	if !errors.Is(err, ErrDeviceRequestFailed) {
		t.Errorf("captureDevice() error = %v, want %v", err, ErrDeviceRequestFailed)
	}

	_, err = captureDevice(func(RequestDeviceCallback) {})
	if err == nil {
		t.Error("captureDevice() with silent request returned no error")
	}
}

func TestParsePowerPreference(t *testing.T) {
	for _, want := range []PowerPreference{
		PowerPreferenceUndefined,
		PowerPreferenceLowPower,
		PowerPreferenceHighPerformance,
	} {
		got, err := ParsePowerPreference(want.String())
		if err != nil {
			t.Errorf("ParsePowerPreference(%q) error = %v", want.String(), err)
			continue
		}
		if got != want {
			t.Errorf("ParsePowerPreference(%q) = %v, want %v", want.String(), got, want)
		}
	}

	if _, err := ParsePowerPreference("turbo"); err == nil {
		t.Error(`ParsePowerPreference("turbo") returned no error`)
	}
}

func TestQueueFamilyIndicesUnique(t *testing.T) {
	zero, one := 0, 1

	tests := []struct {
		name     string
		indices  QueueFamilyIndices
		complete bool
		unique   int
	}{
		{name: "empty", indices: QueueFamilyIndices{}, complete: false},
		{name: "graphics only", indices: QueueFamilyIndices{GraphicsFamily: &zero}, complete: false},
		{name: "shared family", indices: QueueFamilyIndices{GraphicsFamily: &zero, PresentFamily: &zero}, complete: true, unique: 1},
		{name: "separate families", indices: QueueFamilyIndices{GraphicsFamily: &zero, PresentFamily: &one}, complete: true, unique: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.indices.IsComplete(); got != tt.complete {
				t.Errorf("IsComplete() = %v, want %v", got, tt.complete)
			}
			if !tt.complete {
				return
			}
			if got := len(tt.indices.Unique()); got != tt.unique {
				t.Errorf("len(Unique()) = %d, want %d", got, tt.unique)
			}
		})
	}
}
