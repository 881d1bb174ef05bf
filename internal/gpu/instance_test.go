package gpu

import (
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_portability_enumeration"
)

func TestSelectInstanceExtensions(t *testing.T) {
	const surfaceExt = "VK_KHR_surface"

	offered := func(names ...string) func(string) bool {
		set := make(map[string]bool, len(names))
		for _, name := range names {
			set[name] = true
		}
		return func(name string) bool { return set[name] }
	}

	tests := []struct {
		name            string
		available       func(string) bool
		required        []string
		validation      bool
		wantEnabled     []string
		wantPortability bool
		wantErr         error
	}{
		{
			name:        "window extensions only",
			available:   offered(surfaceExt),
			required:    []string{surfaceExt},
			wantEnabled: []string{surfaceExt},
		},
		{
			name:        "validation adds debug utils",
			available:   offered(surfaceExt, ext_debug_utils.ExtensionName),
			required:    []string{surfaceExt},
			validation:  true,
			wantEnabled: []string{surfaceExt, ext_debug_utils.ExtensionName},
		},
		{
			name:            "portability enumeration when offered",
			available:       offered(surfaceExt, khr_portability_enumeration.ExtensionName),
			required:        []string{surfaceExt},
			wantEnabled:     []string{surfaceExt, khr_portability_enumeration.ExtensionName},
			wantPortability: true,
		},
		{
			name:      "missing window extension",
			available: offered(),
			required:  []string{surfaceExt},
			wantErr:   ErrMissingExtension,
		},
		{
			name:       "validation without debug utils",
			available:  offered(surfaceExt),
			required:   []string{surfaceExt},
			validation: true,
			wantErr:    ErrMissingExtension,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled, portability, err := selectInstanceExtensions(tt.available, tt.required, tt.validation)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("selectInstanceExtensions() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("selectInstanceExtensions() error = %v", err)
			}
			if !reflect.DeepEqual(enabled, tt.wantEnabled) {
				t.Errorf("enabled = %v, want %v", enabled, tt.wantEnabled)
			}
			if portability != tt.wantPortability {
				t.Errorf("portability = %v, want %v", portability, tt.wantPortability)
			}
		})
	}
}
