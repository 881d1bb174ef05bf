package shader

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

func TestTriangleSource(t *testing.T) {
	source := TriangleSource(mgl32.Vec4{0, 0.4, 1, 1})

	for _, want := range []string{
		"fn " + VertexEntryPoint,
		"fn " + FragmentEntryPoint,
		"vec4<f32>(0.0, 0.4, 1.0, 1.0)",
		// Apex at the top of the window in Vulkan clip space.
		"p = vec2<f32>(0.0, -0.5);",
		"p = vec2<f32>(-0.5, 0.5);",
		"p = vec2<f32>(0.5, 0.5);",
	} {
		if !strings.Contains(source, want) {
			t.Errorf("TriangleSource() does not contain %q:\n%s", want, source)
		}
	}
	if strings.Contains(source, "{{") {
		t.Errorf("TriangleSource() left a template action:\n%s", source)
	}
}

func TestFloatLiteral(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{in: 0, want: "0.0"},
		{in: 1, want: "1.0"},
		{in: 0.5, want: "0.5"},
		{in: 0.25, want: "0.25"},
	}

	for _, tt := range tests {
		if got := floatLiteral(tt.in); got != tt.want {
			t.Errorf("floatLiteral(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompileTriangle(t *testing.T) {
	code, err := Compile("triangle", TriangleSource(mgl32.Vec4{1, 1, 1, 1}))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(code) < 5 {
		t.Fatalf("Compile() returned %d words", len(code))
	}
	if code[0] != SPIRVMagic {
		t.Errorf("first word = 0x%08x, want 0x%08x", code[0], SPIRVMagic)
	}
}

func TestCompileRejectsInvalidSource(t *testing.T) {
	_, err := Compile("broken", "fn vs_main( {")
	if err == nil {
		t.Fatal("Compile() of broken source returned no error")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error %q does not name the shader", err)
	}
}

func TestBytesToWords(t *testing.T) {
	header := []byte{
		0x03, 0x02, 0x23, 0x07,
		0x00, 0x00, 0x01, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}

	words, err := bytesToWords(header)
	if err != nil {
		t.Fatalf("bytesToWords() error = %v", err)
	}
	if len(words) != 5 || words[0] != SPIRVMagic || words[1] != 0x00010000 {
		t.Errorf("bytesToWords() = %#v", words)
	}

	badMagic := append([]byte(nil), header...)
	badMagic[0] = 0xff

	tests := []struct {
		name string
		in   []byte
	}{
		{name: "unaligned", in: header[:19]},
		{name: "short", in: header[:16]},
		{name: "bad magic", in: badMagic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bytesToWords(tt.in)
			if !errors.Is(err, ErrInvalidSPIRV) {
				t.Errorf("bytesToWords() error = %v, want %v", err, ErrInvalidSPIRV)
			}
		})
	}
}
