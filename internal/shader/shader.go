// Package shader holds the tutorial's WGSL sources and compiles them to SPIR-V.
package shader

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/naga"
)

// Entry points defined by the triangle shader.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

var ErrInvalidSPIRV = errors.New("invalid SPIR-V")

//go:embed triangle.wgsl
var triangleTemplateSource string

var triangleTemplate = template.Must(template.New("triangle").Parse(triangleTemplateSource))

// TriangleSource returns the triangle shader with the fragment stage filling
// every pixel with color.
func TriangleSource(color mgl32.Vec4) string {
	var sb strings.Builder
	err := triangleTemplate.Execute(&sb, struct{ Color string }{Color: vec4Literal(color)})
	if err != nil {
		// The template and its data are fixed at compile time.
		panic(err)
	}
	return sb.String()
}

func vec4Literal(v mgl32.Vec4) string {
	return fmt.Sprintf("vec4<f32>(%s, %s, %s, %s)", floatLiteral(v[0]), floatLiteral(v[1]), floatLiteral(v[2]), floatLiteral(v[3]))
}

// floatLiteral always carries a decimal point so WGSL reads an abstract float.
func floatLiteral(f float32) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Compile translates WGSL source into SPIR-V words ready for a shader module.
func Compile(label, source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, errors.Wrapf(err, "compile shader %q", label)
	}

	code, err := bytesToWords(spirvBytes)
	if err != nil {
		return nil, errors.Wrapf(err, "compile shader %q", label)
	}
	return code, nil
}

// bytesToWords reassembles little-endian SPIR-V words and checks the header.
func bytesToWords(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, errors.Wrapf(ErrInvalidSPIRV, "length %d is not a multiple of 4", len(b))
	}

	// Magic, version, generator, bound, schema.
	if len(b) < 20 {
		return nil, errors.Wrapf(ErrInvalidSPIRV, "module of %d bytes is shorter than its header", len(b))
	}

	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = uint32(b[byteIndex]) |
			uint32(b[byteIndex+1])<<8 |
			uint32(b[byteIndex+2])<<16 |
			uint32(b[byteIndex+3])<<24
	}

	if byteCode[0] != SPIRVMagic {
		return nil, errors.Wrapf(ErrInvalidSPIRV, "bad magic 0x%08x", byteCode[0])
	}

	return byteCode, nil
}
