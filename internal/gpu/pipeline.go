package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"

	"github.com/vkngwrapper/gpu-tutorial/internal/shader"
)

// ShaderModuleDescriptor carries WGSL source, compiled to SPIR-V on creation.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
}

type ShaderModule struct {
	label  string
	device *Device
	handle core1_0.ShaderModule
}

func (d *Device) CreateShaderModule(desc ShaderModuleDescriptor) (*ShaderModule, error) {
	code, err := shader.Compile(desc.Label, desc.WGSL)
	if err != nil {
		return nil, err
	}

	handle, _, err := d.handle.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create shader module %q", desc.Label)
	}

	return &ShaderModule{label: desc.Label, device: d, handle: handle}, nil
}

func (m *ShaderModule) Label() string {
	return m.label
}

func (m *ShaderModule) Release() {
	if m.handle != nil {
		m.handle.Destroy(nil)
		m.handle = nil
	}
}

// ProgrammableStage names a shader entry point.
type ProgrammableStage struct {
	Module     *ShaderModule
	EntryPoint string
}

// RenderPipelineDescriptor describes a pipeline that draws a triangle list
// without vertex buffers into the swap chain's colour target.
type RenderPipelineDescriptor struct {
	Label    string
	Vertex   ProgrammableStage
	Fragment ProgrammableStage
	Target   *SwapChain
}

type RenderPipeline struct {
	label  string
	layout core1_0.PipelineLayout
	handle core1_0.Pipeline
}

// CreateRenderPipeline builds the graphics pipeline. The shader modules may be
// released once this returns.
func (d *Device) CreateRenderPipeline(desc RenderPipelineDescriptor) (*RenderPipeline, error) {
	if desc.Vertex.Module == nil || desc.Fragment.Module == nil {
		return nil, errors.Newf("create render pipeline %q: vertex and fragment stages are required", desc.Label)
	}
	if desc.Target == nil {
		return nil, errors.Newf("create render pipeline %q: no target", desc.Label)
	}

	vertStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageVertex,
		Module: desc.Vertex.Module.handle,
		Name:   desc.Vertex.EntryPoint,
	}

	fragStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageFragment,
		Module: desc.Fragment.Module.handle,
		Name:   desc.Fragment.EntryPoint,
	}

	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	extent := desc.Target.extent
	viewport := &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{
			{
				X:        0,
				Y:        0,
				Width:    float32(extent.Width),
				Height:   float32(extent.Height),
				MinDepth: 0,
				MaxDepth: 1,
			},
		},
		Scissors: []core1_0.Rect2D{
			{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: extent,
			},
		},
	}

	// No CullMode: the triangle is drawn whatever its winding.
	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		FrontFace:   core1_0.FrontFaceCounterClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			{
				BlendEnabled:   false,
				ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
			},
		},
	}

	layout, _, err := d.handle.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return nil, errors.Wrapf(err, "create pipeline layout %q", desc.Label)
	}

	pipelines, _, err := d.handle.CreateGraphicsPipelines(nil, nil, []core1_0.GraphicsPipelineCreateInfo{
		{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				vertStage,
				fragStage,
			},
			VertexInputState:   vertexInput,
			InputAssemblyState: inputAssembly,
			ViewportState:      viewport,
			RasterizationState: rasterization,
			MultisampleState:   multisample,
			ColorBlendState:    colorBlend,
			Layout:             layout,
			RenderPass:         desc.Target.renderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
	})
	if err != nil {
		layout.Destroy(nil)
		return nil, errors.Wrapf(err, "create render pipeline %q", desc.Label)
	}

	return &RenderPipeline{
		label:  desc.Label,
		layout: layout,
		handle: pipelines[0],
	}, nil
}

func (p *RenderPipeline) Release() {
	if p.handle != nil {
		p.handle.Destroy(nil)
		p.handle = nil
	}

	if p.layout != nil {
		p.layout.Destroy(nil)
		p.layout = nil
	}
}
