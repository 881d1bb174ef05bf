package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/core1_0"
)

// CommandEncoder records commands into a fresh primary command buffer.
type CommandEncoder struct {
	device   *Device
	label    string
	buffer   core1_0.CommandBuffer
	inPass   bool
	finished bool
}

// CreateCommandEncoder allocates a command buffer from the device pool and
// begins recording.
func (d *Device) CreateCommandEncoder(label string) (*CommandEncoder, error) {
	buffers, _, err := d.handle.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        d.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "allocate command buffer %q", label)
	}

	buffer := buffers[0]
	_, err = buffer.Begin(core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		d.handle.FreeCommandBuffers(buffers)
		return nil, errors.Wrapf(err, "begin command buffer %q", label)
	}

	return &CommandEncoder{
		device: d,
		label:  label,
		buffer: buffer,
	}, nil
}

// RenderPassDescriptor describes a single-attachment render pass that clears
// the target view before drawing.
type RenderPassDescriptor struct {
	Label      string
	View       *TextureView
	ClearColor mgl32.Vec4
}

// BeginRenderPass starts a render pass on the view. Only one pass may be open
// at a time.
func (e *CommandEncoder) BeginRenderPass(desc RenderPassDescriptor) (*RenderPassEncoder, error) {
	if e.finished {
		return nil, errors.Newf("begin render pass %q: encoder %q already finished", desc.Label, e.label)
	}
	if e.inPass {
		return nil, errors.Newf("begin render pass %q: a pass is already open", desc.Label)
	}
	if desc.View == nil {
		return nil, errors.Newf("begin render pass %q: no target view", desc.Label)
	}

	c := desc.ClearColor
	err := e.buffer.CmdBeginRenderPass(core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  desc.View.renderPass,
			Framebuffer: desc.View.framebuffer,
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: desc.View.extent,
			},
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat{c[0], c[1], c[2], c[3]},
			},
		})
	if err != nil {
		return nil, errors.Wrapf(err, "begin render pass %q", desc.Label)
	}

	e.inPass = true
	return &RenderPassEncoder{encoder: e}, nil
}

// Finish ends recording and hands back the command buffer, ready to submit.
func (e *CommandEncoder) Finish() (*CommandBuffer, error) {
	if e.finished {
		return nil, errors.Newf("finish encoder %q: already finished", e.label)
	}
	if e.inPass {
		return nil, errors.Newf("finish encoder %q: render pass still open", e.label)
	}

	_, err := e.buffer.End()
	if err != nil {
		return nil, errors.Wrapf(err, "end command buffer %q", e.label)
	}

	e.finished = true
	return &CommandBuffer{device: e.device, handle: e.buffer}, nil
}

// Release frees the command buffer of an encoder that was never finished.
func (e *CommandEncoder) Release() {
	if e.finished || e.buffer == nil {
		return
	}
	e.device.handle.FreeCommandBuffers([]core1_0.CommandBuffer{e.buffer})
	e.buffer = nil
}

// RenderPassEncoder records draw commands inside a render pass.
type RenderPassEncoder struct {
	encoder *CommandEncoder
}

func (p *RenderPassEncoder) SetPipeline(pipeline *RenderPipeline) {
	p.encoder.buffer.CmdBindPipeline(core1_0.PipelineBindPointGraphics, pipeline.handle)
}

// Draw issues a non-indexed draw starting at vertex 0 and instance 0.
func (p *RenderPassEncoder) Draw(vertexCount, instanceCount int) {
	p.encoder.buffer.CmdDraw(vertexCount, instanceCount, 0, 0)
}

func (p *RenderPassEncoder) End() {
	if !p.encoder.inPass {
		return
	}
	p.encoder.buffer.CmdEndRenderPass()
	p.encoder.inPass = false
}

// CommandBuffer is a finished recording, owned by the caller until released.
type CommandBuffer struct {
	device *Device
	handle core1_0.CommandBuffer
}

// Release returns the buffer to the device command pool. The GPU must be done
// with it.
func (b *CommandBuffer) Release() {
	if b.handle == nil {
		return
	}
	b.device.handle.FreeCommandBuffers([]core1_0.CommandBuffer{b.handle})
	b.handle = nil
}
