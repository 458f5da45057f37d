package gldevice

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Offscreen is a Device drawing into a framebuffer owned by a hidden glfw
// window. The caller must hold runtime.LockOSThread for its whole life.
type Offscreen struct {
	*Device
	window *glfw.Window

	fbo, texture  uint32
	width, height int
}

func NewOffscreen(width, height int, debug bool) (*Offscreen, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("offscreen size %dx%d", width, height)
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw.Init: %w", err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}

	window, err := glfw.CreateWindow(1, 1, "artmorph-offscreen", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw.CreateWindow: %w", err)
	}
	window.MakeContextCurrent()

	d, err := New(debug)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, err
	}

	o := &Offscreen{
		Device: d,
		window: window,
		width:  width,
		height: height,
	}

	gl.GenTextures(1, &o.texture)
	gl.BindTexture(gl.TEXTURE_2D, o.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	gl.GenFramebuffers(1, &o.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, o.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, o.texture, 0)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		o.Release()
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	return o, nil
}

func (o *Offscreen) Size() (width, height int) { return o.width, o.height }

// Image reads back the framebuffer.
func (o *Offscreen) Image() *image.RGBA {
	gl.BindFramebuffer(gl.FRAMEBUFFER, o.fbo)
	return o.ReadPixels(o.width, o.height)
}

// Release frees the framebuffer, the device and the hidden window.
func (o *Offscreen) Release() {
	if o.window == nil {
		return
	}
	if o.fbo != 0 {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.DeleteFramebuffers(1, &o.fbo)
		o.fbo = 0
	}
	if o.texture != 0 {
		gl.DeleteTextures(1, &o.texture)
		o.texture = 0
	}
	o.Device.Release()
	o.window.Destroy()
	o.window = nil
	glfw.Terminate()
}
