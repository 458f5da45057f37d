// Package gldevice implements render.Device on OpenGL through go-gl. Every
// method must run on the thread owning the current GL context.
package gldevice

import (
	_ "embed"
	"fmt"
	"image"
	"reflect"
	"runtime"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/stewi1014/artmorph/logger"
	"github.com/stewi1014/artmorph/programs"
	"github.com/stewi1014/artmorph/render"
	"github.com/stewi1014/artmorph/view"
)

//go:embed shaders/overlay.frag
var overlayFragment string

// The fullscreen triangle; its corners lie outside the viewport.
var fullscreen = []float32{
	-3, -2,
	0, 3,
	3, -2,
}

const vertAttrib = 0

type overlayUniforms struct {
	Resolution [2]int32 `uniform:"u_resolution"`
	Texture    int32    `uniform:"u_overlay"`
}

// Program is a linked GL program with its uniform locations.
type Program struct {
	id        uint32
	locations map[string]int32
	device    *Device
}

// Delete frees the program. Programs of a released device are already gone
// with their context.
func (p *Program) Delete() {
	if p.device.released {
		return
	}
	gl.DeleteProgram(p.id)
}

type Device struct {
	// robust is set on contexts that can report a reset.
	robust   bool
	released bool

	vao, vbo uint32

	overlay        *Program
	overlayTexture uint32
}

var _ render.Device = (*Device)(nil)

// New initialises GL on the current context and uploads the vertex data.
func New(debug bool) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl.Init: %w", err)
	}
	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	logger.Logger().Info("OpenGL initialised",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
	)

	if debug {
		gl.Enable(gl.DEBUG_OUTPUT)
		gl.DebugMessageCallback(debugMessage, nil)
	}

	d := &Device{
		robust: major > 4 || major == 4 && minor >= 5,
	}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(fullscreen)*4, gl.Ptr(fullscreen), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(vertAttrib)
	gl.VertexAttribPointerWithOffset(vertAttrib, 2, gl.FLOAT, false, 2*4, 0)

	overlay, err := d.compile(overlayFragment, reflect.TypeOf(overlayUniforms{}))
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("overlay program: %w", err)
	}
	d.overlay = overlay

	gl.GenTextures(1, &d.overlayTexture)
	gl.BindTexture(gl.TEXTURE_2D, d.overlayTexture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	return d, nil
}

func (d *Device) Compile(fragment string) (render.Program, error) {
	return d.compile(fragment, reflect.TypeOf(view.Uniforms{}))
}

func (d *Device) compile(fragment string, uniforms reflect.Type) (*Program, error) {
	if d.lost() {
		return nil, render.ErrDeviceLost
	}

	vertexShader, err := compileShader(programs.VertexShader+"\x00", gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragment+"\x00", gl.FRAGMENT_SHADER)
	if err != nil {
		logger.Logger().Debug("rejected fragment source", "source", fragment)
		return nil, err
	}
	defer gl.DeleteShader(fragmentShader)

	id := gl.CreateProgram()
	gl.AttachShader(id, vertexShader)
	gl.AttachShader(id, fragmentShader)
	gl.BindAttribLocation(id, vertAttrib, gl.Str("vert\x00"))
	gl.BindFragDataLocation(id, 0, gl.Str("outputColor\x00"))
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetProgramInfoLog(id, l, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return nil, &render.LinkError{Log: strings.TrimRight(log, "\x00")}
	}

	return &Program{
		id:        id,
		locations: uniformLocations(id, uniforms),
		device:    d,
	}, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	defer runtime.KeepAlive(source)
	cstring, free := gl.Strs(source)
	defer free()

	shader := gl.CreateShader(shaderType)
	gl.ShaderSource(shader, 1, cstring, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetShaderInfoLog(shader, l, nil, gl.Str(log))
		gl.DeleteShader(shader)

		stage := "fragment"
		if shaderType == gl.VERTEX_SHADER {
			stage = "vertex"
		}
		return 0, &render.CompileError{Stage: stage, Log: strings.TrimRight(log, "\x00")}
	}

	return shader, nil
}

func (d *Device) Draw(p render.Program, u view.Uniforms, vertexCount int32) error {
	if d.lost() {
		return render.ErrDeviceLost
	}
	prog, ok := p.(*Program)
	if !ok {
		return fmt.Errorf("gldevice: foreign program %T", p)
	}

	gl.Viewport(0, 0, u.Resolution[0], u.Resolution[1])
	gl.Disable(gl.BLEND)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(prog.id)
	loadUniforms(prog.locations, &u)
	gl.BindVertexArray(d.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, vertexCount)
	return nil
}

// Overlay blends img, premultiplied and the size of the viewport, over the
// frame drawn by Draw.
func (d *Device) Overlay(img *image.RGBA) error {
	if d.lost() {
		return render.ErrDeviceLost
	}
	b := img.Bounds()
	if b.Empty() {
		return nil
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, d.overlayTexture)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	defer gl.Disable(gl.BLEND)

	gl.UseProgram(d.overlay.id)
	loadUniforms(d.overlay.locations, &overlayUniforms{
		Resolution: [2]int32{int32(b.Dx()), int32(b.Dy())},
	})
	gl.BindVertexArray(d.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, render.FullscreenVertices)
	return nil
}

// ReadPixels copies the bound framebuffer into an image, top row first.
func (d *Device) ReadPixels(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return img
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))

	// GL rows start at the bottom.
	row := make([]byte, img.Stride)
	for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := img.Pix[top*img.Stride : (top+1)*img.Stride]
		b := img.Pix[bottom*img.Stride : (bottom+1)*img.Stride]
		copy(row, a)
		copy(a, b)
		copy(b, row)
	}
	return img
}

func (d *Device) Release() {
	if d.released {
		return
	}
	if d.overlay != nil {
		d.overlay.Delete()
		d.overlay = nil
	}
	if d.overlayTexture != 0 {
		gl.DeleteTextures(1, &d.overlayTexture)
		d.overlayTexture = 0
	}
	if d.vbo != 0 {
		gl.DeleteBuffers(1, &d.vbo)
		d.vbo = 0
	}
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
	d.released = true
}

// lost reports a context reset. Without robustness loss is signalled by the
// host instead.
func (d *Device) lost() bool {
	if d.released {
		return true
	}
	return d.robust && gl.GetGraphicsResetStatus() != gl.NO_ERROR
}

func debugMessage(
	source,
	gltype,
	id,
	severity uint32,
	length int32,
	message string,
	user unsafe.Pointer,
) {
	log := logger.Logger().With("source", debugSource(source), "type", debugType(gltype), "id", id)
	switch severity {
	case gl.DEBUG_SEVERITY_HIGH:
		log.Error(message)
	case gl.DEBUG_SEVERITY_MEDIUM:
		log.Warn(message)
	default:
		log.Debug(message)
	}
}

func debugSource(source uint32) string {
	switch source {
	case gl.DEBUG_SOURCE_API:
		return "api"
	case gl.DEBUG_SOURCE_APPLICATION:
		return "application"
	case gl.DEBUG_SOURCE_SHADER_COMPILER:
		return "shaderCompiler"
	case gl.DEBUG_SOURCE_THIRD_PARTY:
		return "thirdParty"
	case gl.DEBUG_SOURCE_WINDOW_SYSTEM:
		return "windowSystem"
	}
	return "other"
}

func debugType(gltype uint32) string {
	switch gltype {
	case gl.DEBUG_TYPE_ERROR:
		return "error"
	case gl.DEBUG_TYPE_DEPRECATED_BEHAVIOR:
		return "deprecatedBehavior"
	case gl.DEBUG_TYPE_MARKER:
		return "marker"
	case gl.DEBUG_TYPE_PERFORMANCE:
		return "performance"
	case gl.DEBUG_TYPE_PORTABILITY:
		return "portability"
	case gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR:
		return "undefinedBehavior"
	}
	return "other"
}
