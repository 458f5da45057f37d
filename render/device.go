// Package render drives frames: it decides when to draw and feeds one view
// snapshot to both the GPU kernel and the CPU overlay.
package render

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/stewi1014/artmorph/view"
)

var (
	// ErrDeviceLost reports that the GPU context went away. Everything the
	// device held must be rebuilt once it is restored.
	ErrDeviceLost = errors.New("render: device lost")

	// ErrNoProgram is returned when neither the composed kernel nor the
	// fallback kernel could be built.
	ErrNoProgram = errors.New("render: no usable program")
)

// CompileError carries the driver's info log for a shader that failed to
// compile.
type CompileError struct {
	Stage string
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s shader failed to compile: %s", e.Stage, e.Log)
}

// LinkError carries the driver's info log for a program that failed to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

// Program is a compiled kernel owned by the Device that built it.
type Program interface {
	Delete()
}

// Device is the GPU collaborator. Draw and Overlay are called once per
// rendered frame, Draw first.
type Device interface {
	Compile(fragment string) (Program, error)
	Draw(p Program, u view.Uniforms, vertexCount int32) error
	Overlay(img *image.RGBA) error
	Release()
}

type TickToken uint64

// FrameTimer calls back once per display refresh, on the UI thread.
type FrameTimer interface {
	RequestTick(func(now time.Time)) TickToken
	CancelTick(TickToken)
}

// Surface is the window area the frames are drawn into.
type Surface interface {
	LogicalSize() (width, height int)
	PixelRatio() float64
	BackingSize() (width, height int)
	SetBackingSize(width, height int)
}
