package gldevice

import (
	"reflect"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/artmorph/logger"
)

// uniformLocations looks up every `uniform` tagged field of t in program.
func uniformLocations(program uint32, t reflect.Type) map[string]int32 {
	locations := make(map[string]int32, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := strings.ToLower(t.Field(i).Tag.Get("uniform"))
		if name == "" {
			continue
		}
		locations[name] = gl.GetUniformLocation(program, gl.Str(name+"\x00"))
		logger.Logger().Debug("uniform location", "name", name, "location", locations[name])
	}
	return locations
}

// uniformSetters upload one value of each field type the uniform blocks
// carry.
var uniformSetters = map[reflect.Type]func(loc int32, ptr unsafe.Pointer){
	reflect.TypeFor[[2]int32](): func(loc int32, ptr unsafe.Pointer) {
		gl.Uniform2iv(loc, 1, (*int32)(ptr))
	},
	reflect.TypeFor[mgl32.Vec2](): func(loc int32, ptr unsafe.Pointer) {
		gl.Uniform2fv(loc, 1, (*float32)(ptr))
	},
	reflect.TypeFor[int32](): func(loc int32, ptr unsafe.Pointer) {
		gl.Uniform1iv(loc, 1, (*int32)(ptr))
	},
	reflect.TypeFor[float32](): func(loc int32, ptr unsafe.Pointer) {
		gl.Uniform1fv(loc, 1, (*float32)(ptr))
	},
}

// loadUniforms uploads each `uniform` tagged field of *v to the current
// program. Fields the program does not use have location -1 and are skipped
// by GL.
func loadUniforms(locations map[string]int32, v any) {
	rv := reflect.ValueOf(v).Elem()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		name := strings.ToLower(rv.Type().Field(i).Tag.Get("uniform"))
		loc, ok := locations[name]
		if !ok {
			continue
		}

		set, ok := uniformSetters[f.Type()]
		if !ok {
			logger.Logger().Warn("unsupported uniform type", "name", name, "type", f.Type().String())
			continue
		}
		set(loc, f.Addr().UnsafePointer())
	}
}
