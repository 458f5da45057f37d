package programs

import (
	_ "embed"
)

//go:embed shaders/energy.glsl
var energyFragment string

func init() {
	register(Descriptor{
		ID:       16,
		Name:     "Energy Core",
		Kind:     GPU,
		Defaults: defaults(50, 1),
		Source:   energyFragment,
		Func:     "colorEnergyCore",
	})
}
