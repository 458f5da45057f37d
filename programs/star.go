package programs

import (
	_ "embed"
)

//go:embed shaders/star_journey.glsl
var starJourneyFragment string

func init() {
	register(Descriptor{
		ID:       12,
		Name:     "Star Journey",
		Kind:     GPU,
		Defaults: defaults(8, 1),
		Source:   starJourneyFragment,
		Func:     "colorStarJourney",
		Shape:    ShapeRay,
	})
}
