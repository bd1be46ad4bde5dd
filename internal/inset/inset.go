// Package inset implements InsetGenerator: producing the N concentric
// perimeter walls of a printed part from its outer/hole boundary, and
// the continuous-spiral single-wall mode used for vase-style prints.
package inset

import "github.com/Faultbox/gofff/internal/geom"

// Options controls wall generation for one layer of one part.
type Options struct {
	ExtrusionWidthUm     float64
	NumberOfPerimeters   int
	Spiralize            bool
	IsBottomLayer        bool
	SpiralizeBottomBoost int // extra solid walls printed on the bottom layer(s) in spiral mode, on top of NumberOfPerimeters
}

// Walls holds the ordered concentric loops for a single region, from
// outermost (index 0) inward. The pipeline plans every loop at the same
// print speed as the rest of the layer; the outer loop gets no speed of
// its own.
type Walls struct {
	Loops []geom.PolygonSet
	// Innermost is what infill/skin generation clips against: the region
	// left over once every wall has been inset away.
	Innermost geom.PolygonSet
}

// Generate insets region (an outer polygon plus its holes, already
// combined into a single boolean set with holes wound opposite the
// outer) into NumberOfPerimeters concentric walls.
func Generate(region geom.PolygonSet, opts Options) Walls {
	loopCount := opts.NumberOfPerimeters
	if opts.Spiralize && !opts.IsBottomLayer {
		loopCount = 1
	} else if opts.Spiralize {
		loopCount += opts.SpiralizeBottomBoost
	}
	if loopCount < 0 {
		loopCount = 0
	}

	current := region
	walls := Walls{Loops: make([]geom.PolygonSet, 0, loopCount)}

	for i := 0; i < loopCount; i++ {
		if len(current) == 0 {
			break
		}
		halfWidth := opts.ExtrusionWidthUm / 2
		var loop geom.PolygonSet
		if i == 0 {
			loop = geom.Offset(current, -halfWidth, geom.JoinMiter)
		} else {
			loop = geom.Offset(current, -opts.ExtrusionWidthUm, geom.JoinMiter)
		}
		walls.Loops = append(walls.Loops, loop)
		current = loop
	}

	if len(current) > 0 {
		walls.Innermost = geom.Offset(current, -opts.ExtrusionWidthUm/2, geom.JoinMiter)
	}
	return walls
}
