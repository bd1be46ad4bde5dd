// Package support implements SupportGenerator: finding, per layer, the
// scaffolding needed to hold up unsupported overhangs, and turning that
// scaffolding into printable fill lines.
package support

import (
	"github.com/Faultbox/gofff/internal/geom"
	"github.com/Faultbox/gofff/internal/infill"
)

// Options controls overhang detection and scaffold shape.
type Options struct {
	OverhangAllowanceUm float64 // how far a layer may cantilever past the one below before needing support
	XYDistanceUm        float64
	LineSpacingUm       float64
	Pattern             infill.Pattern
	// ExtrusionWidthUm sizes the erode/dilate pass that drops slivers too
	// thin to hold an extrusion bead: the erosion is 3x this width from
	// every side, so regions narrower than 6x this width vanish under it
	// and never come back under the matching dilate.
	ExtrusionWidthUm float64
}

// ComputeRegions walks partRegions (one PolygonSet per layer, bottom to
// top, already the union of every part's outer minus holes on that
// layer) top-down: a layer needs support wherever the layer above it
// overhangs past OverhangAllowanceUm, plus anywhere a lower layer must
// carry scaffolding down to reach the bed for a layer further above.
// The result is one support region per layer, already clear of the
// model by XYDistanceUm.
func ComputeRegions(partRegions []geom.PolygonSet, opts Options) []geom.PolygonSet {
	n := len(partRegions)
	regions := make([]geom.PolygonSet, n)
	if n == 0 {
		return regions
	}

	var supportAbove geom.PolygonSet
	for i := n - 2; i >= 0; i-- {
		allowed := geom.Offset(partRegions[i], opts.OverhangAllowanceUm, geom.JoinRound)
		overhang := geom.Difference(partRegions[i+1], allowed)

		combined := geom.Union(overhang, supportAbove)
		clearOfModel := geom.Difference(combined, geom.Offset(partRegions[i], opts.XYDistanceUm, geom.JoinRound))

		regions[i] = dropSlivers(clearOfModel, opts.ExtrusionWidthUm)
		supportAbove = clearOfModel
	}
	return regions
}

// dropSlivers removes scaffolding too thin to print: an erode by 3x the
// extrusion width from every side collapses any sliver narrower than
// twice that (6x the width) back to nothing, and the matching dilate restores the surviving regions to
// roughly their original size and shape.
func dropSlivers(region geom.PolygonSet, extrusionWidthUm float64) geom.PolygonSet {
	if extrusionWidthUm <= 0 || len(region) == 0 {
		return region
	}
	delta := 3 * extrusionWidthUm
	eroded := geom.Offset(region, -delta, geom.JoinRound)
	if len(eroded) == 0 {
		return nil
	}
	return geom.Offset(eroded, delta, geom.JoinRound)
}

// Fill turns a layer's support region into printable lines using the
// same scanline infill engine sparse infill uses, at the configured
// scaffold density and pattern.
func Fill(region geom.PolygonSet, opts Options) []infill.Line {
	return infill.Generate(region, infill.Options{
		Pattern:       opts.Pattern,
		LineSpacingUm: opts.LineSpacingUm,
		AngleDegrees:  0,
	})
}
