// Package skin implements SkinGenerator: classifying each layer's
// innermost region into solid top/bottom surface and sparse infill area
// by comparing a layer against its neighbors above and below.
package skin

import "github.com/Faultbox/gofff/internal/geom"

// Options controls how many neighboring layers count as "enough cover"
// before a region is left sparse instead of solid.
type Options struct {
	NumberOfTopLayers    int
	NumberOfBottomLayers int
}

// Result is one layer's classified regions. Top and Bottom may overlap
// (a layer with material below and above it printed solid throughout
// gets both), so Sparse is only what remains once both are subtracted.
type Result struct {
	Top, Bottom, Sparse geom.PolygonSet
}

// Classify computes the skin for layer index i, given every layer's
// innermost printable region (regions[i] is the current layer). Layers
// outside the slice bounds are treated as empty, so a part's very top
// and bottom layers are always fully solid.
func Classify(regions []geom.PolygonSet, i int, opts Options) Result {
	current := regions[i]
	if len(current) == 0 {
		return Result{}
	}

	top := current
	if covered, ok := intersectRange(regions, i+1, i+opts.NumberOfTopLayers); ok {
		top = geom.Difference(current, covered)
	}

	bottom := current
	if covered, ok := intersectRange(regions, i-opts.NumberOfBottomLayers, i-1); ok {
		bottom = geom.Difference(current, covered)
	}

	solid := geom.Union(top, bottom)
	sparse := geom.Difference(current, solid)

	return Result{Top: top, Bottom: bottom, Sparse: sparse}
}

// intersectRange intersects regions[lo..hi] inclusive. ok is false if
// the range is empty or runs off either end of regions (meaning there's
// no full neighbor cover and the surface must be solid).
func intersectRange(regions []geom.PolygonSet, lo, hi int) (geom.PolygonSet, bool) {
	if hi < lo {
		return nil, false
	}
	if lo < 0 || hi >= len(regions) {
		return nil, false
	}

	result := regions[lo]
	for i := lo + 1; i <= hi; i++ {
		result = geom.Intersection(result, regions[i])
	}
	return result, true
}
