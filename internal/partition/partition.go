// Package partition implements LayerPartitioner: turning a layer's raw,
// possibly self-overlapping slice contours into a clean set of disjoint
// parts (outer boundary + holes), and the travel-safe comb boundary used
// later by the G-code planner.
package partition

import "github.com/Faultbox/gofff/internal/geom"

// Options controls how a raw slice is cleaned up before shell generation.
type Options struct {
	// RepairOverlaps unions every contour together before splitting into
	// parts, absorbing self-intersecting or duplicate geometry that a
	// non-manifold mesh can produce instead of failing the layer.
	RepairOverlaps bool
	// CombBoundaryOffsetUm insets the comb boundary inward from the part
	// outline so combed travel moves stay clear of the perimeter wall.
	CombBoundaryOffsetUm float64
}

// Part is one connected, hole-aware island of a layer: a single outer
// boundary plus zero or more holes fully contained within it.
type Part struct {
	Outer geom.Polygon
	Holes []geom.Polygon

	// CombBoundary is the region travel moves may cross without
	// retracting, generally Outer inset by CombBoundaryOffsetUm and with
	// Holes added back as no-go regions.
	CombBoundary geom.PolygonSet
}

// Partition splits a layer's raw contours into disjoint Parts, resolving
// outer/hole nesting the way NormalizeWinding already classifies a
// boolean-op result: even nesting depth is an outer, odd is a hole.
func Partition(raw geom.PolygonSet, opts Options) []Part {
	contours := raw
	if opts.RepairOverlaps {
		contours = geom.Union(raw, nil)
	}
	normalized := contours.NormalizeWinding()

	var outers, holes []geom.Polygon
	for _, p := range normalized {
		if p.IsCCW() {
			outers = append(outers, p)
		} else {
			holes = append(holes, p)
		}
	}

	parts := make([]Part, len(outers))
	for i, outer := range outers {
		part := Part{Outer: outer}
		for _, h := range holes {
			if geom.PointInPolygon(h[0], outer) {
				part.Holes = append(part.Holes, h)
			}
		}
		part.CombBoundary = combBoundary(part, opts.CombBoundaryOffsetUm)
		parts[i] = part
	}
	return parts
}

func combBoundary(part Part, insetUm float64) geom.PolygonSet {
	inset := geom.Offset(geom.PolygonSet{part.Outer}, -insetUm, geom.JoinMiter)
	if len(part.Holes) == 0 {
		return inset
	}
	grownHoles := geom.Offset(geom.PolygonSet(part.Holes), insetUm, geom.JoinMiter)
	return geom.Difference(inset, grownHoles)
}

// Area returns the part's net printable area (outer minus holes).
func (p Part) Area() float64 {
	area := p.Outer.Area()
	for _, h := range p.Holes {
		area -= h.Area()
	}
	return area
}
